// Package smio implements the engine's external I/O surface: an
// ObjectSource/ObjectSink iterator pair over the wire OSM shape, a
// newline-delimited JSON codec over that shape, and the binary index
// persistence format.
package smio

import (
	"time"

	"github.com/smrender/smrender/pkg/osm"
)

// WireObject is the external, format-agnostic shape for input/output:
// kind, id, version, visibility, timestamp, tags, and a payload that
// is either node coordinates, way refs, or relation members depending
// on Kind.
type WireObject struct {
	Kind      osm.Kind
	ID        int64
	Version   int64
	Changeset int64
	UID       int64
	Visible   bool
	Timestamp int64 // unix seconds
	Tags      osm.TagList

	Lat, Lon float64      // node payload
	Refs     []int64      // way payload
	Members  []WireMember // relation payload
}

// WireMember mirrors osm.Member in the wire format.
type WireMember struct {
	Kind osm.Kind
	ID   int64
	Role string
}

// ObjectSource is the minimal input iterator the loader needs. Next
// reports end-of-stream via the ok bool rather than a sentinel error,
// matching the other iterator-shaped APIs in this codebase.
type ObjectSource interface {
	Next() (WireObject, bool, error)
}

// ObjectSink is the output counterpart: a stream of objects in the same
// wire shape.
type ObjectSink interface {
	Put(WireObject) error
	Close() error
}

// ToOSM converts a wire object into the concrete in-memory type for the
// given kind, for loaders to hand directly to a trie.Store. roleCode
// interns each member's role string into the store's shared role table;
// pass nil to leave every member's role at its zero code.
func (w WireObject) ToOSM(roleCode func(string) osm.RoleCode) osm.Object {
	common := osm.Common{
		ID: w.ID, Version: w.Version, Changeset: w.Changeset, UID: w.UID,
		Visible: w.Visible, Tags: w.Tags, Timestamp: time.Unix(w.Timestamp, 0).UTC(),
	}
	switch w.Kind {
	case osm.KindNode:
		return &osm.Node{Common: common, Lat: w.Lat, Lon: w.Lon}
	case osm.KindWay:
		return &osm.Way{Common: common, Refs: w.Refs}
	case osm.KindRelation:
		members := make([]osm.Member, len(w.Members))
		for i, m := range w.Members {
			var role osm.RoleCode
			if roleCode != nil {
				role = roleCode(m.Role)
			}
			members[i] = osm.Member{Kind: m.Kind, ID: m.ID, Role: role}
		}
		return &osm.Relation{Common: common, Members: members}
	}
	return nil
}

// FromOSM converts a store object into its wire representation, the
// inverse of ToOSM, resolving member roles via the store's role table.
func FromOSM(o osm.Object, roleName func(osm.RoleCode) string) WireObject {
	w := WireObject{
		Kind: o.ObjectKind(), ID: o.ObjectID(), Visible: o.IsVisible(), Tags: o.GetTags(),
	}
	switch v := o.(type) {
	case *osm.Node:
		w.Version, w.Changeset, w.UID = v.Version, v.Changeset, v.UID
		w.Timestamp = v.Timestamp.Unix()
		w.Lat, w.Lon = v.Lat, v.Lon
	case *osm.Way:
		w.Version, w.Changeset, w.UID = v.Version, v.Changeset, v.UID
		w.Timestamp = v.Timestamp.Unix()
		w.Refs = v.Refs
	case *osm.Relation:
		w.Version, w.Changeset, w.UID = v.Version, v.Changeset, v.UID
		w.Timestamp = v.Timestamp.Unix()
		w.Members = make([]WireMember, len(v.Members))
		for i, m := range v.Members {
			role := ""
			if roleName != nil {
				role = roleName(m.Role)
			}
			w.Members[i] = WireMember{Kind: m.Kind, ID: m.ID, Role: role}
		}
	}
	return w
}
