package osm

import "time"

// Common holds the fields shared by every OSM object variant.
type Common struct {
	ID        int64
	Version   int64
	Changeset int64
	UID       int64
	Timestamp time.Time
	Visible   bool
	Tags      TagList
}

// Object is satisfied by *Node, *Way, and *Relation. It is deliberately
// small: actions type-switch on the concrete type when they need
// variant-specific fields (refs, members, coordinates).
type Object interface {
	ObjectID() int64
	ObjectKind() Kind
	GetTags() TagList
	SetTags(TagList)
	IsVisible() bool
	SetVisible(bool)
}

// Node is a point: latitude/longitude plus the common fields.
type Node struct {
	Common
	Lat float64
	Lon float64
}

func (n *Node) ObjectID() int64   { return n.ID }
func (n *Node) ObjectKind() Kind  { return KindNode }
func (n *Node) GetTags() TagList  { return n.Tags }
func (n *Node) SetTags(t TagList) { n.Tags = t }
func (n *Node) IsVisible() bool   { return n.Visible }
func (n *Node) SetVisible(v bool) { n.Visible = v }

// Way is an ordered sequence of node references.
type Way struct {
	Common
	Refs []int64
}

func (w *Way) ObjectID() int64   { return w.ID }
func (w *Way) ObjectKind() Kind  { return KindWay }
func (w *Way) GetTags() TagList  { return w.Tags }
func (w *Way) SetTags(t TagList) { w.Tags = t }
func (w *Way) IsVisible() bool   { return w.Visible }
func (w *Way) SetVisible(v bool) { w.Visible = v }

// Closed reports whether the way is closed: at least 4 refs and the
// first equals the last.
func (w *Way) Closed() bool {
	return len(w.Refs) >= 4 && w.Refs[0] == w.Refs[len(w.Refs)-1]
}

// FirstRef and LastRef panic-free accessors for endpoint logic used
// throughout cat_poly; they return 0, false on an empty way.
func (w *Way) FirstRef() (int64, bool) {
	if len(w.Refs) == 0 {
		return 0, false
	}
	return w.Refs[0], true
}

func (w *Way) LastRef() (int64, bool) {
	if len(w.Refs) == 0 {
		return 0, false
	}
	return w.Refs[len(w.Refs)-1], true
}

// Member is one entry of a relation's ordered member list.
type Member struct {
	Kind Kind
	ID   int64
	Role RoleCode
}

// Relation is an ordered list of (kind, id, role) members.
type Relation struct {
	Common
	Members []Member
}

func (r *Relation) ObjectID() int64   { return r.ID }
func (r *Relation) ObjectKind() Kind  { return KindRelation }
func (r *Relation) GetTags() TagList  { return r.Tags }
func (r *Relation) SetTags(t TagList) { r.Tags = t }
func (r *Relation) IsVisible() bool   { return r.Visible }
func (r *Relation) SetVisible(v bool) { r.Visible = v }
