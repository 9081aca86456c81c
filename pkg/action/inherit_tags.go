package action

import (
	"github.com/smrender/smrender/pkg/osm"
	"github.com/smrender/smrender/pkg/rule"
	"github.com/smrender/smrender/pkg/trie"
)

// Direction selects which way tags flow in InheritTags.
type Direction int

const (
	// Up copies tags from a node to its parent ways/relations via the
	// reverse index.
	Up Direction = iota
	// Down copies tags from a way/relation to its children (a way's
	// nodes, or a relation's members).
	Down
)

// InheritTags copies a fixed set of tag keys from a matched object
// onto its reverse-index parents (Up) or its referenced children
// (Down). Force controls whether an existing tag on the destination is
// overwritten; without it, a destination that already carries the key
// is left untouched.
type InheritTags struct {
	rule.BaseAction
	Store *trie.Store

	Keys      []string
	Direction Direction
	Force     bool
	// ObjectFilter, if set, restricts destinations to one kind:
	// narrowing Up-inheritance to ways or relations only, or
	// Down-inheritance on a relation to one member kind.
	ObjectFilter osm.Kind
	HasFilter    bool
}

func (InheritTags) Name() string { return "inherit_tags" }

func (it InheritTags) Ini(rt *rule.Rule) (rule.Result, error) {
	it.Store.RequestIndex()
	return rule.OK, nil
}

func (it InheritTags) Main(rt *rule.Rule, o osm.Object) (rule.Result, error) {
	for _, key := range it.Keys {
		val, ok := o.GetTags().Get(key)
		if !ok {
			continue
		}
		if it.Direction == Up {
			it.copyUp(o, key, val)
		} else {
			it.copyDown(o, key, val)
		}
	}
	return rule.OK, nil
}

func (it InheritTags) copyUp(o osm.Object, key, val string) {
	for _, parent := range it.Store.ReverseParents(o.ObjectID()) {
		if it.HasFilter && parent.ObjectKind() != it.ObjectFilter {
			continue
		}
		copyTagCond(parent, key, val, it.Force)
	}
}

func (it InheritTags) copyDown(o osm.Object, key, val string) {
	switch src := o.(type) {
	case *osm.Relation:
		for _, m := range src.Members {
			if it.HasFilter && m.Kind != it.ObjectFilter {
				continue
			}
			dst := it.lookup(m.Kind, m.ID)
			if dst == nil {
				continue
			}
			copyTagCond(dst, key, val, it.Force)
		}
	case *osm.Way:
		for _, ref := range src.Refs {
			if n, ok := it.Store.GetNode(ref); ok {
				copyTagCond(n, key, val, it.Force)
			}
		}
	}
}

func (it InheritTags) lookup(kind osm.Kind, id int64) osm.Object {
	switch kind {
	case osm.KindNode:
		if n, ok := it.Store.GetNode(id); ok {
			return n
		}
	case osm.KindWay:
		if w, ok := it.Store.GetWay(id); ok {
			return w
		}
	case osm.KindRelation:
		if r, ok := it.Store.GetRelation(id); ok {
			return r
		}
	}
	return nil
}

// copyTagCond adds key=val to dst if it has no such key, or overwrites
// it if force is set; otherwise it is left untouched.
func copyTagCond(dst osm.Object, key, val string, force bool) {
	if _, ok := dst.GetTags().Get(key); ok && !force {
		return
	}
	dst.SetTags(dst.GetTags().Set(key, val))
}
