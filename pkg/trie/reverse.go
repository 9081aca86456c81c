package trie

import "github.com/smrender/smrender/pkg/osm"

// BuildReverseIndex traverses ways (then relations) and records, for
// every node reference, which parent object points to it. It is
// idempotent: calling it twice without intervening mutation leaves the
// index unchanged since AddRevPtr suppresses duplicates.
// The framework calls this once, after every rule has run ini, and
// only if IndexNeeded reports true.
func (s *Store) BuildReverseIndex() {
	s.Ways.Traverse(func(_ int64, w *osm.Way) int {
		for _, ref := range w.Refs {
			s.AddRevPtr(ref, w)
		}
		return 0
	})
	s.Relations.Traverse(func(_ int64, r *osm.Relation) int {
		for _, m := range r.Members {
			if m.Kind == osm.KindNode {
				s.AddRevPtr(m.ID, r)
			}
		}
		return 0
	})
	s.reverseBuilt = true
}

// AddRevPtr records parent as a referrer of childID, skipping duplicates
// already on the list. Mutating actions (zeroway, split, and anything
// that inserts refs) must call this for every reference they add so
// the reverse index stays bidirectionally consistent with the store.
func (s *Store) AddRevPtr(childID int64, parent osm.Object) {
	entry, ok := s.reverse.Get(childID)
	if !ok {
		entry = &revEntry{}
		s.reverse.Put(childID, entry)
	}
	for _, p := range entry.parents {
		if sameObject(p, parent) {
			return
		}
	}
	entry.parents = append(entry.parents, parent)
}

// RemoveRevPtr drops parent from childID's reverse list, if present.
// Mutating actions that remove a reference must call this to keep the
// index consistent.
func (s *Store) RemoveRevPtr(childID int64, parent osm.Object) {
	entry, ok := s.reverse.Get(childID)
	if !ok {
		return
	}
	for i, p := range entry.parents {
		if sameObject(p, parent) {
			entry.parents = append(entry.parents[:i], entry.parents[i+1:]...)
			return
		}
	}
}

// ReverseParents returns the parents (ways and/or relations) that
// reference the given node ID. The returned slice is owned by the
// index; callers must not mutate it.
func (s *Store) ReverseParents(nodeID int64) []osm.Object {
	entry, ok := s.reverse.Get(nodeID)
	if !ok {
		return nil
	}
	return entry.parents
}

// IndexBuilt reports whether BuildReverseIndex has run at least once.
func (s *Store) IndexBuilt() bool { return s.reverseBuilt }

func sameObject(a, b osm.Object) bool {
	return a.ObjectKind() == b.ObjectKind() && a.ObjectID() == b.ObjectID()
}
