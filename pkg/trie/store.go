package trie

import "github.com/smrender/smrender/pkg/osm"

// revEntry is the reverse-pointer list kept for a single node ID: the
// ways and/or relations that reference it. The index holds non-owning
// references; the objects themselves belong to the primary store.
type revEntry struct {
	parents []osm.Object
}

// Store composes the three object tries (node/way/relation) plus the
// node reverse-pointer trie, so four disjoint ID spaces coexist in one
// trie shape. Each space supports put/get/traverse independently, and
// at-most-one-object-per-(kind,id) holds per space.
type Store struct {
	Nodes     *Trie[*osm.Node]
	Ways      *Trie[*osm.Way]
	Relations *Trie[*osm.Relation]
	Roles     *osm.RoleTable
	IDs       *osm.IDAllocator

	reverse      *Trie[*revEntry]
	reverseBuilt bool
	needIndex    int // incremented by actions during rule init
}

// NewStore returns an empty store with a fresh role table and ID
// allocator.
func NewStore() *Store {
	return &Store{
		Nodes:     New[*osm.Node](),
		Ways:      New[*osm.Way](),
		Relations: New[*osm.Relation](),
		Roles:     osm.NewRoleTable(),
		IDs:       osm.NewIDAllocator(),
		reverse:   New[*revEntry](),
	}
}

// PutNode, PutWay, PutRelation insert or overwrite an object. A later
// put with the same ID replaces and owns the earlier object.
func (s *Store) PutNode(n *osm.Node)         { s.Nodes.Put(n.ID, n) }
func (s *Store) PutWay(w *osm.Way)           { s.Ways.Put(w.ID, w) }
func (s *Store) PutRelation(r *osm.Relation) { s.Relations.Put(r.ID, r) }

func (s *Store) GetNode(id int64) (*osm.Node, bool)         { return s.Nodes.Get(id) }
func (s *Store) GetWay(id int64) (*osm.Way, bool)           { return s.Ways.Get(id) }
func (s *Store) GetRelation(id int64) (*osm.Relation, bool) { return s.Relations.Get(id) }

// RequestIndex increments the need-index counter. Actions call this
// during rule initialization (ini) when they will query reverse
// parents during the pass.
func (s *Store) RequestIndex() { s.needIndex++ }

// IndexNeeded reports whether any action requested the reverse index,
// or it was forced on via configuration.
func (s *Store) IndexNeeded(forced bool) bool { return forced || s.needIndex > 0 }
