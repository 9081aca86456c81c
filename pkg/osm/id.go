// Package osm defines the OSM data model shared by the store, the rule
// engine, and every action: nodes, ways, relations, tags, and the
// fresh-ID allocator actions use when they fabricate new objects.
package osm

import "sync"

// Kind distinguishes the three OSM object variants.
type Kind int

const (
	KindNode Kind = iota
	KindWay
	KindRelation
)

func (k Kind) String() string {
	switch k {
	case KindNode:
		return "node"
	case KindWay:
		return "way"
	case KindRelation:
		return "relation"
	default:
		return "unknown"
	}
}

// idSentinel is the starting point for both descending counters. It sits
// well below any plausible positive input ID so fabricated IDs never
// collide with source data; guarding against adversarial input IDs in
// that range is the source's responsibility.
const idSentinel = -1 << 40

// IDAllocator hands out fresh negative IDs for fabricated objects.
// Nodes draw from one descending counter; ways and relations share a
// second. Safe for concurrent use: the counters are mutex-guarded so
// threaded actions (cat_poly, shape, zeroway, split) can all fabricate
// IDs without racing.
type IDAllocator struct {
	mu        sync.Mutex
	nextNode  int64
	nextOther int64
}

// NewIDAllocator returns an allocator with both counters reset to the
// sentinel.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{nextNode: idSentinel, nextOther: idSentinel}
}

// NewNodeID returns the next fresh node ID.
func (a *IDAllocator) NewNodeID() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.nextNode
	a.nextNode--
	return id
}

// NewWayID returns the next fresh way ID.
func (a *IDAllocator) NewWayID() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.nextOther
	a.nextOther--
	return id
}

// NewRelationID returns the next fresh relation ID. Ways and relations
// draw from the same pool.
func (a *IDAllocator) NewRelationID() int64 {
	return a.NewWayID()
}
