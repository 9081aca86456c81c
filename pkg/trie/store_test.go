package trie

import (
	"testing"

	"github.com/smrender/smrender/pkg/osm"
)

// TestReverseIndexConsistency checks that for every way W and every
// ref r in W, W appears exactly once in the reverse index for r.
func TestReverseIndexConsistency(t *testing.T) {
	s := NewStore()

	n1 := &osm.Node{Common: osm.Common{ID: 1, Visible: true}}
	n2 := &osm.Node{Common: osm.Common{ID: 2, Visible: true}}
	s.PutNode(n1)
	s.PutNode(n2)

	w := &osm.Way{Common: osm.Common{ID: 100, Visible: true}, Refs: []int64{1, 2, 1}}
	s.PutWay(w)

	s.BuildReverseIndex()

	parents := s.ReverseParents(1)
	count := 0
	for _, p := range parents {
		if p.ObjectKind() == osm.KindWay && p.ObjectID() == 100 {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected way 100 to appear exactly once in node 1's reverse list, got %d (list: %+v)", count, parents)
	}

	parents2 := s.ReverseParents(2)
	if len(parents2) != 1 || parents2[0].ObjectID() != 100 {
		t.Fatalf("expected node 2's reverse list to contain only way 100, got %+v", parents2)
	}

	if !s.IndexBuilt() {
		t.Fatalf("expected IndexBuilt to report true after BuildReverseIndex")
	}
}

// TestReverseIndexIdempotent checks that calling BuildReverseIndex
// twice without intervening mutation does not duplicate entries.
func TestReverseIndexIdempotent(t *testing.T) {
	s := NewStore()
	s.PutNode(&osm.Node{Common: osm.Common{ID: 1, Visible: true}})
	s.PutWay(&osm.Way{Common: osm.Common{ID: 10, Visible: true}, Refs: []int64{1, 1}})

	s.BuildReverseIndex()
	s.BuildReverseIndex()

	parents := s.ReverseParents(1)
	if len(parents) != 1 {
		t.Fatalf("expected exactly one parent after rebuilding, got %d", len(parents))
	}
}

func TestRemoveRevPtr(t *testing.T) {
	s := NewStore()
	w := &osm.Way{Common: osm.Common{ID: 5, Visible: true}, Refs: []int64{1}}
	s.PutWay(w)
	s.AddRevPtr(1, w)
	if len(s.ReverseParents(1)) != 1 {
		t.Fatalf("expected one parent before removal")
	}
	s.RemoveRevPtr(1, w)
	if len(s.ReverseParents(1)) != 0 {
		t.Fatalf("expected zero parents after removal")
	}
}

func TestIndexNeeded(t *testing.T) {
	s := NewStore()
	if s.IndexNeeded(false) {
		t.Fatalf("index should not be needed by default")
	}
	if !s.IndexNeeded(true) {
		t.Fatalf("forced=true must always report needed")
	}
	s.RequestIndex()
	if !s.IndexNeeded(false) {
		t.Fatalf("after RequestIndex, IndexNeeded(false) must report true")
	}
}
