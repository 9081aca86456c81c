package action

import (
	"math"
	"strconv"
	"testing"

	"github.com/smrender/smrender/pkg/osm"
	"github.com/smrender/smrender/pkg/rule"
	"github.com/smrender/smrender/pkg/trie"
)

// TestInsEqdistInsertsEquidistantNodes runs the action on a 10 nm
// meridian segment at the equator with 3 nm spacing: nodes appear at
// 3, 6, and 9 nm, each tagged with its cumulative distance and a
// northward bearing, and the leftover 1 nm needs no node.
func TestInsEqdistInsertsEquidistantNodes(t *testing.T) {
	s := trie.NewStore()
	s.PutNode(&osm.Node{Common: osm.Common{ID: 1, Visible: true}, Lat: 0, Lon: 0})
	s.PutNode(&osm.Node{Common: osm.Common{ID: 2, Visible: true}, Lat: 10.0 / 60, Lon: 0})
	w := &osm.Way{Common: osm.Common{ID: 100, Visible: true}, Refs: []int64{1, 2}}
	s.PutWay(w)

	ie := InsEqdist{Store: s, Distance: 3.0 / 60}
	if _, err := ie.Main(&rule.Rule{}, w); err != nil {
		t.Fatalf("Main: %v", err)
	}

	if len(w.Refs) != 5 {
		t.Fatalf("expected 5 refs (2 original + 3 inserted), got %v", w.Refs)
	}
	if w.Refs[0] != 1 || w.Refs[len(w.Refs)-1] != 2 {
		t.Fatalf("endpoints must be preserved, got %v", w.Refs)
	}

	wantDist := []float64{3, 6, 9}
	for i, ref := range w.Refs[1:4] {
		n, ok := s.GetNode(ref)
		if !ok {
			t.Fatalf("inserted ref %d not resolvable", ref)
		}
		wantLat := wantDist[i] / 60
		if math.Abs(n.Lat-wantLat) > 1e-4 {
			t.Errorf("node %d at lat %v, want ~%v", i+1, n.Lat, wantLat)
		}
		dv, _ := n.GetTags().Get("distance")
		d, err := strconv.ParseFloat(dv, 64)
		if err != nil || math.Abs(d-wantDist[i]) > 0.05 {
			t.Errorf("node %d distance tag %q, want ~%.1f", i+1, dv, wantDist[i])
		}
		bv, _ := n.GetTags().Get("bearing")
		b, err := strconv.ParseFloat(bv, 64)
		if err != nil || math.Abs(b) > 0.5 {
			t.Errorf("node %d bearing tag %q, want ~0.0", i+1, bv)
		}
	}
}

// TestInsEqdistShortWayUntouched checks that a segment shorter than
// the spacing gets no inserted nodes.
func TestInsEqdistShortWayUntouched(t *testing.T) {
	s := trie.NewStore()
	s.PutNode(&osm.Node{Common: osm.Common{ID: 1, Visible: true}, Lat: 0, Lon: 0})
	s.PutNode(&osm.Node{Common: osm.Common{ID: 2, Visible: true}, Lat: 1.0 / 60, Lon: 0})
	w := &osm.Way{Common: osm.Common{ID: 100, Visible: true}, Refs: []int64{1, 2}}
	s.PutWay(w)

	ie := InsEqdist{Store: s, Distance: 3.0 / 60}
	if _, err := ie.Main(&rule.Rule{}, w); err != nil {
		t.Fatalf("Main: %v", err)
	}
	if len(w.Refs) != 2 {
		t.Fatalf("expected the short way to stay untouched, got %v", w.Refs)
	}
}

// TestInsEqdistPreservesRefSubsequence checks that the original refs
// survive, in order, as a subsequence of the output.
func TestInsEqdistPreservesRefSubsequence(t *testing.T) {
	s := trie.NewStore()
	s.PutNode(&osm.Node{Common: osm.Common{ID: 1, Visible: true}, Lat: 0, Lon: 0})
	s.PutNode(&osm.Node{Common: osm.Common{ID: 2, Visible: true}, Lat: 4.0 / 60, Lon: 0})
	s.PutNode(&osm.Node{Common: osm.Common{ID: 3, Visible: true}, Lat: 4.0 / 60, Lon: 4.0 / 60})
	w := &osm.Way{Common: osm.Common{ID: 100, Visible: true}, Refs: []int64{1, 2, 3}}
	s.PutWay(w)

	ie := InsEqdist{Store: s, Distance: 1.5 / 60}
	if _, err := ie.Main(&rule.Rule{}, w); err != nil {
		t.Fatalf("Main: %v", err)
	}

	want := []int64{1, 2, 3}
	wi := 0
	for _, r := range w.Refs {
		if wi < len(want) && r == want[wi] {
			wi++
		}
	}
	if wi != len(want) {
		t.Fatalf("original refs %v must survive as a subsequence of %v", want, w.Refs)
	}
	if len(w.Refs) <= 3 {
		t.Fatalf("expected inserted nodes on both legs, got %v", w.Refs)
	}
}
