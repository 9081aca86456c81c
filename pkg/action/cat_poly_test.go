package action

import (
	"testing"

	"github.com/smrender/smrender/pkg/geo"
	"github.com/smrender/smrender/pkg/osm"
	"github.com/smrender/smrender/pkg/rule"
	"github.com/smrender/smrender/pkg/trie"
)

func testFrame(t *testing.T) *geo.Frame {
	t.Helper()
	win := geo.Window{
		Mode: geo.WindowBBox,
		BBox: geo.BBox{LL: geo.LatLon{Lat: -1, Lon: -1}, RU: geo.LatLon{Lat: 11, Lon: 11}},
	}
	page, err := geo.ParsePageSpec("A3", geo.DefaultDPI)
	if err != nil {
		t.Fatalf("ParsePageSpec: %v", err)
	}
	f, err := geo.NewFrame(win, page, geo.ProjMercator)
	if err != nil {
		t.Fatalf("NewFrame: %v", err)
	}
	return f
}

func coastStore(t *testing.T) (*trie.Store, *osm.Way, *osm.Way) {
	t.Helper()
	s := trie.NewStore()
	s.PutNode(&osm.Node{Common: osm.Common{ID: 1, Visible: true}, Lat: 0, Lon: 0})
	s.PutNode(&osm.Node{Common: osm.Common{ID: 2, Visible: true}, Lat: 0, Lon: 10})
	s.PutNode(&osm.Node{Common: osm.Common{ID: 3, Visible: true}, Lat: 10, Lon: 10})

	coast := osm.TagList{{Key: "natural", Value: "coastline"}}
	w1 := &osm.Way{Common: osm.Common{ID: 100, Visible: true, Tags: coast.Clone()}, Refs: []int64{1, 2}}
	w2 := &osm.Way{Common: osm.Common{ID: 101, Visible: true, Tags: coast.Clone()}, Refs: []int64{2, 3}}
	s.PutWay(w1)
	s.PutWay(w2)
	return s, w1, w2
}

// newPolys returns every way cat_poly fabricated (negative IDs).
func newPolys(s *trie.Store) []*osm.Way {
	var out []*osm.Way
	s.Ways.Traverse(func(id int64, w *osm.Way) int {
		if id < 0 {
			out = append(out, w)
		}
		return 0
	})
	return out
}

func TestCatPolyStitchesTwoFragmentsIntoClosedRing(t *testing.T) {
	s, w1, w2 := coastStore(t)
	cp := &CatPoly{Store: s, Frame: testFrame(t)}
	rt := &rule.Rule{Params: map[string]string{}}

	for _, w := range []*osm.Way{w1, w2} {
		if _, err := cp.Main(rt, w); err != nil {
			t.Fatalf("Main: %v", err)
		}
	}
	if _, err := cp.Fini(rt); err != nil {
		t.Fatalf("Fini: %v", err)
	}

	polys := newPolys(s)
	if len(polys) != 1 {
		t.Fatalf("expected exactly one fabricated way, got %d", len(polys))
	}
	ring := polys[0]
	if !ring.Closed() {
		t.Fatalf("expected a closed ring, got refs %v", ring.Refs)
	}
	// The three source nodes must survive as an ordered subsequence.
	want := []int64{1, 2, 3}
	wi := 0
	for _, r := range ring.Refs {
		if wi < len(want) && r == want[wi] {
			wi++
		}
	}
	if wi != len(want) {
		t.Errorf("expected refs %v as a subsequence of %v", want, ring.Refs)
	}
	// Border stitching must have added at least one corner node.
	if len(ring.Refs) < 5 {
		t.Errorf("expected corner nodes between the open ends, got only %v", ring.Refs)
	}
	if v, _ := ring.GetTags().Get("natural"); v != "coastline" {
		t.Errorf("expected natural=coastline on the stitched ring, got %q", v)
	}
	if w1.IsVisible() || w2.IsVisible() {
		t.Errorf("expected source fragments to be hidden after stitching")
	}
}

func TestCatPolySnapsNearlyClosedChain(t *testing.T) {
	s := trie.NewStore()
	s.PutNode(&osm.Node{Common: osm.Common{ID: 1, Visible: true}, Lat: 0, Lon: 0})
	s.PutNode(&osm.Node{Common: osm.Common{ID: 2, Visible: true}, Lat: 0, Lon: 1})
	s.PutNode(&osm.Node{Common: osm.Common{ID: 3, Visible: true}, Lat: 1, Lon: 1})
	s.PutNode(&osm.Node{Common: osm.Common{ID: 4, Visible: true}, Lat: 0.0001, Lon: 0})
	w := &osm.Way{Common: osm.Common{ID: 100, Visible: true}, Refs: []int64{1, 2, 3, 4}}
	s.PutWay(w)

	cp := &CatPoly{Store: s, Frame: testFrame(t), CloseTolerance: 0.01}
	rt := &rule.Rule{Params: map[string]string{}}
	if _, err := cp.Main(rt, w); err != nil {
		t.Fatalf("Main: %v", err)
	}
	if _, err := cp.Fini(rt); err != nil {
		t.Fatalf("Fini: %v", err)
	}

	polys := newPolys(s)
	if len(polys) != 1 {
		t.Fatalf("expected one fabricated way, got %d", len(polys))
	}
	ring := polys[0]
	if !ring.Closed() {
		t.Fatalf("expected the gap to be snapped shut, got %v", ring.Refs)
	}
	// Snapping repeats the first ref; no corner nodes appear.
	if len(ring.Refs) != 5 {
		t.Errorf("expected exactly 5 refs after snapping, got %v", ring.Refs)
	}
}

func TestCatPolyIgnIncompleteKeepsOpenChain(t *testing.T) {
	s := trie.NewStore()
	s.PutNode(&osm.Node{Common: osm.Common{ID: 1, Visible: true}, Lat: 5, Lon: 2})
	s.PutNode(&osm.Node{Common: osm.Common{ID: 2, Visible: true}, Lat: 5, Lon: 8})
	w := &osm.Way{Common: osm.Common{ID: 100, Visible: true}, Refs: []int64{1, 2}}
	s.PutWay(w)

	// No frame: the chain cannot be routed around a border, so only
	// IgnIncomplete keeps it.
	cp := &CatPoly{Store: s, IgnIncomplete: true}
	rt := &rule.Rule{Params: map[string]string{}}
	if _, err := cp.Main(rt, w); err != nil {
		t.Fatalf("Main: %v", err)
	}
	if _, err := cp.Fini(rt); err != nil {
		t.Fatalf("Fini: %v", err)
	}

	polys := newPolys(s)
	if len(polys) != 1 {
		t.Fatalf("expected the open chain to be kept, got %d ways", len(polys))
	}
	if v, ok := polys[0].GetTags().Get(OpenWayTag); !ok || v != "yes" {
		t.Errorf("expected %s=yes on the kept open way, got %q (ok=%v)", OpenWayTag, v, ok)
	}
}

func TestCatPolyDropsUnclosableChainWithoutIgnIncomplete(t *testing.T) {
	s := trie.NewStore()
	s.PutNode(&osm.Node{Common: osm.Common{ID: 1, Visible: true}, Lat: 5, Lon: 2})
	s.PutNode(&osm.Node{Common: osm.Common{ID: 2, Visible: true}, Lat: 5, Lon: 8})
	w := &osm.Way{Common: osm.Common{ID: 100, Visible: true}, Refs: []int64{1, 2}}
	s.PutWay(w)

	cp := &CatPoly{Store: s}
	rt := &rule.Rule{Params: map[string]string{}}
	if _, err := cp.Main(rt, w); err != nil {
		t.Fatalf("Main: %v", err)
	}
	if _, err := cp.Fini(rt); err != nil {
		t.Fatalf("Fini: %v", err)
	}
	if polys := newPolys(s); len(polys) != 0 {
		t.Fatalf("expected unclosable chain to be dropped, got %d ways", len(polys))
	}
}

func TestChainWaysJoinsSharedEndpoints(t *testing.T) {
	a := &osm.Way{Common: osm.Common{ID: 1}, Refs: []int64{10, 11}}
	b := &osm.Way{Common: osm.Common{ID: 2}, Refs: []int64{11, 12}}
	c := &osm.Way{Common: osm.Common{ID: 3}, Refs: []int64{13, 12}} // reversed join

	chains := chainWays([]*osm.Way{a, b, c})
	if len(chains) != 1 {
		t.Fatalf("expected one chain, got %d", len(chains))
	}
	got := chains[0].refs
	want := []int64{10, 11, 12, 13}
	if len(got) != len(want) {
		t.Fatalf("chain refs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("chain refs = %v, want %v", got, want)
		}
	}
}

func TestTrimOffPageFabricatesBorderNode(t *testing.T) {
	s := trie.NewStore()
	// One node well outside the bbox, two inside.
	s.PutNode(&osm.Node{Common: osm.Common{ID: 1, Visible: true}, Lat: 20, Lon: 5})
	s.PutNode(&osm.Node{Common: osm.Common{ID: 2, Visible: true}, Lat: 5, Lon: 5})
	s.PutNode(&osm.Node{Common: osm.Common{ID: 3, Visible: true}, Lat: 2, Lon: 5})

	cp := &CatPoly{Store: s, Frame: testFrame(t)}
	out, ok := cp.trimOffPage([]int64{1, 2, 3})
	if !ok {
		t.Fatalf("trimOffPage reported everything off-page")
	}
	if len(out) != 3 {
		t.Fatalf("expected [border, 2, 3], got %v", out)
	}
	if out[0] >= 0 {
		t.Fatalf("expected a fabricated leading border node, got %v", out)
	}
	n, found := s.GetNode(out[0])
	if !found {
		t.Fatalf("fabricated node %d not in store", out[0])
	}
	if n.Lat != 11 || n.Lon != 5 {
		t.Errorf("border crossing at (%v, %v), want (11, 5)", n.Lat, n.Lon)
	}
}
