package action

import (
	"testing"

	"github.com/smrender/smrender/pkg/osm"
)

// mapLookup is a minimal NodeLookup backed by a plain map, enough to
// exercise the orientation actions without pulling in a full trie.Store.
type mapLookup map[int64]*osm.Node

func (m mapLookup) GetNode(id int64) (*osm.Node, bool) {
	n, ok := m[id]
	return n, ok
}

func square() (mapLookup, *osm.Way) {
	nodes := mapLookup{
		1: {Common: osm.Common{ID: 1, Visible: true}, Lat: 0, Lon: 0},
		2: {Common: osm.Common{ID: 2, Visible: true}, Lat: 0, Lon: 1},
		3: {Common: osm.Common{ID: 3, Visible: true}, Lat: 1, Lon: 1},
		4: {Common: osm.Common{ID: 4, Visible: true}, Lat: 1, Lon: 0},
	}
	way := &osm.Way{
		Common: osm.Common{ID: 100, Visible: true},
		Refs:   []int64{1, 2, 3, 4, 1},
	}
	return nodes, way
}

func TestPolyAreaWritesAreaAndCentroid(t *testing.T) {
	nodes, way := square()
	a := PolyArea{Store: nodes, AreaKey: "area", CentroidKey: "centroid"}
	if _, err := a.Main(nil, way); err != nil {
		t.Fatalf("Main: %v", err)
	}
	if v, ok := way.GetTags().Get("area"); !ok || v == "" {
		t.Errorf("expected area tag to be set, got %q (ok=%v)", v, ok)
	}
	if v, ok := way.GetTags().Get("centroid"); !ok || v == "" {
		t.Errorf("expected centroid tag to be set, got %q (ok=%v)", v, ok)
	}
}

func TestPolyLenSumsGreatCircleDistance(t *testing.T) {
	nodes, way := square()
	p := PolyLen{Store: nodes, LengthKey: "length"}
	if _, err := p.Main(nil, way); err != nil {
		t.Fatalf("Main: %v", err)
	}
	v, ok := way.GetTags().Get("length")
	if !ok || v == "" || v == "0" {
		t.Errorf("expected a non-zero length tag, got %q (ok=%v)", v, ok)
	}
}

func TestPolyLenIgnoresNonWayObjects(t *testing.T) {
	nodes, _ := square()
	p := PolyLen{Store: nodes, LengthKey: "length"}
	n := &osm.Node{Common: osm.Common{ID: 1, Visible: true}}
	if _, err := p.Main(nil, n); err != nil {
		t.Fatalf("Main: %v", err)
	}
	if v, ok := n.GetTags().Get("length"); ok {
		t.Errorf("expected no length tag on a node, got %q", v)
	}
}

func TestSetCWReversesCCWWay(t *testing.T) {
	nodes, way := square() // 1,2,3,4 around the unit square is CCW in (lon,lat)
	orig := append([]int64(nil), way.Refs...)

	s := SetCW{Store: nodes}
	if _, err := s.Main(nil, way); err != nil {
		t.Fatalf("Main: %v", err)
	}
	if way.Refs[0] != orig[0] || way.Refs[1] == orig[1] {
		t.Errorf("expected SetCW to reverse a CCW ring in place, got %v from %v", way.Refs, orig)
	}

	// Applying SetCW again to an already-CW way must be a no-op.
	afterFirst := append([]int64(nil), way.Refs...)
	if _, err := s.Main(nil, way); err != nil {
		t.Fatalf("Main: %v", err)
	}
	for i := range afterFirst {
		if way.Refs[i] != afterFirst[i] {
			t.Errorf("expected SetCW to be idempotent once already CW, got %v from %v", way.Refs, afterFirst)
			break
		}
	}
}
