package action

import (
	"math"

	"github.com/smrender/smrender/pkg/geo"
	"github.com/smrender/smrender/pkg/osm"
	"github.com/smrender/smrender/pkg/rule"
	"github.com/smrender/smrender/pkg/trie"
)

// OpenWayTag marks a way cat_poly produced but could not close. It is
// only ever written when IgnIncomplete is set; without that flag an
// unclosable chain is discarded.
const OpenWayTag = "smrender:open"

// CatPoly gathers every open way matched across a pass, chains them
// into closed polygons by shared endpoint node IDs, and closes any
// chain that still has two open ends by stitching it around the page
// border. The result is a new way per chain, with the source fragments
// left in the store but marked invisible so they no longer render on
// their own.
//
// Closing happens in stages per chain: a chain whose ends already
// coincide is kept as-is; a chain whose end gap is below
// CloseTolerance is snapped shut; anything else has its off-page tail
// refs trimmed back to fabricated border-crossing nodes and is then
// routed around the frame border, inserting the border corners that
// lie between its two ends. Border classification is by nearest box
// edge with the four corners walked clockwise; this closes
// coastline-style rings against a rectangular frame without carrying a
// finer per-edge region partition, which only matters for rotated or
// polygonal page windows.
type CatPoly struct {
	rule.BaseAction
	Store *trie.Store
	Frame *geo.Frame

	// CloseTolerance is the max gap (degrees of arc) between a chain's
	// two ends before they're snapped together instead of routed
	// around the border.
	CloseTolerance float64

	// NoCorner suppresses corner-node insertion when stitching along
	// the border: the two ends are connected directly.
	NoCorner bool

	// IgnIncomplete keeps chains that cannot be closed, emitting them
	// as open ways tagged OpenWayTag instead of dropping them.
	IgnIncomplete bool

	ways []*osm.Way
}

func (CatPoly) Name() string { return "cat_poly" }

func (cp *CatPoly) Main(rt *rule.Rule, o osm.Object) (rule.Result, error) {
	w, ok := o.(*osm.Way)
	if !ok || w.Closed() || len(w.Refs) < 2 {
		return rule.OK, nil
	}
	cp.ways = append(cp.ways, w)
	return rule.OK, nil
}

func (cp *CatPoly) Fini(rt *rule.Rule) (rule.Result, error) {
	chains := chainWays(cp.ways)
	tol := cp.CloseTolerance
	if tol <= 0 {
		tol = 0.0005
	}

	for _, chain := range chains {
		refs := chain.refs
		if len(refs) < 2 {
			continue
		}

		open := false
		if refs[0] != refs[len(refs)-1] {
			var ok bool
			refs, open, ok = cp.closeChain(refs, tol)
			if !ok {
				continue
			}
		}

		tags := mergeChainTags(rt, chain.parts)
		if open {
			tags = tags.Set(OpenWayTag, "yes")
		}
		newWay := &osm.Way{
			Common: osm.Common{ID: cp.Store.IDs.NewWayID(), Visible: true, Tags: tags},
			Refs:   refs,
		}
		cp.Store.PutWay(newWay)
		for _, part := range chain.parts {
			part.SetVisible(false)
		}
	}

	cp.ways = nil
	return rule.OK, nil
}

// closeChain turns an open ref sequence into a closed one: snap the
// ends together if they are within tol, otherwise trim off-page ends
// and route around the frame border. Returns the resulting refs, a
// flag marking a chain kept open under IgnIncomplete, and whether the
// chain should be emitted at all.
func (cp *CatPoly) closeChain(refs []int64, tol float64) ([]int64, bool, bool) {
	first, firstOK := cp.Store.GetNode(refs[0])
	last, lastOK := cp.Store.GetNode(refs[len(refs)-1])
	if !firstOK || !lastOK {
		return nil, false, false
	}

	gap := geo.CoordDiff(
		geo.LatLon{Lat: first.Lat, Lon: first.Lon},
		geo.LatLon{Lat: last.Lat, Lon: last.Lon},
	).Dist
	if gap <= tol {
		return append(refs, refs[0]), false, true
	}

	if cp.Frame == nil {
		if cp.IgnIncomplete {
			return refs, true, true
		}
		return nil, false, false
	}

	trimmed, ok := cp.trimOffPage(refs)
	if !ok {
		// Entirely off-page: nothing worth emitting.
		return nil, false, false
	}
	refs = trimmed

	stitched, ok := cp.stitchBorder(refs)
	if ok {
		return stitched, false, true
	}
	if cp.IgnIncomplete {
		return refs, true, true
	}
	return nil, false, false
}

// wayChain is a run of ways joined end-to-end into one ref sequence.
type wayChain struct {
	refs  []int64
	parts []*osm.Way
}

// chainWays links open ways that share an endpoint node ID into
// maximal chains. Each input way is consumed by at most one chain.
func chainWays(ways []*osm.Way) []*wayChain {
	used := make([]bool, len(ways))
	var chains []*wayChain

	for i := range ways {
		if used[i] {
			continue
		}
		used[i] = true
		chain := &wayChain{
			refs:  append([]int64(nil), ways[i].Refs...),
			parts: []*osm.Way{ways[i]},
		}

		extended := true
		for extended {
			extended = false
			for j := range ways {
				if used[j] {
					continue
				}
				if tryExtend(chain, ways[j]) {
					used[j] = true
					chain.parts = append(chain.parts, ways[j])
					extended = true
				}
			}
		}
		chains = append(chains, chain)
	}
	return chains
}

// tryExtend splices w onto either end of chain if one of w's endpoints
// matches one of chain's endpoints, reversing w's refs as needed so the
// shared node sits adjacent without duplication.
func tryExtend(chain *wayChain, w *osm.Way) bool {
	head, tail := chain.refs[0], chain.refs[len(chain.refs)-1]
	wFirst, wLast := w.Refs[0], w.Refs[len(w.Refs)-1]

	switch {
	case tail == wFirst:
		chain.refs = append(chain.refs, w.Refs[1:]...)
	case tail == wLast:
		chain.refs = append(chain.refs, reversedRefs(w.Refs)[1:]...)
	case head == wLast:
		chain.refs = append(append([]int64(nil), w.Refs[:len(w.Refs)-1]...), chain.refs...)
	case head == wFirst:
		chain.refs = append(reversedRefs(w.Refs)[:len(w.Refs)-1], chain.refs...)
	default:
		return false
	}
	return true
}

func reversedRefs(refs []int64) []int64 {
	out := make([]int64, len(refs))
	for i, r := range refs {
		out[len(refs)-1-i] = r
	}
	return out
}

// mergeChainTags joins tags from every fragment in a chain (first
// non-empty value per key wins) plus the rule's own parameters, so a
// stitched coastline keeps its natural=coastline tagging along with
// any rule-level additions.
func mergeChainTags(rt *rule.Rule, parts []*osm.Way) osm.TagList {
	var out osm.TagList
	for k, v := range rt.Params {
		if k == "" {
			continue
		}
		out = out.Set(k, v)
	}
	for _, p := range parts {
		for _, t := range p.GetTags() {
			if !out.Has(t.Key) {
				out = out.Set(t.Key, t.Value)
			}
		}
	}
	return out
}

// trimOffPage drops leading and trailing refs whose nodes fall outside
// the frame's bounding box, replacing the first crossing on each side
// with a fabricated node on the border where the segment exits. A ref
// whose node cannot be resolved is treated as off-page. Returns false
// if no ref at all lies on the page.
func (cp *CatPoly) trimOffPage(refs []int64) ([]int64, bool) {
	bb := cp.Frame.BBox

	onPage := func(ref int64) bool {
		n, ok := cp.Store.GetNode(ref)
		return ok && bb.Contains(geo.LatLon{Lat: n.Lat, Lon: n.Lon})
	}

	lo := -1
	for i := range refs {
		if onPage(refs[i]) {
			lo = i
			break
		}
	}
	if lo < 0 {
		return nil, false
	}
	hi := lo
	for i := len(refs) - 1; i > lo; i-- {
		if onPage(refs[i]) {
			hi = i
			break
		}
	}

	out := append([]int64(nil), refs[lo:hi+1]...)

	if lo > 0 {
		if id, ok := cp.borderCrossing(refs[lo-1], refs[lo]); ok {
			out = append([]int64{id}, out...)
		}
	}
	if hi < len(refs)-1 {
		if id, ok := cp.borderCrossing(refs[hi+1], refs[hi]); ok {
			out = append(out, id)
		}
	}
	return out, true
}

// borderCrossing fabricates a node where the segment from the off-page
// node to the on-page node crosses the frame border, and returns its
// ID.
func (cp *CatPoly) borderCrossing(outRef, inRef int64) (int64, bool) {
	a, okA := cp.Store.GetNode(outRef)
	b, okB := cp.Store.GetNode(inRef)
	if !okA || !okB {
		return 0, false
	}
	bb := cp.Frame.BBox

	// Walk from the inside point toward the outside one, clipping
	// against each boundary plane and keeping the nearest crossing.
	t := 1.0
	dLat := a.Lat - b.Lat
	dLon := a.Lon - b.Lon
	clip := func(num, den float64) {
		if den != 0 {
			if c := num / den; c >= 0 && c < t {
				t = c
			}
		}
	}
	clip(bb.RU.Lat-b.Lat, dLat)
	clip(bb.LL.Lat-b.Lat, dLat)
	clip(bb.RU.Lon-b.Lon, dLon)
	clip(bb.LL.Lon-b.Lon, dLon)

	n := &osm.Node{
		Common: osm.Common{ID: cp.Store.IDs.NewNodeID(), Visible: true},
		Lat:    b.Lat + t*dLat,
		Lon:    b.Lon + t*dLon,
	}
	cp.Store.PutNode(n)
	return n.ID, true
}

// stitchBorder closes a chain whose ends lie on (or near) the page
// border by walking the border clockwise from the chain's last node
// back to its first, inserting the frame corners passed along the way
// (unless NoCorner is set), then repeating the first ref to close.
func (cp *CatPoly) stitchBorder(refs []int64) ([]int64, bool) {
	first, firstOK := cp.Store.GetNode(refs[0])
	last, lastOK := cp.Store.GetNode(refs[len(refs)-1])
	if !firstOK || !lastOK {
		return nil, false
	}

	bb := cp.Frame.BBox
	corners := []geo.LatLon{
		{Lat: bb.RU.Lat, Lon: bb.LL.Lon}, // top-left
		{Lat: bb.RU.Lat, Lon: bb.RU.Lon}, // top-right
		{Lat: bb.LL.Lat, Lon: bb.RU.Lon}, // bottom-right
		{Lat: bb.LL.Lat, Lon: bb.LL.Lon}, // bottom-left
	}

	out := append([]int64(nil), refs...)
	if !cp.NoCorner {
		fromEdge := edgeIndex(bb, geo.LatLon{Lat: last.Lat, Lon: last.Lon})
		toEdge := edgeIndex(bb, geo.LatLon{Lat: first.Lat, Lon: first.Lon})
		for e := fromEdge; e != toEdge; e = (e + 1) % 4 {
			c := corners[(e+1)%4]
			id := cp.Store.IDs.NewNodeID()
			cp.Store.PutNode(&osm.Node{Common: osm.Common{ID: id, Visible: true}, Lat: c.Lat, Lon: c.Lon})
			out = append(out, id)
		}
	}
	out = append(out, refs[0])
	return out, true
}

// edgeIndex classifies a near-border point into one of the four page
// edges (0=top, 1=right, 2=bottom, 3=left) by which bbox boundary it
// is closest to.
func edgeIndex(bb geo.BBox, p geo.LatLon) int {
	dists := [4]float64{
		math.Abs(bb.RU.Lat - p.Lat), // top
		math.Abs(bb.RU.Lon - p.Lon), // right
		math.Abs(p.Lat - bb.LL.Lat), // bottom
		math.Abs(p.Lon - bb.LL.Lon), // left
	}
	idx := 0
	for i := 1; i < 4; i++ {
		if dists[i] < dists[idx] {
			idx = i
		}
	}
	return idx
}
