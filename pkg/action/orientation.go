package action

import (
	"github.com/smrender/smrender/pkg/geo"
	"github.com/smrender/smrender/pkg/osm"
	"github.com/smrender/smrender/pkg/rule"
)

// PolyArea computes the signed area and centroid of a closed way's
// node ring using the shoelace (Gauss) formula and writes both onto
// the way as tags. The sign of the area tells CW (negative) from CCW
// (positive) orientation in a lat/lon plane where lat increases
// northward; SetCW/SetCCW below consume the same sign to decide
// whether to reverse.
type PolyArea struct {
	rule.BaseAction
	Store NodeLookup

	AreaKey     string
	CentroidKey string
}

func (PolyArea) Name() string { return "poly_area" }

func (p PolyArea) Main(rt *rule.Rule, o osm.Object) (rule.Result, error) {
	w, ok := o.(*osm.Way)
	if !ok {
		return rule.OK, nil
	}
	area, centroid, ok := polyAreaCentroid(p.Store, w)
	if !ok {
		return rule.OK, nil
	}

	areaKey := p.AreaKey
	if areaKey == "" {
		areaKey = "smrender:area"
	}
	centroidKey := p.CentroidKey
	if centroidKey == "" {
		centroidKey = "smrender:centroid"
	}

	tags := w.GetTags()
	tags = tags.Set(areaKey, formatFloat(area))
	tags = tags.Set(centroidKey, formatLatLon(centroid))
	w.SetTags(tags)
	return rule.OK, nil
}

// NodeLookup is the minimal interface action code needs to resolve a
// way's node refs to coordinates; *trie.Store satisfies it via GetNode.
type NodeLookup interface {
	GetNode(id int64) (*osm.Node, bool)
}

// polyAreaCentroid implements the shoelace formula over a way's
// resolvable ring. Unresolvable refs are skipped, tolerating holes in
// partially-loaded data; ok is false if fewer than 3 points resolve.
func polyAreaCentroid(store NodeLookup, w *osm.Way) (area float64, centroid geo.LatLon, ok bool) {
	var pts []geo.LatLon
	for _, ref := range w.Refs {
		if n, found := store.GetNode(ref); found {
			pts = append(pts, geo.LatLon{Lat: n.Lat, Lon: n.Lon})
		}
	}
	if len(pts) < 3 {
		return 0, geo.LatLon{}, false
	}

	var a, cx, cy float64
	for i := range pts {
		j := (i + 1) % len(pts)
		cross := pts[i].Lon*pts[j].Lat - pts[j].Lon*pts[i].Lat
		a += cross
		cx += (pts[i].Lon + pts[j].Lon) * cross
		cy += (pts[i].Lat + pts[j].Lat) * cross
	}
	a /= 2
	if a == 0 {
		return 0, pts[0], true
	}
	cx /= 6 * a
	cy /= 6 * a
	return a, geo.LatLon{Lat: cy, Lon: cx}, true
}

// SetCW reverses a way's ref order if its shoelace area indicates
// counter-clockwise winding, so it ends up clockwise; SetCCW is the
// mirror.
type SetCW struct {
	rule.BaseAction
	Store NodeLookup
}

func (SetCW) Name() string { return "set_cw" }

func (s SetCW) Main(rt *rule.Rule, o osm.Object) (rule.Result, error) {
	return setWinding(s.Store, o, false)
}

type SetCCW struct {
	rule.BaseAction
	Store NodeLookup
}

func (SetCCW) Name() string { return "set_ccw" }

func (s SetCCW) Main(rt *rule.Rule, o osm.Object) (rule.Result, error) {
	return setWinding(s.Store, o, true)
}

func setWinding(store NodeLookup, o osm.Object, wantCCW bool) (rule.Result, error) {
	w, ok := o.(*osm.Way)
	if !ok || !w.Closed() {
		return rule.OK, nil
	}
	area, _, ok := polyAreaCentroid(store, w)
	if !ok {
		return rule.OK, nil
	}
	isCCW := area > 0
	if isCCW != wantCCW {
		reverseWay(w)
	}
	return rule.OK, nil
}

// reverseWay reverses a way's ref order in place.
func reverseWay(w *osm.Way) {
	for i, j := 0, len(w.Refs)-1; i < j; i, j = i+1, j-1 {
		w.Refs[i], w.Refs[j] = w.Refs[j], w.Refs[i]
	}
}

// PolyLen sums the great-circle distance in nautical miles along a
// way's resolvable node sequence and writes it onto the way as a tag.
type PolyLen struct {
	rule.BaseAction
	Store NodeLookup

	LengthKey string
}

func (PolyLen) Name() string { return "poly_len" }

func (p PolyLen) Main(rt *rule.Rule, o osm.Object) (rule.Result, error) {
	w, ok := o.(*osm.Way)
	if !ok {
		return rule.OK, nil
	}

	var total float64
	var prev geo.LatLon
	haveVal := false
	for _, ref := range w.Refs {
		n, found := p.Store.GetNode(ref)
		if !found {
			continue
		}
		cur := geo.LatLon{Lat: n.Lat, Lon: n.Lon}
		if haveVal {
			total += geo.CoordDiff(prev, cur).Dist * 60 // degrees of arc -> nautical miles
		}
		prev = cur
		haveVal = true
	}

	key := p.LengthKey
	if key == "" {
		key = "smrender:length"
	}
	tags := w.GetTags()
	tags = tags.Set(key, formatFloat(total))
	w.SetTags(tags)
	return rule.OK, nil
}
