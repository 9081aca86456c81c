package action

import (
	"github.com/smrender/smrender/pkg/geo"
	"github.com/smrender/smrender/pkg/osm"
	"github.com/smrender/smrender/pkg/rule"
	"github.com/smrender/smrender/pkg/trie"
)

// Bearings annotates every interior node of a way with the bearing to
// the next node, the course deviation from the previous leg, and the
// "peak direction" bisector. It writes smrender:bearing,
// smrender:coursedev, and smrender:peakdir tags on each interior node.
type Bearings struct {
	rule.BaseAction
	Store *trie.Store
}

func (Bearings) Name() string { return "bearings" }

func (b Bearings) Main(rt *rule.Rule, o osm.Object) (rule.Result, error) {
	w, ok := o.(*osm.Way)
	if !ok {
		return rule.OK, nil
	}

	var pts []*osm.Node
	for _, ref := range w.Refs {
		if n, found := b.Store.GetNode(ref); found {
			pts = append(pts, n)
		}
	}
	if len(pts) < 3 {
		return rule.OK, nil
	}

	for i := 1; i < len(pts)-1; i++ {
		prev, cur, next := pts[i-1], pts[i], pts[i+1]
		pc0 := geo.CoordDiff(geo.LatLon{Lat: prev.Lat, Lon: prev.Lon}, geo.LatLon{Lat: cur.Lat, Lon: cur.Lon})
		pc1 := geo.CoordDiff(geo.LatLon{Lat: cur.Lat, Lon: cur.Lon}, geo.LatLon{Lat: next.Lat, Lon: next.Lon})

		cd := courseDiff(pc0.Bearing, pc1.Bearing)
		pk := pc0.Bearing - (180-cd)/2
		if cd < 0 {
			pk += 180
		}
		pk = fmod360(pk)

		tags := cur.GetTags()
		tags = tags.Set("smrender:bearing", formatFloat(pc1.Bearing))
		tags = tags.Set("smrender:coursedev", formatFloat(cd))
		tags = tags.Set("smrender:peakdir", formatFloat(pk))
		cur.SetTags(tags)
	}
	return rule.OK, nil
}

// courseDiff returns b-a normalized into [-180, 180].
func courseDiff(a, b float64) float64 {
	y := b - a
	switch {
	case y > 180:
		y -= 360
	case y < -180:
		y += 360
	}
	return y
}

func fmod360(a float64) float64 {
	r := a
	for r < 0 {
		r += 360
	}
	for r >= 360 {
		r -= 360
	}
	return r
}
