// Package grid synthesizes the border way, graticule lines, and scale
// ruler that frame a rendered chart; it generates no tick marks and no
// tick captions. Every
// function returns plain osm.Object values — nodes and ways with
// fabricated IDs and synthetic tags such as "distance" and
// "ruler_style" — for the caller to insert into the store and draw
// like any other object.
package grid

import (
	"fmt"
	"math"

	"github.com/smrender/smrender/pkg/geo"
	"github.com/smrender/smrender/pkg/osm"
)

// Spec configures grid generation: graticule spacing in degrees,
// whether distances use nautical miles, and the ruler's section
// size/count.
type Spec struct {
	GraticuleStepDeg float64 // 0 disables the graticule
	RulerSectionKM   float64 // ruler's rsec
	RulerSections    int     // ruler's rcnt
	NauticalMiles    bool    // ruler's unit flag
}

// rulerHeightDeg is the ruler bar's height: 2 m of ground distance
// (0.002 km) expressed in degrees of latitude.
const rulerHeightDeg = 2.0 / 1000 / 1.852 / 60

// Generate synthesizes the full set of grid objects for frame: the
// page border way, the graticule (if enabled), and the scale ruler (if
// RulerSections > 0). IDs are drawn from ids.
func Generate(frame *geo.Frame, spec Spec, ids *osm.IDAllocator) []osm.Object {
	var out []osm.Object
	out = append(out, Border(frame, ids)...)
	if spec.GraticuleStepDeg > 0 {
		out = append(out, Graticule(frame, spec.GraticuleStepDeg, ids)...)
	}
	if spec.RulerSections > 0 {
		out = append(out, Ruler(frame, spec, ids)...)
	}
	return out
}

// Border returns a single closed way tracing the frame's bounding box,
// the chart border every other grid element is measured from.
func Border(frame *geo.Frame, ids *osm.IDAllocator) []osm.Object {
	bb := frame.BBox
	corners := []geo.LatLon{
		{Lat: bb.LL.Lat, Lon: bb.LL.Lon},
		{Lat: bb.LL.Lat, Lon: bb.RU.Lon},
		{Lat: bb.RU.Lat, Lon: bb.RU.Lon},
		{Lat: bb.RU.Lat, Lon: bb.LL.Lon},
	}

	var objs []osm.Object
	refs := make([]int64, 0, 5)
	var first int64
	for i, c := range corners {
		n := &osm.Node{Common: osm.Common{ID: ids.NewNodeID(), Visible: true}, Lat: c.Lat, Lon: c.Lon}
		objs = append(objs, n)
		refs = append(refs, n.ID)
		if i == 0 {
			first = n.ID
		}
	}
	refs = append(refs, first)

	w := &osm.Way{
		Common: osm.Common{ID: ids.NewWayID(), Visible: true, Tags: osm.TagList{{Key: "smrender:border", Value: "chart"}}},
		Refs:   refs,
	}
	return append(objs, w)
}

// Graticule returns one way per latitude and longitude line spaced
// stepDeg apart across the frame's bounding box, the coordinate grid
// overlay of parallels and meridians.
func Graticule(frame *geo.Frame, stepDeg float64, ids *osm.IDAllocator) []osm.Object {
	bb := frame.BBox
	var objs []osm.Object

	for lat := math.Ceil(bb.LL.Lat/stepDeg) * stepDeg; lat <= bb.RU.Lat; lat += stepDeg {
		n0 := &osm.Node{Common: osm.Common{ID: ids.NewNodeID(), Visible: true}, Lat: lat, Lon: bb.LL.Lon}
		n1 := &osm.Node{Common: osm.Common{ID: ids.NewNodeID(), Visible: true}, Lat: lat, Lon: bb.RU.Lon}
		w := &osm.Way{
			Common: osm.Common{ID: ids.NewWayID(), Visible: true, Tags: osm.TagList{{Key: "smrender:graticule", Value: "lat"}}},
			Refs:   []int64{n0.ID, n1.ID},
		}
		objs = append(objs, n0, n1, w)
	}

	for lon := math.Ceil(bb.LL.Lon/stepDeg) * stepDeg; lon <= bb.RU.Lon; lon += stepDeg {
		n0 := &osm.Node{Common: osm.Common{ID: ids.NewNodeID(), Visible: true}, Lat: bb.LL.Lat, Lon: lon}
		n1 := &osm.Node{Common: osm.Common{ID: ids.NewNodeID(), Visible: true}, Lat: bb.RU.Lat, Lon: lon}
		w := &osm.Way{
			Common: osm.Common{ID: ids.NewWayID(), Visible: true, Tags: osm.TagList{{Key: "smrender:graticule", Value: "lon"}}},
			Refs:   []int64{n0.ID, n1.ID},
		}
		objs = append(objs, n0, n1, w)
	}
	return objs
}

// Ruler returns the alternating-fill scale bar placed near the page's
// lower-left margin: each section is a 4-node rectangle tagged with
// its cumulative distance and an alternating "ruler_style" of
// "fill"/"transparent" for a barber-pole rendering.
func Ruler(frame *geo.Frame, spec Spec, ids *osm.IDAllocator) []osm.Object {
	bb := frame.BBox
	// Margin is a fixed fraction of the frame's span, keeping the bar
	// clear of the border.
	lat0 := bb.LL.Lat + frame.HC*0.05
	lon0 := bb.LL.Lon + frame.WC*0.05

	lonDiff := spec.RulerSectionKM / (60.0 * 1.852 * math.Cos(lat0*math.Pi/180))

	var objs []osm.Object
	bottomLeft := &osm.Node{Common: osm.Common{ID: ids.NewNodeID(), Visible: true}, Lat: lat0, Lon: lon0}
	topLeft := &osm.Node{
		Common: osm.Common{ID: ids.NewNodeID(), Visible: true, Tags: osm.TagList{{Key: "distance", Value: rulerLabel(0, spec)}}},
		Lat:    lat0 + rulerHeightDeg, Lon: lon0,
	}
	objs = append(objs, bottomLeft, topLeft)

	for i := 0; i < spec.RulerSections; i++ {
		n0, n3 := bottomLeft, topLeft

		bottomLeft = &osm.Node{Common: osm.Common{ID: ids.NewNodeID(), Visible: true}, Lat: n0.Lat, Lon: n0.Lon + lonDiff}
		topLeft = &osm.Node{
			Common: osm.Common{ID: ids.NewNodeID(), Visible: true, Tags: osm.TagList{{Key: "distance", Value: rulerLabel(i+1, spec)}}},
			Lat:    n3.Lat, Lon: n3.Lon + lonDiff,
		}
		objs = append(objs, bottomLeft, topLeft)

		style := "fill"
		if i&1 == 1 {
			style = "transparent"
		}
		w := &osm.Way{
			Common: osm.Common{ID: ids.NewWayID(), Visible: true, Tags: osm.TagList{{Key: "ruler_style", Value: style}}},
			Refs:   []int64{n0.ID, bottomLeft.ID, topLeft.ID, n3.ID, n0.ID},
		}
		objs = append(objs, w)
	}
	return objs
}

func rulerLabel(section int, spec Spec) string {
	if spec.RulerSectionKM < 1.0 {
		return fmt.Sprintf("%d m", int(float64(section)*spec.RulerSectionKM*1000))
	}
	if !spec.NauticalMiles {
		return fmt.Sprintf("%d km", int(float64(section)*spec.RulerSectionKM))
	}
	return fmt.Sprintf("%d nm", int(float64(section)*spec.RulerSectionKM/1.852))
}
