package action

import (
	"math"

	"github.com/smrender/smrender/pkg/osm"
	"github.com/smrender/smrender/pkg/rule"
	"github.com/smrender/smrender/pkg/trie"
)

// ShapeSubtype selects among the shape variants the "subtype"
// parameter names.
type ShapeSubtype int

const (
	ShapePlain ShapeSubtype = iota
	// ShapeSectored closes the ring through the center node instead of
	// back to the first generated point, producing a pie-slice outline.
	ShapeSectored
	// ShapeStared emits one two-node spoke way per generated point
	// instead of a single ring way.
	ShapeStared
)

// Shape generates a regular polygon, circle approximation, or star
// around a matched node. Count is the number of points (3 for
// "triangle", 4 for "square", or an explicit node count). Radius/R2
// are in mm, converted to degrees of latitude through the
// nautical-mile chain. Start/End (degrees, NaN meaning unset) restrict
// generation to an angular sector.
type Shape struct {
	rule.BaseAction
	Store *trie.Store

	Count    int
	Weight   float64 // 1.0 means a circle; != 1.0 distorts to an ellipse
	Phase    float64 // degrees
	Angle    float64 // degrees, rotates the whole shape
	Radius   float64 // mm
	R2       float64 // mm, inner radius for stared spokes; 0 uses the center node
	Start    float64 // degrees, NaN if unset
	End      float64 // degrees, NaN if unset
	Subtype  ShapeSubtype
	CopyTags bool
}

func (Shape) Name() string { return "shape" }

func (s Shape) Main(rt *rule.Rule, o osm.Object) (rule.Result, error) {
	switch obj := o.(type) {
	case *osm.Node:
		s.shapeNode(obj)
	case *osm.Way:
		for _, ref := range obj.Refs {
			if n, ok := s.Store.GetNode(ref); ok {
				s.shapeNode(n)
			}
		}
	}
	return rule.OK, nil
}

func (s Shape) shapeNode(n *osm.Node) {
	// A "circle" count is resolved by the caller from the page DPI and
	// the rendered circumference; Shape itself only guarantees the
	// minimum any regular polygon needs.
	count := s.Count
	if count < 3 {
		count = 3
	}

	weight := s.Weight
	if weight == 0 {
		weight = 1
	}
	phase := s.Phase * math.Pi / 180

	haveSector := !math.IsNaN(s.Start) || !math.IsNaN(s.End)
	start := 0.0
	if !math.IsNaN(s.Start) {
		start = s.Start * math.Pi / 180
	}
	end := 2 * math.Pi
	if !math.IsNaN(s.End) {
		end = s.End * math.Pi / 180
	}
	start = fmodPositive(start+math.Pi/2, 2*math.Pi)
	end = fmodPositive(end+math.Pi/2, 2*math.Pi)

	radius := mmToDegreesLat(s.Radius)
	angle := math.Pi/2 + s.Angle*math.Pi/180
	angleStep := 2 * math.Pi / float64(count)

	a := radius
	b := radius * weight
	latCos := math.Cos(n.Lat * math.Pi / 180)

	var ringRefs []int64
	var firstID int64
	haveFirst := false

	for i := 0; i < count; i++ {
		theta := angleStep*float64(i) - phase
		if haveSector && !math.IsNaN(s.Start) && start > theta {
			continue
		}
		if haveSector && !math.IsNaN(s.End) && theta > end {
			break
		}

		dLat := a*math.Cos(theta)*math.Cos(-angle) - b*math.Sin(theta)*math.Sin(-angle)
		dLon := (a*math.Cos(theta)*math.Sin(-angle) + b*math.Sin(theta)*math.Cos(-angle))
		if latCos != 0 {
			dLon /= latCos
		}

		pt := &osm.Node{
			Common: osm.Common{ID: s.Store.IDs.NewNodeID(), Visible: true},
			Lat:    n.Lat + dLat,
			Lon:    n.Lon + dLon,
		}
		if s.CopyTags {
			pt.Tags = n.Tags.Clone()
		}
		s.Store.PutNode(pt)

		if !haveFirst {
			firstID = pt.ID
			haveFirst = true
		}
		ringRefs = append(ringRefs, pt.ID)

		if s.Subtype == ShapeStared {
			spokeStart := n.ID
			if s.R2 > 0 {
				r2 := mmToDegreesLat(s.R2)
				mLat := n.Lat + r2*math.Cos(theta)*math.Cos(-angle) - r2*weight*math.Sin(theta)*math.Sin(-angle)
				mLon := n.Lon + (r2*math.Cos(theta)*math.Sin(-angle)+r2*weight*math.Sin(theta)*math.Cos(-angle))/safeCos(latCos)
				m := &osm.Node{Common: osm.Common{ID: s.Store.IDs.NewNodeID(), Visible: true}, Lat: mLat, Lon: mLon}
				s.Store.PutNode(m)
				spokeStart = m.ID
			}
			spoke := &osm.Way{
				Common: osm.Common{ID: s.Store.IDs.NewWayID(), Visible: true, Tags: cloneIfRequested(s.CopyTags, n.Tags)},
				Refs:   []int64{spokeStart, pt.ID},
			}
			s.Store.PutWay(spoke)
		}
	}

	if len(ringRefs) == 0 || s.Subtype == ShapeStared {
		return
	}

	if !haveSector {
		ringRefs = append(ringRefs, firstID)
	} else if s.Subtype == ShapeSectored {
		ringRefs = append(ringRefs, n.ID, firstID)
	}

	w := &osm.Way{
		Common: osm.Common{ID: s.Store.IDs.NewWayID(), Visible: true, Tags: cloneIfRequested(s.CopyTags, n.Tags)},
		Refs:   ringRefs,
	}
	s.Store.PutWay(w)
}

func cloneIfRequested(copyTags bool, tags osm.TagList) osm.TagList {
	if !copyTags {
		return nil
	}
	return tags.Clone()
}

func safeCos(c float64) float64 {
	if c == 0 {
		return 1
	}
	return c
}

func fmodPositive(a, m float64) float64 {
	r := math.Mod(a, m)
	if r < 0 {
		r += m
	}
	return r
}
