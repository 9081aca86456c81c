package action

import (
	"math"

	"github.com/smrender/smrender/pkg/geo"
	"github.com/smrender/smrender/pkg/osm"
	"github.com/smrender/smrender/pkg/rule"
	"github.com/smrender/smrender/pkg/trie"
)

// defaultEqdistDistance is 2 arc minutes (2 nautical miles), expressed
// in degrees.
const defaultEqdistDistance = 2.0 / 60

// InsEqdist walks a way and inserts new nodes so that no two
// consecutive refs are farther apart than Distance (degrees of arc),
// tagging each inserted node with the cumulative "distance" (arc
// minutes from the way's start) and the "bearing" of the leg it
// closed. Any sub-distance left over when a segment is too short to
// need a split carries forward into the next segment.
type InsEqdist struct {
	rule.BaseAction
	Store    *trie.Store
	Distance float64 // degrees; zero means defaultEqdistDistance
}

func (InsEqdist) Name() string { return "ins_eqdist" }

func (ie InsEqdist) Main(rt *rule.Rule, o osm.Object) (rule.Result, error) {
	w, ok := o.(*osm.Way)
	if !ok {
		return rule.OK, nil
	}
	dist := ie.Distance
	if dist <= 0 {
		dist = defaultEqdistDistance
	}
	ie.insEqdist(w, dist)
	return rule.OK, nil
}

func (ie InsEqdist) insEqdist(w *osm.Way, dist float64) {
	i := 0
	var s *osm.Node
	for ; i < len(w.Refs)-1; i++ {
		if n, ok := ie.Store.GetNode(w.Refs[i]); ok {
			s = n
			break
		}
	}
	if s == nil {
		return
	}

	sLat, sLon := s.Lat, s.Lon
	ddist := dist
	pcnt := 0

	for i++; i < len(w.Refs); i++ {
		d, ok := ie.Store.GetNode(w.Refs[i])
		if !ok {
			continue
		}

		pc := geo.CoordDiff(geo.LatLon{Lat: sLat, Lon: sLon}, geo.LatLon{Lat: d.Lat, Lon: d.Lon})
		if pc.Dist > ddist {
			pcnt++
			bearingRad := pc.Bearing * math.Pi / 180
			newLat := sLat + ddist*math.Cos(bearingRad)
			newLon := sLon + ddist*math.Sin(bearingRad)/math.Cos((newLat+sLat)/2*math.Pi/180)

			n := &osm.Node{
				Common: osm.Common{ID: ie.Store.IDs.NewNodeID(), Visible: true, Tags: w.Tags.Clone()},
				Lat:    newLat,
				Lon:    newLon,
			}
			n.Tags = n.Tags.Set("distance", formatFloat(dist*float64(pcnt)*60))
			n.Tags = n.Tags.Set("bearing", formatFloat(pc.Bearing))
			ie.Store.PutNode(n)

			w.Refs = append(w.Refs, 0)
			copy(w.Refs[i+1:], w.Refs[i:])
			w.Refs[i] = n.ID
			ie.Store.AddRevPtr(n.ID, w)

			sLat, sLon = n.Lat, n.Lon
			ddist = dist
			// Loop increment revisits the same original endpoint (now
			// shifted to i+1) with the new inserted node as the start.
		} else {
			ddist -= pc.Dist
			sLat, sLon = d.Lat, d.Lon
		}
	}
}
