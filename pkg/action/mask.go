package action

import (
	"github.com/smrender/smrender/pkg/geo"
	"github.com/smrender/smrender/pkg/osm"
	"github.com/smrender/smrender/pkg/rule"
)

// defaultMaskDistance is 10 arc minutes, expressed in degrees.
const defaultMaskDistance = 10.0 / 60

// Mask declutters a set of matched nodes by disabling any node that
// falls within MinDist (degrees of arc) of another node in the same
// matched set, keeping the first of each close pair. It accumulates
// matches across Main calls and does the actual decluttering in Fini,
// since the decision for any one node depends on every other matched
// node in the pass.
type Mask struct {
	rule.BaseAction
	MinDist float64 // degrees; zero means defaultMaskDistance

	nodes []*osm.Node
}

func (Mask) Name() string { return "mask" }

func (m *Mask) Main(rt *rule.Rule, o osm.Object) (rule.Result, error) {
	n, ok := o.(*osm.Node)
	if !ok {
		return rule.OK, nil
	}
	m.nodes = append(m.nodes, n)
	return rule.OK, nil
}

func (m *Mask) Fini(rt *rule.Rule) (rule.Result, error) {
	minDist := m.MinDist
	if minDist <= 0 {
		minDist = defaultMaskDistance
	}

	masked := make([]bool, len(m.nodes))
	for i := range m.nodes {
		if masked[i] {
			continue
		}
		for j := i + 1; j < len(m.nodes); j++ {
			if masked[j] {
				continue
			}
			pc := geo.CoordDiff(
				geo.LatLon{Lat: m.nodes[i].Lat, Lon: m.nodes[i].Lon},
				geo.LatLon{Lat: m.nodes[j].Lat, Lon: m.nodes[j].Lon},
			)
			if pc.Dist < minDist {
				masked[j] = true
			}
		}
	}
	for i, n := range m.nodes {
		if masked[i] {
			n.SetVisible(false)
		}
	}
	m.nodes = nil
	return rule.OK, nil
}
