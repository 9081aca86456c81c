package action

import (
	"github.com/smrender/smrender/pkg/osm"
	"github.com/smrender/smrender/pkg/rule"
	"github.com/smrender/smrender/pkg/trie"
)

// Zeroway emits a synthetic zero-length way between a shared node N
// and a fresh node at N's coordinates, and reroutes all but one of the
// ways referencing N onto the new node. This lets a renderer draw
// adjacent sections that meet at N with independent tags.
//
// Ways are found through the reverse-index parent list of N and
// matched strictly by node ID, so duplicate node IDs inside one way's
// ref list reroute every occurrence consistently.
type Zeroway struct {
	rule.BaseAction
	Store *trie.Store
}

func (Zeroway) Name() string { return "zeroway" }

func (z Zeroway) Ini(rt *rule.Rule) (rule.Result, error) {
	z.Store.RequestIndex()
	return rule.OK, nil
}

func (z Zeroway) Main(rt *rule.Rule, o osm.Object) (rule.Result, error) {
	n, ok := o.(*osm.Node)
	if !ok {
		return rule.OK, nil
	}
	parents := z.Store.ReverseParents(n.ID)
	var ways []*osm.Way
	for _, p := range parents {
		if w, ok := p.(*osm.Way); ok {
			ways = append(ways, w)
		}
	}
	if len(ways) < 2 {
		return rule.OK, nil
	}

	newNodeID := z.Store.IDs.NewNodeID()
	newNode := &osm.Node{
		Common: osm.Common{ID: newNodeID, Visible: true, Tags: n.Tags.Clone()},
		Lat:    n.Lat,
		Lon:    n.Lon,
	}
	z.Store.PutNode(newNode)

	zeroWayID := z.Store.IDs.NewWayID()
	zeroWay := &osm.Way{
		Common: osm.Common{ID: zeroWayID, Visible: true},
		Refs:   []int64{n.ID, newNodeID},
	}
	z.Store.PutWay(zeroWay)
	z.Store.AddRevPtr(n.ID, zeroWay)
	z.Store.AddRevPtr(newNodeID, zeroWay)

	// Leave the first way referencing the original node; reroute the
	// rest onto the fresh node.
	for _, w := range ways[1:] {
		rerouted := false
		for i, r := range w.Refs {
			if r == n.ID {
				w.Refs[i] = newNodeID
				rerouted = true
			}
		}
		if !rerouted {
			continue
		}
		z.Store.RemoveRevPtr(n.ID, w)
		z.Store.AddRevPtr(newNodeID, w)
	}

	return rule.OK, nil
}
