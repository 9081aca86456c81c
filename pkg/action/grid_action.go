package action

import (
	"github.com/smrender/smrender/pkg/geo"
	"github.com/smrender/smrender/pkg/grid"
	"github.com/smrender/smrender/pkg/osm"
	"github.com/smrender/smrender/pkg/rule"
	"github.com/smrender/smrender/pkg/trie"
)

// Grid is the run-once action wrapper around pkg/grid.Generate: it runs
// in Ini (before the pass's object dispatch, since the grid doesn't
// depend on any matched object) and inserts the synthesized border,
// graticule, and ruler objects directly into the store.
type Grid struct {
	rule.BaseAction
	Store *trie.Store
	Frame *geo.Frame
	Spec  grid.Spec
}

func (Grid) Name() string { return "grid" }

func (g Grid) Ini(rt *rule.Rule) (rule.Result, error) {
	for _, obj := range grid.Generate(g.Frame, g.Spec, g.Store.IDs) {
		switch o := obj.(type) {
		case *osm.Node:
			g.Store.PutNode(o)
		case *osm.Way:
			g.Store.PutWay(o)
		}
	}
	return rule.OK, nil
}

// Main is a no-op: grid generation happens once in Ini, not per matched
// object.
func (Grid) Main(rt *rule.Rule, o osm.Object) (rule.Result, error) { return rule.OK, nil }
