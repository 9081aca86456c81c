package action

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/smrender/smrender/pkg/geo"
	"github.com/smrender/smrender/pkg/grid"
	"github.com/smrender/smrender/pkg/osm"
	"github.com/smrender/smrender/pkg/rule"
	"github.com/smrender/smrender/pkg/smrand"
	"github.com/smrender/smrender/pkg/trie"
)

// Env bundles the shared resources a rule's action constructor needs:
// the store every structural action reads and mutates, the rendering
// frame used by geometry-aware actions, the output sink, and the seed
// material for the reproducible "random" action.
type Env struct {
	Store      *trie.Store
	Frame      *geo.Frame
	Sink       Sink
	RandomSeed uint64
	ConfigHash []byte

	// MergeParams, when non-nil, merges config-level per-action
	// parameter overrides over a rule's own parameters before the
	// action is constructed.
	MergeParams func(action string, ruleParams map[string]string) map[string]string
}

// New constructs the Action bound to name, resolving each action name
// to its concrete variant: one case per action, each built from the
// rule's own parameter map.
func New(name string, ruleID int64, params map[string]string, env *Env) (rule.Action, error) {
	switch name {
	case "enable":
		return Enable{}, nil
	case "disable":
		return Disable{}, nil
	case "exit":
		return Exit{}, nil
	case "out":
		return Output{Sink: env.Sink}, nil
	case "sync_threads":
		return SyncThreads{}, nil

	case "grid":
		return Grid{
			Store: env.Store,
			Frame: env.Frame,
			Spec:  gridSpecFromParams(params),
		}, nil

	case "cat_poly":
		return &CatPoly{
			Store:          env.Store,
			Frame:          env.Frame,
			CloseTolerance: paramFloat(params, "vcdist", 0) / 60, // arc-minutes to degrees
			NoCorner:       paramBool(params, "no_corner"),
			IgnIncomplete:  paramBool(params, "ign_incomplete"),
		}, nil

	case "zeroway":
		return Zeroway{Store: env.Store}, nil

	case "split":
		return Split{Store: env.Store}, nil

	case "inherit_tags":
		dir := Up
		if strings.EqualFold(params["dir"], "down") {
			dir = Down
		}
		it := InheritTags{
			Store:     env.Store,
			Keys:      splitNonEmpty(params["keys"], ","),
			Direction: dir,
			Force:     paramBool(params, "force"),
		}
		if kind, ok := parseKind(params["object"]); ok {
			it.ObjectFilter = kind
			it.HasFilter = true
		}
		return it, nil

	case "shape":
		sub := ShapePlain
		switch params["subtype"] {
		case "sector":
			sub = ShapeSectored
		case "star":
			sub = ShapeStared
		}
		return Shape{
			Store:    env.Store,
			Count:    paramInt(params, "nodes", 0),
			Weight:   paramFloat(params, "weight", 1),
			Phase:    paramFloat(params, "phase", 0),
			Angle:    paramFloat(params, "angle", 0),
			Radius:   paramFloat(params, "radius", 1),
			R2:       paramFloat(params, "radius2", 0),
			Start:    paramFloatOrNaN(params, "start"),
			End:      paramFloatOrNaN(params, "end"),
			Subtype:  sub,
			CopyTags: paramBool(params, "copy"),
		}, nil

	case "ins_eqdist":
		return InsEqdist{
			Store:    env.Store,
			Distance: paramFloat(params, "distance", 0) / 60, // arc-minutes to degrees
		}, nil

	case "strfmt":
		return Strfmt{
			AddTag: params["tag"],
			Format: params["format"],
			Keys:   splitNonEmpty(params["keys"], ","),
		}, nil

	case "mask":
		return &Mask{MinDist: paramFloat(params, "dist", 0) / 60}, nil

	case "translate":
		t := Translate{
			Keys:   splitNonEmpty(params["keys"], ","),
			NewTag: paramBool(params, "newtag"),
		}
		if id, err := strconv.ParseInt(params["table"], 10, 64); err == nil {
			if w, ok := env.Store.GetWay(id); ok {
				t.Table = w
			} else if rel, ok := env.Store.GetRelation(id); ok {
				t.Table = rel
			} else if n, ok := env.Store.GetNode(id); ok {
				t.Table = n
			}
		}
		return t, nil

	case "random":
		stage := fmt.Sprintf("random:%d", ruleID)
		return Random{
			RNG:       smrand.New(env.RandomSeed, stage, env.ConfigHash),
			Key:       params["tag"],
			FloatMode: params["type"] == "float",
			Lo:        paramFloat(params, "min", 0),
			Hi:        paramFloat(params, "max", 1),
		}, nil

	case "bearings":
		return Bearings{Store: env.Store}, nil

	case "poly_area":
		return PolyArea{Store: env.Store, AreaKey: params["tag"], CentroidKey: params["centroid_tag"]}, nil

	case "poly_len":
		return PolyLen{Store: env.Store, LengthKey: params["tag"]}, nil

	case "set_cw":
		return SetCW{Store: env.Store}, nil

	case "set_ccw":
		return SetCCW{Store: env.Store}, nil

	default:
		return nil, fmt.Errorf("action: unknown action %q", name)
	}
}

// gridSpecFromParams builds a grid.Spec from a rule's own _action_
// parameters, for a "grid" rule that overrides the config-level grid
// string with per-rule tuning.
func gridSpecFromParams(params map[string]string) grid.Spec {
	return grid.Spec{
		GraticuleStepDeg: paramFloat(params, "graticule", 0) / 60,
		RulerSectionKM:   paramFloat(params, "rsec", 0) * 1.852,
		RulerSections:    paramInt(params, "rcnt", 0),
		NauticalMiles:    paramBool(params, "nm"),
	}
}

func parseKind(s string) (osm.Kind, bool) {
	switch s {
	case "node":
		return osm.KindNode, true
	case "way":
		return osm.KindWay, true
	case "relation":
		return osm.KindRelation, true
	default:
		return 0, false
	}
}

func paramFloat(params map[string]string, key string, def float64) float64 {
	v, ok := params[key]
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func paramFloatOrNaN(params map[string]string, key string) float64 {
	v, ok := params[key]
	if !ok {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func paramInt(params map[string]string, key string, def int) int {
	v, ok := params[key]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func paramBool(params map[string]string, key string) bool {
	v, ok := params[key]
	if !ok {
		return false
	}
	return v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "yes")
}

func splitNonEmpty(s, sep string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

