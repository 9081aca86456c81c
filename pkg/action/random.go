package action

import (
	"strconv"

	"github.com/smrender/smrender/pkg/osm"
	"github.com/smrender/smrender/pkg/rule"
	"github.com/smrender/smrender/pkg/smrand"
)

// Random tags every matched object with a pseudo-random value in
// [Lo, Hi] for integers or [Lo, Hi) for floats. FloatMode selects the "type" param: integer range when
// false, floating-point range when true. Key defaults to
// "smrender:random". Values come from a private smrand.RNG the caller
// seeds deterministically per rule, so a given config plus master seed
// always produces the same tag sequence.
type Random struct {
	rule.BaseAction
	RNG       *smrand.RNG
	Key       string
	FloatMode bool
	Lo, Hi    float64
}

func (Random) Name() string { return "random" }

func (r Random) Main(rt *rule.Rule, o osm.Object) (rule.Result, error) {
	key := r.Key
	if key == "" {
		key = "smrender:random"
	}

	var val string
	if r.FloatMode {
		lo, hi := r.Lo, r.Hi
		if hi <= lo {
			hi = lo + 1
		}
		val = strconv.FormatFloat(r.RNG.Float64Range(lo, hi), 'f', -1, 64)
	} else {
		lo, hi := int(r.Lo), int(r.Hi)
		if hi <= lo {
			hi = lo + 1
		}
		val = strconv.Itoa(r.RNG.IntRange(lo, hi))
	}

	o.SetTags(o.GetTags().Set(key, val))
	return rule.OK, nil
}
