package rule

import (
	"fmt"
	"sync"

	"github.com/smrender/smrender/pkg/osm"
)

// Rule is a parsed relation/way/node rule object: a template whose tags
// double as the match predicates, an action binding, and the lifecycle
// flags the scheduler in pkg/engine consults before and after dispatch.
type Rule struct {
	ID      int64
	Kind    osm.Kind
	Version int64 // rule pass number; 0 means "runs in every pass"

	Predicates []TagPredicate

	ClosedWayOnly bool
	OpenWayOnly   bool
	Threaded      bool
	RunOnce       bool

	ActionName string
	Params     map[string]string
	Action     Action

	SharedData any // shared across every rule naming the same action
	Data       any // per-rule accumulator an action's Main/Fini pair uses internally

	mu       sync.Mutex
	executed bool
	finished bool
}

// NewRule builds a Rule from a template object's tags, splitting the
// action-descriptor tag (key "_action_") from the match predicates and
// parsing each remaining tag's key/value strings as predicates.
func NewRule(id int64, kind osm.Kind, tags osm.TagList) (*Rule, error) {
	r := &Rule{ID: id, Kind: kind, Params: map[string]string{}}

	for _, t := range tags {
		if t.Key == "_action_" {
			name, params := parseActionTag(t.Value)
			r.ActionName = name
			r.Params = params
			continue
		}

		// A predicate that fails to parse is downgraded to a literal
		// compare of its raw string.
		kp, err := ParsePredicate(t.Key)
		if err != nil {
			kp = Predicate{Mode: Literal, Literal: t.Key}
		}
		vp, err := ParsePredicate(t.Value)
		if err != nil {
			vp = Predicate{Mode: Literal, Literal: t.Value}
		}
		r.Predicates = append(r.Predicates, TagPredicate{Key: kp, Value: vp})
	}

	if r.ActionName == "" {
		return nil, fmt.Errorf("rule %d: missing _action_ tag", id)
	}
	return r, nil
}

// parseActionTag splits an "_action_" tag value of the form
// "name:k1=v1:k2=v2" into the action name and its parameter map.
func parseActionTag(v string) (string, map[string]string) {
	params := map[string]string{}
	name := v
	for i := 0; i < len(v); i++ {
		if v[i] == ':' {
			name = v[:i]
			rest := v[i+1:]
			for _, kv := range splitColon(rest) {
				if eq := indexByte(kv, '='); eq >= 0 {
					params[kv[:eq]] = kv[eq+1:]
				} else {
					params[kv] = ""
				}
			}
			break
		}
	}
	return name, params
}

func splitColon(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

// OnPageFunc reports whether a geographic point falls inside the
// current rendering window, letting pkg/rule stay independent of
// pkg/geo; pkg/engine supplies the real implementation bound to a
// Frame.
type OnPageFunc func(lat, lon float64) bool

// Match decides whether the rule fires on o: off-page node skip
// (unless renderAllNodes), closed/open-way discrimination,
// per-template-tag matching (every predicate must match or be
// vacuously satisfied), visibility, and run-once.
func (r *Rule) Match(o osm.Object, renderAllNodes bool, onPage OnPageFunc) bool {
	if n, ok := o.(*osm.Node); ok && !renderAllNodes && onPage != nil {
		if !onPage(n.Lat, n.Lon) {
			return false
		}
	}

	if w, ok := o.(*osm.Way); ok {
		closed := w.Closed()
		if r.ClosedWayOnly && !closed {
			return false
		}
		if r.OpenWayOnly && closed {
			return false
		}
	}

	tags := o.GetTags()
	for _, tp := range r.Predicates {
		if !MatchTag(tags, tp).Matched() {
			return false
		}
	}

	if !o.IsVisible() {
		return false
	}

	r.mu.Lock()
	runOnceBlocked := r.RunOnce && r.executed
	r.mu.Unlock()
	if runOnceBlocked {
		return false
	}

	return true
}

// MarkExecuted records that this rule fired, for RunOnce bookkeeping.
func (r *Rule) MarkExecuted() {
	r.mu.Lock()
	r.executed = true
	r.mu.Unlock()
}

// Executed reports whether MarkExecuted has been called.
func (r *Rule) Executed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.executed
}

// Finished reports whether Fini has already run for this rule/pass.
func (r *Rule) Finished() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finished
}

// MarkFinished records that Fini ran for this rule/pass.
func (r *Rule) MarkFinished() {
	r.mu.Lock()
	r.finished = true
	r.mu.Unlock()
}
