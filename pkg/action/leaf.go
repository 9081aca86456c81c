// Package action implements the structural action library the rule
// engine dispatches into: cat_poly's polygon closer, the topology
// actions (zeroway, split, inherit_tags), the generators (shape,
// ins_eqdist), the supplemented tagging helpers (poly_area, poly_len,
// set_cw, set_ccw, strfmt, mask, translate, random, bearings), and the
// thin leaf actions below.
package action

import (
	"fmt"

	"github.com/smrender/smrender/pkg/osm"
	"github.com/smrender/smrender/pkg/rule"
)

// Enable sets an object's visibility flag to true.
type Enable struct{ rule.BaseAction }

func (Enable) Name() string { return "enable" }
func (Enable) Main(rt *rule.Rule, o osm.Object) (rule.Result, error) {
	o.SetVisible(true)
	return rule.OK, nil
}

// Disable sets an object's visibility flag to false, meaning "skipped
// by the rule engine", not deleted.
type Disable struct{ rule.BaseAction }

func (Disable) Name() string { return "disable" }
func (Disable) Main(rt *rule.Rule, o osm.Object) (rule.Result, error) {
	o.SetVisible(false)
	return rule.OK, nil
}

// Exit aborts the current pass immediately by returning a fatal
// result, for bailing out of a rule chain deliberately (e.g. when
// debugging a match).
type Exit struct{ rule.BaseAction }

func (Exit) Name() string { return "exit" }
func (Exit) Main(rt *rule.Rule, o osm.Object) (rule.Result, error) {
	return rule.Result(-1), fmt.Errorf("action: exit requested on %s %d", o.ObjectKind(), o.ObjectID())
}

// SyncThreads is a no-op action whose only purpose is to exist as a
// pass-ordered rule: because the engine fully drains a threaded rule's
// worker pool before moving to the next rule in version order, placing
// a sync_threads rule after a batch of threaded rules forces their
// drain at that point in the schedule.
type SyncThreads struct{ rule.BaseAction }

func (SyncThreads) Name() string { return "sync_threads" }
func (SyncThreads) Main(rt *rule.Rule, o osm.Object) (rule.Result, error) {
	return rule.OK, nil
}

// Sink is the minimal interface an "output" leaf action writes matched
// objects to; pkg/smio's ObjectSink satisfies it.
type Sink interface {
	Put(o osm.Object) error
}

// Output writes every matched object to a configured Sink, so a rule
// can stream its matches to a file mid-pipeline.
type Output struct {
	rule.BaseAction
	Sink Sink
}

func (Output) Name() string { return "out" }
func (o Output) Main(rt *rule.Rule, obj osm.Object) (rule.Result, error) {
	if o.Sink == nil {
		return rule.OK, nil
	}
	if err := o.Sink.Put(obj); err != nil {
		return rule.Result(-1), fmt.Errorf("action: out: %w", err)
	}
	return rule.OK, nil
}
