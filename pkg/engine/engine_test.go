package engine

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/smrender/smrender/pkg/osm"
	"github.com/smrender/smrender/pkg/rule"
	"github.com/smrender/smrender/pkg/trie"
)

// countingAction records how many times Main ran, across goroutines
// when used by a Threaded rule.
type countingAction struct {
	rule.BaseAction
	name string
	n    int64
	mu   sync.Mutex
	ids  []int64
}

func (a *countingAction) Name() string { return a.name }
func (a *countingAction) Main(rt *rule.Rule, o osm.Object) (rule.Result, error) {
	atomic.AddInt64(&a.n, 1)
	a.mu.Lock()
	a.ids = append(a.ids, o.ObjectID())
	a.mu.Unlock()
	return rule.OK, nil
}

func newTestContext(t *testing.T) (*Context, *trie.Store) {
	t.Helper()
	s := trie.NewStore()
	return &Context{Store: s, Config: DefaultConfig()}, s
}

func mustWayRule(t *testing.T, id int64, version int64, tags osm.TagList, act rule.Action) *rule.Rule {
	t.Helper()
	full := append(osm.TagList{}, tags...)
	full = append(full, osm.Tag{Key: "_action_", Value: act.Name()})
	r, err := rule.NewRule(id, osm.KindWay, full)
	if err != nil {
		t.Fatalf("NewRule: %v", err)
	}
	r.Version = version
	r.Action = act
	return r
}

func TestEngineRunDispatchesMatchingWays(t *testing.T) {
	ctx, s := newTestContext(t)
	s.PutWay(&osm.Way{Common: osm.Common{ID: 1, Visible: true, Tags: osm.TagList{{Key: "building", Value: "yes"}}}, Refs: []int64{1, 2, 1, 1}})
	s.PutWay(&osm.Way{Common: osm.Common{ID: 2, Visible: true, Tags: osm.TagList{{Key: "highway", Value: "residential"}}}, Refs: []int64{3, 4}})

	act := &countingAction{name: "count"}
	e := NewEngine(ctx)
	e.AddRule(mustWayRule(t, 1, 0, osm.TagList{{Key: "building", Value: "yes"}}, act))

	if err := e.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if atomic.LoadInt64(&act.n) != 1 {
		t.Fatalf("expected action to fire once, got %d", act.n)
	}
}

func TestEngineRunOrdersPassesAscending(t *testing.T) {
	ctx, s := newTestContext(t)
	s.PutWay(&osm.Way{Common: osm.Common{ID: 1, Visible: true, Tags: osm.TagList{{Key: "building", Value: "yes"}}}, Refs: []int64{1, 2, 1, 1}})

	act0 := &countingAction{name: "pass0"}
	act1 := &countingAction{name: "pass1"}
	e := NewEngine(ctx)
	e.AddRule(mustWayRule(t, 2, 1, osm.TagList{{Key: "building", Value: "yes"}}, act1))
	e.AddRule(mustWayRule(t, 1, 0, osm.TagList{{Key: "building", Value: "yes"}}, act0))

	if err := e.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if act0.n != 1 || act1.n != 1 {
		t.Fatalf("expected both passes to fire once each, got %d and %d", act0.n, act1.n)
	}
}

func TestEngineThreadedDispatchesAllObjects(t *testing.T) {
	ctx, s := newTestContext(t)
	ctx.Config.Threads = 4
	ctx.Config.ObjMax = 2
	for i := int64(1); i <= 10; i++ {
		s.PutWay(&osm.Way{Common: osm.Common{ID: i, Visible: true, Tags: osm.TagList{{Key: "building", Value: "yes"}}}, Refs: []int64{1, 2, 1, 1}})
	}

	act := &countingAction{name: "threaded"}
	e := NewEngine(ctx)
	r := mustWayRule(t, 1, 0, osm.TagList{{Key: "building", Value: "yes"}}, act)
	r.Threaded = true
	e.AddRule(r)

	if err := e.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if atomic.LoadInt64(&act.n) != 10 {
		t.Fatalf("expected 10 dispatches, got %d", act.n)
	}
}

func TestEngineCancelStopsTraversal(t *testing.T) {
	ctx, s := newTestContext(t)
	for i := int64(1); i <= 5; i++ {
		s.PutWay(&osm.Way{Common: osm.Common{ID: i, Visible: true, Tags: osm.TagList{{Key: "building", Value: "yes"}}}, Refs: []int64{1, 2, 1, 1}})
	}
	act := &countingAction{name: "cancel"}
	e := NewEngine(ctx)
	e.AddRule(mustWayRule(t, 1, 0, osm.TagList{{Key: "building", Value: "yes"}}, act))
	e.Cancel()

	// Cancellation is a clean early exit, not a failure: Run returns
	// nil but no object dispatch happens.
	if err := e.Run(); err != nil {
		t.Fatalf("Run after Cancel: %v", err)
	}
	if atomic.LoadInt64(&act.n) != 0 {
		t.Fatalf("expected no dispatches after cancellation, got %d", act.n)
	}
}

func TestEngineRunSubroutine(t *testing.T) {
	ctx, s := newTestContext(t)
	w := &osm.Way{Common: osm.Common{ID: 1, Visible: true, Tags: osm.TagList{{Key: "building", Value: "yes"}}}, Refs: []int64{1, 2, 1, 1}}
	s.PutWay(w)

	act := &countingAction{name: "sub"}
	e := NewEngine(ctx)
	r := mustWayRule(t, 1, 99, osm.TagList{{Key: "building", Value: "yes"}}, act)
	e.AddSubroutine("helper", r)

	if err := e.RunSubroutine("helper", w); err != nil {
		t.Fatalf("RunSubroutine: %v", err)
	}
	if act.n != 1 {
		t.Fatalf("expected subroutine to fire once, got %d", act.n)
	}
	if err := e.RunSubroutine("missing", w); err == nil {
		t.Fatalf("expected error for unknown subroutine name")
	}
}
