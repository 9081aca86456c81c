package engine

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/smrender/smrender/pkg/osm"
	"github.com/smrender/smrender/pkg/rule"
)

// errCancelled signals cooperative cancellation up through the
// traversal; Run converts it into a clean early exit so fini callbacks
// and output writing still happen.
var errCancelled = errors.New("engine: cancelled")

// Engine owns the full rule set for one render and drives the
// version-ordered pass traversal.
type Engine struct {
	ctx   *Context
	rules []*rule.Rule

	subroutines map[string]*rule.Rule

	cancelled atomic.Bool
	stopSig   chan struct{}
}

// NewEngine builds an Engine bound to ctx. If ctx.Config.Threads is
// zero, it is set to runtime.NumCPU().
func NewEngine(ctx *Context) *Engine {
	if ctx.Config.Threads <= 0 {
		ctx.Config.Threads = runtime.NumCPU()
	}
	if ctx.Config.ObjMax <= 0 {
		ctx.Config.ObjMax = 1024
	}
	if ctx.Config.ProgressInterval <= 0 {
		ctx.Config.ProgressInterval = 60 * time.Second
	}
	if ctx.Logger == nil {
		ctx.Logger = NewStdLogger(nil)
	}
	return &Engine{ctx: ctx, subroutines: map[string]*rule.Rule{}}
}

// AddRule registers a rule with the engine's top-level pass schedule.
func (e *Engine) AddRule(r *rule.Rule) {
	e.rules = append(e.rules, r)
}

// AddSubroutine registers a rule addressable by name via RunSubroutine
// instead of the version-pass schedule.
func (e *Engine) AddSubroutine(name string, r *rule.Rule) {
	e.subroutines[name] = r
}

// watchSignals installs a SIGINT handler that sets a sticky cancelled
// flag, polled by every leaf dispatch. It returns a cleanup func the
// caller should defer.
func (e *Engine) watchSignals() func() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	done := make(chan struct{})
	go func() {
		select {
		case <-ch:
			e.cancelled.Store(true)
		case <-done:
		}
	}()
	return func() {
		signal.Stop(ch)
		close(done)
	}
}

// Cancelled reports whether a SIGINT (or an explicit Cancel) has been
// observed.
func (e *Engine) Cancelled() bool { return e.cancelled.Load() }

// Cancel sets the cooperative-cancellation flag programmatically,
// without waiting for a signal.
func (e *Engine) Cancel() { e.cancelled.Store(true) }

// Run executes every registered rule's ini/main/fini lifecycle across
// ascending version passes, relations then ways then nodes within each
// pass, dispatching Threaded rules onto a worker pool.
func (e *Engine) Run() error {
	stop := e.watchSignals()
	defer stop()

	versions := e.passVersions()
	ticker := time.NewTicker(e.ctx.Config.ProgressInterval)
	defer ticker.Stop()
	var processed int64
	tickerDone := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				e.ctx.Logger.Printf("progress: %d objects processed", atomic.LoadInt64(&processed))
			case <-tickerDone:
				return
			}
		}
	}()
	defer close(tickerDone)

	for _, v := range versions {
		if e.Cancelled() {
			e.ctx.Logger.Printf("cancelled: skipping pass %d and later", v)
			break
		}
		passRules := e.rulesForVersion(v)
		if err := e.runPass(passRules, &processed); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) passVersions() []int64 {
	seen := map[int64]bool{}
	var out []int64
	for _, r := range e.rules {
		if !seen[r.Version] {
			seen[r.Version] = true
			out = append(out, r.Version)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (e *Engine) rulesForVersion(v int64) []*rule.Rule {
	var out []*rule.Rule
	for _, r := range e.rules {
		if r.Version == v {
			out = append(out, r)
		}
	}
	return out
}

// runPass runs one version pass's full ini/main/fini lifecycle.
func (e *Engine) runPass(rules []*rule.Rule, processed *int64) error {
	active := make([]*rule.Rule, 0, len(rules))
	for _, r := range rules {
		if r.Action == nil {
			continue
		}
		res, err := r.Action.Ini(r)
		if err != nil {
			return fmt.Errorf("engine: rule %d ini: %w", r.ID, err)
		}
		if res.Fatal() {
			return fmt.Errorf("engine: rule %d ini returned fatal result %d", r.ID, res)
		}
		if res.SkipRule() {
			continue
		}
		active = append(active, r)
	}

	if e.ctx.Store.IndexNeeded(e.ctx.Config.ForceIndex) && !e.ctx.Store.IndexBuilt() {
		e.ctx.Store.BuildReverseIndex()
	}

	// A cancellation mid-traversal abandons the rest of this pass's
	// dispatch, but every active rule's fini below still runs so
	// accumulated state (cat_poly's chains, mask's node set) is
	// finalised.
	for _, kind := range []osm.Kind{osm.KindRelation, osm.KindWay, osm.KindNode} {
		err := e.dispatchKind(kind, active, processed)
		if errors.Is(err, errCancelled) {
			break
		}
		if err != nil {
			return err
		}
	}

	for _, r := range active {
		if r.Finished() {
			continue
		}
		res, err := r.Action.Fini(r)
		if err != nil {
			return fmt.Errorf("engine: rule %d fini: %w", r.ID, err)
		}
		if res.Fatal() {
			return fmt.Errorf("engine: rule %d fini returned fatal result %d", r.ID, res)
		}
		r.MarkFinished()
	}
	return nil
}

func (e *Engine) dispatchKind(kind osm.Kind, active []*rule.Rule, processed *int64) error {
	var threaded, direct []*rule.Rule
	for _, r := range active {
		if r.Kind != kind {
			continue
		}
		if r.Threaded {
			threaded = append(threaded, r)
		} else {
			direct = append(direct, r)
		}
	}
	if len(direct) == 0 && len(threaded) == 0 {
		return nil
	}

	var objs []osm.Object
	switch kind {
	case osm.KindRelation:
		e.ctx.Store.Relations.Traverse(func(_ int64, r *osm.Relation) int {
			objs = append(objs, r)
			return 0
		})
	case osm.KindWay:
		e.ctx.Store.Ways.Traverse(func(_ int64, w *osm.Way) int {
			objs = append(objs, w)
			return 0
		})
	case osm.KindNode:
		e.ctx.Store.Nodes.Traverse(func(_ int64, n *osm.Node) int {
			objs = append(objs, n)
			return 0
		})
	}

	for _, o := range objs {
		if e.Cancelled() {
			return errCancelled
		}
		atomic.AddInt64(processed, 1)

		for _, r := range direct {
			if err := e.dispatchOne(r, o); err != nil {
				return err
			}
		}
	}

	if len(threaded) > 0 {
		if err := e.runThreaded(threaded, objs, processed); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) dispatchOne(r *rule.Rule, o osm.Object) error {
	if !r.Match(o, e.ctx.Config.RenderAllNodes, e.ctx.OnPage) {
		return nil
	}
	res, err := r.Action.Main(r, o)
	if err != nil {
		return fmt.Errorf("engine: rule %d main on %s %d: %w", r.ID, o.ObjectKind(), o.ObjectID(), err)
	}
	if res.Fatal() {
		return fmt.Errorf("engine: rule %d main on %s %d returned fatal result %d", r.ID, o.ObjectKind(), o.ObjectID(), res)
	}
	if res.SkipRule() {
		e.ctx.Logger.Printf("rule %d main returned %d on object %d", r.ID, res, o.ObjectID())
	}
	r.MarkExecuted()
	return nil
}

// runThreaded fans threaded rules' dispatch across a worker pool,
// batching objects into Config.ObjMax-sized chunks per worker, and
// drains fully before returning, so the next rule's ini never overlaps
// this rule's main calls.
func (e *Engine) runThreaded(rules []*rule.Rule, objs []osm.Object, processed *int64) error {
	workers := e.ctx.Config.Threads
	batch := e.ctx.Config.ObjMax

	type job struct {
		lo, hi int
	}
	jobs := make(chan job, (len(objs)/batch)+1)
	for lo := 0; lo < len(objs); lo += batch {
		hi := lo + batch
		if hi > len(objs) {
			hi = len(objs)
		}
		jobs <- job{lo: lo, hi: hi}
	}
	close(jobs)

	var wg sync.WaitGroup
	errCh := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				for idx := j.lo; idx < j.hi; idx++ {
					if e.Cancelled() {
						return
					}
					for _, r := range rules {
						if err := e.dispatchOne(r, objs[idx]); err != nil {
							errCh <- err
							return
						}
					}
				}
			}
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			return err
		}
	}
	return nil
}

// RunSubroutine invokes a named subroutine rule directly against a
// single object, bypassing the version-pass schedule entirely. This is
// how one action's main calls another, above-cutoff rule by name.
func (e *Engine) RunSubroutine(name string, o osm.Object) error {
	r, ok := e.subroutines[name]
	if !ok {
		return fmt.Errorf("engine: no subroutine rule named %q", name)
	}
	if !r.Match(o, e.ctx.Config.RenderAllNodes, e.ctx.OnPage) {
		return nil
	}
	return e.dispatchOne(r, o)
}
