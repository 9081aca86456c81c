// Package engine implements the rule-ordered traversal scheduler: it
// groups rules into ascending version passes, runs each pass's
// ini/main/fini lifecycle over relations then ways then nodes, and
// dispatches Threaded rules onto a worker pool.
package engine

import (
	"log"
	"time"

	"github.com/smrender/smrender/pkg/geo"
	"github.com/smrender/smrender/pkg/trie"
)

// Logger is the minimal sink the engine logs progress and rule
// failures to.
type Logger interface {
	Printf(format string, args ...any)
}

// stdLogger adapts *log.Logger to Logger.
type stdLogger struct{ l *log.Logger }

func (s stdLogger) Printf(format string, args ...any) { s.l.Printf(format, args...) }

// NewStdLogger returns a Logger writing through the standard library's
// log.Logger, the engine's default when the caller supplies none. A
// nil l falls back to log.Default.
func NewStdLogger(l *log.Logger) Logger {
	if l == nil {
		l = log.Default()
	}
	return stdLogger{l: l}
}

// Config holds the scheduler tunables: worker count, per-thread batch
// size, progress-tick interval, and whether off-page nodes are
// skipped.
type Config struct {
	Threads          int
	ObjMax           int
	ProgressInterval time.Duration
	RenderAllNodes   bool
	ForceIndex       bool
}

// DefaultConfig returns the documented defaults: runtime.NumCPU()
// workers (set by NewEngine, since Config itself must stay import-free
// of runtime for testability), obj_max 1024, and a 60s progress tick.
func DefaultConfig() Config {
	return Config{
		ObjMax:           1024,
		ProgressInterval: 60 * time.Second,
	}
}

// Context bundles everything a rule's Action needs while running: the
// object store, the page frame (for on-page checks and geo2px), and
// the logger.
type Context struct {
	Store  *trie.Store
	Frame  *geo.Frame
	Logger Logger
	Config Config
}

// OnPage reports whether a geographic point falls within the current
// frame's bounding box, satisfying rule.OnPageFunc.
func (c *Context) OnPage(lat, lon float64) bool {
	if c.Frame == nil {
		return true
	}
	bb := c.Frame.BBox
	return lat >= bb.LL.Lat && lat <= bb.RU.Lat && lon >= bb.LL.Lon && lon <= bb.RU.Lon
}
