package rule

import "github.com/smrender/smrender/pkg/osm"

// Result is an action lifecycle return code: negative is fatal (the
// run aborts), positive from Ini disables the rule for the remainder
// of the pass (a positive result from Main is only logged), zero is
// success.
type Result int

const (
	OK Result = 0
)

// Fatal reports whether r should abort the whole render.
func (r Result) Fatal() bool { return r < 0 }

// SkipRule reports whether r is a positive code. Returned from Ini it
// disables the owning rule for the rest of its pass (main and fini are
// not run); returned from Main it is only logged.
func (r Result) SkipRule() bool { return r > 0 }

// Action is the interface every structural or leaf action in
// pkg/action implements. Ini/Fini run once per rule per pass; Main
// runs once per matched object. Actions that need no setup or
// teardown embed BaseAction to get no-op defaults.
type Action interface {
	Name() string
	Ini(rt *Rule) (Result, error)
	Main(rt *Rule, o osm.Object) (Result, error)
	Fini(rt *Rule) (Result, error)
}

// BaseAction gives concrete actions no-op Ini/Fini so they only need
// to implement Main (and Name).
type BaseAction struct{}

func (BaseAction) Ini(rt *Rule) (Result, error)  { return OK, nil }
func (BaseAction) Fini(rt *Rule) (Result, error) { return OK, nil }
