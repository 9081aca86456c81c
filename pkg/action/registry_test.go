package action

import (
	"math"
	"testing"

	"github.com/smrender/smrender/pkg/trie"
)

func TestNewDispatchesKnownActions(t *testing.T) {
	env := &Env{Store: trie.NewStore()}

	cases := []struct {
		name string
		want string
	}{
		{"enable", "enable"},
		{"disable", "disable"},
		{"exit", "exit"},
		{"out", "out"},
		{"sync_threads", "sync_threads"},
		{"grid", "grid"},
		{"cat_poly", "cat_poly"},
		{"zeroway", "zeroway"},
		{"split", "split"},
		{"inherit_tags", "inherit_tags"},
		{"shape", "shape"},
		{"ins_eqdist", "ins_eqdist"},
		{"strfmt", "strfmt"},
		{"mask", "mask"},
		{"translate", "translate"},
		{"random", "random"},
		{"bearings", "bearings"},
		{"poly_area", "poly_area"},
		{"poly_len", "poly_len"},
		{"set_cw", "set_cw"},
		{"set_ccw", "set_ccw"},
	}
	for _, c := range cases {
		act, err := New(c.name, 1, map[string]string{}, env)
		if err != nil {
			t.Errorf("New(%q): %v", c.name, err)
			continue
		}
		if act.Name() != c.want {
			t.Errorf("New(%q).Name() = %q, want %q", c.name, act.Name(), c.want)
		}
	}
}

func TestNewRejectsUnknownAction(t *testing.T) {
	env := &Env{Store: trie.NewStore()}
	if _, err := New("not_a_real_action", 1, nil, env); err == nil {
		t.Fatalf("expected error for unknown action name")
	}
}

func TestShapeParamsStartEndDefaultToNaN(t *testing.T) {
	env := &Env{Store: trie.NewStore()}
	act, err := New("shape", 1, map[string]string{"nodes": "4"}, env)
	if err != nil {
		t.Fatalf("New(shape): %v", err)
	}
	s, ok := act.(Shape)
	if !ok {
		t.Fatalf("got %T, want Shape", act)
	}
	if !math.IsNaN(s.Start) || !math.IsNaN(s.End) {
		t.Errorf("expected Start/End to default to NaN when unset, got %v/%v", s.Start, s.End)
	}
	if s.Count != 4 {
		t.Errorf("got Count %d, want 4", s.Count)
	}
}

func TestRandomActionUsesDeterministicSeed(t *testing.T) {
	env := &Env{Store: trie.NewStore(), RandomSeed: 42, ConfigHash: []byte("cfg")}
	a1, err := New("random", 7, map[string]string{"min": "0", "max": "10"}, env)
	if err != nil {
		t.Fatalf("New(random): %v", err)
	}
	a2, err := New("random", 7, map[string]string{"min": "0", "max": "10"}, env)
	if err != nil {
		t.Fatalf("New(random): %v", err)
	}
	r1, r2 := a1.(Random), a2.(Random)
	if r1.RNG.Float64Range(0, 1) != r2.RNG.Float64Range(0, 1) {
		t.Errorf("expected identical seed derivation for same (ruleID, masterSeed, configHash)")
	}
}
