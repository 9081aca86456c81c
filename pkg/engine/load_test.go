package engine

import (
	"testing"

	"github.com/smrender/smrender/pkg/action"
	"github.com/smrender/smrender/pkg/osm"
	"github.com/smrender/smrender/pkg/trie"
)

func ruleWay(id int64, tags osm.TagList) *osm.Way {
	return &osm.Way{Common: osm.Common{ID: id, Version: 0, Visible: true, Tags: tags}}
}

func TestLoadRulesBuildsTopLevelRule(t *testing.T) {
	store := trie.NewStore()
	store.PutWay(ruleWay(1, osm.TagList{
		{Key: "building", Value: ""},
		{Key: "_action_", Value: "disable"},
		{Key: "_ways_", Value: "closed"},
		{Key: "_threaded_", Value: "1"},
	}))
	// Plain data object carrying no _action_ tag: must be ignored.
	store.PutWay(ruleWay(2, osm.TagList{{Key: "building", Value: "yes"}}))

	env := &action.Env{Store: trie.NewStore()}
	rules, subs, err := LoadRules(store, env)
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("got %d rules, want 1", len(rules))
	}
	if len(subs) != 0 {
		t.Fatalf("got %d subroutines, want 0", len(subs))
	}

	r := rules[0]
	if !r.ClosedWayOnly {
		t.Errorf("expected ClosedWayOnly from _ways_=closed")
	}
	if !r.Threaded {
		t.Errorf("expected Threaded from _threaded_=1")
	}
	if r.Action == nil || r.Action.Name() != "disable" {
		t.Errorf("expected bound disable action, got %v", r.Action)
	}
	// Only "building" should remain as a match predicate: the loader
	// strips _ways_ and _threaded_ before rule.NewRule sees the tags,
	// and rule.NewRule separates _action_ from the predicates.
	if len(r.Predicates) != 1 {
		t.Errorf("got %d predicates, want 1 (control tags must not leak in): %+v", len(r.Predicates), r.Predicates)
	}
}

func TestLoadRulesCollectsSubroutinesByName(t *testing.T) {
	store := trie.NewStore()
	store.PutWay(&osm.Way{
		Common: osm.Common{ID: 5, Version: SubroutineCutoff, Visible: true, Tags: osm.TagList{
			{Key: "_action_", Value: "enable"},
			{Key: "_name_", Value: "cleanup"},
		}},
	})

	env := &action.Env{Store: trie.NewStore()}
	rules, subs, err := LoadRules(store, env)
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	if len(rules) != 0 {
		t.Fatalf("got %d top-level rules, want 0", len(rules))
	}
	sub, ok := subs["cleanup"]
	if !ok {
		t.Fatalf("expected subroutine named %q, got %+v", "cleanup", subs)
	}
	if sub.Action.Name() != "enable" {
		t.Errorf("got action %q, want enable", sub.Action.Name())
	}
}

func TestLoadRulesRejectsUnknownAction(t *testing.T) {
	store := trie.NewStore()
	store.PutWay(ruleWay(1, osm.TagList{{Key: "_action_", Value: "bogus"}}))

	env := &action.Env{Store: trie.NewStore()}
	if _, _, err := LoadRules(store, env); err == nil {
		t.Fatalf("expected error for unknown action name")
	}
}
