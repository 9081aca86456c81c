package engine

import (
	"fmt"
	"strconv"

	"github.com/smrender/smrender/pkg/action"
	"github.com/smrender/smrender/pkg/osm"
	"github.com/smrender/smrender/pkg/rule"
	"github.com/smrender/smrender/pkg/trie"
)

// SubroutineCutoff is the pass-number threshold at and above which a
// rule is a subroutine rather than a top-level, version-scheduled
// rule.
const SubroutineCutoff = 9000

// Control tag keys the loader recognises and strips from a rule
// object's tags before they're handed to rule.NewRule as match
// predicates, following the same "_xxx_" convention as "_action_":
const (
	tagWays     = "_ways_"     // "closed" or "open"
	tagThreaded = "_threaded_" // "1" opts the rule into the worker pool
	tagOnce     = "_once_"     // "1" marks the rule run-once
	tagName     = "_name_"     // subroutine name; the rule ID is used when absent
)

// LoadRules builds the engine's full rule set from a rule dataset that
// is itself expressed as OSM objects: one Rule per object carrying an
// "_action_" tag, each bound to a concrete Action via the pkg/action
// registry. Rules whose version (co-opted as the pass number) is at or
// above SubroutineCutoff are collected into the returned subroutines
// map by their "_name_" tag (or their decimal rule ID when that tag is
// absent) instead of being scheduled as a top-level pass.
func LoadRules(ruleStore *trie.Store, env *action.Env) (rules []*rule.Rule, subroutines map[string]*rule.Rule, err error) {
	subroutines = map[string]*rule.Rule{}

	build := func(id int64, kind osm.Kind, version int64, tags osm.TagList) error {
		ctrl, remaining := extractControlTags(tags)

		r, buildErr := rule.NewRule(id, kind, remaining)
		if buildErr != nil {
			return fmt.Errorf("engine: loading rule %d: %w", id, buildErr)
		}
		r.Version = version

		switch ctrl[tagWays] {
		case "closed":
			r.ClosedWayOnly = true
		case "open":
			r.OpenWayOnly = true
		}
		r.Threaded = ctrl[tagThreaded] == "1"
		r.RunOnce = ctrl[tagOnce] == "1"

		params := r.Params
		if env.MergeParams != nil {
			params = env.MergeParams(r.ActionName, r.Params)
		}
		act, actErr := action.New(r.ActionName, r.ID, params, env)
		if actErr != nil {
			return fmt.Errorf("engine: rule %d: %w", id, actErr)
		}
		r.Action = act

		if version >= SubroutineCutoff {
			name := ctrl[tagName]
			if name == "" {
				name = strconv.FormatInt(id, 10)
			}
			subroutines[name] = r
			return nil
		}
		rules = append(rules, r)
		return nil
	}

	var firstErr error
	ruleStore.Nodes.Traverse(func(_ int64, n *osm.Node) int {
		if !n.GetTags().Has("_action_") {
			return 0
		}
		if e := build(n.ID, osm.KindNode, n.Version, n.Tags); e != nil {
			firstErr = e
			return -1
		}
		return 0
	})
	if firstErr != nil {
		return nil, nil, firstErr
	}
	ruleStore.Ways.Traverse(func(_ int64, w *osm.Way) int {
		if !w.GetTags().Has("_action_") {
			return 0
		}
		if e := build(w.ID, osm.KindWay, w.Version, w.Tags); e != nil {
			firstErr = e
			return -1
		}
		return 0
	})
	if firstErr != nil {
		return nil, nil, firstErr
	}
	ruleStore.Relations.Traverse(func(_ int64, rel *osm.Relation) int {
		if !rel.GetTags().Has("_action_") {
			return 0
		}
		if e := build(rel.ID, osm.KindRelation, rel.Version, rel.Tags); e != nil {
			firstErr = e
			return -1
		}
		return 0
	})
	if firstErr != nil {
		return nil, nil, firstErr
	}

	return rules, subroutines, nil
}

// extractControlTags splits a rule object's raw tag list into the
// recognised control tags (by exact key) and the remaining tags that
// become match predicates.
func extractControlTags(tags osm.TagList) (ctrl map[string]string, remaining osm.TagList) {
	ctrl = map[string]string{}
	for _, t := range tags {
		switch t.Key {
		case tagWays, tagThreaded, tagOnce, tagName:
			ctrl[t.Key] = t.Value
		default:
			remaining = append(remaining, t)
		}
	}
	return ctrl, remaining
}
