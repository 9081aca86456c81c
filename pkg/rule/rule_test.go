package rule

import (
	"testing"

	"github.com/smrender/smrender/pkg/osm"
)

func newWay(tags osm.TagList) *osm.Way {
	w := &osm.Way{Common: osm.Common{ID: 1, Visible: true, Tags: tags}, Refs: []int64{1, 2, 3, 1}}
	return w
}

func TestRuleNewRuleParsesActionAndParams(t *testing.T) {
	tags := osm.TagList{
		{Key: "building", Value: "yes"},
		{Key: "_action_", Value: "disable:force=1"},
	}
	r, err := NewRule(1, osm.KindWay, tags)
	if err != nil {
		t.Fatalf("NewRule: %v", err)
	}
	if r.ActionName != "disable" {
		t.Fatalf("got action %q", r.ActionName)
	}
	if r.Params["force"] != "1" {
		t.Fatalf("got params %+v", r.Params)
	}
	if len(r.Predicates) != 1 {
		t.Fatalf("got %d predicates, want 1", len(r.Predicates))
	}
}

func TestRuleNewRuleRequiresAction(t *testing.T) {
	tags := osm.TagList{{Key: "building", Value: "yes"}}
	if _, err := NewRule(1, osm.KindWay, tags); err == nil {
		t.Fatalf("expected error for missing _action_ tag")
	}
}

// TestRuleMatchSelectsNamelessBuildings exercises the NOT-vacuous
// semantics end to end: a rule matching building=* together with a
// NOT-wrapped name predicate selects buildings that carry no name tag,
// mirroring the "tagless buildings" NOT scenario.
func TestRuleMatchSelectsNamelessBuildings(t *testing.T) {
	tags := osm.TagList{
		{Key: "building", Value: ""},
		{Key: "~name~", Value: ""},
		{Key: "_action_", Value: "disable"},
	}
	r, err := NewRule(1, osm.KindWay, tags)
	if err != nil {
		t.Fatalf("NewRule: %v", err)
	}

	nameless := newWay(osm.TagList{{Key: "building", Value: "yes"}})
	named := newWay(osm.TagList{{Key: "building", Value: "yes"}, {Key: "name", Value: "foo"}})

	if !r.Match(nameless, true, nil) {
		t.Fatalf("expected nameless building to match")
	}
	if r.Match(named, true, nil) {
		t.Fatalf("expected named building to not match")
	}
}

func TestRuleMatchClosedWayOnly(t *testing.T) {
	tags := osm.TagList{{Key: "natural", Value: "water"}, {Key: "_action_", Value: "disable"}}
	r, err := NewRule(1, osm.KindWay, tags)
	if err != nil {
		t.Fatalf("NewRule: %v", err)
	}
	r.ClosedWayOnly = true

	closed := newWay(osm.TagList{{Key: "natural", Value: "water"}})
	open := &osm.Way{Common: osm.Common{ID: 2, Visible: true, Tags: osm.TagList{{Key: "natural", Value: "water"}}}, Refs: []int64{1, 2, 3}}

	if !r.Match(closed, true, nil) {
		t.Fatalf("expected closed way to match")
	}
	if r.Match(open, true, nil) {
		t.Fatalf("expected open way to be rejected by ClosedWayOnly")
	}
}

func TestRuleMatchInvisibleObjectRejected(t *testing.T) {
	tags := osm.TagList{{Key: "building", Value: "yes"}, {Key: "_action_", Value: "disable"}}
	r, err := NewRule(1, osm.KindWay, tags)
	if err != nil {
		t.Fatalf("NewRule: %v", err)
	}
	w := newWay(osm.TagList{{Key: "building", Value: "yes"}})
	w.SetVisible(false)
	if r.Match(w, true, nil) {
		t.Fatalf("expected invisible object to be rejected")
	}
}

func TestRuleMatchRunOnce(t *testing.T) {
	tags := osm.TagList{{Key: "building", Value: "yes"}, {Key: "_action_", Value: "disable"}}
	r, err := NewRule(1, osm.KindWay, tags)
	if err != nil {
		t.Fatalf("NewRule: %v", err)
	}
	r.RunOnce = true
	w := newWay(osm.TagList{{Key: "building", Value: "yes"}})

	if !r.Match(w, true, nil) {
		t.Fatalf("first match should succeed")
	}
	r.MarkExecuted()
	if r.Match(w, true, nil) {
		t.Fatalf("second match should be blocked by RunOnce")
	}
}

func TestRuleMatchOffPageNodeSkipped(t *testing.T) {
	tags := osm.TagList{{Key: "amenity", Value: "cafe"}, {Key: "_action_", Value: "disable"}}
	r, err := NewRule(1, osm.KindNode, tags)
	if err != nil {
		t.Fatalf("NewRule: %v", err)
	}
	n := &osm.Node{Common: osm.Common{ID: 1, Visible: true, Tags: osm.TagList{{Key: "amenity", Value: "cafe"}}}, Lat: 90, Lon: 180}

	onPage := func(lat, lon float64) bool { return lat < 45 }
	if r.Match(n, false, onPage) {
		t.Fatalf("expected off-page node to be rejected")
	}
	if !r.Match(n, true, onPage) {
		t.Fatalf("renderAllNodes=true must bypass the page check")
	}
}
