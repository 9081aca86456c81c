package rule

import (
	"testing"

	"github.com/smrender/smrender/pkg/osm"
)

func mustPred(t *testing.T, raw string) Predicate {
	t.Helper()
	p, err := ParsePredicate(raw)
	if err != nil {
		t.Fatalf("ParsePredicate(%q): %v", raw, err)
	}
	return p
}

func TestMatchTagDirect(t *testing.T) {
	tp := TagPredicate{Key: mustPred(t, "building"), Value: mustPred(t, "yes")}
	tags := osm.TagList{{Key: "building", Value: "yes"}}
	if got := MatchTag(tags, tp); got != 0 {
		t.Fatalf("got %v, want index 0", got)
	}
}

func TestMatchTagNoMatch(t *testing.T) {
	tp := TagPredicate{Key: mustPred(t, "building"), Value: mustPred(t, "yes")}
	tags := osm.TagList{{Key: "highway", Value: "residential"}}
	if got := MatchTag(tags, tp); got != NoMatch {
		t.Fatalf("got %v, want NoMatch", got)
	}
}

// TestMatchTagNotVacuous exercises the "this tag must not exist"
// sentinel: a key predicate wrapped in ~…~ succeeds vacuously when no
// tag in the list ever matches the wrapped literal, and fails
// immediately the moment one does.
func TestMatchTagNotVacuous(t *testing.T) {
	tp := TagPredicate{Key: mustPred(t, "~name~"), Value: mustPred(t, "")}

	noName := osm.TagList{{Key: "building", Value: "yes"}}
	if got := MatchTag(noName, tp); got != Vacuous {
		t.Fatalf("got %v, want Vacuous when no tag key is %q", got, "name")
	}

	withName := osm.TagList{{Key: "building", Value: "yes"}, {Key: "name", Value: "Foo"}}
	if got := MatchTag(withName, tp); got != NoMatch {
		t.Fatalf("got %v, want NoMatch (forbidden tag present)", got)
	}
}

func TestMatchResultMatched(t *testing.T) {
	if NoMatch.Matched() {
		t.Fatalf("NoMatch must report unmatched")
	}
	if !Vacuous.Matched() {
		t.Fatalf("Vacuous must report matched")
	}
	if !MatchResult(3).Matched() {
		t.Fatalf("a concrete index must report matched")
	}
}
