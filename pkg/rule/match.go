package rule

import "github.com/smrender/smrender/pkg/osm"

// MatchResult is the outcome of testing one template tag against an
// object's whole tag list.
type MatchResult int

const (
	// NoMatch means no tag satisfied the predicate, and the predicate
	// carried no NOT flag to make that vacuously acceptable.
	NoMatch MatchResult = -1
	// Vacuous means the predicate carried a NOT flag, and no tag ever
	// triggered the early "must not exist" failure, so the absence of
	// a match is itself the match. This is how "this tag must not
	// exist" is expressed.
	Vacuous MatchResult = -2
)

// TagPredicate pairs a key predicate and a value predicate, the parsed
// form of one (k, v) tag on a rule's template object.
type TagPredicate struct {
	Key   Predicate
	Value Predicate
}

// MatchTag evaluates tp against every tag in tags and returns the
// index of the first tag that satisfies both the key and value
// predicate, or one of the NoMatch/Vacuous sentinels. The NOT flag on
// either side makes a satisfying tag an immediate, whole-function
// failure rather than a continue, since NOT describes a tag that must
// never be present.
func MatchTag(tags osm.TagList, tp TagPredicate) MatchResult {
	for i, t := range tags {
		kmatch := tp.Key.Test(t.Key)
		vmatch := tp.Value.Test(t.Value)

		if kmatch && tp.Key.Not {
			return NoMatch
		}
		if vmatch && tp.Value.Not {
			return NoMatch
		}
		if kmatch && vmatch {
			return MatchResult(i)
		}
	}
	if tp.Key.Not || tp.Value.Not {
		return Vacuous
	}
	return NoMatch
}

// Matched reports whether a MatchResult represents a satisfied
// predicate (a concrete tag index or the vacuous sentinel).
func (m MatchResult) Matched() bool {
	return m != NoMatch
}
