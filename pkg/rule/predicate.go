// Package rule implements the rule model and tag matcher: parsing the
// bracket-delimited predicate grammar from a rule object's tags,
// evaluating a rule's template against a candidate OSM object, and the
// per-rule lifecycle flags the scheduler consults.
package rule

import (
	"fmt"
	"regexp"
	"strconv"
)

// MatchMode is the kind of comparison a Predicate performs.
type MatchMode int

const (
	Literal MatchMode = iota
	Regex
	LessThan
	GreaterThan
)

// Predicate is the parsed form of one side (key or value) of a rule's
// match tag: a comparison mode plus the invert/not modifier flags.
// Any means the predicate was an empty string in the source rule tag
// and therefore matches anything, independent of Mode.
type Predicate struct {
	Mode    MatchMode
	Literal string
	Regex   *regexp.Regexp
	Num     float64
	Invert  bool
	Not     bool
	Any     bool
}

// ParsePredicate parses one bracket-delimited predicate string:
// `/…/` regex, `]…[` greater-than, `[…]` less-than, `!…!` invert,
// `~…~` not. The modifier wrappers are checked before the comparison
// wrappers, so at most one of {invert, not} and at most one of
// {regex, gt, lt} can apply to a single predicate. A regex compile
// failure or unparseable numeric bound is returned as an error;
// callers should downgrade the rule to a literal compare rather than
// treat it as fatal.
func ParsePredicate(raw string) (Predicate, error) {
	if raw == "" {
		return Predicate{Any: true}, nil
	}

	s := raw
	p := Predicate{}

	if len(s) > 2 {
		if s[0] == '!' && s[len(s)-1] == '!' {
			p.Invert = true
			s = s[1 : len(s)-1]
		} else if s[0] == '~' && s[len(s)-1] == '~' {
			p.Not = true
			s = s[1 : len(s)-1]
		}
	}

	if len(s) > 2 {
		switch {
		case s[0] == '/' && s[len(s)-1] == '/':
			re, err := regexp.Compile(s[1 : len(s)-1])
			if err != nil {
				return Predicate{}, fmt.Errorf("rule: failed to compile regex %q: %w", s[1:len(s)-1], err)
			}
			p.Mode = Regex
			p.Regex = re
			return p, nil
		case s[0] == ']' && s[len(s)-1] == '[':
			v, err := strconv.ParseFloat(s[1:len(s)-1], 64)
			if err != nil {
				return Predicate{}, fmt.Errorf("rule: failed to parse GT threshold %q: %w", s[1:len(s)-1], err)
			}
			p.Mode = GreaterThan
			p.Num = v
			return p, nil
		case s[0] == '[' && s[len(s)-1] == ']':
			v, err := strconv.ParseFloat(s[1:len(s)-1], 64)
			if err != nil {
				return Predicate{}, fmt.Errorf("rule: failed to parse LT threshold %q: %w", s[1:len(s)-1], err)
			}
			p.Mode = LessThan
			p.Num = v
			return p, nil
		}
	}

	p.Mode = Literal
	p.Literal = s
	return p, nil
}

// Test reports whether value satisfies the predicate, including the
// INVERT flip, but NOT the NOT-vacuous escape (that is a whole-object
// concern evaluated in MatchTag, not a per-value one).
func (p Predicate) Test(value string) bool {
	if p.Any {
		return true
	}
	var holds bool
	switch p.Mode {
	case Literal:
		holds = value == p.Literal
	case Regex:
		holds = p.Regex.MatchString(value)
	case GreaterThan:
		holds = parseFloatOrZero(value) > p.Num
	case LessThan:
		holds = parseFloatOrZero(value) < p.Num
	}
	if p.Invert {
		return !holds
	}
	return holds
}

func parseFloatOrZero(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
