package rule

import "testing"

func TestParsePredicateLiteral(t *testing.T) {
	p, err := ParsePredicate("yes")
	if err != nil {
		t.Fatalf("ParsePredicate: %v", err)
	}
	if p.Mode != Literal || p.Literal != "yes" {
		t.Fatalf("got %+v", p)
	}
	if !p.Test("yes") || p.Test("no") {
		t.Fatalf("literal test failed")
	}
}

func TestParsePredicateEmptyIsAny(t *testing.T) {
	p, err := ParsePredicate("")
	if err != nil {
		t.Fatalf("ParsePredicate: %v", err)
	}
	if !p.Any {
		t.Fatalf("expected Any predicate")
	}
	if !p.Test("anything") {
		t.Fatalf("Any predicate must match everything")
	}
}

func TestParsePredicateRegex(t *testing.T) {
	p, err := ParsePredicate("/^res/")
	if err != nil {
		t.Fatalf("ParsePredicate: %v", err)
	}
	if p.Mode != Regex {
		t.Fatalf("expected Regex mode, got %v", p.Mode)
	}
	if !p.Test("residential") || p.Test("primary") {
		t.Fatalf("regex test failed")
	}
}

func TestParsePredicateGreaterThan(t *testing.T) {
	p, err := ParsePredicate("]2[")
	if err != nil {
		t.Fatalf("ParsePredicate: %v", err)
	}
	if p.Mode != GreaterThan || p.Num != 2 {
		t.Fatalf("got %+v", p)
	}
	if !p.Test("3") || p.Test("1") {
		t.Fatalf("GT test failed")
	}
	if p.Test("not-a-number") {
		t.Fatalf("non-numeric value should parse as 0 and fail GT 2")
	}
}

func TestParsePredicateLessThan(t *testing.T) {
	p, err := ParsePredicate("[5]")
	if err != nil {
		t.Fatalf("ParsePredicate: %v", err)
	}
	if p.Mode != LessThan || p.Num != 5 {
		t.Fatalf("got %+v", p)
	}
	if !p.Test("1") || p.Test("9") {
		t.Fatalf("LT test failed")
	}
}

func TestParsePredicateInvert(t *testing.T) {
	p, err := ParsePredicate("!yes!")
	if err != nil {
		t.Fatalf("ParsePredicate: %v", err)
	}
	if !p.Invert || p.Mode != Literal || p.Literal != "yes" {
		t.Fatalf("got %+v", p)
	}
	if p.Test("yes") {
		t.Fatalf("inverted literal must not match its own literal")
	}
	if !p.Test("no") {
		t.Fatalf("inverted literal must match anything else")
	}
}

func TestParsePredicateNotFlagParsedNotEvaluatedHere(t *testing.T) {
	p, err := ParsePredicate("~yes~")
	if err != nil {
		t.Fatalf("ParsePredicate: %v", err)
	}
	if !p.Not || p.Mode != Literal || p.Literal != "yes" {
		t.Fatalf("got %+v", p)
	}
}

func TestParsePredicateBadRegexIsError(t *testing.T) {
	if _, err := ParsePredicate("/[/"); err == nil {
		t.Fatalf("expected error for unbalanced regex")
	}
}

func TestParsePredicateBadNumberIsError(t *testing.T) {
	if _, err := ParsePredicate("]abc["); err == nil {
		t.Fatalf("expected error for non-numeric GT bound")
	}
}
