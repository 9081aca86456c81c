package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseGrid parses the grid string "G[:T[:S]]", all fields in
// arc-minutes: G is the graticule line spacing, T is the ruler
// section size, S is the ruler section count (default 1 if T is given
// without S).
func ParseGrid(spec string) (ResolvedGrid, error) {
	fields := strings.Split(spec, ":")
	if len(fields) == 0 || len(fields) > 3 {
		return ResolvedGrid{}, fmt.Errorf("grid: expected 1-3 colon-separated fields, got %d in %q", len(fields), spec)
	}

	g, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return ResolvedGrid{}, fmt.Errorf("grid: bad graticule step %q: %w", fields[0], err)
	}
	out := ResolvedGrid{GraticuleStepDeg: g / 60}

	if len(fields) >= 2 {
		t, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return ResolvedGrid{}, fmt.Errorf("grid: bad ruler section %q: %w", fields[1], err)
		}
		out.RulerSectionKM = t * 1.852 // arc-minutes of latitude == nautical miles
		out.RulerSections = 1
	}
	if len(fields) == 3 {
		s, err := strconv.Atoi(fields[2])
		if err != nil {
			return ResolvedGrid{}, fmt.Errorf("grid: bad ruler count %q: %w", fields[2], err)
		}
		out.RulerSections = s
	}
	return out, nil
}
