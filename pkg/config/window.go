package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/smrender/smrender/pkg/geo"
)

// ParseWindow parses the window grammar: "lat:lon:size" (center plus
// scale/nautical-miles/degrees size), "lat:lon:lat:lon" (explicit
// bbox, lower-left then upper-right), or an 8-field 4-corner polygon
// "lat:lon:lat:lon:lat:lon:lat:lon" ordered left-lower, right-lower,
// right-upper, left-upper.
func ParseWindow(spec string) (geo.Window, error) {
	fields := strings.Split(spec, ":")
	switch len(fields) {
	case 3:
		lat, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return geo.Window{}, fmt.Errorf("window: bad lat %q: %w", fields[0], err)
		}
		lon, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return geo.Window{}, fmt.Errorf("window: bad lon %q: %w", fields[1], err)
		}
		sizeKind, size, err := parseSize(fields[2])
		if err != nil {
			return geo.Window{}, err
		}
		return geo.Window{
			Mode:     geo.WindowCenterScale,
			Center:   geo.LatLon{Lat: lat, Lon: lon},
			SizeKind: sizeKind,
			Size:     size,
		}, nil
	case 4:
		nums, err := parseFloats(fields)
		if err != nil {
			return geo.Window{}, err
		}
		return geo.Window{
			Mode: geo.WindowBBox,
			BBox: geo.BBox{
				LL: geo.LatLon{Lat: nums[0], Lon: nums[1]},
				RU: geo.LatLon{Lat: nums[2], Lon: nums[3]},
			},
		}, nil
	case 8:
		nums, err := parseFloats(fields)
		if err != nil {
			return geo.Window{}, err
		}
		var corners [4]geo.LatLon
		for i := range corners {
			corners[i] = geo.LatLon{Lat: nums[2*i], Lon: nums[2*i+1]}
		}
		return geo.Window{Mode: geo.WindowPolygon, Corners: corners}, nil
	default:
		return geo.Window{}, fmt.Errorf("window: expected 3, 4, or 8 colon-separated fields, got %d in %q", len(fields), spec)
	}
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("window: bad number %q: %w", f, err)
		}
		out[i] = v
	}
	return out, nil
}

// parseSize parses the window size suffix: a bare number is `scale`, a
// trailing "m" is nautical miles, a trailing "d" is degrees.
func parseSize(s string) (geo.WindowSizeKind, float64, error) {
	if s == "" {
		return 0, 0, fmt.Errorf("window: empty size")
	}
	last := s[len(s)-1]
	kind := geo.SizeScale
	numPart := s
	switch last {
	case 'm', 'M':
		kind = geo.SizeNauticalMiles
		numPart = s[:len(s)-1]
	case 'd', 'D':
		kind = geo.SizeDegrees
		numPart = s[:len(s)-1]
	}
	v, err := strconv.ParseFloat(numPart, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("window: bad size %q: %w", s, err)
	}
	return kind, v, nil
}
