package geo

import "fmt"

// LatLon is a geographic coordinate in degrees.
type LatLon struct {
	Lat, Lon float64
}

// BBox is an axis-aligned latitude/longitude rectangle.
type BBox struct {
	LL LatLon // lower-left
	RU LatLon // upper-right
}

// Width and Height return the bbox's extent in degrees of longitude and
// latitude respectively.
func (b BBox) Width() float64  { return b.RU.Lon - b.LL.Lon }
func (b BBox) Height() float64 { return b.RU.Lat - b.LL.Lat }

// Contains reports whether a point lies within the bbox, inclusive.
func (b BBox) Contains(p LatLon) bool {
	return p.Lon >= b.LL.Lon && p.Lon <= b.RU.Lon && p.Lat >= b.LL.Lat && p.Lat <= b.RU.Lat
}

// WindowSizeKind distinguishes the three ways a (center, size) window
// may specify its size: a bare chart scale, nautical miles (suffix
// "m"), or degrees (suffix "d").
type WindowSizeKind int

const (
	SizeScale WindowSizeKind = iota
	SizeNauticalMiles
	SizeDegrees
)

// Window is the user-specified rendering window: either a center plus
// a size, an explicit bbox, or a four-corner polygon mapped onto the
// page rectangle.
type Window struct {
	// Mode selects which of the fields below is populated.
	Mode WindowMode

	Center   LatLon
	SizeKind WindowSizeKind
	Size     float64

	BBox BBox

	// Corners holds exactly 4 points for WindowPolygon, ordered
	// left-lower, right-lower, right-upper, left-upper.
	Corners [4]LatLon
}

type WindowMode int

const (
	WindowCenterScale WindowMode = iota
	WindowBBox
	WindowPolygon
)

// ResolveBBox computes the effective bbox for a center+size window.
// Scale and physical-size windows need the page's aspect ratio to turn
// a single number into width/height degrees; that happens in
// NewFrame, not here, so ResolveBBox only handles the
// WindowBBox/WindowPolygon cases directly expressible without a page.
func (w Window) ResolveBBox() (BBox, error) {
	switch w.Mode {
	case WindowBBox:
		return w.BBox, nil
	case WindowPolygon:
		minLat, maxLat := w.Corners[0].Lat, w.Corners[0].Lat
		minLon, maxLon := w.Corners[0].Lon, w.Corners[0].Lon
		for _, c := range w.Corners[1:] {
			minLat = minFloat(minLat, c.Lat)
			maxLat = maxFloat(maxLat, c.Lat)
			minLon = minFloat(minLon, c.Lon)
			maxLon = maxFloat(maxLon, c.Lon)
		}
		return BBox{LL: LatLon{minLat, minLon}, RU: LatLon{maxLat, maxLon}}, nil
	default:
		return BBox{}, fmt.Errorf("geo: ResolveBBox called on a center+scale window; call NewFrame instead")
	}
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
