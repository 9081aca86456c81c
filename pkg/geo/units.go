// Package geo implements projection and page geometry:
// geographic-to-page coordinate mapping (Mercator, Transverse Mercator,
// Adams Square II), unit conversions, and page sizing/rotation. Every
// geometric action in pkg/action depends on this package.
package geo

import "math"

// Unit identifies one of the measurement units the engine converts
// between.
type Unit int

const (
	UnitPixel Unit = iota
	UnitMillimeter
	UnitCentimeter
	UnitInch
	UnitPoint
	UnitNauticalMile
	UnitKilometer
	UnitMeter
	UnitFoot
	UnitDegree
	UnitArcMinute
	UnitCableLength // "kbl", one tenth of a nautical mile
)

const (
	mmPerInch = 25.4
)

// MMToPoint converts a millimeter length to typographic points (72/in),
// independent of DPI.
func MMToPoint(mm float64) float64 {
	return mm * 72 / mmPerInch
}

// MMToPixel converts a millimeter length to device pixels at the given
// DPI.
func MMToPixel(mm float64, dpi int) float64 {
	return mm * float64(dpi) / mmPerInch
}

// PixelToMM is the inverse of MMToPixel.
func PixelToMM(px float64, dpi int) float64 {
	return px * mmPerInch / float64(dpi)
}

// PixelToPoint converts device pixels to typographic points at the
// given DPI.
func PixelToPoint(px float64, dpi int) float64 {
	return px * 72 / float64(dpi)
}

// PointToPixel is the inverse of PixelToPoint.
func PointToPixel(pt float64, dpi int) float64 {
	return pt * float64(dpi) / 72
}

// UnitConverter converts page-pixel lengths to/from geographic and
// physical units. MeanLatLen is the mean-latitude degree length of the
// window; W is the page's pixel width along the window's longitude
// span.
type UnitConverter struct {
	DPI        int
	MeanLatLen float64 // degrees of latitude spanned per window, cached from the projection
	W          float64 // page width in px corresponding to the window's longitude span
}

// PxToUnit converts a pixel length x into the given unit.
func (c UnitConverter) PxToUnit(x float64, u Unit) float64 {
	switch u {
	case UnitPixel:
		return x
	case UnitCentimeter:
		return x * mmPerInch / float64(c.DPI) / 10
	case UnitMillimeter:
		return PixelToMM(x, c.DPI)
	case UnitPoint:
		return PixelToPoint(x, c.DPI)
	case UnitInch:
		return x / float64(c.DPI)
	case UnitNauticalMile, UnitArcMinute:
		return x * c.MeanLatLen * 60 / c.W
	case UnitKilometer:
		return x * c.MeanLatLen * 60 / c.W * 1.852
	case UnitMeter:
		return x * c.MeanLatLen * 60 / c.W * 1852
	case UnitCableLength:
		return x * c.MeanLatLen * 60 / c.W * 10
	case UnitFoot:
		return x * c.MeanLatLen * 60 / c.W * 6076.12
	case UnitDegree:
		return x * c.MeanLatLen / c.W
	default:
		return math.NaN()
	}
}

// UnitToPx is the inverse of PxToUnit.
func (c UnitConverter) UnitToPx(x float64, u Unit) float64 {
	switch u {
	case UnitPixel:
		return x
	case UnitCentimeter:
		return x / mmPerInch * float64(c.DPI) * 10
	case UnitMillimeter:
		return MMToPixel(x, c.DPI)
	case UnitPoint:
		return PointToPixel(x, c.DPI)
	case UnitInch:
		return x * float64(c.DPI)
	case UnitNauticalMile, UnitArcMinute:
		return x / c.MeanLatLen / 60 * c.W
	case UnitKilometer:
		return x / c.MeanLatLen / 60 * c.W / 1.852
	case UnitMeter:
		return x / c.MeanLatLen / 60 * c.W / 1852
	case UnitCableLength:
		return x / c.MeanLatLen / 60 * c.W / 10
	case UnitFoot:
		return x / c.MeanLatLen / 60 * c.W / 6076.12
	case UnitDegree:
		return x / c.MeanLatLen * c.W
	default:
		return math.NaN()
	}
}
