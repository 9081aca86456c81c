package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// paperSizesMM lists the standard paper sizes the "page" configuration
// option accepts, in millimeters, portrait orientation.
var paperSizesMM = map[string][2]float64{
	"A0":     {841, 1189},
	"A1":     {594, 841},
	"A2":     {420, 594},
	"A3":     {297, 420},
	"A4":     {210, 297},
	"A":      {216, 279}, // ANSI A / letter
	"B":      {279, 432}, // ANSI B / tabloid-ledger
	"C":      {432, 559},
	"D":      {559, 864},
	"E":      {864, 1118},
	"LETTER": {216, 279},
	"LEGAL":  {216, 356},
	"LEDGER": {279, 432},
}

// Page describes the physical output sheet: its size in millimeters,
// DPI, optional rotation in degrees, and border margin in millimeters.
type Page struct {
	WidthMM     float64
	HeightMM    float64
	DPI         int
	RotationDeg float64
	BorderMM    float64
	Landscape   bool
}

// DefaultDPI is the rendering resolution used when none is configured.
const DefaultDPI = 300

// ParsePageSpec parses a page spec string: one of A0…A4, A/B/C/D/E,
// letter, legal, ledger, or "WxH" in mm, optionally followed by
// ":angle-in-degrees".
func ParsePageSpec(spec string, dpi int) (Page, error) {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	name := spec
	angle := 0.0
	if idx := strings.IndexByte(spec, ':'); idx >= 0 {
		name = spec[:idx]
		a, err := strconv.ParseFloat(spec[idx+1:], 64)
		if err != nil {
			return Page{}, fmt.Errorf("geo: invalid page rotation %q: %w", spec[idx+1:], err)
		}
		angle = a
	}

	if wh, ok := paperSizesMM[strings.ToUpper(name)]; ok {
		return Page{WidthMM: wh[0], HeightMM: wh[1], DPI: dpi, RotationDeg: angle}, nil
	}

	if idx := strings.IndexAny(name, "xX"); idx > 0 {
		w, err1 := strconv.ParseFloat(name[:idx], 64)
		h, err2 := strconv.ParseFloat(name[idx+1:], 64)
		if err1 == nil && err2 == nil && w > 0 && h > 0 {
			return Page{WidthMM: w, HeightMM: h, DPI: dpi, RotationDeg: angle}, nil
		}
	}

	return Page{}, fmt.Errorf("geo: unrecognised page spec %q", spec)
}

// PixelSize returns the page's width and height in device pixels at its
// configured DPI, after swapping for Landscape.
func (p Page) PixelSize() (w, h float64) {
	wmm, hmm := p.WidthMM, p.HeightMM
	if p.Landscape {
		wmm, hmm = hmm, wmm
	}
	return MMToPixel(wmm, p.DPI), MMToPixel(hmm, p.DPI)
}

// RotatedPixelSize inflates the page's own w×h to the smallest
// axis-aligned rectangle enclosing the page rotated by RotationDeg
// about its center. It also returns the four rotated page corners in
// coordinates relative to the inflated rectangle's origin, for later
// canvas emission.
func (p Page) RotatedPixelSize() (w, h float64, corners [4]struct{ X, Y float64 }) {
	w0, h0 := p.PixelSize()
	if p.RotationDeg == 0 {
		corners = [4]struct{ X, Y float64 }{
			{0, 0}, {w0, 0}, {w0, h0}, {0, h0},
		}
		return w0, h0, corners
	}

	theta := p.RotationDeg * math.Pi / 180
	cos, sin := math.Abs(math.Cos(theta)), math.Abs(math.Sin(theta))
	w = w0*cos + h0*sin
	h = w0*sin + h0*cos

	// Corners of the unrotated page centered in the inflated rect.
	ox, oy := (w-w0)/2, (h-h0)/2
	cx, cy := w/2, h/2
	raw := [4][2]float64{{0, 0}, {w0, 0}, {w0, h0}, {0, h0}}
	for i, p0 := range raw {
		// translate to centered coordinates, rotate, translate back
		x := p0[0] + ox - cx
		y := p0[1] + oy - cy
		rx := x*math.Cos(theta) - y*math.Sin(theta) + cx
		ry := x*math.Sin(theta) + y*math.Cos(theta) + cy
		corners[i] = struct{ X, Y float64 }{rx, ry}
	}
	return w, h, corners
}
