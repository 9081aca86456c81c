package geo

import (
	"fmt"
	"math"
)

// ProjKind selects the projection family.
type ProjKind int

const (
	ProjMercator ProjKind = iota
	ProjTransverseMercator
	ProjAdamsSquareII
)

func ParseProjKind(s string) (ProjKind, error) {
	switch s {
	case "", "mercator":
		return ProjMercator, nil
	case "transversal":
		return ProjTransverseMercator, nil
	case "adams2":
		return ProjAdamsSquareII, nil
	default:
		return 0, fmt.Errorf("geo: unknown projection %q", s)
	}
}

// Frame is the complete geographic-to-page mapping for one rendering
// run: the resolved bounding box, the pixel canvas size, the
// hyperbolic-stretch parameters for Mercator/Transverse Mercator, and
// the projection kind.
type Frame struct {
	Proj ProjKind

	BBox BBox

	W, H float64 // page size in px (pre-rotation)
	DPI  int

	WC, HC           float64 // degrees spanned, longitude/latitude
	MeanLat, MeanLon float64
	MeanLatLen       float64 // degrees of latitude per window
	Lath, LathLen    float64 // hyperbolic stretch parameters
	TransversalLat   float64
	PolygonWindow    bool
	PW               [4]LatLon

	Rotation float64 // radians
}

// NewFrame builds a Frame from a window specification and page. A
// (center, scale) window needs a short iteration to converge the
// north/south latitudes, since the hyperbolic stretch is itself a
// function of those latitudes.
func NewFrame(win Window, page Page, proj ProjKind) (*Frame, error) {
	dpi := page.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	w, h := page.PixelSize()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("geo: page has zero width or height")
	}

	f := &Frame{
		Proj:     proj,
		W:        w,
		H:        h,
		DPI:      dpi,
		Rotation: page.RotationDeg * math.Pi / 180,
	}

	switch win.Mode {
	case WindowCenterScale:
		f.MeanLat = win.Center.Lat
		f.MeanLon = win.Center.Lon
		if proj == ProjTransverseMercator {
			f.TransversalLat = f.MeanLat
			f.MeanLat = 0
		}
		switch win.SizeKind {
		case SizeScale:
			f.MeanLatLen = win.Size * (w / float64(dpi)) * 2.54 / (60.0 * 1852 * 100)
		case SizeNauticalMiles:
			f.MeanLatLen = win.Size / 60
		case SizeDegrees:
			f.WC = win.Size
			f.MeanLatLen = f.WC * math.Cos(f.MeanLat*math.Pi/180)
		}
		f.initBBoxFromMeanLatLen(w, h)
	case WindowBBox:
		bb, err := win.ResolveBBox()
		if err != nil {
			return nil, err
		}
		f.BBox = bb
		f.MeanLon = (bb.LL.Lon + bb.RU.Lon) / 2
		f.MeanLat = (bb.LL.Lat + bb.RU.Lat) / 2
		f.WC = bb.Width()
		f.HC = bb.Height()
		f.MeanLatLen = f.WC * math.Cos(f.MeanLat*math.Pi/180)
		f.updateHyperbolic()
	case WindowPolygon:
		bb, err := win.ResolveBBox()
		if err != nil {
			return nil, err
		}
		f.BBox = bb
		f.PolygonWindow = true
		f.PW = win.Corners
		f.MeanLon = (bb.LL.Lon + bb.RU.Lon) / 2
		f.MeanLat = (bb.LL.Lat + bb.RU.Lat) / 2
		f.WC = bb.Width()
		f.HC = bb.Height()
		f.updateHyperbolic()
	default:
		return nil, fmt.Errorf("geo: unknown window mode %d", win.Mode)
	}

	return f, nil
}

func (f *Frame) updateHyperbolic() {
	f.Lath = math.Asinh(math.Tan(f.MeanLat * math.Pi / 180))
	f.LathLen = math.Asinh(math.Tan(f.BBox.RU.Lat*math.Pi/180)) - math.Asinh(math.Tan(f.BBox.LL.Lat*math.Pi/180))
}

// initBBoxFromMeanLatLen derives WC/HC and the bbox from MeanLatLen
// and, for Mercator/Transverse Mercator, iterates 3 times to converge
// the north/south latitudes.
func (f *Frame) initBBoxFromMeanLatLen(w, h float64) {
	f.WC = f.MeanLatLen / math.Cos(f.MeanLat*math.Pi/180)
	f.BBox.LL.Lon = f.MeanLon - f.WC/2
	f.BBox.RU.Lon = f.MeanLon + f.WC/2

	f.HC = f.MeanLatLen * h / w
	if f.Proj == ProjAdamsSquareII {
		f.BBox.RU.Lat = f.MeanLat + f.HC/2
		f.BBox.LL.Lat = f.MeanLat - f.HC/2
		return
	}

	f.BBox.RU.Lat = f.MeanLat + f.HC/2
	f.BBox.LL.Lat = f.MeanLat - f.HC/2

	for i := 0; i < 3; i++ {
		f.Lath = math.Asinh(math.Tan(f.MeanLat * math.Pi / 180))
		f.LathLen = math.Asinh(math.Tan(f.BBox.RU.Lat*math.Pi/180)) - math.Asinh(math.Tan(f.BBox.LL.Lat*math.Pi/180))

		_, lat := f.pxf2geoMercator(0, 0)
		f.BBox.RU.Lat = lat
		_, lat = f.pxf2geoMercator(0, h)
		f.BBox.LL.Lat = lat
		f.HC = f.BBox.RU.Lat - f.BBox.LL.Lat
	}
}

// GeoToPx converts a geographic coordinate to page pixel coordinates.
func (f *Frame) GeoToPx(ll LatLon) (x, y float64) {
	switch f.Proj {
	case ProjAdamsSquareII:
		return f.geoToPxAdams(ll)
	default:
		if f.PolygonWindow {
			return f.geoToPxRect(ll)
		}
		return f.geoToPxMercator(ll)
	}
}

// PxToGeo is the inverse of GeoToPx.
func (f *Frame) PxToGeo(x, y float64) LatLon {
	switch f.Proj {
	case ProjAdamsSquareII:
		return f.pxToGeoAdams(x, y)
	default:
		lon, lat := f.pxf2geoMercator(x, y)
		return LatLon{Lat: lat, Lon: lon}
	}
}

func (f *Frame) geoToPxMercator(ll LatLon) (x, y float64) {
	x = (ll.Lon - f.BBox.LL.Lon) * f.W / f.WC
	y = f.H * (0.5 - (math.Asinh(math.Tan(ll.Lat*math.Pi/180))-f.Lath)/f.LathLen)
	return x, y
}

func (f *Frame) pxf2geoMercator(x, y float64) (lon, lat float64) {
	lon = x*f.WC/f.W + f.BBox.LL.Lon
	lat = math.Atan(math.Sinh(f.LathLen*(0.5-y/f.H)+f.Lath)) * 180 / math.Pi
	return lon, lat
}

// geoToPxRect implements the 4-corner-polygon rectangular projection:
// it bilinearly maps the corner quadrilateral onto the page rectangle.
func (f *Frame) geoToPxRect(ll LatLon) (x, y float64) {
	pw := f.PW
	x0 := ll.Lon - pw[0].Lon
	y0 := ll.Lat - pw[0].Lat

	sx := x0 / (pw[1].Lon - pw[0].Lon)
	sy := y0 / (pw[3].Lat - pw[0].Lat)

	dx := pw[3].Lon - pw[0].Lon
	dy := pw[1].Lat - pw[0].Lat
	mx := (pw[2].Lon - pw[3].Lon) / (pw[1].Lon - pw[0].Lon)
	my := (pw[2].Lat - pw[1].Lat) / (pw[3].Lat - pw[0].Lat)

	x0 -= dx * sy
	x0 /= 1 - (1-mx)*sy

	y0 -= dy * sx
	y0 /= 1 - (1-my)*sx

	x = x0 * f.W / (pw[1].Lon - pw[0].Lon)
	y = f.H - y0*f.H/(pw[3].Lat-pw[0].Lat)
	return x, y
}

func (f *Frame) geoToPxAdams(ll LatLon) (x, y float64) {
	p := adamsSquareII(ll.Lon*math.Pi/180, ll.Lat*math.Pi/180)
	x = (p.X + adamsLamScale) * f.W / (2 * adamsLamScale)
	y = f.H - (p.Y+adamsPhiScale)*f.H/(2*adamsPhiScale)
	return x, y
}

func (f *Frame) pxToGeoAdams(x, y float64) LatLon {
	ax := x*2*adamsLamScale/f.W - adamsLamScale
	ay := (f.H-y)*2*adamsPhiScale/f.H - adamsPhiScale
	lam, phi := adamsInverse(ax, ay)
	return LatLon{Lat: phi * 180 / math.Pi, Lon: lam * 180 / math.Pi}
}

// GeoToPt converts a geographic coordinate to typographic points at
// the frame's DPI, the mapping every drawing action ultimately calls.
func (f *Frame) GeoToPt(ll LatLon) (x, y float64) {
	px, py := f.GeoToPx(ll)
	return PixelToPoint(px, f.DPI), PixelToPoint(py, f.DPI)
}

// UnitConverter returns a converter bound to this frame's DPI and mean
// latitude length.
func (f *Frame) UnitConverter() UnitConverter {
	return UnitConverter{DPI: f.DPI, MeanLatLen: f.MeanLatLen, W: f.W}
}
