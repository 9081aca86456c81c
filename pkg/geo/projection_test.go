package geo

import (
	"math"
	"testing"

	"pgregory.net/rapid"
)

func testFrame(t testing.TB) *Frame {
	t.Helper()
	win := Window{
		Mode: WindowBBox,
		BBox: BBox{LL: LatLon{Lat: 45, Lon: 10}, RU: LatLon{Lat: 46, Lon: 12}},
	}
	page, err := ParsePageSpec("A3", DefaultDPI)
	if err != nil {
		t.Fatalf("ParsePageSpec: %v", err)
	}
	f, err := NewFrame(win, page, ProjMercator)
	if err != nil {
		t.Fatalf("NewFrame: %v", err)
	}
	return f
}

func TestMercatorRoundTrip(t *testing.T) {
	f := testFrame(t)
	pts := []LatLon{
		{Lat: 45.5, Lon: 11},
		{Lat: 45.01, Lon: 10.01},
		{Lat: 45.99, Lon: 11.99},
	}
	for _, ll := range pts {
		x, y := f.GeoToPx(ll)
		back := f.PxToGeo(x, y)
		if math.Abs(back.Lat-ll.Lat) > 1e-7 || math.Abs(back.Lon-ll.Lon) > 1e-7 {
			t.Fatalf("round trip for %+v: got %+v", ll, back)
		}
	}
}

// TestProperty_MercatorRoundTrip checks the Mercator round-trip
// property for arbitrary points inside the page bbox.
func TestProperty_MercatorRoundTrip(t *testing.T) {
	f := testFrame(t)
	rapid.Check(t, func(t *rapid.T) {
		lat := rapid.Float64Range(f.BBox.LL.Lat+1e-6, f.BBox.RU.Lat-1e-6).Draw(t, "lat")
		lon := rapid.Float64Range(f.BBox.LL.Lon+1e-6, f.BBox.RU.Lon-1e-6).Draw(t, "lon")
		x, y := f.GeoToPx(LatLon{Lat: lat, Lon: lon})
		back := f.PxToGeo(x, y)
		if math.Abs(back.Lat-lat) > 1e-7 {
			t.Fatalf("lat round trip: got %v want %v", back.Lat, lat)
		}
		if math.Abs(back.Lon-lon) > 1e-7 {
			t.Fatalf("lon round trip: got %v want %v", back.Lon, lon)
		}
	})
}

func TestAdamsSquareIIRoundTrip(t *testing.T) {
	win := Window{Mode: WindowBBox, BBox: BBox{LL: LatLon{Lat: -10, Lon: -10}, RU: LatLon{Lat: 10, Lon: 10}}}
	page, _ := ParsePageSpec("A3", DefaultDPI)
	f, err := NewFrame(win, page, ProjAdamsSquareII)
	if err != nil {
		t.Fatalf("NewFrame: %v", err)
	}

	pts := []LatLon{{0, 0}, {5, 5}, {-5, -5}, {2, -7}}
	for _, ll := range pts {
		x, y := f.GeoToPx(ll)
		back := f.PxToGeo(x, y)
		if math.Abs(back.Lat-ll.Lat) > 1e-6 || math.Abs(back.Lon-ll.Lon) > 1e-6 {
			t.Fatalf("adams round trip for %+v: got %+v", ll, back)
		}
	}
}

func TestPageRotationEnclosesOriginal(t *testing.T) {
	p := Page{WidthMM: 297, HeightMM: 420, DPI: 300, RotationDeg: 30}
	w, h, corners := p.RotatedPixelSize()
	if w <= 0 || h <= 0 {
		t.Fatalf("RotatedPixelSize returned non-positive size %v x %v", w, h)
	}
	for _, c := range corners {
		if c.X < -1e-6 || c.X > w+1e-6 || c.Y < -1e-6 || c.Y > h+1e-6 {
			t.Fatalf("rotated corner %+v falls outside enclosing rect %vx%v", c, w, h)
		}
	}
}

func TestCoordDiffDestCoordRoundTrip(t *testing.T) {
	src := LatLon{Lat: 10, Lon: 20}
	dst := LatLon{Lat: 12, Lon: 21}
	pc := CoordDiff(src, dst)
	back := DestCoord(src, pc)
	if math.Abs(back.Lat-dst.Lat) > 1e-6 || math.Abs(back.Lon-dst.Lon) > 1e-6 {
		t.Fatalf("CoordDiff/DestCoord round trip: got %+v want %+v", back, dst)
	}
}
