package geo

import "math"

// PCoord is a bearing/distance pair: bearing in degrees clockwise from
// north, distance in degrees of great-circle arc. Used by cat_poly's
// gap check, ins_eqdist's equidistant placement, and the bearings,
// mask and poly_len actions.
type PCoord struct {
	Bearing float64 // degrees, clockwise from north, [0, 360)
	Dist    float64 // degrees of arc
}

// CoordDiff returns the initial bearing and great-circle distance (in
// degrees of arc) from src to dst, using the standard spherical
// bearing and central-angle formulas.
func CoordDiff(src, dst LatLon) PCoord {
	lat1 := src.Lat * math.Pi / 180
	lat2 := dst.Lat * math.Pi / 180
	dLon := (dst.Lon - src.Lon) * math.Pi / 180

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	bearing := math.Atan2(y, x) * 180 / math.Pi
	bearing = fmod2(bearing, 360)

	central := math.Acos(clamp(math.Sin(lat1)*math.Sin(lat2)+math.Cos(lat1)*math.Cos(lat2)*math.Cos(dLon), -1, 1))
	return PCoord{Bearing: bearing, Dist: central * 180 / math.Pi}
}

// DestCoord returns the point reached from src by travelling pc.Dist
// degrees of arc along bearing pc.Bearing, the inverse of CoordDiff.
func DestCoord(src LatLon, pc PCoord) LatLon {
	lat1 := src.Lat * math.Pi / 180
	lon1 := src.Lon * math.Pi / 180
	brng := pc.Bearing * math.Pi / 180
	d := pc.Dist * math.Pi / 180

	lat2 := math.Asin(clamp(math.Sin(lat1)*math.Cos(d)+math.Cos(lat1)*math.Sin(d)*math.Cos(brng), -1, 1))
	lon2 := lon1 + math.Atan2(math.Sin(brng)*math.Sin(d)*math.Cos(lat1), math.Cos(d)-math.Sin(lat1)*math.Sin(lat2))

	return LatLon{Lat: lat2 * 180 / math.Pi, Lon: lonmod(lon2 * 180 / math.Pi)}
}

// fmod2 is a floating modulo that always returns a non-negative result
// in [0, m), for bearing wraparound.
func fmod2(a, m float64) float64 {
	r := math.Mod(a, m)
	if r < 0 {
		r += m
	}
	return r
}

// lonmod wraps a longitude into [-180, 180].
func lonmod(lon float64) float64 {
	lon = math.Mod(lon, 360)
	if lon < -180 {
		lon += 360
	}
	if lon > 180 {
		lon -= 360
	}
	return lon
}

// sgn returns -1, 0, or 1 matching the sign of x.
func sgn(x float64) int {
	switch {
	case x < 0:
		return -1
	case x > 0:
		return 1
	default:
		return 0
	}
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
