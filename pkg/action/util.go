package action

import (
	"fmt"

	"github.com/smrender/smrender/pkg/geo"
)

// formatFloat renders a generated tag value (bearing, course
// deviation, distance) with one-decimal precision.
func formatFloat(f float64) string {
	return fmt.Sprintf("%.1f", f)
}

// formatLatLon renders a coordinate as "lat,lon" for synthesized
// centroid tags.
func formatLatLon(ll geo.LatLon) string {
	return fmt.Sprintf("%f,%f", ll.Lat, ll.Lon)
}

// mmToDegreesLat converts a millimeter length to degrees of latitude
// via nautical miles (1 arcminute of latitude == 1 nm == 1852m). It
// sits here rather than in pkg/geo's page-unit table because it is a
// geographic (not page) conversion specific to action parameters.
func mmToDegreesLat(mm float64) float64 {
	const metersPerNauticalMile = 1852.0
	meters := mm / 1000
	arcMinutes := meters / metersPerNauticalMile
	return arcMinutes / 60
}
