// Package geo provides spherical-Earth geodesy for the ring overlays.
package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// EarthRadiusMeters is the WGS-84 equatorial radius. The model is a sphere,
// which is accurate to well under a meter at ring scales (<= a few km).
const EarthRadiusMeters = 6378137.0

// Point is a geographic coordinate in decimal degrees.
type Point struct {
	Lon float64 // Longitude in degrees, (-180, 180]
	Lat float64 // Latitude in degrees, [-90, 90]
}

// NewPoint returns a point with longitude wrapped to (-180, 180] and
// latitude clamped to [-90, 90].
func NewPoint(lon, lat float64) Point {
	return Point{Lon: NormalizeLongitude(lon), Lat: clampLatitude(lat)}
}

// Orb returns the point as an orb.Point for GeoJSON encoding.
func (p Point) Orb() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// Valid reports whether both components are finite numbers.
func (p Point) Valid() bool {
	return isFinite(p.Lon) && isFinite(p.Lat)
}

// String formats the point as "lon, lat" with 5 decimals (~1 m).
func (p Point) String() string {
	return fmt.Sprintf("%.5f, %.5f", p.Lon, p.Lat)
}

// Destination returns the point reached by travelling distanceMeters along
// the initial great-circle bearing bearingDeg (0 = north, clockwise) from
// origin.
func Destination(origin Point, bearingDeg, distanceMeters float64) Point {
	if distanceMeters == 0 {
		return Point{Lon: NormalizeLongitude(origin.Lon), Lat: origin.Lat}
	}

	angular := distanceMeters / EarthRadiusMeters
	bearing := degToRad(bearingDeg)
	lat := degToRad(origin.Lat)
	lon := degToRad(origin.Lon)

	sinLat, cosLat := math.Sin(lat), math.Cos(lat)
	sinAng, cosAng := math.Sin(angular), math.Cos(angular)

	destLat := math.Asin(sinLat*cosAng + cosLat*sinAng*math.Cos(bearing))
	destLon := lon + math.Atan2(
		math.Sin(bearing)*sinAng*cosLat,
		cosAng-sinLat*math.Sin(destLat),
	)

	return Point{
		Lon: NormalizeLongitude(radToDeg(destLon)),
		Lat: radToDeg(destLat),
	}
}

// Distance returns the haversine great-circle distance in meters on the
// same sphere Destination uses.
func Distance(a, b Point) float64 {
	dLat := degToRad(b.Lat - a.Lat)
	dLon := degToRad(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(degToRad(a.Lat))*math.Cos(degToRad(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * EarthRadiusMeters * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// LocalOffset returns the east and north offsets in meters of p relative to
// center using an equirectangular approximation around center.
func LocalOffset(center, p Point) (east, north float64) {
	dLon := NormalizeLongitude(p.Lon - center.Lon)
	east = degToRad(dLon) * EarthRadiusMeters * math.Cos(degToRad(center.Lat))
	north = degToRad(p.Lat-center.Lat) * EarthRadiusMeters
	return east, north
}

// NormalizeLongitude wraps a longitude to (-180, 180]. In-range values are
// returned unchanged.
func NormalizeLongitude(lon float64) float64 {
	if !isFinite(lon) || (lon > -180 && lon <= 180) {
		return lon
	}
	wrapped := math.Mod(math.Mod(lon+180, 360)+360, 360) - 180
	if wrapped == -180 {
		return 180
	}
	return wrapped
}

// NormalizeBearing maps a bearing in degrees to (-180, 180].
//
// The wrap is ((b mod 360) + 360) mod 360, then 360 is subtracted when the
// wrapped value exceeds 180. Bearing displays and stored viewport bearings
// both go through this function so they always agree.
func NormalizeBearing(b float64) float64 {
	wrapped := math.Mod(math.Mod(b, 360)+360, 360)
	if wrapped > 180 {
		return wrapped - 360
	}
	return wrapped
}

func clampLatitude(lat float64) float64 {
	if lat > 90 {
		return 90
	}
	if lat < -90 {
		return -90
	}
	return lat
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// degToRad converts degrees to radians.
func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// radToDeg converts radians to degrees.
func radToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
