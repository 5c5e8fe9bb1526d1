package domain

import "math"

// KmPerDegree approximates the length of one degree of latitude.
const KmPerDegree = 111.0

// Immutable geographic coordinates (latitude, longitude).
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Default position used when a truck has never reported one (Lagos).
var DefaultPosition = Coordinates{Lat: 6.5244, Lon: 3.3792}

// PlanarDistanceKm approximates the distance between two nearby points,
// treating one degree as 111 km and scaling longitude by cos(latitude).
func (c Coordinates) PlanarDistanceKm(other Coordinates) float64 {
	dLat := (other.Lat - c.Lat) * KmPerDegree
	dLon := (other.Lon - c.Lon) * KmPerDegree * math.Cos(c.Lat*math.Pi/180)
	return math.Sqrt(dLat*dLat + dLon*dLon)
}
