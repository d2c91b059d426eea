// Package geo provides great-circle distance utilities.
// This is part of the platform layer and contains no business logic.
package geo

import "math"

// EarthRadiusMeters is the mean radius of the spherical Earth model.
const EarthRadiusMeters = 6371000

// Point is a coordinate in decimal degrees.
type Point struct {
	Latitude  float64
	Longitude float64
}

// Valid reports whether the point lies within the WGS84 coordinate ranges.
func (p Point) Valid() bool {
	if math.IsNaN(p.Latitude) || math.IsNaN(p.Longitude) {
		return false
	}
	return p.Latitude >= -90 && p.Latitude <= 90 && p.Longitude >= -180 && p.Longitude <= 180
}

// DistanceMeters returns the haversine distance between a and b rounded to
// the nearest meter. Callers compare the result against integer radii.
func DistanceMeters(a, b Point) int {
	return int(math.Round(haversineMeters(a, b)))
}

func haversineMeters(a, b Point) float64 {
	const degToRad = math.Pi / 180
	lat1 := a.Latitude * degToRad
	lat2 := b.Latitude * degToRad
	dlat := lat2 - lat1
	dlon := (b.Longitude - a.Longitude) * degToRad

	h := math.Sin(dlat/2)*math.Sin(dlat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	// rounding can push h marginally outside [0,1] near antipodes
	h = math.Min(1, math.Max(0, h))
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusMeters * c
}

// Nearest returns the index of the candidate closest to origin and its
// distance in meters. It returns -1 when candidates is empty.
func Nearest(origin Point, candidates []Point) (int, int) {
	best, bestDist := -1, 0
	for i, candidate := range candidates {
		d := DistanceMeters(origin, candidate)
		if best == -1 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, bestDist
}
