package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// EarthRadiusKm is the mean Earth radius used by the Haversine formula
const EarthRadiusKm = 6371.0

const kmToMiles = 0.621371

// ErrInvalidCoordinate is returned when a point is missing, out of range or unset (0,0)
var ErrInvalidCoordinate = errors.New("invalid coordinates provided")

// Category buckets a distance for routing decisions
type Category string

const (
	VeryClose Category = "VERY_CLOSE"
	Close     Category = "CLOSE"
	Moderate  Category = "MODERATE"
	Far       Category = "FAR"
	VeryFar   Category = "VERY_FAR"
)

// Point is a location given either as latitude/longitude or as a
// GeoJSON coordinates pair [longitude, latitude]. Coordinates win when both are set.
type Point struct {
	Type        string    `json:"type,omitempty"`
	Coordinates []float64 `json:"coordinates,omitempty"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
}

// LatLng builds a point from a latitude/longitude pair
func LatLng(lat, lng float64) Point {
	return Point{Latitude: &lat, Longitude: &lng}
}

// GeoJSONPoint builds a GeoJSON point; note the longitude-first order
func GeoJSONPoint(lng, lat float64) Point {
	return Point{Type: "Point", Coordinates: []float64{lng, lat}}
}

// Distance is the result of a distance calculation, rounded to two decimals
type Distance struct {
	Kilometers float64 `json:"kilometers"`
	Miles      float64 `json:"miles"`
	Meters     float64 `json:"meters"`
}

func (p Point) resolve() (float64, float64, error) {
	var lat, lng float64
	switch {
	case p.Coordinates != nil:
		if len(p.Coordinates) < 2 {
			return 0, 0, ErrInvalidCoordinate
		}
		lng, lat = p.Coordinates[0], p.Coordinates[1]
	case p.Latitude != nil && p.Longitude != nil:
		lat, lng = *p.Latitude, *p.Longitude
	default:
		return 0, 0, ErrInvalidCoordinate
	}

	if !IsValidCoordinate(lat, lng) {
		return 0, 0, ErrInvalidCoordinate
	}
	return lat, lng, nil
}

// IsValidCoordinate reports whether lat/lng are in range and not the (0,0) sentinel
func IsValidCoordinate(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return false
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return false
	}
	return !(lat == 0 && lng == 0)
}

// Calculate returns the great-circle distance between a and b
func Calculate(a, b Point) (Distance, error) {
	lat1, lng1, err := a.resolve()
	if err != nil {
		return Distance{}, err
	}
	lat2, lng2, err := b.resolve()
	if err != nil {
		return Distance{}, err
	}

	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	// rounding can push antipodal points just past 1
	h = math.Min(1, math.Max(0, h))
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	km := EarthRadiusKm * c

	return Distance{
		Kilometers: round2(km),
		Miles:      round2(km * kmToMiles),
		Meters:     round2(km * 1000),
	}, nil
}

// Format renders meters under 1 km, kilometers under 10 km, and kilometers with miles beyond
func Format(d Distance) string {
	switch {
	case d.Kilometers < 1:
		return fmt.Sprintf("%s meters", formatNumber(d.Meters))
	case d.Kilometers < 10:
		return fmt.Sprintf("%s km", formatNumber(d.Kilometers))
	default:
		return fmt.Sprintf("%s km (%s miles)", formatNumber(d.Kilometers), formatNumber(d.Miles))
	}
}

// CategoryFor buckets a distance in kilometers
func CategoryFor(km float64) Category {
	switch {
	case km < 5:
		return VeryClose
	case km < 15:
		return Close
	case km < 30:
		return Moderate
	case km < 50:
		return Far
	default:
		return VeryFar
	}
}

func toRadians(deg float64) float64 {
	return deg * (math.Pi / 180)
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
