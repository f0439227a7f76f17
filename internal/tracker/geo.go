// Package tracker accumulates elapsed time, speed and distance for a live hike.
package tracker

import (
	"fmt"
	"math"
	"time"
)

// EarthRadiusKm is the mean Earth radius used by Haversine.
const EarthRadiusKm = 6371.0

// Point is a geographic coordinate in decimal degrees.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Sample is one reading from the device location stream.
type Sample struct {
	Point
	// Speed is the reported ground speed in metres per second. Devices report
	// negative values when the speed is unknown.
	Speed     float64   `json:"speed"`
	Timestamp time.Time `json:"timestamp"`
}

// Haversine returns the great-circle distance between a and b in kilometres.
func Haversine(a, b Point) float64 {
	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Latitude))*math.Cos(toRadians(b.Latitude))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// SpeedKmh converts metres per second to kilometres per hour, never below zero.
func SpeedKmh(metersPerSecond float64) float64 {
	if metersPerSecond <= 0 || math.IsNaN(metersPerSecond) {
		return 0
	}
	return metersPerSecond * 3.6
}

// FormatElapsed renders seconds as mm:ss. Minutes keep growing past 59.
func FormatElapsed(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// FormatDistance renders kilometres with two decimals.
func FormatDistance(km float64) string {
	return fmt.Sprintf("%.2f", km)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
