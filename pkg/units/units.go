// Package units converts provider-native measurements into the imperial units
// shown on the dashboard.
package units

import "math"

var cardinals = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// MetersToFeet converts a length in meters to feet.
func MetersToFeet(m float64) float64 {
	return m * 3.28084
}

// MPSToMPH converts meters per second to miles per hour.
func MPSToMPH(mps float64) float64 {
	return mps * 2.23694
}

// CelsiusToFahrenheit converts a temperature in °C to °F.
func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// DegreesToCardinal maps a compass bearing onto the 8-point rose.
func DegreesToCardinal(deg float64) string {
	normalized := math.Mod(deg, 360)
	if normalized < 0 {
		normalized += 360
	}
	idx := int(math.Round(normalized/45)) % 8
	return cardinals[idx]
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// Finite reports whether v is neither NaN nor infinite.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
