package units

import "math"

// CompassUnknown is returned when a wind direction cannot be resolved.
const CompassUnknown = "?"

var compassPoints = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// CToF converts Celsius to Fahrenheit, rounded to one decimal.
func CToF(c float64) float64 {
	return round1(c*9/5 + 32)
}

// KnotsToKmh converts knots to km/h, rounded to one decimal.
func KnotsToKmh(kts float64) float64 {
	return round1(kts * 1.852)
}

// KnotsToMph converts knots to mph, rounded to one decimal.
func KnotsToMph(kts float64) float64 {
	return round1(kts * 1.15078)
}

// MmToIn converts millimetres to inches, rounded to two decimals.
func MmToIn(mm float64) float64 {
	return round2(mm * 0.0393701)
}

// HpaToInHg converts hectopascals to inches of mercury, rounded to two decimals.
func HpaToInHg(hpa float64) float64 {
	return round2(hpa * 0.0295299830714)
}

// DegreesToCompass maps wind direction in degrees to a 16-point compass label.
// Degrees outside [0,360) are normalized first. NaN and infinities resolve to
// CompassUnknown rather than a bogus north.
func DegreesToCompass(degrees float64) string {
	if math.IsNaN(degrees) || math.IsInf(degrees, 0) {
		return CompassUnknown
	}
	degrees = math.Mod(degrees, 360)
	if degrees < 0 {
		degrees += 360
	}
	idx := int(math.Round(degrees/22.5)) % 16
	return compassPoints[idx]
}

// CompassToDegrees returns the midpoint heading for a compass label, or -1 if
// the label is not one of the 16 canonical points.
func CompassToDegrees(point string) float64 {
	for i, p := range compassPoints {
		if p == point {
			return float64(i) * 22.5
		}
	}
	return -1
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
