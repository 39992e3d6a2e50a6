package clientraw

import (
	"errors"
	"strconv"
	"strings"

	"github.com/skywx/bluesky-weather-poster/internal/weather"
)

// Weather-Display clientraw.txt field positions. The file is a single line
// of space-delimited values; only the fields the post pipeline consumes are
// mapped.
const (
	fieldWindSpeed   = 1  // average wind speed (knots)
	fieldWindDir     = 3  // wind direction (degrees)
	fieldTemperature = 4  // outdoor temperature (°C)
	fieldHumidity    = 5  // outdoor humidity (%)
	fieldPressure    = 6  // barometer (hPa)
	fieldRainToday   = 7  // rain today (mm)
	fieldWindChill   = 44 // wind chill (°C)
	fieldHumidex     = 45 // humidex (°C)
	fieldMaxTemp     = 46 // max temperature today (°C)
	fieldMinTemp     = 47 // min temperature today (°C)
	fieldDescription = 49 // current conditions text
	fieldMaxGust     = 71 // max gust today (knots)
	fieldDewPoint    = 72 // dew point (°C)
)

// minFields is the shortest snapshot still worth parsing.
const minFields = 50

var ErrTooFewFields = errors.New("clientraw snapshot has too few fields")

// Parse maps a raw clientraw.txt line into a weather record. Fields that are
// missing or non-numeric come back nil, never zero.
func Parse(raw string) (weather.Record, error) {
	parts := strings.Fields(strings.TrimSpace(raw))
	if len(parts) < minFields {
		return weather.Record{}, ErrTooFewFields
	}

	rec := weather.Record{
		TemperatureC:  numField(parts, fieldTemperature),
		WindDirection: numField(parts, fieldWindDir),
		WindSpeedKts:  numField(parts, fieldWindSpeed),
		HumidityPct:   numField(parts, fieldHumidity),
		PressureHpa:   numField(parts, fieldPressure),
		RainTodayMm:   numField(parts, fieldRainToday),
		WindChillC:    numField(parts, fieldWindChill),
		HumidexC:      numField(parts, fieldHumidex),
		MaxTempC:      numField(parts, fieldMaxTemp),
		MinTempC:      numField(parts, fieldMinTemp),
		MaxGustKts:    numField(parts, fieldMaxGust),
		DewPointC:     numField(parts, fieldDewPoint),
	}

	if len(parts) > fieldDescription {
		// Weather-Display writes spaces in the description as dashes to
		// keep the file space-delimited.
		rec.Description = strings.TrimSpace(strings.ReplaceAll(parts[fieldDescription], "-", " "))
	}
	return rec, nil
}

func numField(parts []string, idx int) *float64 {
	if idx >= len(parts) {
		return nil
	}
	v, err := strconv.ParseFloat(parts[idx], 64)
	if err != nil {
		return nil
	}
	return &v
}
