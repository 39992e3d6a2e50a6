package clientraw

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rawLine builds a clientraw snapshot with every field zeroed, then applies
// per-index overrides.
func rawLine(overrides map[int]string) string {
	parts := make([]string, 80)
	for i := range parts {
		parts[i] = "0"
	}
	parts[0] = "12345" // header magic
	for i, v := range overrides {
		parts[i] = v
	}
	return strings.Join(parts, " ")
}

func TestParseMapsFields(t *testing.T) {
	rec, err := Parse(rawLine(map[int]string{
		1:  "9.3",
		3:  "225",
		4:  "16.3",
		5:  "79",
		6:  "1010.2",
		7:  "1.4",
		44: "15.1",
		45: "17.8",
		46: "18.9",
		47: "11.2",
		49: "Partly-cloudy",
		71: "21.7",
		72: "12.6",
	}))
	require.NoError(t, err)

	require.NotNil(t, rec.WindSpeedKts)
	assert.Equal(t, 9.3, *rec.WindSpeedKts)
	require.NotNil(t, rec.WindDirection)
	assert.Equal(t, 225.0, *rec.WindDirection)
	require.NotNil(t, rec.TemperatureC)
	assert.Equal(t, 16.3, *rec.TemperatureC)
	require.NotNil(t, rec.HumidityPct)
	assert.Equal(t, 79.0, *rec.HumidityPct)
	require.NotNil(t, rec.PressureHpa)
	assert.Equal(t, 1010.2, *rec.PressureHpa)
	require.NotNil(t, rec.RainTodayMm)
	assert.Equal(t, 1.4, *rec.RainTodayMm)
	require.NotNil(t, rec.WindChillC)
	assert.Equal(t, 15.1, *rec.WindChillC)
	require.NotNil(t, rec.HumidexC)
	assert.Equal(t, 17.8, *rec.HumidexC)
	require.NotNil(t, rec.MaxTempC)
	assert.Equal(t, 18.9, *rec.MaxTempC)
	require.NotNil(t, rec.MinTempC)
	assert.Equal(t, 11.2, *rec.MinTempC)
	require.NotNil(t, rec.MaxGustKts)
	assert.Equal(t, 21.7, *rec.MaxGustKts)
	require.NotNil(t, rec.DewPointC)
	assert.Equal(t, 12.6, *rec.DewPointC)

	assert.Equal(t, "Partly cloudy", rec.Description)
}

func TestParseNonNumericFieldIsNil(t *testing.T) {
	rec, err := Parse(rawLine(map[int]string{4: "---", 5: "n/a"}))
	require.NoError(t, err)
	assert.Nil(t, rec.TemperatureC)
	assert.Nil(t, rec.HumidityPct)
	require.NotNil(t, rec.PressureHpa)
	assert.Equal(t, 0.0, *rec.PressureHpa)
}

func TestParseTooFewFields(t *testing.T) {
	_, err := Parse("12345 1 2 3")
	assert.ErrorIs(t, err, ErrTooFewFields)

	_, err = Parse("")
	assert.ErrorIs(t, err, ErrTooFewFields)
}

func TestParseShortLineDropsExtendedFields(t *testing.T) {
	// Exactly the minimum: indices 44..49 present, 71/72 absent.
	parts := make([]string, 50)
	for i := range parts {
		parts[i] = "1"
	}
	rec, err := Parse(strings.Join(parts, " "))
	require.NoError(t, err)

	require.NotNil(t, rec.WindChillC)
	assert.Nil(t, rec.MaxGustKts)
	assert.Nil(t, rec.DewPointC)
}

func TestParseToleratesSurroundingWhitespace(t *testing.T) {
	rec, err := Parse("  " + rawLine(map[int]string{4: "5.5"}) + "\n")
	require.NoError(t, err)
	require.NotNil(t, rec.TemperatureC)
	assert.Equal(t, 5.5, *rec.TemperatureC)
}
