package weather

// Record is a normalized snapshot of one station telemetry read.
// Every numeric field is optional: a nil pointer means the sensor did not
// report, which is distinct from a reported zero and must propagate as
// "omit", never as 0.
type Record struct {
	TemperatureC  *float64 `json:"temperatureC,omitempty"`
	WindDirection *float64 `json:"windDirectionDeg,omitempty"`
	WindSpeedKts  *float64 `json:"windSpeedKts,omitempty"`
	HumidityPct   *float64 `json:"humidityPercent,omitempty"`
	PressureHpa   *float64 `json:"pressureHpa,omitempty"`
	RainTodayMm   *float64 `json:"rainTodayMm,omitempty"`
	WindChillC    *float64 `json:"windChillC,omitempty"`
	HumidexC      *float64 `json:"humidexC,omitempty"`
	DewPointC     *float64 `json:"dewPointC,omitempty"`
	MaxTempC      *float64 `json:"maxTempC,omitempty"`
	MinTempC      *float64 `json:"minTempC,omitempty"`
	MaxGustKts    *float64 `json:"maxGustKts,omitempty"`
	Description   string   `json:"description,omitempty"`
}

// Float is a convenience for building optional record fields.
func Float(v float64) *float64 { return &v }
