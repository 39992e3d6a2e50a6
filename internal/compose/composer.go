package compose

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/skywx/bluesky-weather-poster/internal/units"
	"github.com/skywx/bluesky-weather-poster/internal/weather"
)

const (
	UnitsMetric   = "metric"
	UnitsImperial = "imperial"
	UnitsBoth     = "both"

	DefaultPrefix    = "Weather Update"
	DefaultMaxLength = 300
	DefaultWebcamAlt = "Webcam Snapshot"

	ellipsis = "…"
)

var ErrInvalidMaxLength = errors.New("max post length must be positive")

// Compose builds the post text and its facets from a weather record and the
// composition settings. The text is assembled completely before any facet
// offset is computed, so every offset is a byte offset into the returned
// UTF-8 text. Missing record fields drop their line; they never render as
// zero or a placeholder.
func Compose(rec weather.Record, cfg Config, stationURL string) (ComposedPost, error) {
	maxLen := cfg.MaxLength
	if maxLen == 0 {
		maxLen = DefaultMaxLength
	}
	if maxLen < 0 {
		return ComposedPost{}, fmt.Errorf("%w: %d", ErrInvalidMaxLength, cfg.MaxLength)
	}

	prefix := strings.TrimSpace(cfg.Prefix)
	if prefix == "" {
		prefix = DefaultPrefix
	}

	var b strings.Builder
	b.WriteString("🌤️ " + prefix)

	if body := bodyLines(rec, cfg); len(body) > 0 {
		b.WriteString("\n\n")
		b.WriteString(strings.Join(body, "\n"))
	}

	var facets []Facet

	// Station link: only emitted when the URL actually validates, so the
	// line is always clickable.
	if isValidHTTPURL(stationURL) {
		linkText := strings.TrimSpace(cfg.StationDisplayText)
		if linkText == "" {
			linkText = stationURL
		}
		b.WriteString("\n\n🔗 ")
		start := b.Len()
		b.WriteString(linkText)
		facets = append(facets, Facet{
			ByteStart: start,
			ByteEnd:   start + len(linkText),
			Kind:      FacetLink,
			Payload:   stationURL,
		})
	}

	if tags := normalizeHashtags(cfg.Hashtags); len(tags) > 0 {
		b.WriteString("\n\n")
		cursor := b.Len()
		b.WriteString(strings.Join(tags, " "))
		text := b.String()
		// Forward-only cursor so repeated or substring-overlapping tags
		// cannot map to the same span twice.
		for _, tag := range tags {
			idx := strings.Index(text[cursor:], tag)
			if idx < 0 {
				continue
			}
			start := cursor + idx
			end := start + len(tag)
			facets = append(facets, Facet{
				ByteStart: start,
				ByteEnd:   end,
				Kind:      FacetHashtag,
				Payload:   strings.TrimPrefix(tag, "#"),
			})
			cursor = end
		}
	}

	post := ComposedPost{Text: b.String(), Facets: facets}

	if isValidHTTPURL(cfg.WebcamImageURL) {
		alt := strings.TrimSpace(cfg.WebcamAltText)
		if alt == "" {
			alt = DefaultWebcamAlt
		}
		post.Embed = &ImageRef{URL: cfg.WebcamImageURL, Alt: alt}
	}

	return truncate(post, maxLen), nil
}

// truncate enforces the display-character cap. Facets whose span falls past
// the cut would dangle, so they are dropped rather than clamped.
func truncate(post ComposedPost, maxLen int) ComposedPost {
	if utf8.RuneCountInString(post.Text) <= maxLen {
		return post
	}
	runes := []rune(post.Text)
	kept := string(runes[:maxLen-1])
	post.Text = kept + ellipsis

	valid := post.Facets[:0]
	for _, f := range post.Facets {
		if f.ByteEnd <= len(kept) {
			valid = append(valid, f)
		}
	}
	post.Facets = valid
	return post
}

func bodyLines(rec weather.Record, cfg Config) []string {
	inc := cfg.Include
	u := cfg.Units
	var lines []string

	add := func(label string, v *float64, render func(float64) string) {
		if v != nil {
			lines = append(lines, label+render(*v))
		}
	}

	if inc.Temperature {
		add("🌡️ Temp: ", rec.TemperatureC, func(c float64) string { return tempStr(c, u) })
	}
	if wind := windLine(rec, cfg); wind != "" {
		lines = append(lines, wind)
	}
	if inc.Humidity {
		add("💧 Humidity: ", rec.HumidityPct, func(h float64) string { return fmt.Sprintf("%.0f%%", h) })
	}
	if inc.Pressure {
		add("🌬️ Pressure: ", rec.PressureHpa, func(p float64) string { return pressureStr(p, u) })
	}
	if inc.RainToday {
		add("☔ Rain Today: ", rec.RainTodayMm, func(mm float64) string { return rainStr(mm, u) })
	}
	if inc.WindChill {
		add("🥶 Windchill: ", rec.WindChillC, func(c float64) string { return tempStr(c, u) })
	}
	if inc.Humidex {
		add("🥵 Humidex: ", rec.HumidexC, func(c float64) string { return tempStr(c, u) })
	}
	if inc.DewPoint {
		add("🟦 Dew Point: ", rec.DewPointC, func(c float64) string { return tempStr(c, u) })
	}
	if inc.MaxTemp {
		add("🔺 Max Temp: ", rec.MaxTempC, func(c float64) string { return tempStr(c, u) })
	}
	if inc.MinTemp {
		add("🔻 Min Temp: ", rec.MinTempC, func(c float64) string { return tempStr(c, u) })
	}
	if inc.MaxGust {
		add("🌪️ Max Gust: ", rec.MaxGustKts, func(k float64) string { return speedStr(k, u) })
	}
	if inc.Description && strings.TrimSpace(rec.Description) != "" {
		lines = append(lines, "📝 "+strings.TrimSpace(rec.Description))
	}
	return lines
}

// windLine merges the direction and speed toggles into a single line, or
// returns "" when nothing is reportable.
func windLine(rec weather.Record, cfg Config) string {
	var parts []string
	if cfg.Include.WindDirection && rec.WindDirection != nil {
		parts = append(parts, units.DegreesToCompass(*rec.WindDirection))
	}
	if cfg.Include.WindSpeed && rec.WindSpeedKts != nil {
		parts = append(parts, speedStr(*rec.WindSpeedKts, cfg.Units))
	}
	if len(parts) == 0 {
		return ""
	}
	return "💨 Wind: " + strings.Join(parts, " ")
}

func tempStr(c float64, u string) string {
	switch u {
	case UnitsMetric:
		return fmt.Sprintf("%.1f°C", c)
	case UnitsImperial:
		return fmt.Sprintf("%.1f°F", units.CToF(c))
	default:
		return fmt.Sprintf("%.1f°C (%.1f°F)", c, units.CToF(c))
	}
}

func speedStr(kts float64, u string) string {
	switch u {
	case UnitsMetric:
		return fmt.Sprintf("%.1f km/h", units.KnotsToKmh(kts))
	case UnitsImperial:
		return fmt.Sprintf("%.1f mph", units.KnotsToMph(kts))
	default:
		return fmt.Sprintf("%.1f km/h (%.1f mph)", units.KnotsToKmh(kts), units.KnotsToMph(kts))
	}
}

func pressureStr(hpa float64, u string) string {
	switch u {
	case UnitsMetric:
		return fmt.Sprintf("%.1f hPa", hpa)
	case UnitsImperial:
		return fmt.Sprintf("%.2f inHg", units.HpaToInHg(hpa))
	default:
		return fmt.Sprintf("%.1f hPa (%.2f inHg)", hpa, units.HpaToInHg(hpa))
	}
}

func rainStr(mm float64, u string) string {
	switch u {
	case UnitsMetric:
		return fmt.Sprintf("%.1f mm", mm)
	case UnitsImperial:
		return fmt.Sprintf("%.2f in", units.MmToIn(mm))
	default:
		return fmt.Sprintf("%.1f mm (%.2f in)", mm, units.MmToIn(mm))
	}
}

// normalizeHashtags turns the comma-separated config value into '#tag'
// tokens: leading '#' stripped, characters outside [A-Za-z0-9_] removed,
// empties and duplicates dropped.
func normalizeHashtags(raw string) []string {
	var tags []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		clean := sanitizeTag(strings.TrimPrefix(strings.TrimSpace(part), "#"))
		if clean == "" {
			continue
		}
		if _, dup := seen[clean]; dup {
			continue
		}
		seen[clean] = struct{}{}
		tags = append(tags, "#"+clean)
	}
	return tags
}

func sanitizeTag(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isValidHTTPURL(s string) bool {
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
