package schedule

import (
	"fmt"
	"time"
)

// Spec describes the posting cadence: every FrequencyHours, on a grid
// anchored at FirstRunHour:FirstRunMinute in Location.
type Spec struct {
	FrequencyHours int
	FirstRunHour   int
	FirstRunMinute int
	Location       *time.Location
}

var validFrequencies = map[int]bool{1: true, 2: true, 3: true, 6: true, 12: true, 24: true}

// Validate checks the spec against the supported presets.
func (s Spec) Validate() error {
	if !validFrequencies[s.FrequencyHours] {
		return fmt.Errorf("unsupported posting frequency: %d hours", s.FrequencyHours)
	}
	if s.FirstRunHour < 0 || s.FirstRunHour > 23 {
		return fmt.Errorf("first run hour out of range: %d", s.FirstRunHour)
	}
	if s.FirstRunMinute < 0 || s.FirstRunMinute > 59 {
		return fmt.Errorf("first run minute out of range: %d", s.FirstRunMinute)
	}
	return nil
}

// Interval returns the posting frequency as a duration.
func (s Spec) Interval() time.Duration {
	return time.Duration(s.FrequencyHours) * time.Hour
}

// NextRun returns the first timestamp strictly after now that lies on the
// spec's cadence grid. The anchor is always recomputed from the fixed
// hour:minute, so an inactive scheduler never accumulates drift.
func NextRun(s Spec, now time.Time) time.Time {
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	candidate := time.Date(local.Year(), local.Month(), local.Day(),
		s.FirstRunHour, s.FirstRunMinute, 0, 0, loc)
	for !candidate.After(now) {
		candidate = candidate.Add(s.Interval())
	}
	return candidate
}
