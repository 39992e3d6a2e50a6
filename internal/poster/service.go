package poster

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/skywx/bluesky-weather-poster/internal/bluesky"
	"github.com/skywx/bluesky-weather-poster/internal/compose"
	"github.com/skywx/bluesky-weather-poster/internal/publish"
	"github.com/skywx/bluesky-weather-poster/internal/schedule"
	"github.com/skywx/bluesky-weather-poster/internal/store"
	"github.com/skywx/bluesky-weather-poster/internal/weather"
)

// TelemetrySource delivers station snapshots; clientraw.Source satisfies it.
type TelemetrySource interface {
	Fetch(ctx context.Context) (weather.Record, error)
	LastModified(ctx context.Context) (time.Time, error)
}

// Publisher fans a composed post out to the configured accounts.
type Publisher interface {
	PublishAll(ctx context.Context, post compose.ComposedPost, accounts []publish.Account) map[string]bluesky.Result
}

// Service drives one posting cycle: fetch telemetry, compose, publish,
// record the outcome. Configuration is an explicit value handed in at
// construction; nothing here reads or writes persisted settings.
type Service struct {
	source     TelemetrySource
	publisher  Publisher
	history    *store.MemoryStore
	postCfg    compose.Config
	stationURL string
	accounts   []publish.Account
	spec       schedule.Spec
	now        func() time.Time
}

func NewService(
	source TelemetrySource,
	publisher Publisher,
	history *store.MemoryStore,
	postCfg compose.Config,
	stationURL string,
	accounts []publish.Account,
	spec schedule.Spec,
) *Service {
	return &Service{
		source:     source,
		publisher:  publisher,
		history:    history,
		postCfg:    postCfg,
		stationURL: stationURL,
		accounts:   accounts,
		spec:       spec,
		now:        time.Now,
	}
}

// RunNow executes one posting cycle. A snapshot older than the posting
// interval is recorded as a skipped run, not an error; a missing
// Last-Modified header counts as fresh.
func (s *Service) RunNow(ctx context.Context) (store.Run, error) {
	if reason := s.staleReason(ctx); reason != "" {
		run := store.Run{Time: s.now(), Skipped: true, Reason: reason}
		s.history.SaveRun(run)
		return run, nil
	}

	rec, err := s.source.Fetch(ctx)
	if err != nil {
		return store.Run{}, fmt.Errorf("fetch telemetry: %w", err)
	}

	post, err := compose.Compose(rec, s.postCfg, s.stationURL)
	if err != nil {
		return store.Run{}, fmt.Errorf("compose post: %w", err)
	}

	results := s.publisher.PublishAll(ctx, post, s.accounts)
	for label, res := range results {
		if !res.Success {
			log.Printf("poster: %s publish failed: %s", label, res.Detail)
		}
	}

	run := store.Run{Time: s.now(), Text: post.Text, Results: results}
	s.history.SaveRun(run)
	return run, nil
}

// Preview composes the post without publishing, optionally with an override
// config. The override is transient; persisted settings are never touched.
func (s *Service) Preview(ctx context.Context, override *compose.Config) (compose.ComposedPost, error) {
	cfg := s.postCfg
	if override != nil {
		cfg = *override
	}
	rec, err := s.source.Fetch(ctx)
	if err != nil {
		return compose.ComposedPost{}, fmt.Errorf("fetch telemetry: %w", err)
	}
	return compose.Compose(rec, cfg, s.stationURL)
}

// NextRun reports the next scheduled posting time after now.
func (s *Service) NextRun(now time.Time) time.Time {
	return schedule.NextRun(s.spec, now)
}

// History exposes the retained publish runs.
func (s *Service) History() []store.Run {
	return s.history.History()
}

// LastRun returns the most recent publish run.
func (s *Service) LastRun() (store.Run, error) {
	return s.history.Latest()
}

func (s *Service) staleReason(ctx context.Context) string {
	lm, err := s.source.LastModified(ctx)
	if err != nil || lm.IsZero() {
		return ""
	}
	if age := s.now().Sub(lm); age > s.spec.Interval() {
		return fmt.Sprintf("telemetry snapshot is %s old, posting interval is %s",
			age.Round(time.Second), s.spec.Interval())
	}
	return ""
}
