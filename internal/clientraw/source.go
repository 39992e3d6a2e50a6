package clientraw

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/skywx/bluesky-weather-poster/internal/weather"
)

var (
	errServerError = errors.New("clientraw server error")
	errUnexpected  = errors.New("clientraw unexpected status")
	errCircuitOpen = errors.New("clientraw circuit breaker open")
)

// BackoffConfig controls exponential retry backoff for the telemetry fetch.
// Retrying here is fine: this layer sits in front of the publish pipeline,
// which itself never retries.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// Source downloads clientraw.txt snapshots from one station URL.
type Source struct {
	url     string
	client  *http.Client
	backoff BackoffConfig
	circuit *gobreaker.CircuitBreaker
}

func NewSource(client *http.Client, url string) *Source {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "clientraw",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
	return &Source{
		url:    url,
		client: client,
		backoff: BackoffConfig{
			MaxRetries:      3,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		},
		circuit: cb,
	}
}

// Fetch downloads and parses the current snapshot.
func (s *Source) Fetch(ctx context.Context) (weather.Record, error) {
	raw, err := s.download(ctx)
	if err != nil {
		return weather.Record{}, err
	}
	return Parse(raw)
}

// LastModified reports the snapshot's Last-Modified header, or the zero time
// when the server does not send one.
func (s *Source) LastModified(ctx context.Context) (time.Time, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, s.url, nil)
	if err != nil {
		return time.Time{}, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return time.Time{}, err
	}
	defer resp.Body.Close()

	lm := resp.Header.Get("Last-Modified")
	if lm == "" {
		return time.Time{}, nil
	}
	return http.ParseTime(lm)
}

func (s *Source) download(ctx context.Context) (string, error) {
	var attempt int
	var lastErr error

	for {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		result, err := s.circuit.Execute(func() (interface{}, error) {
			req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
			if reqErr != nil {
				return nil, reqErr
			}
			resp, doErr := s.client.Do(req)
			if doErr != nil {
				return nil, doErr
			}
			defer resp.Body.Close()

			if resp.StatusCode >= 500 {
				return nil, errServerError
			}
			if resp.StatusCode != http.StatusOK {
				return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
			}
			body, readErr := io.ReadAll(resp.Body)
			if readErr != nil {
				return nil, readErr
			}
			return string(body), nil
		})

		if err == nil {
			return result.(string), nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: %v", errCircuitOpen, err)
		}

		lastErr = err
		if attempt >= s.backoff.MaxRetries {
			return "", lastErr
		}

		delay := s.backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if s.backoff.MaxInterval > 0 && delay > s.backoff.MaxInterval {
			delay = s.backoff.MaxInterval
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
		attempt++
	}
}
