package publish

import (
	"context"
	"sync"

	"github.com/skywx/bluesky-weather-poster/internal/bluesky"
	"github.com/skywx/bluesky-weather-poster/internal/compose"
)

// Poster is the per-account publish contract bluesky.Client satisfies.
type Poster interface {
	Publish(ctx context.Context, cred bluesky.Credential, post compose.ComposedPost) bluesky.Result
}

// Account pairs a display label with its credential.
type Account struct {
	Label      string
	Credential bluesky.Credential
}

// MultiAccountPublisher fans one composed post out to every configured
// account. Accounts are independent: a failure on one never blocks an
// attempt on another, so callers always get a complete label→result map and
// can report partial success.
type MultiAccountPublisher struct {
	poster Poster
}

func NewMultiAccountPublisher(poster Poster) *MultiAccountPublisher {
	return &MultiAccountPublisher{poster: poster}
}

// PublishAll attempts each account exactly once, in parallel. Results are
// isolated per account; the composed post is the only shared input and is
// read-only.
func (p *MultiAccountPublisher) PublishAll(ctx context.Context, post compose.ComposedPost, accounts []Account) map[string]bluesky.Result {
	results := make(map[string]bluesky.Result, len(accounts))

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, acct := range accounts {
		acct := acct
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := p.poster.Publish(ctx, acct.Credential, post)
			mu.Lock()
			results[acct.Label] = res
			mu.Unlock()
		}()
	}
	wg.Wait()

	return results
}
