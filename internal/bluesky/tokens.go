package bluesky

import (
	"sync"
	"time"
)

// tokenTTL is deliberately shorter than the network's own session expiry so
// a cached token is always still accepted when reused.
const tokenTTL = 30 * time.Minute

type session struct {
	accessJwt string
	did       string
	expires   time.Time
}

// tokenCache holds sessions per account handle, in memory only. Entries are
// last-writer-wins; concurrent publishes to different accounts never touch
// the same key.
type tokenCache struct {
	mu       sync.RWMutex
	sessions map[string]session
	now      func() time.Time
}

func newTokenCache() *tokenCache {
	return &tokenCache{
		sessions: make(map[string]session),
		now:      time.Now,
	}
}

func (c *tokenCache) get(handle string) (session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.sessions[handle]
	if !ok || c.now().After(s.expires) {
		return session{}, false
	}
	return s, true
}

func (c *tokenCache) put(handle string, s session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s.expires = c.now().Add(tokenTTL)
	c.sessions[handle] = s
}
