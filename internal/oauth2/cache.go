package oauth2

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"iot-connector/internal/common/logging"
)

// DefaultExpiryMargin is how long before its actual expiry a token is
// treated as invalid, buffering request processing time.
const DefaultExpiryMargin = 60 * time.Second

// Token is a cached bearer token with its computed expiry
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// ValidAt reports whether the token is still usable at the given instant,
// honoring the expiry margin.
func (t *Token) ValidAt(now time.Time, margin time.Duration) bool {
	if t == nil || t.Value == "" {
		return false
	}
	return now.Before(t.ExpiresAt.Add(-margin))
}

// TokenSource performs the actual token exchange. Implemented by Client.
type TokenSource interface {
	FetchToken(ctx context.Context, environment string) (*TokenResponse, error)
}

// Cache holds at most one valid token per environment. Reads of a valid
// token take only a read lock; refreshes go through a single-flight group
// keyed by environment, so at most one exchange per environment is in
// flight regardless of caller concurrency.
type Cache struct {
	mu     sync.RWMutex
	tokens map[string]*Token

	source TokenSource
	group  singleflight.Group
	margin time.Duration
	logger logging.Logger

	// now is swappable for expiry tests
	now func() time.Time
}

// CacheOption configures a Cache
type CacheOption func(*Cache)

// WithExpiryMargin overrides the default expiry safety margin
func WithExpiryMargin(margin time.Duration) CacheOption {
	return func(c *Cache) {
		c.margin = margin
	}
}

// WithClock overrides the cache's time source
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		c.now = now
	}
}

// WithCacheLogger sets the logger
func WithCacheLogger(l logging.Logger) CacheOption {
	return func(c *Cache) {
		c.logger = l
	}
}

// NewCache creates a token cache backed by the given source
func NewCache(source TokenSource, opts ...CacheOption) *Cache {
	c := &Cache{
		tokens: make(map[string]*Token),
		source: source,
		margin: DefaultExpiryMargin,
		logger: logging.GetGlobalLogger(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// GetToken returns a valid token for the environment, refreshing if the
// cached one is absent or inside the expiry margin. Concurrent callers
// during a refresh share the one in-flight exchange.
func (c *Cache) GetToken(ctx context.Context, environment string) (*Token, error) {
	c.mu.RLock()
	token := c.tokens[environment]
	c.mu.RUnlock()

	if token.ValidAt(c.now(), c.margin) {
		return token, nil
	}

	result, err, _ := c.group.Do(environment, func() (interface{}, error) {
		// A refresh may have finished between the read above and joining
		// the flight
		c.mu.RLock()
		cached := c.tokens[environment]
		c.mu.RUnlock()
		if cached.ValidAt(c.now(), c.margin) {
			return cached, nil
		}

		resp, err := c.source.FetchToken(ctx, environment)
		if err != nil {
			return nil, err
		}

		fresh := &Token{
			Value:     resp.AccessToken,
			ExpiresAt: c.now().Add(time.Duration(resp.ExpiresIn) * time.Second),
		}

		c.mu.Lock()
		c.tokens[environment] = fresh
		c.mu.Unlock()

		c.logger.Debug("Cached bearer token",
			logging.Field{Key: "environment", Value: environment},
			logging.Field{Key: "expires_at", Value: fresh.ExpiresAt},
		)

		return fresh, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*Token), nil
}

// Invalidate clears the cached token for an environment, forcing the next
// GetToken to re-authenticate. Used after an upstream 401 to rule out a
// stale token.
func (c *Cache) Invalidate(environment string) {
	c.mu.Lock()
	delete(c.tokens, environment)
	c.mu.Unlock()

	c.logger.Debug("Invalidated bearer token",
		logging.Field{Key: "environment", Value: environment},
	)
}
