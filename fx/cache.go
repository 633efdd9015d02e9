package fx

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rb-rbloxk/ClubLiquidez-1/market"
	"go.uber.org/zap"
)

// Entry is a cached rate and the time the provider produced it.
type Entry struct {
	Rate      float64
	FetchedAt time.Time
}

// Cache stores short-lived rates per currency pair.
type Cache interface {
	Get(ctx context.Context, base, quote string) (Entry, bool, error)
	Set(ctx context.Context, base, quote string, e Entry, ttl time.Duration) error
}

func pairKey(base, quote string) string {
	return strings.ToUpper(base) + ":" + strings.ToUpper(quote)
}

type memEntry struct {
	Entry
	expires time.Time
}

// MemoryCache is a process-local Cache.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memEntry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memEntry),
		now:     time.Now,
	}
}

func (m *MemoryCache) Get(_ context.Context, base, quote string) (Entry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := pairKey(base, quote)
	e, ok := m.entries[key]
	if !ok {
		return Entry{}, false, nil
	}
	if !m.now().Before(e.expires) {
		delete(m.entries, key)
		return Entry{}, false, nil
	}
	return e.Entry, true, nil
}

func (m *MemoryCache) Set(_ context.Context, base, quote string, e Entry, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[pairKey(base, quote)] = memEntry{Entry: e, expires: m.now().Add(ttl)}
	return nil
}

// CachedSource wraps a RateSource with a Cache. Cache failures fall
// through to the source; a zero ttl disables caching.
type CachedSource struct {
	src    market.RateSource
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

var _ market.TimedRateSource = (*CachedSource)(nil)

func NewCachedSource(src market.RateSource, cache Cache, ttl time.Duration, logger *zap.Logger) *CachedSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedSource{src: src, cache: cache, ttl: ttl, logger: logger, now: time.Now}
}

func (c *CachedSource) FetchRate(ctx context.Context, base, quote string) (float64, error) {
	rate, _, err := c.FetchRateAt(ctx, base, quote)
	return rate, err
}

// FetchRateAt returns the rate with the time it was fetched from the
// wrapped source. Cache hits report the original fetch time.
func (c *CachedSource) FetchRateAt(ctx context.Context, base, quote string) (float64, time.Time, error) {
	if c.cache == nil || c.ttl <= 0 {
		rate, err := c.src.FetchRate(ctx, base, quote)
		return rate, c.now(), err
	}

	e, ok, err := c.cache.Get(ctx, base, quote)
	if err != nil {
		c.logger.Warn("rate cache get failed", zap.String("pair", pairKey(base, quote)), zap.Error(err))
	}
	if ok {
		cacheLookups.WithLabelValues("hit").Inc()
		return e.Rate, e.FetchedAt, nil
	}
	cacheLookups.WithLabelValues("miss").Inc()

	rate, err := c.src.FetchRate(ctx, base, quote)
	if err != nil {
		return 0, time.Time{}, err
	}

	e = Entry{Rate: rate, FetchedAt: c.now().UTC()}
	if err := c.cache.Set(ctx, base, quote, e, c.ttl); err != nil {
		c.logger.Warn("rate cache set failed", zap.String("pair", pairKey(base, quote)), zap.Error(err))
	}
	return rate, e.FetchedAt, nil
}
