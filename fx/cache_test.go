package fx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rb-rbloxk/ClubLiquidez-1/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	rate   float64
	err    error
	called int
}

func (s *countingSource) FetchRate(ctx context.Context, base, quote string) (float64, error) {
	s.called++
	return s.rate, s.err
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string, string) (Entry, bool, error) {
	return Entry{}, false, errors.New("cache down")
}

func (brokenCache) Set(context.Context, string, string, Entry, time.Duration) error {
	return errors.New("cache down")
}

func TestMemoryCache_Expiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "eur", "usd", Entry{Rate: 1.08, FetchedAt: now}, time.Minute))

	e, ok, err := c.Get(ctx, "EUR", "USD")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1.08, e.Rate)
	assert.True(t, now.Equal(e.FetchedAt))

	_, ok, _ = c.Get(ctx, "USD", "EUR")
	assert.False(t, ok)

	now = now.Add(time.Minute)
	_, ok, _ = c.Get(ctx, "EUR", "USD")
	assert.False(t, ok)
}

func TestCachedSource_HitAndMiss(t *testing.T) {
	src := &countingSource{rate: 1.3}
	cs := NewCachedSource(src, NewMemoryCache(), time.Minute, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		rate, err := cs.FetchRate(ctx, "GBP", "USD")
		require.NoError(t, err)
		assert.Equal(t, 1.3, rate)
	}
	assert.Equal(t, 1, src.called)

	_, err := cs.FetchRate(ctx, "GBP", "JPY")
	require.NoError(t, err)
	assert.Equal(t, 2, src.called)
}

func TestCachedSource_DoesNotCacheErrors(t *testing.T) {
	src := &countingSource{err: errors.New("offline")}
	cs := NewCachedSource(src, NewMemoryCache(), time.Minute, nil)

	_, err := cs.FetchRate(context.Background(), "GBP", "USD")
	assert.Error(t, err)
	_, err = cs.FetchRate(context.Background(), "GBP", "USD")
	assert.Error(t, err)
	assert.Equal(t, 2, src.called)
}

func TestCachedSource_Disabled(t *testing.T) {
	src := &countingSource{rate: 2}
	cs := NewCachedSource(src, NewMemoryCache(), 0, nil)

	cs.FetchRate(context.Background(), "AUD", "USD")
	cs.FetchRate(context.Background(), "AUD", "USD")
	assert.Equal(t, 2, src.called)
}

func TestCachedSource_BrokenCacheFallsThrough(t *testing.T) {
	src := &countingSource{rate: 0.9}
	cs := NewCachedSource(src, brokenCache{}, time.Minute, nil)

	rate, err := cs.FetchRate(context.Background(), "CHF", "EUR")
	require.NoError(t, err)
	assert.Equal(t, 0.9, rate)
}

func TestCachedSource_HitKeepsFetchTime(t *testing.T) {
	src := &countingSource{rate: 1.3}
	cs := NewCachedSource(src, NewMemoryCache(), time.Minute, nil)
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cs.now = func() time.Time { return clock }
	ctx := context.Background()

	_, first, err := cs.FetchRateAt(ctx, "GBP", "USD")
	require.NoError(t, err)
	assert.True(t, clock.Equal(first))

	clock = clock.Add(30 * time.Second)
	rate, cached, err := cs.FetchRateAt(ctx, "GBP", "USD")
	require.NoError(t, err)
	assert.Equal(t, 1.3, rate)
	assert.True(t, first.Equal(cached))
	assert.Equal(t, 1, src.called)

	// ResolveRate reports when the provider answered, not the cache.
	q := market.ResolveRate(ctx, cs, "GBP", "USD", time.Second)
	assert.True(t, q.IsRealTime)
	assert.True(t, first.Equal(q.FetchedAt))
}
