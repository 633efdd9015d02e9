package alerts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriceBookSwap(t *testing.T) {
	t.Parallel()

	b := NewPriceBook()
	_, ok := b.Get("EUR/USD")
	assert.False(t, ok)

	prev, ok := b.Swap(Quote{Symbol: "EUR/USD", Price: 1.08})
	assert.False(t, ok)
	assert.Zero(t, prev.Price)

	prev, ok = b.Swap(Quote{Symbol: "EUR/USD", Price: 1.09})
	assert.True(t, ok)
	assert.Equal(t, 1.08, prev.Price)

	q, ok := b.Get("EUR/USD")
	assert.True(t, ok)
	assert.Equal(t, 1.09, q.Price)
}
