package alerts

import (
	"sync"
	"time"
)

// Quote is the last observed price for a symbol.
type Quote struct {
	Symbol string
	Price  float64
	Time   time.Time
}

// PriceBook remembers the latest price per symbol so a stream of single
// prices can be evaluated as moves.
type PriceBook struct {
	mu     sync.RWMutex
	quotes map[string]Quote
}

func NewPriceBook() *PriceBook {
	return &PriceBook{quotes: make(map[string]Quote)}
}

// Swap records q and returns the quote it replaced.
func (b *PriceBook) Swap(q Quote) (Quote, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	prev, ok := b.quotes[q.Symbol]
	b.quotes[q.Symbol] = q
	return prev, ok
}

func (b *PriceBook) Get(symbol string) (Quote, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	q, ok := b.quotes[symbol]
	return q, ok
}
