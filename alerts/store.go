package alerts

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Filter narrows List. Empty fields match everything.
type Filter struct {
	Symbol string
	Status Status
}

func (f Filter) match(a Alert) bool {
	return (f.Symbol == "" || f.Symbol == a.Symbol) && (f.Status == "" || f.Status == a.Status)
}

type Store interface {
	Create(ctx context.Context, a Alert) error
	Get(ctx context.Context, id string) (Alert, error)
	List(ctx context.Context, f Filter) ([]Alert, error)
	// SetStatus moves an alert from status from to status to, failing with
	// ErrInvalidTransition when its current status is not from. TriggeredAt
	// is stamped with at when to is Triggered and cleared otherwise.
	SetStatus(ctx context.Context, id string, from, to Status, at time.Time) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// MemoryStore keeps alerts in a map. Useful for tests and the CLI when no
// database path is configured.
type MemoryStore struct {
	mu     sync.RWMutex
	alerts map[string]Alert
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{alerts: make(map[string]Alert)}
}

func (m *MemoryStore) Create(_ context.Context, a Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts[a.ID] = a
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (Alert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.alerts[id]
	if !ok {
		return Alert{}, ErrNotFound
	}
	return a, nil
}

func (m *MemoryStore) List(_ context.Context, f Filter) ([]Alert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Alert
	for _, a := range m.alerts {
		if f.match(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) SetStatus(_ context.Context, id string, from, to Status, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.alerts[id]
	if !ok {
		return ErrNotFound
	}
	if a.Status != from {
		return fmt.Errorf("%w: alert %q is %s, not %s", ErrInvalidTransition, id, a.Status, from)
	}
	a.Status = to
	a.TriggeredAt = nil
	if to == Triggered {
		t := at.UTC()
		a.TriggeredAt = &t
	}
	m.alerts[id] = a
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.alerts[id]; !ok {
		return ErrNotFound
	}
	delete(m.alerts, id)
	return nil
}

func (m *MemoryStore) Close() error { return nil }
