package alerts

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type delivery struct {
	ch   Channel
	id   string
	last float64
}

type recordingNotifier struct {
	mu   sync.Mutex
	got  []delivery
	fail bool
}

func (r *recordingNotifier) Notify(_ context.Context, ch Channel, a Alert, last float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, delivery{ch, a.ID, last})
	if r.fail {
		return errors.New("gateway down")
	}
	return nil
}

func newTestService(t *testing.T, n Notifier) *Service {
	t.Helper()
	svc := NewService(NewMemoryStore(), n, zap.NewNop())
	clock := now
	svc.now = func() time.Time {
		clock = clock.Add(time.Millisecond)
		return clock
	}
	return svc
}

func TestServiceEvaluate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	n := &recordingNotifier{}
	svc := newTestService(t, n)

	above, err := svc.Create(ctx, "EUR/USD", 1.10, Above, []Channel{Email, SMS})
	require.NoError(t, err)
	below, err := svc.Create(ctx, "EUR/USD", 1.00, Below, []Channel{Push})
	require.NoError(t, err)
	other, err := svc.Create(ctx, "GBP/USD", 1.20, Above, []Channel{Email})
	require.NoError(t, err)

	fired, err := svc.Evaluate(ctx, "eur_usd", 1.09, 1.11)
	require.NoError(t, err)
	require.Len(t, fired, 1)
	assert.Equal(t, above.ID, fired[0].ID)
	assert.Equal(t, Triggered, fired[0].Status)
	require.NotNil(t, fired[0].TriggeredAt)

	assert.Equal(t, []delivery{{Email, above.ID, 1.11}, {SMS, above.ID, 1.11}}, n.got)

	got, err := svc.Get(ctx, above.ID)
	require.NoError(t, err)
	assert.Equal(t, Triggered, got.Status)

	for _, id := range []string{below.ID, other.ID} {
		got, err := svc.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, Active, got.Status)
	}

	// A triggered alert does not fire twice.
	fired, err = svc.Evaluate(ctx, "EUR/USD", 1.11, 1.12)
	require.NoError(t, err)
	assert.Empty(t, fired)
}

func TestServiceEvaluateNotifierFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTestService(t, &recordingNotifier{fail: true})

	a, err := svc.Create(ctx, "XAU/USD", 2000, Crosses, []Channel{Email})
	require.NoError(t, err)

	fired, err := svc.Evaluate(ctx, "XAU/USD", 1990, 2010)
	require.NoError(t, err)
	require.Len(t, fired, 1)
	assert.Equal(t, a.ID, fired[0].ID)
}

func TestServiceEvaluateUnknownSymbol(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, nil)
	_, err := svc.Evaluate(context.Background(), "DOGE/USD", 1, 2)
	assert.Error(t, err)
}

func TestServicePauseResume(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTestService(t, &recordingNotifier{})

	a, err := svc.Create(ctx, "BTC/USD", 45000, Above, []Channel{Push})
	require.NoError(t, err)

	paused, err := svc.Pause(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, Paused, paused.Status)

	_, err = svc.Pause(ctx, a.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	fired, err := svc.Evaluate(ctx, "BTC/USD", 44000, 46000)
	require.NoError(t, err)
	assert.Empty(t, fired)

	resumed, err := svc.Resume(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, Active, resumed.Status)

	fired, err = svc.Evaluate(ctx, "BTC/USD", 44000, 46000)
	require.NoError(t, err)
	assert.Len(t, fired, 1)

	// Triggered alerts can be re-armed.
	resumed, err = svc.Resume(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, Active, resumed.Status)
	assert.Nil(t, resumed.TriggeredAt)

	_, err = svc.Resume(ctx, a.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestServiceListAndDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTestService(t, nil)

	a, err := svc.Create(ctx, "usd/jpy", 150, Below, []Channel{Email})
	require.NoError(t, err)

	list, err := svc.List(ctx, Filter{Symbol: "usd_jpy"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)

	require.NoError(t, svc.Delete(ctx, a.ID))
	assert.ErrorIs(t, svc.Delete(ctx, a.ID), ErrNotFound)
}

func TestServiceObserveTracksPreviousPrice(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTestService(t, &recordingNotifier{})

	a, err := svc.Create(ctx, "GBP/JPY", 190, Crosses, []Channel{Push})
	require.NoError(t, err)

	// No previous price yet, so nothing can cross.
	fired, err := svc.Observe(ctx, "GBP/JPY", 191)
	require.NoError(t, err)
	assert.Empty(t, fired)

	fired, err = svc.Observe(ctx, "gbp_jpy", 189.5)
	require.NoError(t, err)
	require.Len(t, fired, 1)
	assert.Equal(t, a.ID, fired[0].ID)

	q, ok := svc.LastPrice("GBP/JPY")
	require.True(t, ok)
	assert.Equal(t, 189.5, q.Price)
}

func TestServiceEvaluateConcurrentFiresOnce(t *testing.T) {
	t.Parallel()

	sqlite, _ := newTestSQLite(t)
	for name, store := range map[string]Store{"memory": NewMemoryStore(), "sqlite": sqlite} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			n := &recordingNotifier{}
			svc := NewService(store, n, zap.NewNop())
			svc.now = func() time.Time { return now }

			a, err := svc.Create(ctx, "EUR/USD", 1.10, Above, []Channel{Email})
			require.NoError(t, err)

			const callers = 8
			var wg sync.WaitGroup
			results := make([][]Alert, callers)
			for i := 0; i < callers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					fired, err := svc.Evaluate(ctx, "EUR/USD", 1.09, 1.11)
					assert.NoError(t, err)
					results[i] = fired
				}(i)
			}
			wg.Wait()

			total := 0
			for _, fired := range results {
				total += len(fired)
			}
			assert.Equal(t, 1, total)
			assert.Equal(t, []delivery{{Email, a.ID, 1.11}}, n.got)
		})
	}
}

func TestServiceEvaluateSkipsAlertPausedAfterList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := &pausingStore{MemoryStore: NewMemoryStore()}
	n := &recordingNotifier{}
	svc := NewService(store, n, zap.NewNop())
	svc.now = func() time.Time { return now }

	a, err := svc.Create(ctx, "EUR/USD", 1.10, Above, []Channel{Email})
	require.NoError(t, err)
	store.svc = svc

	fired, err := svc.Evaluate(ctx, "EUR/USD", 1.09, 1.11)
	require.NoError(t, err)
	assert.Empty(t, fired)
	assert.Empty(t, n.got)

	got, err := svc.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, Paused, got.Status)
}

// pausingStore pauses every alert it lists, as a user would between the
// read and the status update of Evaluate.
type pausingStore struct {
	*MemoryStore
	svc *Service
}

func (p *pausingStore) List(ctx context.Context, f Filter) ([]Alert, error) {
	out, err := p.MemoryStore.List(ctx, f)
	if err != nil || p.svc == nil {
		return out, err
	}
	for _, a := range out {
		if _, err := p.svc.Pause(ctx, a.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func TestServiceEvaluateRecordsLastPrice(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTestService(t, &recordingNotifier{})

	a, err := svc.Create(ctx, "XAU/USD", 2000, Crosses, []Channel{SMS})
	require.NoError(t, err)

	fired, err := svc.Evaluate(ctx, "XAU/USD", 1980, 1990)
	require.NoError(t, err)
	assert.Empty(t, fired)

	q, ok := svc.LastPrice("XAU/USD")
	require.True(t, ok)
	assert.Equal(t, 1990.0, q.Price)

	// Observe continues from the price Evaluate was given.
	fired, err = svc.Observe(ctx, "XAU/USD", 2005)
	require.NoError(t, err)
	require.Len(t, fired, 1)
	assert.Equal(t, a.ID, fired[0].ID)
}
