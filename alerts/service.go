package alerts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rb-rbloxk/ClubLiquidez-1/market"
	"go.uber.org/zap"
)

var alertsTriggered = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "clubliq_alerts_triggered_total",
		Help: "Price alerts triggered by symbol and condition",
	},
	[]string{"symbol", "condition"},
)

func init() {
	prometheus.MustRegister(alertsTriggered)
}

// Notifier delivers a triggered alert over one channel.
type Notifier interface {
	Notify(ctx context.Context, ch Channel, a Alert, last float64) error
}

// LogNotifier records deliveries in the log. Real email, push and SMS
// gateways plug in behind Notifier.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n LogNotifier) Notify(_ context.Context, ch Channel, a Alert, last float64) error {
	n.Logger.Info("price alert",
		zap.String("channel", string(ch)),
		zap.String("id", a.ID),
		zap.String("symbol", a.Symbol),
		zap.String("condition", string(a.Condition)),
		zap.Float64("price", a.Price),
		zap.Float64("last", last))
	return nil
}

type Service struct {
	store    Store
	notifier Notifier
	logger   *zap.Logger
	book     *PriceBook
	now      func() time.Time
}

func NewService(store Store, notifier Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = LogNotifier{Logger: logger}
	}
	return &Service{
		store:    store,
		notifier: notifier,
		logger:   logger,
		book:     NewPriceBook(),
		now:      time.Now,
	}
}

func (s *Service) Create(ctx context.Context, symbol string, price float64, cond Condition, channels []Channel) (Alert, error) {
	a, err := New(symbol, price, cond, channels, s.now())
	if err != nil {
		return Alert{}, err
	}
	if err := s.store.Create(ctx, a); err != nil {
		return Alert{}, err
	}
	s.logger.Debug("alert created", zap.String("id", a.ID), zap.String("symbol", a.Symbol))
	return a, nil
}

func (s *Service) Get(ctx context.Context, id string) (Alert, error) {
	return s.store.Get(ctx, id)
}

// List normalizes f.Symbol before querying.
func (s *Service) List(ctx context.Context, f Filter) ([]Alert, error) {
	if f.Symbol != "" {
		f.Symbol = market.NormalizeSymbol(f.Symbol)
	}
	return s.store.List(ctx, f)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// Pause stops an active alert from firing.
func (s *Service) Pause(ctx context.Context, id string) (Alert, error) {
	return s.transition(ctx, id, Paused, Active)
}

// Resume re-arms a paused or triggered alert.
func (s *Service) Resume(ctx context.Context, id string) (Alert, error) {
	return s.transition(ctx, id, Active, Paused, Triggered)
}

func (s *Service) transition(ctx context.Context, id string, to Status, from ...Status) (Alert, error) {
	a, err := s.store.Get(ctx, id)
	if err != nil {
		return Alert{}, err
	}

	allowed := false
	for _, f := range from {
		if a.Status == f {
			allowed = true
			break
		}
	}
	if !allowed {
		return Alert{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, a.Status, to)
	}

	if err := s.store.SetStatus(ctx, id, a.Status, to, s.now()); err != nil {
		return Alert{}, err
	}
	return s.store.Get(ctx, id)
}

// Evaluate checks every active alert on symbol against a price move from
// prev to last, marks the ones that fire as triggered and notifies each
// of their channels. Notification failures are logged, not returned.
// last becomes the previous price for the next Observe of symbol.
func (s *Service) Evaluate(ctx context.Context, symbol string, prev, last float64) ([]Alert, error) {
	inst, err := market.Resolve(symbol)
	if err != nil {
		return nil, err
	}

	s.book.Swap(Quote{Symbol: inst.Symbol, Price: last, Time: s.now()})
	return s.evaluate(ctx, inst.Symbol, prev, last)
}

func (s *Service) evaluate(ctx context.Context, symbol string, prev, last float64) ([]Alert, error) {
	active, err := s.store.List(ctx, Filter{Symbol: symbol, Status: Active})
	if err != nil {
		return nil, err
	}

	var fired []Alert
	for _, a := range active {
		if !Check(a, prev, last) {
			continue
		}

		at := s.now()
		err := s.store.SetStatus(ctx, a.ID, Active, Triggered, at)
		if errors.Is(err, ErrInvalidTransition) || errors.Is(err, ErrNotFound) {
			// Fired, paused or deleted by a concurrent caller since List.
			continue
		}
		if err != nil {
			return fired, err
		}
		t := at.UTC()
		a.Status = Triggered
		a.TriggeredAt = &t
		fired = append(fired, a)
		alertsTriggered.WithLabelValues(a.Symbol, string(a.Condition)).Inc()

		for _, ch := range a.Channels {
			if err := s.notifier.Notify(ctx, ch, a, last); err != nil {
				s.logger.Warn("alert notification failed",
					zap.String("id", a.ID),
					zap.String("channel", string(ch)),
					zap.Error(err))
			}
		}
	}
	return fired, nil
}

// Observe evaluates a single price against the previous one seen for the
// same symbol. The first observation of a symbol can only fire Above and
// Below alerts.
func (s *Service) Observe(ctx context.Context, symbol string, last float64) ([]Alert, error) {
	inst, err := market.Resolve(symbol)
	if err != nil {
		return nil, err
	}

	prev, _ := s.book.Swap(Quote{Symbol: inst.Symbol, Price: last, Time: s.now()})
	return s.evaluate(ctx, inst.Symbol, prev.Price, last)
}

// LastPrice returns the most recent price passed to Evaluate or Observe.
func (s *Service) LastPrice(symbol string) (Quote, bool) {
	return s.book.Get(market.NormalizeSymbol(symbol))
}
