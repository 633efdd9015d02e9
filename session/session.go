// Package session drives the calculator for one interactive user. Every
// input change yields a new immutable State; rate lookups run in the
// background, debounced, and only the latest requested pair may be
// applied.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rb-rbloxk/ClubLiquidez-1/market"
	"github.com/rb-rbloxk/ClubLiquidez-1/risk"
	"go.uber.org/zap"
)

const DefaultDebounce = 500 * time.Millisecond

type Inputs struct {
	AccountCurrency string
	AccountSize     float64
	RiskPercent     float64
	StopLossPips    float64
	Symbol          string
}

// FetchState describes the rate lookup that is pending, if any.
type FetchState struct {
	InFlight   bool
	Base       string
	Quote      string
	Generation uint64
}

// State is a snapshot; sessions never mutate a State once published.
type State struct {
	Inputs     Inputs
	Instrument market.Instrument
	Fetch      FetchState
	Rate       market.RateQuote // last resolved for the current pair
	Result     *risk.Result     // last applied
	Err        error
	Generation uint64
}

// Complete reports whether the state carries a result to display.
func (s State) Complete() bool {
	return s.Result != nil
}

type Options struct {
	Debounce time.Duration
	Timeout  time.Duration
	Logger   *zap.Logger
}

type Session struct {
	src  market.RateSource
	opts Options

	ctx    context.Context
	stop   context.CancelFunc
	mu     sync.Mutex
	state  State
	gen    uint64
	timer  *time.Timer
	cancel context.CancelFunc
	subs   []chan State
	closed bool
}

func New(src market.RateSource, opts Options) *Session {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Timeout <= 0 {
		opts.Timeout = market.DefaultRateTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	ctx, stop := context.WithCancel(context.Background())
	return &Session{
		src:  src,
		opts: opts,
		ctx:  ctx,
		stop: stop,
	}
}

// State returns the latest snapshot.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe returns a channel that always holds the most recent State.
// It is closed by Close.
func (s *Session) Subscribe() <-chan State {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan State, 1)
	if s.closed {
		close(ch)
		return ch
	}
	s.subs = append(s.subs, ch)
	return ch
}

// Update applies new inputs. Numeric edits are recalculated immediately;
// a change of account currency or quote currency starts a new
// generation and a debounced rate lookup.
func (s *Session) Update(in Inputs) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return s.state
	}

	in.AccountCurrency = strings.ToUpper(strings.TrimSpace(in.AccountCurrency))
	prev := s.state
	next := prev
	next.Inputs = in

	if !market.IsAccountCurrency(in.AccountCurrency) {
		return s.rejectLocked(in, fmt.Errorf("%w: %q", market.ErrUnsupportedCurrency, in.AccountCurrency))
	}
	inst, err := market.Resolve(in.Symbol)
	if err != nil {
		return s.rejectLocked(in, err)
	}
	next.Instrument = inst

	base, quote := in.AccountCurrency, inst.QuoteCurrency
	pairChanged := s.gen == 0 || prev.Rate.Base != base || prev.Rate.Quote != quote
	convertible := base != quote && market.Convertible(base) && market.Convertible(quote)
	// A failed lookup is retried on the next edit, never on a timer.
	retry := !pairChanged && convertible && !prev.Rate.Available && !prev.Fetch.InFlight

	if pairChanged || retry {
		s.cancelPendingLocked()
		s.gen++
		next.Generation = s.gen
		next.Fetch = FetchState{}

		if !convertible {
			// Resolved without the provider.
			next.Rate = market.ResolveRate(s.ctx, nil, base, quote, s.opts.Timeout)
		} else {
			next.Rate = market.UnavailableQuote(base, quote)
			next.Fetch = FetchState{InFlight: true, Base: base, Quote: quote, Generation: s.gen}
			gen := s.gen
			s.timer = time.AfterFunc(s.opts.Debounce, func() { s.fetch(gen, base, quote) })
		}
	}

	next.Result, next.Err = calculate(next)
	s.publishLocked(next)
	return next
}

// rejectLocked publishes a state without a result and abandons any
// pending lookup.
func (s *Session) rejectLocked(in Inputs, err error) State {
	s.cancelPendingLocked()
	s.gen++
	next := State{Inputs: in, Err: err, Generation: s.gen}
	s.publishLocked(next)
	return next
}

// Close cancels pending work and closes subscriber channels.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.cancelPendingLocked()
	s.stop()
	for _, ch := range s.subs {
		close(ch)
	}
	s.subs = nil
}

func (s *Session) fetch(gen uint64, base, quote string) {
	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.cancel = cancel
	s.mu.Unlock()

	rq := market.ResolveRate(ctx, s.src, base, quote, s.opts.Timeout)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || gen != s.gen {
		s.opts.Logger.Debug("discarding stale rate",
			zap.String("base", base),
			zap.String("quote", quote),
			zap.Uint64("generation", gen))
		return
	}
	s.cancel = nil

	next := s.state
	next.Rate = rq
	next.Fetch = FetchState{}
	next.Result, next.Err = calculate(next)

	if !rq.Available {
		s.opts.Logger.Info("rate unavailable, using approximation",
			zap.String("base", base),
			zap.String("quote", quote))
	}
	s.publishLocked(next)
}

func (s *Session) cancelPendingLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session) publishLocked(st State) {
	s.state = st
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- st:
		default:
		}
	}
}

func calculate(st State) (*risk.Result, error) {
	res, err := risk.Calculate(risk.Request{
		AccountCurrency: st.Inputs.AccountCurrency,
		AccountSize:     st.Inputs.AccountSize,
		RiskPercent:     st.Inputs.RiskPercent,
		StopLossPips:    st.Inputs.StopLossPips,
		Instrument:      st.Instrument,
	}, st.Rate)
	if err != nil {
		return nil, err
	}
	return &res, nil
}
