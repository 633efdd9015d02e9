// Package alerts stores price alerts and decides when they fire.
package alerts

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rb-rbloxk/ClubLiquidez-1/market"
	"github.com/rb-rbloxk/ClubLiquidez-1/pkg/id"
)

var (
	ErrNotFound          = errors.New("alert not found")
	ErrInvalidAlert      = errors.New("invalid alert")
	ErrInvalidTransition = errors.New("invalid status transition")
)

type Condition string

const (
	Above   Condition = "above"
	Below   Condition = "below"
	Crosses Condition = "crosses"
)

type Channel string

const (
	Email Channel = "email"
	Push  Channel = "push"
	SMS   Channel = "sms"
)

type Status string

const (
	Active    Status = "active"
	Paused    Status = "paused"
	Triggered Status = "triggered"
)

type Alert struct {
	ID          string     `json:"id"`
	Symbol      string     `json:"symbol" validate:"required"`
	Price       float64    `json:"price" validate:"gt=0"`
	Condition   Condition  `json:"condition" validate:"oneof=above below crosses"`
	Channels    []Channel  `json:"channels" validate:"min=1,dive,oneof=email push sms"`
	Status      Status     `json:"status" validate:"oneof=active paused triggered"`
	CreatedAt   time.Time  `json:"created_at"`
	TriggeredAt *time.Time `json:"triggered_at,omitempty"`
}

var validate = validator.New()

// Validate checks field constraints and that Symbol is in the instrument
// catalog. The symbol is normalized in place.
func Validate(a *Alert) error {
	inst, err := market.Resolve(a.Symbol)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAlert, err)
	}
	a.Symbol = inst.Symbol

	if err := validate.Struct(a); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidAlert, strings.Join(fields, "; "))
		}
		return fmt.Errorf("%w: %w", ErrInvalidAlert, err)
	}
	return nil
}

// New builds an active alert with a fresh ID. Condition and channel
// names are case-insensitive.
func New(symbol string, price float64, cond Condition, channels []Channel, now time.Time) (Alert, error) {
	chs := make([]Channel, 0, len(channels))
	for _, c := range channels {
		chs = append(chs, Channel(strings.ToLower(strings.TrimSpace(string(c)))))
	}

	a := Alert{
		ID:        id.NewAt(now),
		Symbol:    symbol,
		Price:     price,
		Condition: Condition(strings.ToLower(strings.TrimSpace(string(cond)))),
		Channels:  chs,
		Status:    Active,
		CreatedAt: now.UTC(),
	}
	if err := Validate(&a); err != nil {
		return Alert{}, err
	}
	return a, nil
}

// Check reports whether a move from prev to last satisfies the alert.
// Crosses needs a known previous price (prev > 0).
func Check(a Alert, prev, last float64) bool {
	if a.Status != Active || last <= 0 {
		return false
	}
	switch a.Condition {
	case Above:
		return last >= a.Price
	case Below:
		return last <= a.Price
	case Crosses:
		if prev <= 0 {
			return false
		}
		return (prev < a.Price && last >= a.Price) || (prev > a.Price && last <= a.Price)
	}
	return false
}

func joinChannels(chs []Channel) string {
	s := make([]string, len(chs))
	for i, c := range chs {
		s[i] = string(c)
	}
	return strings.Join(s, ",")
}

func splitChannels(s string) []Channel {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	chs := make([]Channel, len(parts))
	for i, p := range parts {
		chs[i] = Channel(p)
	}
	return chs
}
