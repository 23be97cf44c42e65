package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// ModeReset overwrites the balance with the base amount each period.
	ModeReset FundingMode = "reset"
	// ModeRollover adds the base amount to the existing balance each period.
	ModeRollover FundingMode = "rollover"
)

type (
	FundingMode string

	// Envelope is a named budget bucket with a monthly funding policy.
	// Balance may go negative: overspending is surfaced, not rejected.
	Envelope struct {
		ID         int64
		Name       string
		Mode       FundingMode
		BaseAmount decimal.Decimal
		Balance    decimal.Decimal
		// LastFunded is the most recent period funding has been applied
		// for. Zero value means the envelope has never been funded.
		LastFunded Period
		Archived   bool
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrOutOfOrderFunding = errors.New("out-of-order funding")
	ErrInvalidMode       = errors.New("invalid funding mode")
	ErrEmptyName         = errors.New("empty envelope name")
)

// minorUnits is the monetary precision: two decimal places.
const minorUnits = 2

// ParseAmount parses user input into an exact decimal quantized to two
// places, rounding half up. Half-up matches the quantization the balances
// have always been stored with, so repeated operations never drift.
func ParseAmount(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	return d.Round(minorUnits), nil
}

// validAmount reports whether d is usable as a spend/deposit input:
// strictly positive and representable at two decimal places.
func validAmount(d decimal.Decimal) bool {
	if !d.IsPositive() {
		return false
	}
	return d.Equal(d.Round(minorUnits))
}

func ParseFundingMode(s string) (FundingMode, error) {
	switch FundingMode(strings.TrimSpace(strings.ToLower(s))) {
	case ModeReset:
		return ModeReset, nil
	case ModeRollover:
		return ModeRollover, nil
	default:
		return "", ErrInvalidMode
	}
}

func (m FundingMode) Valid() bool {
	return m == ModeReset || m == ModeRollover
}

// Validate checks the fields fixed at creation time.
func (e Envelope) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	if !e.Mode.Valid() {
		return ErrInvalidMode
	}
	if e.BaseAmount.IsNegative() || !e.BaseAmount.Equal(e.BaseAmount.Round(minorUnits)) {
		return ErrInvalidAmount
	}
	return nil
}

// Spend draws the amount down from the balance. No floor is enforced;
// overspending leaves a visible negative balance.
func (e *Envelope) Spend(amount decimal.Decimal) error {
	if !validAmount(amount) {
		return ErrInvalidAmount
	}
	e.Balance = e.Balance.Sub(amount)
	return nil
}

// Deposit adds the amount to the balance.
func (e *Envelope) Deposit(amount decimal.Decimal) error {
	if !validAmount(amount) {
		return ErrInvalidAmount
	}
	e.Balance = e.Balance.Add(amount)
	return nil
}

// ApplyFunding applies one funding event for the given period. The period
// must be strictly after LastFunded; the synchronizer is responsible for
// presenting periods in order, so a violation here is a caller bug, not a
// user-facing state. On success LastFunded advances to the period.
func (e *Envelope) ApplyFunding(p Period) error {
	if p.IsZero() {
		return ErrInvalidPeriod
	}
	if !e.LastFunded.IsZero() && !p.After(e.LastFunded) {
		return ErrOutOfOrderFunding
	}
	switch e.Mode {
	case ModeReset:
		e.Balance = e.BaseAmount
	case ModeRollover:
		e.Balance = e.Balance.Add(e.BaseAmount)
	default:
		return ErrInvalidMode
	}
	e.LastFunded = p
	return nil
}

// FormatCurrency renders an amount the way the UI has always shown it.
func FormatCurrency(d decimal.Decimal) string {
	return "$" + d.StringFixed(minorUnits)
}
