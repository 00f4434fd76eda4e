// Package exchange keeps a USD/LBP price pair consistent while either side
// is being edited.
//
// Each field carries a focus flag, and a shared pointer names the field the
// user changed last. A change recomputes the other field only when that
// field is not focused and the pointer names the field just changed, and
// only when the recomputed value moves by more than a tolerance. Derived
// writes never move the pointer, so recomputing A from B never recomputes B
// from A again.
package exchange

import (
	"fmt"

	"github.com/shopspring/decimal"

	"lounge-pos-billing/internal/money"
)

type Field string

const (
	FieldNone Field = ""
	FieldUSD  Field = "usd"
	FieldLBP  Field = "lbp"
)

// PendingEditState tracks which field is authoritative at a given instant
type PendingEditState struct {
	LastEdited Field `json:"lastEditedField"`
	EditingUSD bool  `json:"isEditingUsd"`
	EditingLBP bool  `json:"isEditingLbp"`
}

// Tolerance bands a derived value must leave before it replaces the stored one
type Tolerance struct {
	USD decimal.Decimal
	LBP decimal.Decimal
}

var DefaultTolerance = Tolerance{
	USD: decimal.New(1, -2),
	LBP: decimal.NewFromInt(1),
}

// Observer is told about every derived write
type Observer func(field Field, value decimal.Decimal)

type Option func(*Synchronizer)

func WithTolerance(t Tolerance) Option {
	return func(s *Synchronizer) { s.tolerance = t }
}

func WithObserver(o Observer) Option {
	return func(s *Synchronizer) { s.observer = o }
}

// Synchronizer is the state of one editable dual-currency price.
// It belongs to a single form and is not safe for concurrent use.
type Synchronizer struct {
	rate      decimal.Decimal
	usd       decimal.Decimal
	lbp       decimal.Decimal
	state     PendingEditState
	tolerance Tolerance
	observer  Observer
}

func NewSynchronizer(rate decimal.Decimal, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		rate:      rate,
		usd:       decimal.Zero,
		lbp:       decimal.Zero,
		tolerance: DefaultTolerance,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load seeds both fields from a stored price without marking either as edited
func (s *Synchronizer) Load(m money.Money) {
	s.usd = m.USD
	s.lbp = m.LBP
	s.state.LastEdited = FieldNone
}

func (s *Synchronizer) FocusUSD() { s.state.EditingUSD = true }
func (s *Synchronizer) FocusLBP() { s.state.EditingLBP = true }

// BlurUSD drops the USD focus flag; a pending LBP edit may now flow into USD
func (s *Synchronizer) BlurUSD() {
	s.state.EditingUSD = false
	s.reconcile()
}

// BlurLBP drops the LBP focus flag; a pending USD edit may now flow into LBP
func (s *Synchronizer) BlurLBP() {
	s.state.EditingLBP = false
	s.reconcile()
}

// EditUSD records a user change to the USD field
func (s *Synchronizer) EditUSD(v decimal.Decimal) error {
	if v.IsNegative() {
		return fmt.Errorf("%w: negative usd %s", money.ErrInvalidAmount, v)
	}
	s.usd = v
	s.state.LastEdited = FieldUSD
	s.reconcile()
	return nil
}

// EditLBP records a user change to the LBP field
func (s *Synchronizer) EditLBP(v decimal.Decimal) error {
	if v.IsNegative() {
		return fmt.Errorf("%w: negative lbp %s", money.ErrInvalidAmount, v)
	}
	s.lbp = v
	s.state.LastEdited = FieldLBP
	s.reconcile()
	return nil
}

// SetRate swaps the exchange rate and re-evaluates the last edit against it
func (s *Synchronizer) SetRate(rate decimal.Decimal) error {
	if err := money.CheckRate(rate); err != nil {
		return err
	}
	s.rate = rate
	s.reconcile()
	return nil
}

func (s *Synchronizer) State() PendingEditState { return s.state }

func (s *Synchronizer) USD() decimal.Decimal { return s.usd }
func (s *Synchronizer) LBP() decimal.Decimal { return s.lbp }

// Value returns the pair as Money. Without a usable rate the pair may be
// inconsistent, so ErrMissingRate is returned instead.
func (s *Synchronizer) Value() (money.Money, error) {
	if err := money.CheckRate(s.rate); err != nil {
		return money.Zero, err
	}
	return money.New(s.usd, s.lbp), nil
}

func (s *Synchronizer) reconcile() {
	if money.CheckRate(s.rate) != nil {
		return
	}

	switch s.state.LastEdited {
	case FieldUSD:
		if s.state.EditingLBP {
			return
		}
		derived, err := money.FromUSD(s.usd, s.rate)
		if err != nil {
			return
		}
		if derived.LBP.Sub(s.lbp).Abs().GreaterThan(s.tolerance.LBP) {
			s.lbp = derived.LBP
			s.notify(FieldLBP, s.lbp)
		}
	case FieldLBP:
		if s.state.EditingUSD {
			return
		}
		derived, err := money.FromLBP(s.lbp, s.rate)
		if err != nil {
			return
		}
		if derived.USD.Sub(s.usd).Abs().GreaterThan(s.tolerance.USD) {
			s.usd = derived.USD
			s.notify(FieldUSD, s.usd)
		}
	}
}

func (s *Synchronizer) notify(field Field, value decimal.Decimal) {
	if s.observer != nil {
		s.observer(field, value)
	}
}
