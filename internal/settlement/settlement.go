package settlement

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"lounge-pos-billing/internal/domain"
	"lounge-pos-billing/internal/money"
)

var ErrInsufficientPayment = errors.New("insufficient payment")

// Request is the transient input of a payment dialog
type Request struct {
	AmountDue      money.Money     `json:"amountDue"`
	TenderCurrency money.Currency  `json:"tenderCurrency"`
	TenderAmount   decimal.Decimal `json:"tenderAmount"`
	Route          Route           `json:"route"`
}

// Settlement is the computed descriptor a collaborator submits to the API
type Settlement struct {
	Request
	Due            decimal.Decimal `json:"due"`
	ChangeInTender decimal.Decimal `json:"changeInTender"`
	Change         money.Money     `json:"change"`
}

// Compute reconciles a tender against the amount due.
//
// Sufficiency is judged in the tender currency only; the due amount is
// never converted for the check, so rounding cannot let an underpayment
// through. Change is the tender-currency surplus, with the other currency
// derived from that surplus at the current rate.
func Compute(req Request, rate decimal.Decimal) (*Settlement, error) {
	if req.TenderAmount.IsNegative() {
		return nil, fmt.Errorf("%w: negative tender %s", money.ErrInvalidAmount, req.TenderAmount)
	}
	due, err := req.AmountDue.In(req.TenderCurrency)
	if err != nil {
		return nil, err
	}
	if req.TenderAmount.LessThan(due) {
		return nil, fmt.Errorf("%w: tendered %s %s, due %s %s",
			ErrInsufficientPayment, req.TenderAmount, req.TenderCurrency, due, req.TenderCurrency)
	}

	surplus := req.TenderAmount.Sub(due)
	var change money.Money
	if req.TenderCurrency == money.USD {
		change, err = money.FromUSD(surplus, rate)
	} else {
		change, err = money.FromLBP(surplus, rate)
	}
	if err != nil {
		return nil, err
	}

	return &Settlement{
		Request:        req,
		Due:            due,
		ChangeInTender: surplus,
		Change:         change,
	}, nil
}

// PaymentRequest builds the wire payment for this settlement. The amount
// recorded is what is due in the tender currency; the change goes back to
// the payer.
func (s *Settlement) PaymentRequest(method domain.PaymentMethod) domain.PaymentRequest {
	return domain.PaymentRequest{
		PaymentMethod:   method,
		PaymentCurrency: s.TenderCurrency,
		Amount:          s.Due,
		IdempotencyKey:  uuid.NewString(),
	}
}
