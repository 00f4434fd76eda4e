package domain

import (
	"github.com/shopspring/decimal"

	"lounge-pos-billing/internal/money"
)

type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "cash"
	PaymentMethodCard PaymentMethod = "card"
)

// PaymentRequest is submitted to exactly one of the sale or session
// payment endpoints
type PaymentRequest struct {
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	PaymentCurrency money.Currency  `json:"paymentCurrency"`
	Amount          decimal.Decimal `json:"amount"`
	IdempotencyKey  string          `json:"-"`
}

// PaymentReceipt is what the API returns for an accepted payment
type PaymentReceipt struct {
	ID        string `json:"id"`
	SaleID    string `json:"saleId,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	Status    string `json:"status"`
}
