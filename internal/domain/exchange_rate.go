package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate is LBP per 1 USD
type ExchangeRate struct {
	Rate     decimal.Decimal `json:"rate"`
	Currency string          `json:"currency"`
	AsOf     time.Time       `json:"asOf"`
}

// RateHistoryEntry is an append-only audit record; only the current rate
// takes part in computation.
type RateHistoryEntry struct {
	Rate         decimal.Decimal `json:"rate"`
	PreviousRate decimal.Decimal `json:"previousRate"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedBy    string          `json:"updatedBy"`
	Notes        string          `json:"notes"`
}
