package domain

import (
	"github.com/shopspring/decimal"

	"lounge-pos-billing/internal/money"
)

type DiscountTarget string

const (
	DiscountTargetProduct       DiscountTarget = "product"
	DiscountTargetCategory      DiscountTarget = "category"
	DiscountTargetGamingSession DiscountTarget = "gaming_session"
	DiscountTargetSale          DiscountTarget = "sale"
)

// Discount as served by the API, already filtered to the active ones.
// Value is a percentage.
type Discount struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Value    decimal.Decimal `json:"value"`
	Target   DiscountTarget  `json:"target"`
	TargetID string          `json:"targetId,omitempty"`
}

// DiscountApplication is computed at settlement time, never stored ahead
type DiscountApplication struct {
	DiscountID     string          `json:"discountId"`
	Name           string          `json:"name"`
	Percentage     decimal.Decimal `json:"percentage"`
	BaseAmount     money.Money     `json:"baseAmount"`
	DiscountAmount money.Money     `json:"discountAmount"`
	FinalAmount    money.Money     `json:"finalAmount"`
}
