package service

import (
	"context"

	"github.com/shopspring/decimal"

	"lounge-pos-billing/internal/accrual"
	"lounge-pos-billing/internal/cart"
	"lounge-pos-billing/internal/domain"
	"lounge-pos-billing/internal/exchange"
	"lounge-pos-billing/internal/money"
	"lounge-pos-billing/internal/settlement"
)

type RateService interface {
	// Current returns the last fetched rate, or money.ErrMissingRate when
	// none was ever fetched
	Current(ctx context.Context) (*domain.ExchangeRate, error)
	Refresh(ctx context.Context) (*domain.ExchangeRate, error)
	History(ctx context.Context, limit int) ([]domain.RateHistoryEntry, error)
	Convert(ctx context.Context, amount decimal.Decimal, from money.Currency) (money.Money, error)
	ReconcilePrice(ctx context.Context, edit PriceEdit) (*PriceEditResult, error)
}

type BillingService interface {
	QuoteSession(ctx context.Context, sessionID, discountID string) (*SessionQuote, error)
	ListActiveCosts(ctx context.Context) ([]accrual.Reading, error)
	EndSession(ctx context.Context, sessionID, discountID string) (*SessionQuote, error)
	SettleSession(ctx context.Context, sessionID string, tender Tender) (*SettlementResult, error)
	SettleSale(ctx context.Context, saleID string, amountDue money.Money, tender Tender) (*SettlementResult, error)
	CancelSession(ctx context.Context, sessionID string) (*domain.Session, error)
	QuoteChange(ctx context.Context, amountDue money.Money, tender Tender) (*settlement.Settlement, error)
	QuoteDiscount(ctx context.Context, base money.Money, target domain.DiscountTarget, targetID, discountID string) (*DiscountQuote, error)
	QuoteCart(ctx context.Context, c cart.Cart, discountID string) (*cart.Checkout, error)
}

// Tender is what the payer hands over
type Tender struct {
	Currency money.Currency       `json:"currency"`
	Amount   decimal.Decimal      `json:"amount"`
	Method   domain.PaymentMethod `json:"method,omitempty"`
}

// SessionQuote is the priced view of one session
type SessionQuote struct {
	Session   domain.Session              `json:"session"`
	Accrual   accrual.Accrual             `json:"accrual"`
	Discount  *domain.DiscountApplication `json:"discount,omitempty"`
	AmountDue money.Money                 `json:"amountDue"`
	Route     settlement.Route            `json:"route"`
}

type SettlementResult struct {
	Settlement *settlement.Settlement `json:"settlement"`
	Receipt    *domain.PaymentReceipt `json:"receipt"`
}

type DiscountQuote struct {
	Base        money.Money                 `json:"base"`
	Application *domain.DiscountApplication `json:"application,omitempty"`
	Final       money.Money                 `json:"final"`
}

// PriceEdit replays one step of a dual-currency price form
type PriceEdit struct {
	Current money.Money     `json:"current"`
	Edited  exchange.Field  `json:"edited"`
	Value   decimal.Decimal `json:"value"`
	// Focused names a field still being typed into, if any
	Focused exchange.Field `json:"focused,omitempty"`
}

type PriceEditResult struct {
	Price money.Money               `json:"price"`
	State exchange.PendingEditState `json:"state"`
}
