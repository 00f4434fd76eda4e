package http

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"lounge-pos-billing/internal/accrual"
	"lounge-pos-billing/internal/cart"
	"lounge-pos-billing/internal/domain"
	"lounge-pos-billing/internal/money"
	"lounge-pos-billing/internal/service"
	"lounge-pos-billing/internal/settlement"
)

// MockRateService
type MockRateService struct {
	mock.Mock
}

func (m *MockRateService) Current(ctx context.Context) (*domain.ExchangeRate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}
func (m *MockRateService) Refresh(ctx context.Context) (*domain.ExchangeRate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}
func (m *MockRateService) History(ctx context.Context, limit int) ([]domain.RateHistoryEntry, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.RateHistoryEntry), args.Error(1)
}
func (m *MockRateService) Convert(ctx context.Context, amount decimal.Decimal, from money.Currency) (money.Money, error) {
	args := m.Called(ctx, amount, from)
	return args.Get(0).(money.Money), args.Error(1)
}
func (m *MockRateService) ReconcilePrice(ctx context.Context, edit service.PriceEdit) (*service.PriceEditResult, error) {
	args := m.Called(ctx, edit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PriceEditResult), args.Error(1)
}

// MockBillingService
type MockBillingService struct {
	mock.Mock
}

func (m *MockBillingService) QuoteSession(ctx context.Context, sessionID, discountID string) (*service.SessionQuote, error) {
	args := m.Called(ctx, sessionID, discountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SessionQuote), args.Error(1)
}
func (m *MockBillingService) ListActiveCosts(ctx context.Context) ([]accrual.Reading, error) {
	args := m.Called(ctx)
	return args.Get(0).([]accrual.Reading), args.Error(1)
}
func (m *MockBillingService) EndSession(ctx context.Context, sessionID, discountID string) (*service.SessionQuote, error) {
	args := m.Called(ctx, sessionID, discountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SessionQuote), args.Error(1)
}
func (m *MockBillingService) SettleSession(ctx context.Context, sessionID string, tender service.Tender) (*service.SettlementResult, error) {
	args := m.Called(ctx, sessionID, tender)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SettlementResult), args.Error(1)
}
func (m *MockBillingService) SettleSale(ctx context.Context, saleID string, amountDue money.Money, tender service.Tender) (*service.SettlementResult, error) {
	args := m.Called(ctx, saleID, amountDue, tender)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SettlementResult), args.Error(1)
}
func (m *MockBillingService) CancelSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}
func (m *MockBillingService) QuoteChange(ctx context.Context, amountDue money.Money, tender service.Tender) (*settlement.Settlement, error) {
	args := m.Called(ctx, amountDue, tender)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlement.Settlement), args.Error(1)
}
func (m *MockBillingService) QuoteDiscount(ctx context.Context, base money.Money, target domain.DiscountTarget, targetID, discountID string) (*service.DiscountQuote, error) {
	args := m.Called(ctx, base, target, targetID, discountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DiscountQuote), args.Error(1)
}
func (m *MockBillingService) QuoteCart(ctx context.Context, c cart.Cart, discountID string) (*cart.Checkout, error) {
	args := m.Called(ctx, c, discountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Checkout), args.Error(1)
}
