package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"lounge-pos-billing/internal/domain"
)

// MockRateRepo
type MockRateRepo struct {
	mock.Mock
}

func (m *MockRateRepo) GetCurrent(ctx context.Context) (*domain.ExchangeRate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}
func (m *MockRateRepo) ListHistory(ctx context.Context, limit int) ([]domain.RateHistoryEntry, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.RateHistoryEntry), args.Error(1)
}

// MockSessionRepo
type MockSessionRepo struct {
	mock.Mock
}

func (m *MockSessionRepo) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}
func (m *MockSessionRepo) ListActive(ctx context.Context) ([]domain.Session, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Session), args.Error(1)
}
func (m *MockSessionRepo) End(ctx context.Context, id string, req domain.SessionEndRequest) (*domain.Session, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}
func (m *MockSessionRepo) Cancel(ctx context.Context, id string) (*domain.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

// MockDiscountRepo
type MockDiscountRepo struct {
	mock.Mock
}

func (m *MockDiscountRepo) ListActive(ctx context.Context, target domain.DiscountTarget, targetID string) ([]domain.Discount, error) {
	args := m.Called(ctx, target, targetID)
	return args.Get(0).([]domain.Discount), args.Error(1)
}

// MockPaymentRepo
type MockPaymentRepo struct {
	mock.Mock
}

func (m *MockPaymentRepo) SubmitSalePayment(ctx context.Context, saleID string, req domain.PaymentRequest) (*domain.PaymentReceipt, error) {
	args := m.Called(ctx, saleID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentReceipt), args.Error(1)
}
func (m *MockPaymentRepo) SubmitSessionPayment(ctx context.Context, sessionID string, req domain.PaymentRequest) (*domain.PaymentReceipt, error) {
	args := m.Called(ctx, sessionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentReceipt), args.Error(1)
}
func (m *MockPaymentRepo) SubmitLinkedSessionPayment(ctx context.Context, saleID, sessionID string, req domain.PaymentRequest) (*domain.PaymentReceipt, error) {
	args := m.Called(ctx, saleID, sessionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentReceipt), args.Error(1)
}
