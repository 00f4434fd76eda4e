package repository

import (
	"context"
	"errors"

	"lounge-pos-billing/internal/domain"
)

var ErrNotFound = errors.New("not found")

type RateRepository interface {
	GetCurrent(ctx context.Context) (*domain.ExchangeRate, error)
	ListHistory(ctx context.Context, limit int) ([]domain.RateHistoryEntry, error)
}

type SessionRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	ListActive(ctx context.Context) ([]domain.Session, error)
	End(ctx context.Context, id string, req domain.SessionEndRequest) (*domain.Session, error)
	Cancel(ctx context.Context, id string) (*domain.Session, error)
}

type DiscountRepository interface {
	// ListActive returns the discounts currently active for a target;
	// an empty targetID asks for the whole target class
	ListActive(ctx context.Context, target domain.DiscountTarget, targetID string) ([]domain.Discount, error)
}

// PaymentRepository records payments. Each payment goes to exactly one
// method, chosen by settlement route. Both session methods must leave the
// session paid.
type PaymentRepository interface {
	SubmitSalePayment(ctx context.Context, saleID string, req domain.PaymentRequest) (*domain.PaymentReceipt, error)
	SubmitSessionPayment(ctx context.Context, sessionID string, req domain.PaymentRequest) (*domain.PaymentReceipt, error)
	SubmitLinkedSessionPayment(ctx context.Context, saleID, sessionID string, req domain.PaymentRequest) (*domain.PaymentReceipt, error)
}

// Store bundles one backend's repositories
type Store struct {
	RateRepository
	SessionRepository
	DiscountRepository
	PaymentRepository
}
