package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"lounge-pos-billing/internal/domain"
	"lounge-pos-billing/internal/exchange"
	"lounge-pos-billing/internal/logger"
	"lounge-pos-billing/internal/money"
	"lounge-pos-billing/internal/repository"
)

type rateService struct {
	rateRepo  repository.RateRepository
	tolerance exchange.Tolerance

	mu      sync.RWMutex
	current *domain.ExchangeRate
}

func NewRateService(rateRepo repository.RateRepository, tolerance exchange.Tolerance) RateService {
	return &rateService{
		rateRepo:  rateRepo,
		tolerance: tolerance,
	}
}

func (s *rateService) Current(ctx context.Context) (*domain.ExchangeRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, money.ErrMissingRate
	}
	rate := *s.current
	return &rate, nil
}

// Refresh pulls the current rate. An unusable answer leaves the last good
// rate in place.
func (s *rateService) Refresh(ctx context.Context) (*domain.ExchangeRate, error) {
	rate, err := s.rateRepo.GetCurrent(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch exchange rate: %w", err)
	}
	if err := money.CheckRate(rate.Rate); err != nil {
		logger.Warn("Ignoring unusable exchange rate", "rate", rate.Rate.String(), "error", err)
		return nil, fmt.Errorf("rejected exchange rate %s: %w", rate.Rate, err)
	}

	s.mu.Lock()
	previous := s.current
	s.current = rate
	s.mu.Unlock()

	if previous == nil || !previous.Rate.Equal(rate.Rate) {
		logger.Info("Exchange rate updated", "rate", rate.Rate.String(), "asOf", rate.AsOf)
	}
	return rate, nil
}

func (s *rateService) History(ctx context.Context, limit int) ([]domain.RateHistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.rateRepo.ListHistory(ctx, limit)
}

func (s *rateService) Convert(ctx context.Context, amount decimal.Decimal, from money.Currency) (money.Money, error) {
	rate, err := s.Current(ctx)
	if err != nil {
		return money.Zero, err
	}
	switch from {
	case money.USD:
		return money.FromUSD(amount, rate.Rate)
	case money.LBP:
		return money.FromLBP(amount, rate.Rate)
	}
	return money.Zero, fmt.Errorf("%w: %q", money.ErrUnknownCurrency, string(from))
}

// ReconcilePrice applies one edit of a price form at the current rate
func (s *rateService) ReconcilePrice(ctx context.Context, edit PriceEdit) (*PriceEditResult, error) {
	rate, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}

	form := exchange.NewSynchronizer(rate.Rate,
		exchange.WithTolerance(s.tolerance),
		exchange.WithObserver(func(field exchange.Field, value decimal.Decimal) {
			logger.Debug("Derived price field", "field", field, "value", value.String())
		}),
	)
	form.Load(edit.Current)
	switch edit.Focused {
	case exchange.FieldUSD:
		form.FocusUSD()
	case exchange.FieldLBP:
		form.FocusLBP()
	}

	switch edit.Edited {
	case exchange.FieldUSD:
		err = form.EditUSD(edit.Value)
	case exchange.FieldLBP:
		err = form.EditLBP(edit.Value)
	default:
		err = fmt.Errorf("%w: edited field %q", money.ErrUnknownCurrency, string(edit.Edited))
	}
	if err != nil {
		return nil, err
	}

	price, err := form.Value()
	if err != nil {
		return nil, err
	}
	return &PriceEditResult{Price: price, State: form.State()}, nil
}
