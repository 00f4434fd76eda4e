package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lounge-pos-billing/internal/domain"
	"lounge-pos-billing/internal/exchange"
	"lounge-pos-billing/internal/money"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func rateOf(s string) *domain.ExchangeRate {
	return &domain.ExchangeRate{Rate: d(s), Currency: "LBP", AsOf: time.Date(2026, 10, 15, 18, 0, 0, 0, time.UTC)}
}

// newRates returns a rate service already holding rate
func newRates(t *testing.T, rate string) RateService {
	t.Helper()
	repo := new(MockRateRepo)
	repo.On("GetCurrent", context.Background()).Return(rateOf(rate), nil).Once()
	svc := NewRateService(repo, exchange.DefaultTolerance)
	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	return svc
}

func TestRateService_Current(t *testing.T) {
	ctx := context.Background()

	t.Run("Missing before first refresh", func(t *testing.T) {
		svc := NewRateService(new(MockRateRepo), exchange.DefaultTolerance)
		_, err := svc.Current(ctx)
		assert.ErrorIs(t, err, money.ErrMissingRate)
	})

	t.Run("Keeps last good rate", func(t *testing.T) {
		repo := new(MockRateRepo)
		svc := NewRateService(repo, exchange.DefaultTolerance)

		repo.On("GetCurrent", ctx).Return(rateOf("89500"), nil).Once()
		_, err := svc.Refresh(ctx)
		require.NoError(t, err)

		repo.On("GetCurrent", ctx).Return(rateOf("0"), nil).Once()
		_, err = svc.Refresh(ctx)
		assert.ErrorIs(t, err, money.ErrMissingRate)

		repo.On("GetCurrent", ctx).Return(nil, errors.New("connection refused")).Once()
		_, err = svc.Refresh(ctx)
		assert.Error(t, err)

		rate, err := svc.Current(ctx)
		require.NoError(t, err)
		assert.True(t, rate.Rate.Equal(d("89500")))
		repo.AssertExpectations(t)
	})
}

func TestRateService_History(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRateRepo)
	svc := NewRateService(repo, exchange.DefaultTolerance)

	repo.On("ListHistory", ctx, 50).Return([]domain.RateHistoryEntry{{Rate: d("89500")}}, nil)

	entries, err := svc.History(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRateService_Convert(t *testing.T) {
	ctx := context.Background()
	svc := newRates(t, "89500")

	m, err := svc.Convert(ctx, d("1.50"), money.USD)
	require.NoError(t, err)
	assert.True(t, m.LBP.Equal(d("134250")))

	m, err = svc.Convert(ctx, d("100000"), money.LBP)
	require.NoError(t, err)
	assert.True(t, m.USD.Equal(d("1.12")))

	_, err = svc.Convert(ctx, d("1"), "EUR")
	assert.ErrorIs(t, err, money.ErrUnknownCurrency)
}

func TestRateService_ReconcilePrice(t *testing.T) {
	ctx := context.Background()
	svc := newRates(t, "89500")

	t.Run("USD edit derives LBP", func(t *testing.T) {
		res, err := svc.ReconcilePrice(ctx, PriceEdit{Current: money.Zero, Edited: exchange.FieldUSD, Value: d("2")})
		require.NoError(t, err)
		assert.True(t, res.Price.LBP.Equal(d("179000")))
		assert.Equal(t, exchange.FieldUSD, res.State.LastEdited)
	})

	t.Run("Focused field is left alone", func(t *testing.T) {
		current := money.New(d("1"), d("50000"))
		res, err := svc.ReconcilePrice(ctx, PriceEdit{Current: current, Edited: exchange.FieldUSD, Value: d("2"), Focused: exchange.FieldLBP})
		require.NoError(t, err)
		assert.True(t, res.Price.LBP.Equal(d("50000")))
		assert.True(t, res.State.EditingLBP)
	})

	t.Run("Within tolerance", func(t *testing.T) {
		current := money.New(d("1.12"), d("100000"))
		res, err := svc.ReconcilePrice(ctx, PriceEdit{Current: current, Edited: exchange.FieldLBP, Value: d("100001")})
		require.NoError(t, err)
		assert.True(t, res.Price.USD.Equal(d("1.12")))
	})

	t.Run("Negative value", func(t *testing.T) {
		_, err := svc.ReconcilePrice(ctx, PriceEdit{Edited: exchange.FieldLBP, Value: d("-1")})
		assert.ErrorIs(t, err, money.ErrInvalidAmount)
	})
}
