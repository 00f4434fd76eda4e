package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lounge-pos-billing/internal/domain"
	"lounge-pos-billing/internal/logger"
	"lounge-pos-billing/internal/repository"
)

type rateRepository struct {
	db *sql.DB
}

func NewRateRepository(db *sql.DB) repository.RateRepository {
	return &rateRepository{db: db}
}

func (r *rateRepository) GetCurrent(ctx context.Context) (*domain.ExchangeRate, error) {
	query := `SELECT rate, currency, updated_at FROM exchange_rates ORDER BY updated_at DESC LIMIT 1`
	logger.DatabaseCall("GetCurrentRate", query)

	var rate domain.ExchangeRate
	err := r.db.QueryRowContext(ctx, query).Scan(&rate.Rate, &rate.Currency, &rate.AsOf)
	if errors.Is(err, sql.ErrNoRows) {
		logger.DatabaseResult("GetCurrentRate", 0, nil)
		return nil, fmt.Errorf("exchange rate: %w", repository.ErrNotFound)
	}
	logger.DatabaseResult("GetCurrentRate", 1, err)
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *rateRepository) ListHistory(ctx context.Context, limit int) ([]domain.RateHistoryEntry, error) {
	query := `SELECT rate, previous_rate, created_at, COALESCE(updated_by, ''), COALESCE(notes, '')
	          FROM exchange_rate_history ORDER BY created_at DESC LIMIT $1`
	logger.DatabaseCall("ListRateHistory", query, "limit", limit)

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		logger.DatabaseResult("ListRateHistory", 0, err)
		return nil, err
	}
	defer rows.Close()

	var entries []domain.RateHistoryEntry
	for rows.Next() {
		var e domain.RateHistoryEntry
		if err := rows.Scan(&e.Rate, &e.PreviousRate, &e.CreatedAt, &e.UpdatedBy, &e.Notes); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	logger.DatabaseResult("ListRateHistory", int64(len(entries)), rows.Err())
	return entries, rows.Err()
}
