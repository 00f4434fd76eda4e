package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"lounge-pos-billing/internal/domain"
	"lounge-pos-billing/internal/logger"
	"lounge-pos-billing/internal/money"
	"lounge-pos-billing/internal/repository"
)

// the discount is snapshotted on the session row when it ends, so a later
// edit to the discount never changes what a completed session owes
const sessionColumns = `id, pc_id, start_time, end_time, hourly_rate_usd, hourly_rate_lbp, status, paid,
	COALESCE(linked_sale_id, ''), COALESCE(discount_id, ''), COALESCE(discount_name, ''), discount_percentage`

type sessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var (
		s       domain.Session
		endTime sql.NullTime
		usd     decimal.NullDecimal
		lbp     decimal.NullDecimal
		dcID    string
		dcName  string
		dcPct   decimal.NullDecimal
	)
	if err := row.Scan(&s.ID, &s.PCID, &s.StartTime, &endTime, &usd, &lbp, &s.Status, &s.Paid,
		&s.LinkedSaleID, &dcID, &dcName, &dcPct); err != nil {
		return nil, err
	}
	if endTime.Valid {
		t := endTime.Time
		s.EndTime = &t
	}
	// a session row without a rate stays nil and accrues nothing
	if usd.Valid && lbp.Valid {
		rate := money.New(usd.Decimal, lbp.Decimal)
		s.HourlyRate = &rate
	}
	// amounts are priced by the billing service from the percentage
	if dcID != "" && dcPct.Valid {
		s.Discount = &domain.DiscountApplication{DiscountID: dcID, Name: dcName, Percentage: dcPct.Decimal}
	}
	return &s, nil
}

func (r *sessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM gaming_sessions WHERE id = $1`
	logger.DatabaseCall("GetSession", query, "session_id", id)

	s, err := scanSession(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		logger.DatabaseResult("GetSession", 0, nil, "session_id", id)
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	logger.DatabaseResult("GetSession", 1, err, "session_id", id)
	return s, err
}

func (r *sessionRepository) ListActive(ctx context.Context) ([]domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM gaming_sessions WHERE status = $1 ORDER BY start_time`
	logger.DatabaseCall("ListActiveSessions", query)

	rows, err := r.db.QueryContext(ctx, query, domain.SessionStatusActive)
	if err != nil {
		logger.DatabaseResult("ListActiveSessions", 0, err)
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	logger.DatabaseResult("ListActiveSessions", int64(len(sessions)), rows.Err())
	return sessions, rows.Err()
}

func (r *sessionRepository) End(ctx context.Context, id string, req domain.SessionEndRequest) (*domain.Session, error) {
	query := `UPDATE gaming_sessions SET status = $2, end_time = NOW(),
	              discount_id = NULLIF($3, ''),
	              discount_name = (SELECT d.name FROM discounts d WHERE d.id = NULLIF($3, '')),
	              discount_percentage = (SELECT d.value FROM discounts d WHERE d.id = NULLIF($3, ''))
	          WHERE id = $1 AND status = $4 RETURNING ` + sessionColumns
	return r.transition(ctx, "EndSession", query, id, domain.SessionStatusCompleted, req.DiscountID, domain.SessionStatusActive)
}

func (r *sessionRepository) Cancel(ctx context.Context, id string) (*domain.Session, error) {
	query := `UPDATE gaming_sessions SET status = $2, end_time = NOW()
	          WHERE id = $1 AND status = $3 RETURNING ` + sessionColumns
	return r.transition(ctx, "CancelSession", query, id, domain.SessionStatusCancelled, domain.SessionStatusActive)
}

// transition runs a guarded status update; no row back means the session
// is either unknown or no longer active
func (r *sessionRepository) transition(ctx context.Context, op, query, id string, args ...any) (*domain.Session, error) {
	logger.DatabaseCall(op, query, "session_id", id)

	s, err := scanSession(r.db.QueryRowContext(ctx, query, append([]any{id}, args...)...))
	if errors.Is(err, sql.ErrNoRows) {
		logger.DatabaseResult(op, 0, nil, "session_id", id)
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, fmt.Errorf("%w: session %s is not active", domain.ErrInvalidTransition, id)
	}
	logger.DatabaseResult(op, 1, err, "session_id", id)
	return s, err
}
