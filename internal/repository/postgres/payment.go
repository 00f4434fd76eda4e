package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"lounge-pos-billing/internal/domain"
	"lounge-pos-billing/internal/logger"
	"lounge-pos-billing/internal/repository"
)

type paymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

const insertPayment = `INSERT INTO payments (sale_id, session_id, payment_method, payment_currency, amount, idempotency_key, created_at)
	VALUES (NULLIF($1, ''), NULLIF($2, ''), $3, $4, $5, $6, NOW())
	ON CONFLICT (idempotency_key) DO UPDATE SET idempotency_key = EXCLUDED.idempotency_key
	RETURNING id`

func (r *paymentRepository) SubmitSalePayment(ctx context.Context, saleID string, req domain.PaymentRequest) (*domain.PaymentReceipt, error) {
	logger.DatabaseCall("SubmitSalePayment", insertPayment, "sale_id", saleID)

	receipt := &domain.PaymentReceipt{SaleID: saleID, Status: "recorded"}
	err := r.db.QueryRowContext(ctx, insertPayment,
		saleID, "", req.PaymentMethod, req.PaymentCurrency, req.Amount, req.IdempotencyKey,
	).Scan(&receipt.ID)
	logger.DatabaseResult("SubmitSalePayment", 1, err, "sale_id", saleID)
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// SubmitSessionPayment records the payment and flags the session paid in
// one transaction
func (r *paymentRepository) SubmitSessionPayment(ctx context.Context, sessionID string, req domain.PaymentRequest) (*domain.PaymentReceipt, error) {
	logger.DatabaseCall("SubmitSessionPayment", insertPayment, "session_id", sessionID)

	receipt, err := r.payForSession(ctx, "", sessionID, req)
	logger.DatabaseResult("SubmitSessionPayment", 1, err, "session_id", sessionID)
	return receipt, err
}

// SubmitLinkedSessionPayment records a payment against the sale a session is
// linked to. The session is flagged paid in the same transaction, so it
// cannot be settled twice through its sale.
func (r *paymentRepository) SubmitLinkedSessionPayment(ctx context.Context, saleID, sessionID string, req domain.PaymentRequest) (*domain.PaymentReceipt, error) {
	logger.DatabaseCall("SubmitLinkedSessionPayment", insertPayment, "sale_id", saleID, "session_id", sessionID)

	receipt, err := r.payForSession(ctx, saleID, sessionID, req)
	logger.DatabaseResult("SubmitLinkedSessionPayment", 1, err, "sale_id", saleID, "session_id", sessionID)
	return receipt, err
}

func (r *paymentRepository) payForSession(ctx context.Context, saleID, sessionID string, req domain.PaymentRequest) (*domain.PaymentReceipt, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE gaming_sessions SET paid = TRUE WHERE id = $1 AND status = $2 AND NOT paid`,
		sessionID, domain.SessionStatusCompleted)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, fmt.Errorf("%w: session %s is not awaiting payment", domain.ErrInvalidTransition, sessionID)
	}

	receipt := &domain.PaymentReceipt{SaleID: saleID, SessionID: sessionID, Status: "recorded"}
	if err := tx.QueryRowContext(ctx, insertPayment,
		saleID, sessionID, req.PaymentMethod, req.PaymentCurrency, req.Amount, req.IdempotencyKey,
	).Scan(&receipt.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return receipt, nil
}
