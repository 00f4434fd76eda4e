package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"lounge-pos-billing/internal/domain"
	"lounge-pos-billing/internal/repository"
)

type rateRepository struct {
	c *Client
}

func (r *rateRepository) GetCurrent(ctx context.Context) (*domain.ExchangeRate, error) {
	var rate domain.ExchangeRate
	if err := r.c.do(ctx, request{method: http.MethodGet, path: "/exchange-rate"}, &rate); err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *rateRepository) ListHistory(ctx context.Context, limit int) ([]domain.RateHistoryEntry, error) {
	var entries []domain.RateHistoryEntry
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	if err := r.c.do(ctx, request{method: http.MethodGet, path: "/exchange-rate/history", query: q}, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

type sessionRepository struct {
	c *Client
}

func sessionPath(id string, suffix string) string {
	return "/gaming-sessions/" + url.PathEscape(id) + suffix
}

// notFound turns a generic 404 into the session-specific error
func notFound(err error, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	return err
}

func (r *sessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	var s domain.Session
	if err := r.c.do(ctx, request{method: http.MethodGet, path: sessionPath(id, "")}, &s); err != nil {
		return nil, notFound(err, id)
	}
	return &s, nil
}

func (r *sessionRepository) ListActive(ctx context.Context) ([]domain.Session, error) {
	var sessions []domain.Session
	if err := r.c.do(ctx, request{method: http.MethodGet, path: "/gaming-sessions/active"}, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepository) End(ctx context.Context, id string, req domain.SessionEndRequest) (*domain.Session, error) {
	var s domain.Session
	if err := r.c.do(ctx, request{method: http.MethodPost, path: sessionPath(id, "/end"), body: req}, &s); err != nil {
		return nil, notFound(err, id)
	}
	return &s, nil
}

func (r *sessionRepository) Cancel(ctx context.Context, id string) (*domain.Session, error) {
	var s domain.Session
	if err := r.c.do(ctx, request{method: http.MethodPost, path: sessionPath(id, "/cancel")}, &s); err != nil {
		return nil, notFound(err, id)
	}
	return &s, nil
}

type discountRepository struct {
	c *Client
}

func (r *discountRepository) ListActive(ctx context.Context, target domain.DiscountTarget, targetID string) ([]domain.Discount, error) {
	q := url.Values{"target": {string(target)}}
	if targetID != "" {
		q.Set("targetId", targetID)
	}
	var discounts []domain.Discount
	if err := r.c.do(ctx, request{method: http.MethodGet, path: "/discounts/active", query: q}, &discounts); err != nil {
		return nil, err
	}
	return discounts, nil
}

type paymentRepository struct {
	c *Client
}

func (r *paymentRepository) submit(ctx context.Context, path string, req domain.PaymentRequest) (*domain.PaymentReceipt, error) {
	var receipt domain.PaymentReceipt
	headers := map[string]string{}
	if req.IdempotencyKey != "" {
		headers["Idempotency-Key"] = req.IdempotencyKey
	}
	if err := r.c.do(ctx, request{method: http.MethodPost, path: path, body: req, headers: headers}, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (r *paymentRepository) SubmitSalePayment(ctx context.Context, saleID string, req domain.PaymentRequest) (*domain.PaymentReceipt, error) {
	return r.submit(ctx, "/sales/"+url.PathEscape(saleID)+"/payments", req)
}

// SubmitLinkedSessionPayment pays the sale; the POS API closes the sessions
// linked to a sale when it records the sale's payment
func (r *paymentRepository) SubmitLinkedSessionPayment(ctx context.Context, saleID, sessionID string, req domain.PaymentRequest) (*domain.PaymentReceipt, error) {
	receipt, err := r.SubmitSalePayment(ctx, saleID, req)
	if err != nil {
		return nil, err
	}
	if receipt.SessionID == "" {
		receipt.SessionID = sessionID
	}
	return receipt, nil
}

func (r *paymentRepository) SubmitSessionPayment(ctx context.Context, sessionID string, req domain.PaymentRequest) (*domain.PaymentReceipt, error) {
	receipt, err := r.submit(ctx, sessionPath(sessionID, "/payments"), req)
	return receipt, notFound(err, sessionID)
}
