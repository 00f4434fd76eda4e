package http

import (
	"errors"
	"net/http"

	"lounge-pos-billing/internal/accrual"
	"lounge-pos-billing/internal/cart"
	"lounge-pos-billing/internal/discount"
	"lounge-pos-billing/internal/domain"
	"lounge-pos-billing/internal/money"
	"lounge-pos-billing/internal/repository"
	"lounge-pos-billing/internal/repository/remote"
	"lounge-pos-billing/internal/settlement"
)

var errBadRequest = errors.New("bad request")

// statusFor maps a domain error onto an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, money.ErrUnknownCurrency):
		return http.StatusBadRequest
	case errors.Is(err, money.ErrInvalidAmount),
		errors.Is(err, settlement.ErrInsufficientPayment),
		errors.Is(err, discount.ErrInvalidPercentage),
		errors.Is(err, discount.ErrNotApplicable),
		errors.Is(err, cart.ErrInvalidQuantity):
		return http.StatusUnprocessableEntity
	case errors.Is(err, money.ErrMissingRate):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	}
	var apiErr *remote.APIError
	if errors.As(err, &apiErr) || errors.Is(err, accrual.ErrMissingEndTime) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
