package domain

import (
	"errors"
	"fmt"
	"time"

	"lounge-pos-billing/internal/money"
)

type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusCancelled SessionStatus = "cancelled"
)

var (
	ErrInvalidTransition = errors.New("invalid session transition")
	ErrSessionNotFound   = errors.New("session not found")
)

// Session is a metered rental of one gaming station.
// The settlement route is fixed by LinkedSaleID when the session is created.
type Session struct {
	ID           string               `json:"id"`
	PCID         string               `json:"pcId"`
	StartTime    time.Time            `json:"startTime"`
	EndTime      *time.Time           `json:"endTime,omitempty"`
	HourlyRate   *money.Money         `json:"hourlyRate,omitempty"`
	Status       SessionStatus        `json:"status"`
	Paid         bool                 `json:"paid"`
	Discount     *DiscountApplication `json:"discount,omitempty"`
	LinkedSaleID string               `json:"linkedSaleId,omitempty"`
}

func (s *Session) HasLinkedSale() bool {
	return s.LinkedSaleID != ""
}

func (s *Session) IsActive() bool {
	return s.Status == SessionStatusActive
}

// End moves an active session to Completed (unpaid)
func (s *Session) End(at time.Time, discount *DiscountApplication) error {
	if s.Status != SessionStatusActive {
		return fmt.Errorf("%w: cannot end %s session %s", ErrInvalidTransition, s.Status, s.ID)
	}
	s.Status = SessionStatusCompleted
	s.EndTime = &at
	s.Discount = discount
	return nil
}

// MarkPaid records settlement of a completed session. Paid is terminal.
func (s *Session) MarkPaid() error {
	if s.Status != SessionStatusCompleted || s.Paid {
		return fmt.Errorf("%w: cannot settle %s session %s (paid=%t)", ErrInvalidTransition, s.Status, s.ID, s.Paid)
	}
	s.Paid = true
	return nil
}

// Cancel ends an active session without settlement
func (s *Session) Cancel(at time.Time) error {
	if s.Status != SessionStatusActive {
		return fmt.Errorf("%w: cannot cancel %s session %s", ErrInvalidTransition, s.Status, s.ID)
	}
	s.Status = SessionStatusCancelled
	s.EndTime = &at
	return nil
}

// SessionEndRequest is sent to the API when a session is stopped
type SessionEndRequest struct {
	DiscountID string `json:"discountId,omitempty"`
}
