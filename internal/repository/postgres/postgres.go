package postgres

import (
	"database/sql"

	"lounge-pos-billing/internal/repository"

	_ "github.com/lib/pq"
)

// NewStore builds repositories that read the POS database directly
func NewStore(db *sql.DB) *repository.Store {
	return &repository.Store{
		RateRepository:     NewRateRepository(db),
		SessionRepository:  NewSessionRepository(db),
		DiscountRepository: NewDiscountRepository(db),
		PaymentRepository:  NewPaymentRepository(db),
	}
}
