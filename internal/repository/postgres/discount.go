package postgres

import (
	"context"
	"database/sql"

	"lounge-pos-billing/internal/domain"
	"lounge-pos-billing/internal/logger"
	"lounge-pos-billing/internal/repository"
)

type discountRepository struct {
	db *sql.DB
}

func NewDiscountRepository(db *sql.DB) repository.DiscountRepository {
	return &discountRepository{db: db}
}

func (r *discountRepository) ListActive(ctx context.Context, target domain.DiscountTarget, targetID string) ([]domain.Discount, error) {
	query := `SELECT id, name, value, target, COALESCE(target_id, '') FROM discounts
	          WHERE is_active AND target = $1
	            AND (target_id IS NULL OR $2 = '' OR target_id = $2)
	            AND (starts_at IS NULL OR starts_at <= NOW())
	            AND (ends_at IS NULL OR ends_at > NOW())
	          ORDER BY name`
	logger.DatabaseCall("ListActiveDiscounts", query, "target", target, "target_id", targetID)

	rows, err := r.db.QueryContext(ctx, query, target, targetID)
	if err != nil {
		logger.DatabaseResult("ListActiveDiscounts", 0, err)
		return nil, err
	}
	defer rows.Close()

	var discounts []domain.Discount
	for rows.Next() {
		var dc domain.Discount
		if err := rows.Scan(&dc.ID, &dc.Name, &dc.Value, &dc.Target, &dc.TargetID); err != nil {
			return nil, err
		}
		discounts = append(discounts, dc)
	}
	logger.DatabaseResult("ListActiveDiscounts", int64(len(discounts)), rows.Err())
	return discounts, rows.Err()
}
