package discount

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"lounge-pos-billing/internal/domain"
	"lounge-pos-billing/internal/money"
)

var (
	ErrInvalidPercentage = errors.New("discount percentage must be in (0, 100]")
	ErrNotApplicable     = errors.New("discount not applicable")
)

var hundred = decimal.NewFromInt(100)

// Resolve picks the selected discount out of the active ones for a target.
// An empty selection means no discount. A discount with no TargetID covers
// every item of its target class.
func Resolve(discounts []domain.Discount, target domain.DiscountTarget, targetID, selectedID string) (*domain.Discount, error) {
	if selectedID == "" {
		return nil, nil
	}
	for i := range discounts {
		dc := discounts[i]
		if dc.ID != selectedID {
			continue
		}
		if dc.Target != target || (dc.TargetID != "" && dc.TargetID != targetID) {
			return nil, fmt.Errorf("%w: %s targets %s %s", ErrNotApplicable, dc.ID, dc.Target, dc.TargetID)
		}
		return &dc, nil
	}
	return nil, fmt.Errorf("%w: %s is not active", ErrNotApplicable, selectedID)
}

// Validate checks the percentage before an application is built
func Validate(dc domain.Discount) error {
	if !dc.Value.IsPositive() || dc.Value.GreaterThan(hundred) {
		return fmt.Errorf("%w: %s has %s", ErrInvalidPercentage, dc.ID, dc.Value)
	}
	return nil
}

// NewApplication prices a discount against base. The final amount is the
// base minus the already rounded discount amount, so base, discount and
// final always reconcile on a receipt.
func NewApplication(dc domain.Discount, base money.Money) (*domain.DiscountApplication, error) {
	if err := Validate(dc); err != nil {
		return nil, err
	}
	off, err := money.Scale(base, dc.Value.Div(hundred))
	if err != nil {
		return nil, err
	}
	return &domain.DiscountApplication{
		DiscountID:     dc.ID,
		Name:           dc.Name,
		Percentage:     dc.Value,
		BaseAmount:     base,
		DiscountAmount: off,
		FinalAmount:    money.Sub(base, off),
	}, nil
}

// Apply returns the amount owed after at most one discount.
// With no discount the base is owed and no application is attached.
func Apply(base money.Money, dc *domain.Discount) (money.Money, *domain.DiscountApplication, error) {
	if dc == nil {
		return base, nil, nil
	}
	app, err := NewApplication(*dc, base)
	if err != nil {
		return money.Zero, nil, err
	}
	return app.FinalAmount, app, nil
}
