package cart

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"lounge-pos-billing/internal/discount"
	"lounge-pos-billing/internal/domain"
	"lounge-pos-billing/internal/money"
)

var ErrInvalidQuantity = errors.New("quantity must be positive")

// LineItem is one product row of a point-of-sale cart
type LineItem struct {
	ProductID string      `json:"productId"`
	Name      string      `json:"name"`
	UnitPrice money.Money `json:"unitPrice"`
	Quantity  int64       `json:"quantity"`
}

// Total is the unit price scaled by quantity, each currency rounded alone
func (li LineItem) Total() (money.Money, error) {
	if li.Quantity <= 0 {
		return money.Zero, fmt.Errorf("%w: %s x%d", ErrInvalidQuantity, li.ProductID, li.Quantity)
	}
	return money.Scale(li.UnitPrice, decimal.NewFromInt(li.Quantity))
}

type Cart struct {
	Items []LineItem `json:"items"`
}

// Subtotal adds the line totals component-wise
func (c *Cart) Subtotal() (money.Money, error) {
	totals := make([]money.Money, 0, len(c.Items))
	for _, li := range c.Items {
		t, err := li.Total()
		if err != nil {
			return money.Zero, err
		}
		totals = append(totals, t)
	}
	return money.Add(totals...), nil
}

// Checkout is the priced cart ready for the payment dialog
type Checkout struct {
	Subtotal money.Money                 `json:"subtotal"`
	Discount *domain.DiscountApplication `json:"discount,omitempty"`
	Total    money.Money                 `json:"total"`
}

// Checkout prices the cart with at most one sale-level discount
func (c *Cart) Checkout(dc *domain.Discount) (*Checkout, error) {
	subtotal, err := c.Subtotal()
	if err != nil {
		return nil, err
	}
	total, app, err := discount.Apply(subtotal, dc)
	if err != nil {
		return nil, err
	}
	return &Checkout{Subtotal: subtotal, Discount: app, Total: total}, nil
}
