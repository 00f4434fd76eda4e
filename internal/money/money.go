package money

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency identifies one side of a dual-currency amount
type Currency string

const (
	USD Currency = "USD"
	LBP Currency = "LBP"
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrMissingRate     = errors.New("exchange rate unavailable")
	ErrUnknownCurrency = errors.New("unknown currency")
)

func init() {
	// figures travel as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true
}

// usdPlaces is the precision USD figures are held at (cents)
const usdPlaces = 2

// Money is the same economic value expressed in USD and LBP.
// USD is kept at cent precision and LBP as a whole number. Values are
// never mutated; every operation returns a new Money.
type Money struct {
	USD decimal.Decimal `json:"usd"`
	LBP decimal.Decimal `json:"lbp"`
}

// Zero is the empty amount
var Zero = Money{USD: decimal.Zero, LBP: decimal.Zero}

// New rounds both components to their storage precision
func New(usd, lbp decimal.Decimal) Money {
	return Money{USD: usd.Round(usdPlaces), LBP: lbp.Round(0)}
}

// ParseCurrency converts a wire value ("usd", "LBP", ...) to a Currency
func ParseCurrency(s string) (Currency, error) {
	switch c := Currency(strings.ToUpper(strings.TrimSpace(s))); c {
	case USD, LBP:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCurrency, s)
}

// UnmarshalText normalizes decoded currencies, so every request accepts the
// same spellings
func (c *Currency) UnmarshalText(text []byte) error {
	parsed, err := ParseCurrency(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Other returns the opposite currency of the pair
func (c Currency) Other() Currency {
	if c == USD {
		return LBP
	}
	return USD
}

// Amount admits a float supplied by a user or the API.
// NaN, infinities and negative values are rejected.
func Amount(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, fmt.Errorf("%w: non-finite value", ErrInvalidAmount)
	}
	if f < 0 {
		return decimal.Zero, fmt.Errorf("%w: negative value %v", ErrInvalidAmount, f)
	}
	return decimal.NewFromFloat(f), nil
}

// CheckRate validates an LBP-per-USD rate before it is used for conversion
func CheckRate(rate decimal.Decimal) error {
	if rate.IsNegative() {
		return fmt.Errorf("%w: negative rate %s", ErrInvalidAmount, rate)
	}
	if rate.IsZero() {
		return ErrMissingRate
	}
	return nil
}

// FromUSD derives the LBP side as round(usd * rate)
func FromUSD(usd, rate decimal.Decimal) (Money, error) {
	if err := CheckRate(rate); err != nil {
		return Zero, err
	}
	if usd.IsNegative() {
		return Zero, fmt.Errorf("%w: negative usd %s", ErrInvalidAmount, usd)
	}
	return Money{
		USD: usd.Round(usdPlaces),
		LBP: usd.Mul(rate).Round(0),
	}, nil
}

// FromLBP derives the USD side as round2(lbp / rate)
func FromLBP(lbp, rate decimal.Decimal) (Money, error) {
	if err := CheckRate(rate); err != nil {
		return Zero, err
	}
	if lbp.IsNegative() {
		return Zero, fmt.Errorf("%w: negative lbp %s", ErrInvalidAmount, lbp)
	}
	return Money{
		USD: lbp.Div(rate).Round(usdPlaces),
		LBP: lbp.Round(0),
	}, nil
}

// Add sums component-wise. Totals are never re-derived from a rate,
// so a sum of line items always equals the sum of its parts.
func Add(values ...Money) Money {
	sum := Zero
	for _, v := range values {
		sum = Money{USD: sum.USD.Add(v.USD), LBP: sum.LBP.Add(v.LBP)}
	}
	return sum
}

// Sub subtracts b from a component-wise
func Sub(a, b Money) Money {
	return Money{USD: a.USD.Sub(b.USD), LBP: a.LBP.Sub(b.LBP)}
}

// Scale multiplies both components by factor, rounding USD to cents and LBP
// to units independently of each other. After repeated scaling the two
// sides may no longer convert into each other exactly; that imprecision is
// accepted so that receipts stay additive.
func Scale(a Money, factor decimal.Decimal) (Money, error) {
	if factor.IsNegative() {
		return Zero, fmt.Errorf("%w: negative factor %s", ErrInvalidAmount, factor)
	}
	return Money{
		USD: a.USD.Mul(factor).Round(usdPlaces),
		LBP: a.LBP.Mul(factor).Round(0),
	}, nil
}

// In returns the component for currency c
func (m Money) In(c Currency) (decimal.Decimal, error) {
	switch c {
	case USD:
		return m.USD, nil
	case LBP:
		return m.LBP, nil
	}
	return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownCurrency, string(c))
}

// Validate rejects amounts with a negative component
func (m Money) Validate() error {
	if m.USD.IsNegative() || m.LBP.IsNegative() {
		return fmt.Errorf("%w: negative amount %s", ErrInvalidAmount, m)
	}
	return nil
}

func (m Money) IsZero() bool {
	return m.USD.IsZero() && m.LBP.IsZero()
}

func (m Money) Equal(o Money) bool {
	return m.USD.Equal(o.USD) && m.LBP.Equal(o.LBP)
}

func (m Money) String() string {
	return fmt.Sprintf("$%s / %s LBP", m.USD.StringFixed(usdPlaces), m.LBP.StringFixed(0))
}
