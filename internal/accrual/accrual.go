package accrual

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"lounge-pos-billing/internal/domain"
	"lounge-pos-billing/internal/money"
)

// ErrMissingEndTime is returned for an ended session the backend sent
// without an end time
var ErrMissingEndTime = errors.New("ended session has no end time")

const (
	msPerMinute = int64(60_000)
	msPerHour   = int64(3_600_000)
)

// Accrual is the time-derived cost of a session at one instant
type Accrual struct {
	Elapsed        time.Duration   `json:"-"`
	ElapsedMinutes int64           `json:"elapsedMinutes"`
	ElapsedHours   decimal.Decimal `json:"elapsedHours"`
	Cost           money.Money     `json:"cost"`
}

// Compute prices the time between start and now at hourlyRate.
// Minutes are floored for display; cost uses fractional hours so it accrues
// continuously. Every call is independent: nothing is carried between calls.
// A nil or malformed hourly rate counts as zero.
func Compute(start time.Time, hourlyRate *money.Money, now time.Time) Accrual {
	elapsed := now.Sub(start)
	if elapsed < 0 {
		elapsed = 0
	}
	ms := elapsed.Milliseconds()
	hours := decimal.NewFromInt(ms).Div(decimal.NewFromInt(msPerHour))

	cost, err := money.Scale(rateOrZero(hourlyRate), hours)
	if err != nil {
		cost = money.Zero
	}

	return Accrual{
		Elapsed:        elapsed,
		ElapsedMinutes: ms / msPerMinute,
		ElapsedHours:   hours,
		Cost:           cost,
	}
}

// ForSession accrues an active session up to now and an ended one up to
// its end time. An ended session without an end time does not grow with the
// clock; it reads as zero and Check reports it.
func ForSession(s domain.Session, now time.Time) Accrual {
	until := now
	if !s.IsActive() {
		until = s.StartTime
		if s.EndTime != nil {
			until = *s.EndTime
		}
	}
	return Compute(s.StartTime, s.HourlyRate, until)
}

// Check rejects a session whose accrual cannot be priced
func Check(s domain.Session) error {
	if !s.IsActive() && s.EndTime == nil {
		return fmt.Errorf("%w: %s session %s", ErrMissingEndTime, s.Status, s.ID)
	}
	return nil
}

func rateOrZero(rate *money.Money) money.Money {
	if rate == nil || rate.USD.IsNegative() || rate.LBP.IsNegative() {
		return money.Zero
	}
	return *rate
}
