package srs

import (
	"fmt"
	"math"
	"time"
)

// Interval is a bounded count of days until the next review. Immutable: all
// arithmetic returns a new, clamped value.
type Interval struct {
	days int
}

// NewInterval validates the day count against the policy bounds.
func NewInterval(days int, policy Policy) (Interval, error) {
	if days < policy.MinIntervalDays || days > policy.MaxIntervalDays {
		return Interval{}, fmt.Errorf("%w: interval %d days outside [%d, %d]",
			ErrOutOfRange, days, policy.MinIntervalDays, policy.MaxIntervalDays)
	}
	return Interval{days: days}, nil
}

// ImmediateInterval is the shortest allowed interval, used when the learner
// fails an item and should see it again very soon.
func ImmediateInterval(policy Policy) Interval {
	return Interval{days: policy.MinIntervalDays}
}

func (i Interval) Days() int {
	return i.days
}

func (i Interval) Duration() time.Duration {
	return time.Duration(i.days) * 24 * time.Hour
}

// MultiplyBy scales the interval by factor, rounding to the nearest day and
// saturating at the policy bounds. Overflow or a degenerate factor falls back
// to the maximum rather than erroring.
func (i Interval) MultiplyBy(factor float64, policy Policy) Interval {
	scaled := float64(i.days) * factor
	if math.IsNaN(scaled) || math.IsInf(scaled, 0) || scaled > float64(policy.MaxIntervalDays) {
		return Interval{days: policy.MaxIntervalDays}
	}
	days := int(math.Round(scaled))
	return Interval{days: clampInt(days, policy.MinIntervalDays, policy.MaxIntervalDays)}
}

// AddDays shifts the interval, clamped to the policy bounds.
func (i Interval) AddDays(days int, policy Policy) Interval {
	return Interval{days: clampInt(i.days+days, policy.MinIntervalDays, policy.MaxIntervalDays)}
}
