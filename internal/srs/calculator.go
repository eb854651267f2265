package srs

import (
	"fmt"
	"math"
	"time"
)

// Calculator implements the SM-2 style recalculation. It is pure policy: no
// clock, no I/O, deterministic given identical inputs.
type Calculator struct {
	policy Policy
}

func NewCalculator(policy Policy) Calculator {
	return Calculator{policy: policy}
}

func (c Calculator) Policy() Policy {
	return c.policy
}

// NextInterval applies one feedback to the current state and returns the new
// interval and ease factor.
//
//	Again: back to the minimum interval, ease penalized.
//	Hard:  interval * hard multiplier, ease penalized slightly.
//	Good:  interval * ease, ease unchanged. Repeated Good compounds geometrically.
//	Easy:  interval * ease * easy bonus, ease raised.
//
// The result is always clamped to the policy maximum; overflow saturates
// instead of erroring.
func (c Calculator) NextInterval(state ReviewState, feedback Feedback) (Interval, EaseFactor, error) {
	if !feedback.Valid() {
		return Interval{}, EaseFactor{}, fmt.Errorf("%w: %d", ErrInvalidFeedback, int(feedback))
	}

	ease := state.Ease().AdjustForFeedback(feedback, c.policy)

	var interval Interval
	switch feedback {
	case FeedbackAgain:
		interval = ImmediateInterval(c.policy)
	case FeedbackHard:
		interval = state.Interval().MultiplyBy(c.policy.HardIntervalMultiplier, c.policy)
	case FeedbackGood:
		interval = state.Interval().MultiplyBy(state.Ease().Value(), c.policy)
	case FeedbackEasy:
		interval = state.Interval().MultiplyBy(state.Ease().Value()*c.policy.EasyBonusMultiplier, c.policy)
	}

	return interval, ease, nil
}

// AdjustForLateReview penalizes ease in proportion to how late the review is:
// min(MaxLatePenalty, daysLate * LatePenaltyPerDay). Early or on-time reviews
// come back unchanged, and the interval is never touched.
func (c Calculator) AdjustForLateReview(state ReviewState, actualAt time.Time) ReviewState {
	if !actualAt.After(state.NextReviewAt()) {
		return state
	}
	daysLate := actualAt.Sub(state.NextReviewAt()).Hours() / 24
	penalty := math.Min(c.policy.MaxLatePenalty, daysLate*c.policy.LatePenaltyPerDay)
	return state.withEase(state.Ease().Penalize(penalty, c.policy))
}

// ShouldResetInterval reports whether the schedule has failed often enough that
// the next successful review should restart from the initial interval instead
// of growing incrementally. Never true for items that were never reviewed.
func (c Calculator) ShouldResetInterval(state ReviewState, consecutiveFailures int) bool {
	return consecutiveFailures >= c.policy.ResetThreshold && state.ReviewCount() >= 1
}

// InitialState seeds a never-reviewed schedule: default ease, minimum interval,
// first review due one interval from now.
func (c Calculator) InitialState(now time.Time) ReviewState {
	interval := ImmediateInterval(c.policy)
	return ReviewState{
		interval:     interval,
		ease:         DefaultEaseFactor(c.policy),
		reviewCount:  0,
		nextReviewAt: now.Add(interval.Duration()),
	}
}
