package srs

import (
	"fmt"
	"math"
	"time"
)

// ReviewState is an immutable snapshot of one schedule's numbers: interval, ease,
// review count and the last/next review timestamps. Every processed review
// produces a successor snapshot; the owning Schedule holds the current one.
type ReviewState struct {
	interval       Interval
	ease           EaseFactor
	reviewCount    int
	lastReviewedAt *time.Time
	nextReviewAt   time.Time
}

// NewReviewState assembles a snapshot from already-validated parts.
func NewReviewState(interval Interval, ease EaseFactor, reviewCount int, lastReviewedAt *time.Time, nextReviewAt time.Time) (ReviewState, error) {
	if reviewCount < 0 {
		return ReviewState{}, fmt.Errorf("%w: review count must not be negative, got %d", ErrOutOfRange, reviewCount)
	}
	return ReviewState{
		interval:       interval,
		ease:           ease,
		reviewCount:    reviewCount,
		lastReviewedAt: lastReviewedAt,
		nextReviewAt:   nextReviewAt,
	}, nil
}

// RehydrateState restores a snapshot from persistence. Stored interval and ease
// values are clamped into the current policy bounds instead of failing, so
// tightening the policy never bricks existing rows.
func RehydrateState(intervalDays int, ease float64, reviewCount int, lastReviewedAt *time.Time, nextReviewAt time.Time, policy Policy) (ReviewState, error) {
	if reviewCount < 0 {
		return ReviewState{}, fmt.Errorf("%w: review count must not be negative, got %d", ErrOutOfRange, reviewCount)
	}
	return ReviewState{
		interval:       Interval{days: clampInt(intervalDays, policy.MinIntervalDays, policy.MaxIntervalDays)},
		ease:           EaseFactor{value: clampFloat(ease, policy.MinEase, policy.MaxEase)},
		reviewCount:    reviewCount,
		lastReviewedAt: lastReviewedAt,
		nextReviewAt:   nextReviewAt,
	}, nil
}

func (s ReviewState) Interval() Interval        { return s.interval }
func (s ReviewState) Ease() EaseFactor          { return s.ease }
func (s ReviewState) ReviewCount() int          { return s.reviewCount }
func (s ReviewState) LastReviewedAt() *time.Time { return s.lastReviewedAt }
func (s ReviewState) NextReviewAt() time.Time   { return s.nextReviewAt }

// WithNewReview returns the successor snapshot after a review at now: review
// count incremented, lastReviewedAt set, nextReviewAt recomputed from the new
// interval.
func (s ReviewState) WithNewReview(interval Interval, ease EaseFactor, now time.Time) ReviewState {
	reviewedAt := now
	return ReviewState{
		interval:       interval,
		ease:           ease,
		reviewCount:    s.reviewCount + 1,
		lastReviewedAt: &reviewedAt,
		nextReviewAt:   now.Add(interval.Duration()),
	}
}

func (s ReviewState) withEase(ease EaseFactor) ReviewState {
	s.ease = ease
	return s
}

// IsDue reports whether the review time has arrived. Exactly on time counts as due.
func (s ReviewState) IsDue(now time.Time) bool {
	return !now.Before(s.nextReviewAt)
}

// IsOverdue is strictly past the review time. Exactly on time is due, not overdue.
func (s ReviewState) IsOverdue(now time.Time) bool {
	return now.After(s.nextReviewAt)
}

// anchor is the reference point retention decays from: the last review, or for
// never-reviewed items the moment the schedule was seeded.
func (s ReviewState) anchor() time.Time {
	if s.lastReviewedAt != nil {
		return *s.lastReviewedAt
	}
	return s.nextReviewAt.Add(-s.interval.Duration())
}

// ElapsedSinceReview is the time since the retention anchor, never negative.
func (s ReviewState) ElapsedSinceReview(now time.Time) time.Duration {
	elapsed := now.Sub(s.anchor())
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// ReviewProgress is elapsed time divided by the scheduled interval: 1.0 exactly
// at the due moment, above 1.0 when overdue.
func (s ReviewState) ReviewProgress(now time.Time) float64 {
	days := s.ElapsedSinceReview(now).Hours() / 24
	intervalDays := s.interval.Days()
	if intervalDays < 1 {
		intervalDays = 1
	}
	return days / float64(intervalDays)
}

// RetentionProbability estimates how likely the learner still remembers the
// item: 1.0 at the moment of review, decaying exponentially with elapsed time
// and never dropping below the policy floor.
func (s ReviewState) RetentionProbability(now time.Time, policy Policy) float64 {
	p := math.Exp(-policy.RetentionDecayRate * s.ReviewProgress(now))
	if p < policy.RetentionFloor {
		return policy.RetentionFloor
	}
	return p
}

// OverdueDays is the whole number of days past the review time, zero when not
// overdue.
func (s ReviewState) OverdueDays(now time.Time) int {
	if !s.IsOverdue(now) {
		return 0
	}
	return int(now.Sub(s.nextReviewAt).Hours() / 24)
}
