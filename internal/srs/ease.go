package srs

import "fmt"

// EaseFactor reflects how easy an item has been historically. Higher values make
// intervals grow faster. Immutable: adjustments return a new value.
type EaseFactor struct {
	value float64
}

// NewEaseFactor validates the value against the policy bounds.
func NewEaseFactor(value float64, policy Policy) (EaseFactor, error) {
	if value < policy.MinEase || value > policy.MaxEase {
		return EaseFactor{}, fmt.Errorf("%w: ease %.2f outside [%.2f, %.2f]",
			ErrOutOfRange, value, policy.MinEase, policy.MaxEase)
	}
	return EaseFactor{value: value}, nil
}

// DefaultEaseFactor is the ease assigned to never-reviewed items.
func DefaultEaseFactor(policy Policy) EaseFactor {
	return EaseFactor{value: policy.DefaultEase}
}

func (e EaseFactor) Value() float64 {
	return e.value
}

// AdjustForFeedback returns a new ease factor clamped to the policy bounds.
// Clamping, not failure: ease drift must never abort scheduling.
func (e EaseFactor) AdjustForFeedback(feedback Feedback, policy Policy) EaseFactor {
	v := e.value
	switch feedback {
	case FeedbackAgain:
		v -= policy.AgainEasePenalty
	case FeedbackHard:
		v -= policy.HardEasePenalty
	case FeedbackGood:
		// Good leaves ease untouched.
	case FeedbackEasy:
		v += policy.EasyEaseBonus
	}
	return EaseFactor{value: clampFloat(v, policy.MinEase, policy.MaxEase)}
}

// Penalize subtracts amount from the ease, clamped to the minimum. Non-positive
// amounts are a no-op.
func (e EaseFactor) Penalize(amount float64, policy Policy) EaseFactor {
	if amount <= 0 {
		return e
	}
	return EaseFactor{value: clampFloat(e.value-amount, policy.MinEase, policy.MaxEase)}
}
