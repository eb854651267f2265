package srs

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Policy groups every tunable constant of the scheduling algorithm so deployments
// can adjust behavior in configuration without touching algorithm code.
type Policy struct {
	MinEase          float64 `yaml:"min_ease" validate:"required,gt=0"`
	MaxEase          float64 `yaml:"max_ease" validate:"required,gtfield=MinEase"`
	DefaultEase      float64 `yaml:"default_ease" validate:"required,gtefield=MinEase,ltefield=MaxEase"`
	AgainEasePenalty float64 `yaml:"again_ease_penalty" validate:"required,gt=0"`
	HardEasePenalty  float64 `yaml:"hard_ease_penalty" validate:"required,gt=0"`
	EasyEaseBonus    float64 `yaml:"easy_ease_bonus" validate:"required,gt=0"`

	HardIntervalMultiplier float64 `yaml:"hard_interval_multiplier" validate:"required,gte=1"`
	EasyBonusMultiplier    float64 `yaml:"easy_bonus_multiplier" validate:"required,gte=1"`
	MinIntervalDays        int     `yaml:"min_interval_days" validate:"required,min=1"`
	MaxIntervalDays        int     `yaml:"max_interval_days" validate:"required,gtefield=MinIntervalDays"`

	// ResetThreshold is the consecutive-failure count after which the next
	// successful review restarts from the initial interval.
	ResetThreshold int `yaml:"reset_threshold" validate:"required,min=1"`

	LatePenaltyPerDay float64 `yaml:"late_penalty_per_day" validate:"gte=0"`
	MaxLatePenalty    float64 `yaml:"max_late_penalty" validate:"gte=0"`

	// HardEaseThreshold marks an item as difficult enough to warrant an extra
	// early reminder before the full interval elapses.
	HardEaseThreshold     float64 `yaml:"hard_ease_threshold" validate:"required,gt=0"`
	EarlyReminderFraction float64 `yaml:"early_reminder_fraction" validate:"required,gt=0,lt=1"`

	RetentionDecayRate float64 `yaml:"retention_decay_rate" validate:"required,gt=0"`
	RetentionFloor     float64 `yaml:"retention_floor" validate:"required,gt=0,lt=1"`

	// Difficulty classification cutoffs: ease at or above BeginnerMinEase reads
	// as beginner, at or above IntermediateMinEase as intermediate, below that
	// as advanced.
	BeginnerMinEase     float64 `yaml:"beginner_min_ease" validate:"required,gt=0"`
	IntermediateMinEase float64 `yaml:"intermediate_min_ease" validate:"required,gt=0,ltfield=BeginnerMinEase"`
}

// DefaultPolicy returns the stock SM-2 style tuning.
func DefaultPolicy() Policy {
	return Policy{
		MinEase:          1.3,
		MaxEase:          4.0,
		DefaultEase:      2.5,
		AgainEasePenalty: 0.20,
		HardEasePenalty:  0.15,
		EasyEaseBonus:    0.15,

		HardIntervalMultiplier: 1.2,
		EasyBonusMultiplier:    1.3,
		MinIntervalDays:        1,
		MaxIntervalDays:        30,

		ResetThreshold: 3,

		LatePenaltyPerDay: 0.05,
		MaxLatePenalty:    0.30,

		HardEaseThreshold:     1.8,
		EarlyReminderFraction: 0.5,

		RetentionDecayRate: 0.105,
		RetentionFloor:     0.1,

		BeginnerMinEase:     2.3,
		IntermediateMinEase: 1.8,
	}
}

// Validate checks the policy for internal consistency.
func (p Policy) Validate() error {
	if err := validator.New().Struct(p); err != nil {
		return fmt.Errorf("invalid scheduling policy: %w", err)
	}
	return nil
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
