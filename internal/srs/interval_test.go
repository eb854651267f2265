package srs

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestNewIntervalBounds(t *testing.T) {
	policy := DefaultPolicy()

	tests := []struct {
		name    string
		days    int
		wantErr bool
	}{
		{name: "minimum", days: policy.MinIntervalDays},
		{name: "maximum", days: policy.MaxIntervalDays},
		{name: "zero", days: 0, wantErr: true},
		{name: "negative", days: -3, wantErr: true},
		{name: "above maximum", days: policy.MaxIntervalDays + 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewInterval(tt.days, policy)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NewInterval(%d) expected error, got %v", tt.days, got.Days())
				}
				if !errors.Is(err, ErrOutOfRange) {
					t.Errorf("NewInterval(%d) error = %v, want ErrOutOfRange", tt.days, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewInterval(%d) unexpected error: %v", tt.days, err)
			}
			if got.Days() != tt.days {
				t.Errorf("NewInterval(%d).Days() = %d", tt.days, got.Days())
			}
		})
	}
}

func TestMultiplyBy(t *testing.T) {
	policy := DefaultPolicy()

	tests := []struct {
		name   string
		days   int
		factor float64
		want   int
	}{
		{name: "rounds half up", days: 1, factor: 2.5, want: 3},
		{name: "rounds down", days: 3, factor: 1.1, want: 3},
		{name: "hard multiplier", days: 10, factor: 1.2, want: 12},
		{name: "clamps to minimum", days: 1, factor: 0.1, want: policy.MinIntervalDays},
		{name: "clamps to maximum", days: 20, factor: 2.5, want: policy.MaxIntervalDays},
		{name: "huge factor saturates", days: 30, factor: 1e18, want: policy.MaxIntervalDays},
		{name: "infinity saturates", days: 5, factor: math.Inf(1), want: policy.MaxIntervalDays},
		{name: "nan saturates", days: 5, factor: math.NaN(), want: policy.MaxIntervalDays},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			interval, err := NewInterval(tt.days, policy)
			if err != nil {
				t.Fatalf("setup: %v", err)
			}
			got := interval.MultiplyBy(tt.factor, policy).Days()
			if got != tt.want {
				t.Errorf("MultiplyBy(%v) on %d days = %d, want %d", tt.factor, tt.days, got, tt.want)
			}
		})
	}
}

func TestAddDays(t *testing.T) {
	policy := DefaultPolicy()
	interval := ImmediateInterval(policy)

	if got := interval.AddDays(4, policy).Days(); got != 5 {
		t.Errorf("AddDays(4) = %d, want 5", got)
	}
	if got := interval.AddDays(-10, policy).Days(); got != policy.MinIntervalDays {
		t.Errorf("AddDays(-10) = %d, want clamp to %d", got, policy.MinIntervalDays)
	}
	if got := interval.AddDays(1000, policy).Days(); got != policy.MaxIntervalDays {
		t.Errorf("AddDays(1000) = %d, want clamp to %d", got, policy.MaxIntervalDays)
	}
}

func TestIntervalDuration(t *testing.T) {
	policy := DefaultPolicy()
	interval, err := NewInterval(3, policy)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if got := interval.Duration(); got != 72*time.Hour {
		t.Errorf("Duration() = %v, want 72h", got)
	}
}
