package core

import (
	"errors"
	"math"
	"testing"
	"time"
)

func ptr(v float64) *float64 { return &v }

// Requirement: the achievement flag follows the latest entry only, and can fall back to false.
func TestGoal_LogProgress_LatestValueOnly(t *testing.T) {
	// Arrange
	goal := &Goal{Type: CategorySteps, Target: 6000}
	steps := []struct {
		value float64
		want  bool
	}{
		{value: 4000, want: false},
		{value: 6500, want: true},
		{value: 3000, want: false},
		{value: 6000, want: true},
	}

	for i, step := range steps {
		// Act
		_, err := goal.LogProgress(ptr(step.value), time.Time{})

		// Assert
		if err != nil {
			t.Fatalf("LogProgress(%v) error = %v", step.value, err)
		}
		if goal.IsAchieved != step.want {
			t.Errorf("after entry %d (%v): IsAchieved = %v, want %v", i, step.value, goal.IsAchieved, step.want)
		}
	}

	if len(goal.Progress) != len(steps) {
		t.Fatalf("Progress has %d entries, want %d", len(goal.Progress), len(steps))
	}
	for i, step := range steps {
		if goal.Progress[i].Value != step.value {
			t.Errorf("Progress[%d] = %v, want %v (insertion order)", i, goal.Progress[i].Value, step.value)
		}
	}
}

// Requirement: only the three measurable categories can ever be achieved.
func TestGoal_LogProgress_Categories(t *testing.T) {
	tests := []struct {
		name     string
		category string
		target   float64
		value    float64
		want     bool
	}{
		{name: "steps at target", category: CategorySteps, target: 6000, value: 6000, want: true},
		{name: "water intake above target", category: CategoryWaterIntake, target: 8, value: 9, want: true},
		{name: "sleep below target", category: CategorySleep, target: 7, value: 6.5, want: false},
		{name: "custom habit never achieves", category: "custom-habit", target: 5, value: 10, want: false},
		{name: "empty category never achieves", category: "", target: 1, value: 100, want: false},
		{name: "case sensitive category", category: "Steps", target: 1, value: 100, want: false},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			goal := &Goal{Type: test.category, Target: test.target}

			// Act
			_, err := goal.LogProgress(ptr(test.value), time.Now())

			// Assert
			if err != nil {
				t.Fatalf("LogProgress() error = %v", err)
			}
			if goal.IsAchieved != test.want {
				t.Errorf("IsAchieved = %v, want %v", goal.IsAchieved, test.want)
			}
		})
	}
}

// Requirement: a previously achieved flag on an unrecognized category is reset on the next log.
func TestGoal_LogProgress_UnrecognizedResetsFlag(t *testing.T) {
	goal := &Goal{Type: "meditation", Target: 1, IsAchieved: true}

	if _, err := goal.LogProgress(ptr(50), time.Now()); err != nil {
		t.Fatalf("LogProgress() error = %v", err)
	}

	if goal.IsAchieved {
		t.Error("IsAchieved should be false for an unrecognized category")
	}
}

// Requirement: missing or non-numeric values are validation errors and append nothing.
func TestGoal_LogProgress_RejectsInvalidValue(t *testing.T) {
	tests := []struct {
		name  string
		value *float64
	}{
		{name: "nil value", value: nil},
		{name: "NaN", value: ptr(math.NaN())},
		{name: "positive infinity", value: ptr(math.Inf(1))},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			goal := &Goal{Type: CategorySteps, Target: 10, IsAchieved: true}

			_, err := goal.LogProgress(test.value, time.Now())

			if !errors.Is(err, ErrProgressValueRequired) {
				t.Fatalf("error = %v, want ErrProgressValueRequired", err)
			}
			if !errors.Is(err, ErrValidation) {
				t.Errorf("error should be classified as ErrValidation")
			}
			if len(goal.Progress) != 0 {
				t.Errorf("Progress should be untouched, got %d entries", len(goal.Progress))
			}
			if !goal.IsAchieved {
				t.Error("IsAchieved should be untouched on a rejected call")
			}
		})
	}
}

// Requirement: the timestamp defaults to now, and duplicate timestamps are kept.
func TestGoal_LogProgress_Timestamps(t *testing.T) {
	goal := &Goal{Type: CategorySleep, Target: 8}
	at := time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC)

	before := time.Now().UTC()
	entry, err := goal.LogProgress(ptr(7), time.Time{})
	if err != nil {
		t.Fatalf("LogProgress() error = %v", err)
	}
	if entry.Date.Before(before) {
		t.Errorf("default timestamp %v should not precede %v", entry.Date, before)
	}

	_, _ = goal.LogProgress(ptr(8), at)
	_, _ = goal.LogProgress(ptr(9), at)

	if len(goal.Progress) != 3 {
		t.Fatalf("Progress has %d entries, want 3", len(goal.Progress))
	}
	if !goal.Progress[1].Date.Equal(at) || !goal.Progress[2].Date.Equal(at) {
		t.Error("entries with the same timestamp should both be kept")
	}
}

func TestAchieved_EmptyProgress(t *testing.T) {
	if Achieved(CategorySteps, 0, nil) {
		t.Error("a goal without entries is never achieved")
	}
}
