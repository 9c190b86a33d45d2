package core

import (
	"math"
	"time"
)

// Goal categories whose achievement is measured against the latest entry.
const (
	CategorySteps       = "steps"
	CategoryWaterIntake = "water_intake"
	CategorySleep       = "sleep"
)

// IsMeasurable reports whether goals of this category can ever be achieved.
func IsMeasurable(category string) bool {
	switch category {
	case CategorySteps, CategoryWaterIntake, CategorySleep:
		return true
	default:
		return false
	}
}

// Achieved is the achievement rule: the most recent entry meets the target
// and the category is measurable. It keeps no memory of earlier entries or of
// the previous flag, so a later low entry flips a goal back to unachieved.
func Achieved(category string, target float64, progress []ProgressEntry) bool {
	if !IsMeasurable(category) || len(progress) == 0 {
		return false
	}
	return progress[len(progress)-1].Value >= target
}

// LogProgress appends an entry and recomputes IsAchieved.
//
// A nil or non-finite value is rejected before anything is appended.
// A zero timestamp is replaced by the current time.
func (g *Goal) LogProgress(value *float64, at time.Time) (ProgressEntry, error) {
	if err := ValidateProgressValue(value); err != nil {
		return ProgressEntry{}, err
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}

	entry := ProgressEntry{Date: at, Value: *value}
	g.Progress = append(g.Progress, entry)
	g.IsAchieved = Achieved(g.Type, g.Target, g.Progress)

	return entry, nil
}

// ValidateProgressValue rejects a missing or non-finite progress value.
func ValidateProgressValue(value *float64) error {
	if value == nil || math.IsNaN(*value) || math.IsInf(*value, 0) {
		return ErrProgressValueRequired
	}
	return nil
}
