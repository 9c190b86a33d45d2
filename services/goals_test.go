package services

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/lborres/vitals/core"
)

func TestGoalService_Create(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		input   core.GoalInput
		wantErr error
	}{
		{name: "valid", input: core.GoalInput{Type: "steps", Target: ptr(6000.0), Unit: "steps"}},
		{name: "explicit start", input: core.GoalInput{Type: "sleep", Target: ptr(8.0), Unit: "hours", StartDate: &start}},
		{name: "custom category", input: core.GoalInput{Type: "meditation", Target: ptr(10.0), Unit: "minutes"}},
		{name: "missing type", input: core.GoalInput{Target: ptr(1.0), Unit: "u"}, wantErr: core.ErrGoalFieldsRequired},
		{name: "missing unit", input: core.GoalInput{Type: "steps", Target: ptr(1.0)}, wantErr: core.ErrGoalFieldsRequired},
		{name: "missing target", input: core.GoalInput{Type: "steps", Unit: "steps"}, wantErr: core.ErrGoalFieldsRequired},
		{name: "zero target", input: core.GoalInput{Type: "steps", Target: ptr(0.0), Unit: "steps"}, wantErr: core.ErrInvalidTarget},
		{name: "negative target", input: core.GoalInput{Type: "steps", Target: ptr(-5.0), Unit: "steps"}, wantErr: core.ErrInvalidTarget},
		{name: "NaN target", input: core.GoalInput{Type: "steps", Target: ptr(math.NaN()), Unit: "steps"}, wantErr: core.ErrInvalidTarget},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			f := newFixture(t)
			owner, _ := f.register(t, "pat", core.RoleSubject)

			// Act
			goal, err := f.goals.Create(context.Background(), owner, test.input)

			// Assert
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("Create() error = %v, want %v", err, test.wantErr)
			}
			if err != nil {
				return
			}
			if goal.Owner != owner.ID {
				t.Errorf("Owner = %s, want %s", goal.Owner, owner.ID)
			}
			if goal.IsAchieved || len(goal.Progress) != 0 {
				t.Error("new goal should start unachieved with no progress")
			}
			wantStart := f.clock.now
			if test.input.StartDate != nil {
				wantStart = *test.input.StartDate
			}
			if !goal.StartDate.Equal(wantStart) {
				t.Errorf("StartDate = %v, want %v", goal.StartDate, wantStart)
			}
		})
	}
}

// Requirement: progress logging follows the latest value and is persisted.
func TestGoalService_LogProgress(t *testing.T) {
	// Arrange
	f := newFixture(t)
	owner, _ := f.register(t, "pat", core.RoleSubject)
	goal := f.createGoal(t, owner, core.CategorySteps, 6000)

	steps := []struct {
		value float64
		want  bool
	}{
		{value: 4000, want: false},
		{value: 6500, want: true},
		{value: 3000, want: false},
	}

	for _, step := range steps {
		// Act
		got, err := f.goals.LogProgress(context.Background(), owner, goal.ID, core.ProgressInput{Value: ptr(step.value)})

		// Assert
		if err != nil {
			t.Fatalf("LogProgress(%v) error = %v", step.value, err)
		}
		if got.IsAchieved != step.want {
			t.Errorf("after %v: IsAchieved = %v, want %v", step.value, got.IsAchieved, step.want)
		}
	}

	stored, err := f.store.GetGoalByID(context.Background(), goal.ID)
	if err != nil {
		t.Fatalf("GetGoalByID() error = %v", err)
	}
	if len(stored.Progress) != 3 || stored.IsAchieved {
		t.Errorf("stored goal = %d entries achieved=%v, want 3 entries unachieved", len(stored.Progress), stored.IsAchieved)
	}
	if !stored.Progress[0].Date.Equal(f.clock.now) {
		t.Errorf("default entry date = %v, want service clock %v", stored.Progress[0].Date, f.clock.now)
	}
}

func TestGoalService_LogProgress_ExplicitDate(t *testing.T) {
	f := newFixture(t)
	owner, _ := f.register(t, "pat", core.RoleSubject)
	goal := f.createGoal(t, owner, core.CategoryWaterIntake, 8)
	at := time.Date(2026, 2, 27, 20, 0, 0, 0, time.UTC)

	got, err := f.goals.LogProgress(context.Background(), owner, goal.ID, core.ProgressInput{Value: ptr(9.0), Date: &at})
	if err != nil {
		t.Fatalf("LogProgress() error = %v", err)
	}

	if !got.Progress[0].Date.Equal(at) {
		t.Errorf("entry date = %v, want %v", got.Progress[0].Date, at)
	}
	if !got.IsAchieved {
		t.Error("water intake above target should be achieved")
	}
}

// Requirement: a rejected value writes nothing, even for a goal the caller does not own.
func TestGoalService_LogProgress_ValidationFirst(t *testing.T) {
	f := newFixture(t)
	owner, _ := f.register(t, "pat", core.RoleSubject)
	goal := f.createGoal(t, owner, core.CategorySteps, 10)

	_, err := f.goals.LogProgress(context.Background(), owner, goal.ID, core.ProgressInput{})
	if !errors.Is(err, core.ErrProgressValueRequired) {
		t.Fatalf("LogProgress() error = %v, want ErrProgressValueRequired", err)
	}

	_, err = f.goals.LogProgress(context.Background(), owner, "missing", core.ProgressInput{Value: ptr(math.Inf(-1))})
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("LogProgress() error = %v, want validation before lookup", err)
	}

	stored, _ := f.store.GetGoalByID(context.Background(), goal.ID)
	if len(stored.Progress) != 0 {
		t.Errorf("rejected call appended %d entries", len(stored.Progress))
	}
}

// Requirement: another subject's goal is indistinguishable from a missing one and is never written.
func TestGoalService_ForeignGoalIsNotFound(t *testing.T) {
	f := newFixture(t)
	owner, _ := f.register(t, "pat", core.RoleSubject)
	intruder, _ := f.register(t, "eve", core.RoleSubject)
	goal := f.createGoal(t, owner, core.CategorySteps, 10)
	ctx := context.Background()

	_, getErr := f.goals.Get(ctx, intruder, goal.ID, "")
	_, missingErr := f.goals.Get(ctx, intruder, "does-not-exist", "")
	_, logErr := f.goals.LogProgress(ctx, intruder, goal.ID, core.ProgressInput{Value: ptr(50.0)})
	delErr := f.goals.Delete(ctx, intruder, goal.ID)

	for name, err := range map[string]error{"get": getErr, "missing": missingErr, "log": logErr, "delete": delErr} {
		if !errors.Is(err, core.ErrGoalNotFound) {
			t.Errorf("%s error = %v, want ErrGoalNotFound", name, err)
		}
	}
	if getErr.Error() != missingErr.Error() {
		t.Error("foreign and missing goals should produce the same message")
	}

	stored, err := f.store.GetGoalByID(ctx, goal.ID)
	if err != nil {
		t.Fatalf("goal should survive a foreign delete: %v", err)
	}
	if len(stored.Progress) != 0 {
		t.Error("foreign log should not append")
	}
}

// Requirement: a custodian reads a subject's goal only through the subject named in the path.
func TestGoalService_Get_CustodianOverride(t *testing.T) {
	f := newFixture(t)
	patient, _ := f.register(t, "pat", core.RoleSubject)
	other, _ := f.register(t, "other", core.RoleSubject)
	provider, _ := f.register(t, "doc", core.RoleCustodian)
	goal := f.createGoal(t, patient, core.CategorySleep, 8)
	ctx := context.Background()

	got, err := f.goals.Get(ctx, provider, goal.ID, patient.ID)
	if err != nil {
		t.Fatalf("Get() with matching subject error = %v", err)
	}
	if got.ID != goal.ID {
		t.Errorf("Get() = %s, want %s", got.ID, goal.ID)
	}

	if _, err := f.goals.Get(ctx, provider, goal.ID, other.ID); !errors.Is(err, core.ErrGoalNotFound) {
		t.Errorf("Get() with mismatched subject error = %v, want ErrGoalNotFound", err)
	}
	if _, err := f.goals.Get(ctx, provider, goal.ID, ""); !errors.Is(err, core.ErrGoalNotFound) {
		t.Errorf("Get() without subject error = %v, want ErrGoalNotFound", err)
	}
}

func TestGoalService_ListAndDelete(t *testing.T) {
	f := newFixture(t)
	owner, _ := f.register(t, "pat", core.RoleSubject)
	other, _ := f.register(t, "other", core.RoleSubject)
	g1 := f.createGoal(t, owner, core.CategorySteps, 10)
	f.createGoal(t, owner, core.CategorySleep, 8)
	f.createGoal(t, other, core.CategorySleep, 8)
	ctx := context.Background()

	goals, err := f.goals.List(ctx, owner)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(goals) != 2 {
		t.Fatalf("List() returned %d goals, want 2", len(goals))
	}

	if err := f.goals.Delete(ctx, owner, g1.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	goals, _ = f.goals.List(ctx, owner)
	if len(goals) != 1 {
		t.Errorf("List() after delete returned %d goals, want 1", len(goals))
	}
	if err := f.goals.Delete(ctx, owner, g1.ID); !errors.Is(err, core.ErrGoalNotFound) {
		t.Errorf("second Delete() error = %v, want ErrGoalNotFound", err)
	}
}

func TestGoalService_ListForSubject(t *testing.T) {
	f := newFixture(t)
	patient, _ := f.register(t, "pat", core.RoleSubject)
	provider, _ := f.register(t, "doc", core.RoleCustodian)
	colleague, _ := f.register(t, "doc2", core.RoleCustodian)
	f.createGoal(t, patient, core.CategorySteps, 10)
	ctx := context.Background()

	goals, err := f.goals.ListForSubject(ctx, provider, patient.ID)
	if err != nil {
		t.Fatalf("ListForSubject() error = %v", err)
	}
	if len(goals) != 1 {
		t.Errorf("ListForSubject() returned %d goals, want 1", len(goals))
	}

	if _, err := f.goals.ListForSubject(ctx, provider, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("unknown subject error = %v, want NotFound", err)
	}
	if _, err := f.goals.ListForSubject(ctx, provider, colleague.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("custodian as subject error = %v, want NotFound", err)
	}
	if _, err := f.goals.ListForSubject(ctx, patient, patient.ID); !errors.Is(err, core.ErrForbidden) {
		t.Errorf("subject caller error = %v, want Forbidden", err)
	}
}

// Requirement: concurrent logs on one goal keep every entry; the flag matches
// one of the written entries.
func TestGoalService_LogProgress_Concurrent(t *testing.T) {
	f := newFixture(t)
	owner, _ := f.register(t, "pat", core.RoleSubject)
	goal := f.createGoal(t, owner, core.CategorySteps, 6000)
	ctx := context.Background()

	values := []float64{1000, 7000}
	var wg sync.WaitGroup
	errs := make([]error, len(values))
	for i, v := range values {
		wg.Add(1)
		go func(i int, v float64) {
			defer wg.Done()
			_, errs[i] = f.goals.LogProgress(ctx, owner, goal.ID, core.ProgressInput{Value: ptr(v)})
		}(i, v)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			t.Fatalf("LogProgress() error = %v", err)
		}
	}

	stored, err := f.store.GetGoalByID(ctx, goal.ID)
	if err != nil {
		t.Fatalf("GetGoalByID() error = %v", err)
	}
	if len(stored.Progress) != 2 {
		t.Fatalf("stored %d entries, want 2", len(stored.Progress))
	}
	// each writer computed the flag from its own view; whichever landed last wins
	if stored.IsAchieved != (stored.Progress[1].Value >= 6000) && stored.IsAchieved != (stored.Progress[0].Value >= 6000) {
		t.Errorf("IsAchieved = %v matches neither entry", stored.IsAchieved)
	}
}
