package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/lborres/vitals/core"
	"github.com/lborres/vitals/pkg/crypto"
)

type GoalService struct {
	db  core.StorageAdapter
	ids IDGenerator
	now func() time.Time
}

// Ensure GoalService implements GoalHandler
var _ core.GoalHandler = (*GoalService)(nil)

func NewGoalService(db core.StorageAdapter) *GoalService {
	return &GoalService{db: db, ids: crypto.NewIDGenerator(), now: utcNow}
}

func (s *GoalService) Create(ctx context.Context, owner *core.Account, input core.GoalInput) (*core.Goal, error) {
	category := strings.TrimSpace(input.Type)
	unit := strings.TrimSpace(input.Unit)
	if category == "" || unit == "" || input.Target == nil {
		return nil, core.ErrGoalFieldsRequired
	}
	target := *input.Target
	if math.IsNaN(target) || math.IsInf(target, 0) || target <= 0 {
		return nil, core.ErrInvalidTarget
	}

	id, err := newID(s.ids)
	if err != nil {
		return nil, err
	}

	now := s.now()
	goal := &core.Goal{
		ID:        id,
		Owner:     owner.ID,
		Type:      category,
		Target:    target,
		Unit:      unit,
		Progress:  []core.ProgressEntry{},
		StartDate: now,
		EndDate:   input.EndDate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if input.StartDate != nil {
		goal.StartDate = *input.StartDate
	}

	if err := s.db.CreateGoal(ctx, goal); err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}
	return goal, nil
}

func (s *GoalService) List(ctx context.Context, owner *core.Account) ([]*core.Goal, error) {
	goals, err := s.db.ListGoalsByOwner(ctx, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	return goals, nil
}

// Get returns a goal the account may see. targetSubjectID is the subject named
// in the request path, empty on the subject's own routes.
func (s *GoalService) Get(ctx context.Context, account *core.Account, id, targetSubjectID string) (*core.Goal, error) {
	return s.owned(ctx, account, id, targetSubjectID)
}

// LogProgress appends a measurement to one of the caller's goals and stores
// the recomputed achievement flag.
func (s *GoalService) LogProgress(ctx context.Context, account *core.Account, id string, input core.ProgressInput) (*core.Goal, error) {
	if err := core.ValidateProgressValue(input.Value); err != nil {
		return nil, err
	}

	goal, err := s.owned(ctx, account, id, "")
	if err != nil {
		return nil, err
	}

	at := s.now()
	if input.Date != nil && !input.Date.IsZero() {
		at = *input.Date
	}

	entry, err := goal.LogProgress(input.Value, at)
	if err != nil {
		return nil, err
	}

	if err := s.db.AppendProgress(ctx, goal.ID, entry, goal.IsAchieved); err != nil {
		if errors.Is(err, core.ErrGoalNotFound) {
			return nil, core.ErrGoalNotFound
		}
		return nil, fmt.Errorf("failed to log progress: %w", err)
	}

	goal.UpdatedAt = s.now()
	return goal, nil
}

func (s *GoalService) Delete(ctx context.Context, account *core.Account, id string) error {
	goal, err := s.owned(ctx, account, id, "")
	if err != nil {
		return err
	}

	if err := s.db.DeleteGoal(ctx, goal.ID); err != nil {
		if errors.Is(err, core.ErrGoalNotFound) {
			return core.ErrGoalNotFound
		}
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	return nil
}

func (s *GoalService) ListForSubject(ctx context.Context, custodian *core.Account, subjectID string) ([]*core.Goal, error) {
	if err := requireSubject(ctx, s.db, custodian, subjectID); err != nil {
		return nil, err
	}

	goals, err := s.db.ListGoalsByOwner(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	return goals, nil
}

// owned loads a goal and applies the ownership check. Missing and foreign
// goals are indistinguishable.
func (s *GoalService) owned(ctx context.Context, account *core.Account, id, targetSubjectID string) (*core.Goal, error) {
	goal, err := s.db.GetGoalByID(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrGoalNotFound) {
			return nil, core.ErrGoalNotFound
		}
		return nil, fmt.Errorf("failed to load goal: %w", err)
	}

	if !CheckOwnership(account, goal.Owner, targetSubjectID) {
		return nil, core.ErrGoalNotFound
	}
	return goal, nil
}

// requireSubject checks that custodian may browse subjectID's records and
// that subjectID names an existing subject.
func requireSubject(ctx context.Context, db core.AccountStorage, custodian *core.Account, subjectID string) error {
	if custodian == nil || custodian.Role != core.RoleCustodian {
		return core.NewError(core.ErrForbidden, "only healthcare providers may view patient records")
	}

	subject, err := db.GetAccountByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, core.ErrAccountNotFound) {
			return core.ErrAccountNotFound
		}
		return fmt.Errorf("failed to load patient: %w", err)
	}
	if subject.Role != core.RoleSubject {
		return core.ErrAccountNotFound
	}
	return nil
}
