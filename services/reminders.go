package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lborres/vitals/core"
	"github.com/lborres/vitals/pkg/crypto"
)

type ReminderService struct {
	db  core.StorageAdapter
	ids IDGenerator
	now func() time.Time
}

// Ensure ReminderService implements ReminderHandler
var _ core.ReminderHandler = (*ReminderService)(nil)

func NewReminderService(db core.StorageAdapter) *ReminderService {
	return &ReminderService{db: db, ids: crypto.NewIDGenerator(), now: utcNow}
}

func (s *ReminderService) Create(ctx context.Context, owner *core.Account, input core.ReminderInput) (*core.Reminder, error) {
	message := strings.TrimSpace(input.Message)
	category := strings.TrimSpace(input.Type)
	if message == "" || category == "" || input.DueDate == nil || input.DueDate.IsZero() {
		return nil, core.ErrReminderFieldsRequired
	}

	id, err := newID(s.ids)
	if err != nil {
		return nil, err
	}

	now := s.now()
	reminder := &core.Reminder{
		ID:        id,
		Owner:     owner.ID,
		Message:   message,
		Type:      category,
		DueDate:   *input.DueDate,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.db.CreateReminder(ctx, reminder); err != nil {
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}
	return reminder, nil
}

// List returns the owner's reminders, earliest due first.
func (s *ReminderService) List(ctx context.Context, owner *core.Account) ([]*core.Reminder, error) {
	reminders, err := s.db.ListRemindersByOwner(ctx, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	return reminders, nil
}

// Update sets the completion flag when present; an empty update is a no-op
// save.
func (s *ReminderService) Update(ctx context.Context, account *core.Account, id string, update core.ReminderUpdate) (*core.Reminder, error) {
	reminder, err := s.owned(ctx, account, id)
	if err != nil {
		return nil, err
	}

	if update.IsCompleted != nil {
		reminder.IsCompleted = *update.IsCompleted
	}
	reminder.UpdatedAt = s.now()

	if err := s.db.UpdateReminder(ctx, reminder); err != nil {
		if errors.Is(err, core.ErrReminderNotFound) {
			return nil, core.ErrReminderNotFound
		}
		return nil, fmt.Errorf("failed to update reminder: %w", err)
	}
	return reminder, nil
}

func (s *ReminderService) Delete(ctx context.Context, account *core.Account, id string) error {
	reminder, err := s.owned(ctx, account, id)
	if err != nil {
		return err
	}

	if err := s.db.DeleteReminder(ctx, reminder.ID); err != nil {
		if errors.Is(err, core.ErrReminderNotFound) {
			return core.ErrReminderNotFound
		}
		return fmt.Errorf("failed to delete reminder: %w", err)
	}
	return nil
}

func (s *ReminderService) ListForSubject(ctx context.Context, custodian *core.Account, subjectID string) ([]*core.Reminder, error) {
	if err := requireSubject(ctx, s.db, custodian, subjectID); err != nil {
		return nil, err
	}

	reminders, err := s.db.ListRemindersByOwner(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	return reminders, nil
}

func (s *ReminderService) owned(ctx context.Context, account *core.Account, id string) (*core.Reminder, error) {
	reminder, err := s.db.GetReminderByID(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrReminderNotFound) {
			return nil, core.ErrReminderNotFound
		}
		return nil, fmt.Errorf("failed to load reminder: %w", err)
	}

	if !CheckOwnership(account, reminder.Owner, "") {
		return nil, core.ErrReminderNotFound
	}
	return reminder, nil
}
