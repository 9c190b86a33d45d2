package core

import "context"

// AccountStorage is the credential store.
//
// Implementations enforce uniqueness of Username and Email and report a
// collision as ErrAccountExists. Lookups that find nothing return
// ErrAccountNotFound.
type AccountStorage interface {
	CreateAccount(ctx context.Context, a *Account) error

	GetAccountByID(ctx context.Context, id string) (*Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)
	GetAccountByUsername(ctx context.Context, username string) (*Account, error)
	ListAccountsByRole(ctx context.Context, role Role) ([]*Account, error)

	// UpdateAccount re-saves every mutable field as given. It never derives
	// PasswordHash; callers decide whether the hash changes.
	UpdateAccount(ctx context.Context, a *Account) error
}

type GoalStorage interface {
	CreateGoal(ctx context.Context, g *Goal) error

	// GetGoalByID returns the goal with its progress in insertion order.
	GetGoalByID(ctx context.Context, id string) (*Goal, error)
	ListGoalsByOwner(ctx context.Context, ownerID string) ([]*Goal, error)

	// AppendProgress adds entry after any existing entries, writes the
	// achievement flag and bumps UpdatedAt. Concurrent appends are all kept;
	// the flag is last-write-wins.
	AppendProgress(ctx context.Context, goalID string, entry ProgressEntry, achieved bool) error

	DeleteGoal(ctx context.Context, id string) error
}

type ReminderStorage interface {
	CreateReminder(ctx context.Context, r *Reminder) error

	GetReminderByID(ctx context.Context, id string) (*Reminder, error)
	// ListRemindersByOwner returns reminders ordered by due date, earliest first.
	ListRemindersByOwner(ctx context.Context, ownerID string) ([]*Reminder, error)

	UpdateReminder(ctx context.Context, r *Reminder) error

	DeleteReminder(ctx context.Context, id string) error
}

type StorageAdapter interface {
	AccountStorage
	GoalStorage
	ReminderStorage
}
