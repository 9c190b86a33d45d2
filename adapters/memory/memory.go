// Package memory is a process-local core.StorageAdapter. Nothing survives a
// restart; it backs tests and zero-config runs of the server.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/lborres/vitals/core"
)

// Ensure Store implements core.StorageAdapter
var _ core.StorageAdapter = (*Store)(nil)

// Store keeps every record in maps guarded by one RWMutex. Records are cloned
// on the way in and out.
type Store struct {
	mu sync.RWMutex

	accounts     map[string]*core.Account
	accountOrder []string

	goals     map[string]*core.Goal
	goalOrder []string

	reminders     map[string]*core.Reminder
	reminderOrder []string
}

func New() *Store {
	return &Store{
		accounts:  make(map[string]*core.Account),
		goals:     make(map[string]*core.Goal),
		reminders: make(map[string]*core.Reminder),
	}
}

// ============================================
// ACCOUNTS
// ============================================

func (s *Store) CreateAccount(ctx context.Context, a *core.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[a.ID]; exists {
		return core.ErrAccountExists
	}
	if s.identityTaken(a) {
		return core.ErrAccountExists
	}

	s.accounts[a.ID] = a.Clone()
	s.accountOrder = append(s.accountOrder, a.ID)
	return nil
}

// identityTaken reports whether another account holds a's username or email.
// Callers hold the lock.
func (s *Store) identityTaken(a *core.Account) bool {
	for id, other := range s.accounts {
		if id == a.ID {
			continue
		}
		if other.Email == a.Email || other.Username == a.Username {
			return true
		}
	}
	return false
}

func (s *Store) GetAccountByID(ctx context.Context, id string) (*core.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, core.ErrAccountNotFound
	}
	return a.Clone(), nil
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*core.Account, error) {
	return s.findAccount(func(a *core.Account) bool { return a.Email == email })
}

func (s *Store) GetAccountByUsername(ctx context.Context, username string) (*core.Account, error) {
	return s.findAccount(func(a *core.Account) bool { return a.Username == username })
}

func (s *Store) findAccount(match func(*core.Account) bool) (*core.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.accounts {
		if match(a) {
			return a.Clone(), nil
		}
	}
	return nil, core.ErrAccountNotFound
}

func (s *Store) ListAccountsByRole(ctx context.Context, role core.Role) ([]*core.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := []*core.Account{}
	for _, id := range s.accountOrder {
		if a := s.accounts[id]; a.Role == role {
			accounts = append(accounts, a.Clone())
		}
	}
	return accounts, nil
}

func (s *Store) UpdateAccount(ctx context.Context, a *core.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[a.ID]; !ok {
		return core.ErrAccountNotFound
	}
	if s.identityTaken(a) {
		return core.ErrAccountExists
	}

	s.accounts[a.ID] = a.Clone()
	return nil
}

// ============================================
// GOALS
// ============================================

func (s *Store) CreateGoal(ctx context.Context, g *core.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.goals[g.ID] = g.Clone()
	s.goalOrder = append(s.goalOrder, g.ID)
	return nil
}

func (s *Store) GetGoalByID(ctx context.Context, id string) (*core.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.goals[id]
	if !ok {
		return nil, core.ErrGoalNotFound
	}
	return g.Clone(), nil
}

func (s *Store) ListGoalsByOwner(ctx context.Context, ownerID string) ([]*core.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	goals := []*core.Goal{}
	for _, id := range s.goalOrder {
		if g := s.goals[id]; g.Owner == ownerID {
			goals = append(goals, g.Clone())
		}
	}
	return goals, nil
}

func (s *Store) AppendProgress(ctx context.Context, goalID string, entry core.ProgressEntry, achieved bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.goals[goalID]
	if !ok {
		return core.ErrGoalNotFound
	}

	g.Progress = append(g.Progress, entry)
	g.IsAchieved = achieved
	g.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) DeleteGoal(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.goals[id]; !ok {
		return core.ErrGoalNotFound
	}
	delete(s.goals, id)
	s.goalOrder = slices.DeleteFunc(s.goalOrder, func(v string) bool { return v == id })
	return nil
}

// ============================================
// REMINDERS
// ============================================

func (s *Store) CreateReminder(ctx context.Context, r *core.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *r
	s.reminders[r.ID] = &c
	s.reminderOrder = append(s.reminderOrder, r.ID)
	return nil
}

func (s *Store) GetReminderByID(ctx context.Context, id string) (*core.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reminders[id]
	if !ok {
		return nil, core.ErrReminderNotFound
	}
	c := *r
	return &c, nil
}

func (s *Store) ListRemindersByOwner(ctx context.Context, ownerID string) ([]*core.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reminders := []*core.Reminder{}
	for _, id := range s.reminderOrder {
		if r := s.reminders[id]; r.Owner == ownerID {
			c := *r
			reminders = append(reminders, &c)
		}
	}
	sort.SliceStable(reminders, func(i, j int) bool {
		return reminders[i].DueDate.Before(reminders[j].DueDate)
	})
	return reminders, nil
}

func (s *Store) UpdateReminder(ctx context.Context, r *core.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reminders[r.ID]; !ok {
		return core.ErrReminderNotFound
	}
	c := *r
	s.reminders[r.ID] = &c
	return nil
}

func (s *Store) DeleteReminder(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reminders[id]; !ok {
		return core.ErrReminderNotFound
	}
	delete(s.reminders, id)
	s.reminderOrder = slices.DeleteFunc(s.reminderOrder, func(v string) bool { return v == id })
	return nil
}
