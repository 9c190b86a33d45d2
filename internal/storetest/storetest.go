// Package storetest holds the behavior every core.StorageAdapter must share.
// Adapter packages run it from their own tests:
//
//	suite.Run(t, &storetest.Suite{Open: func(t *testing.T) core.StorageAdapter { ... }})
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/lborres/vitals/core"
)

type Suite struct {
	suite.Suite

	// Open returns an empty store. It is called before every test.
	Open func(t *testing.T) core.StorageAdapter

	store core.StorageAdapter
	ctx   context.Context
}

func (s *Suite) SetupTest() {
	s.Require().NotNil(s.Open, "storetest.Suite needs Open")
	s.store = s.Open(s.T())
	s.ctx = context.Background()
}

var base = time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

func newAccount(id string, role core.Role) *core.Account {
	return &core.Account{
		ID:           id,
		Username:     "user-" + id,
		Email:        id + "@example.com",
		PasswordHash: "$2a$10$hash-" + id,
		Role:         role,
		Profile: core.Profile{
			Allergies:          []string{},
			CurrentMedications: []string{},
		},
		CreatedAt: base,
		UpdatedAt: base,
	}
}

func newGoal(id, owner string) *core.Goal {
	return &core.Goal{
		ID:        id,
		Owner:     owner,
		Type:      core.CategorySteps,
		Target:    6000,
		Unit:      "steps",
		Progress:  []core.ProgressEntry{},
		StartDate: base,
		CreatedAt: base,
		UpdatedAt: base,
	}
}

func (s *Suite) TestAccountRoundTrip() {
	dob := time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)
	a := newAccount("a1", core.RoleCustodian)
	a.Profile = core.Profile{
		FirstName:          "Ada",
		LastName:           "Lovelace",
		DateOfBirth:        &dob,
		Allergies:          []string{"pollen", "penicillin"},
		CurrentMedications: []string{"ibuprofen"},
	}
	a.AssignedPatients = []string{"p1", "p2"}

	s.Require().NoError(s.store.CreateAccount(s.ctx, a))

	byID, err := s.store.GetAccountByID(s.ctx, "a1")
	s.Require().NoError(err)
	s.Equal(a.Username, byID.Username)
	s.Equal(a.PasswordHash, byID.PasswordHash)
	s.Equal(core.RoleCustodian, byID.Role)
	s.Equal([]string{"pollen", "penicillin"}, byID.Profile.Allergies)
	s.Equal([]string{"ibuprofen"}, byID.Profile.CurrentMedications)
	s.Equal([]string{"p1", "p2"}, byID.AssignedPatients)
	s.Require().NotNil(byID.Profile.DateOfBirth)
	s.True(dob.Equal(*byID.Profile.DateOfBirth))
	s.True(base.Equal(byID.CreatedAt))

	byEmail, err := s.store.GetAccountByEmail(s.ctx, "a1@example.com")
	s.Require().NoError(err)
	s.Equal("a1", byEmail.ID)

	byName, err := s.store.GetAccountByUsername(s.ctx, "user-a1")
	s.Require().NoError(err)
	s.Equal("a1", byName.ID)
}

func (s *Suite) TestAccountLookupsMiss() {
	_, err := s.store.GetAccountByID(s.ctx, "nope")
	s.ErrorIs(err, core.ErrAccountNotFound)

	_, err = s.store.GetAccountByEmail(s.ctx, "nope@example.com")
	s.ErrorIs(err, core.ErrAccountNotFound)

	_, err = s.store.GetAccountByUsername(s.ctx, "nope")
	s.ErrorIs(err, core.ErrAccountNotFound)
}

func (s *Suite) TestAccountIdentityIsUnique() {
	s.Require().NoError(s.store.CreateAccount(s.ctx, newAccount("a1", core.RoleSubject)))

	sameEmail := newAccount("a2", core.RoleSubject)
	sameEmail.Email = "a1@example.com"
	err := s.store.CreateAccount(s.ctx, sameEmail)
	s.ErrorIs(err, core.ErrAccountExists)
	s.ErrorIs(err, core.ErrConflict)

	sameName := newAccount("a3", core.RoleSubject)
	sameName.Username = "user-a1"
	s.ErrorIs(s.store.CreateAccount(s.ctx, sameName), core.ErrAccountExists)

	// the original is untouched
	got, err := s.store.GetAccountByID(s.ctx, "a1")
	s.Require().NoError(err)
	s.Equal("$2a$10$hash-a1", got.PasswordHash)
}

func (s *Suite) TestUpdateAccount() {
	s.Require().NoError(s.store.CreateAccount(s.ctx, newAccount("a1", core.RoleSubject)))
	s.Require().NoError(s.store.CreateAccount(s.ctx, newAccount("a2", core.RoleSubject)))

	a, err := s.store.GetAccountByID(s.ctx, "a1")
	s.Require().NoError(err)
	a.Username = "renamed"
	a.Profile.FirstName = "Grace"
	a.Profile.Allergies = []string{"dust"}
	a.UpdatedAt = base.Add(time.Hour)
	s.Require().NoError(s.store.UpdateAccount(s.ctx, a))

	got, err := s.store.GetAccountByID(s.ctx, "a1")
	s.Require().NoError(err)
	s.Equal("renamed", got.Username)
	s.Equal("Grace", got.Profile.FirstName)
	s.Equal([]string{"dust"}, got.Profile.Allergies)
	s.Equal("$2a$10$hash-a1", got.PasswordHash)

	a.Email = "a2@example.com"
	s.ErrorIs(s.store.UpdateAccount(s.ctx, a), core.ErrAccountExists)

	s.ErrorIs(s.store.UpdateAccount(s.ctx, newAccount("ghost", core.RoleSubject)), core.ErrAccountNotFound)
}

func (s *Suite) TestListAccountsByRole() {
	s.Require().NoError(s.store.CreateAccount(s.ctx, newAccount("p1", core.RoleSubject)))
	s.Require().NoError(s.store.CreateAccount(s.ctx, newAccount("d1", core.RoleCustodian)))
	s.Require().NoError(s.store.CreateAccount(s.ctx, newAccount("p2", core.RoleSubject)))

	subjects, err := s.store.ListAccountsByRole(s.ctx, core.RoleSubject)
	s.Require().NoError(err)
	s.Require().Len(subjects, 2)
	ids := []string{subjects[0].ID, subjects[1].ID}
	s.ElementsMatch([]string{"p1", "p2"}, ids)

	custodians, err := s.store.ListAccountsByRole(s.ctx, core.RoleCustodian)
	s.Require().NoError(err)
	s.Len(custodians, 1)
}

func (s *Suite) TestGoalLifecycle() {
	s.Require().NoError(s.store.CreateAccount(s.ctx, newAccount("p1", core.RoleSubject)))
	end := base.Add(30 * 24 * time.Hour)
	g := newGoal("g1", "p1")
	g.EndDate = &end
	s.Require().NoError(s.store.CreateGoal(s.ctx, g))

	got, err := s.store.GetGoalByID(s.ctx, "g1")
	s.Require().NoError(err)
	s.Equal("p1", got.Owner)
	s.Equal(6000.0, got.Target)
	s.NotNil(got.Progress)
	s.Empty(got.Progress)
	s.Require().NotNil(got.EndDate)
	s.True(end.Equal(*got.EndDate))

	list, err := s.store.ListGoalsByOwner(s.ctx, "p1")
	s.Require().NoError(err)
	s.Len(list, 1)

	others, err := s.store.ListGoalsByOwner(s.ctx, "p2")
	s.Require().NoError(err)
	s.Empty(others)

	s.Require().NoError(s.store.DeleteGoal(s.ctx, "g1"))
	_, err = s.store.GetGoalByID(s.ctx, "g1")
	s.ErrorIs(err, core.ErrGoalNotFound)
	s.ErrorIs(s.store.DeleteGoal(s.ctx, "g1"), core.ErrGoalNotFound)
}

// progress keeps insertion order, including entries with equal timestamps
func (s *Suite) TestAppendProgressKeepsOrder() {
	s.Require().NoError(s.store.CreateAccount(s.ctx, newAccount("p1", core.RoleSubject)))
	s.Require().NoError(s.store.CreateGoal(s.ctx, newGoal("g1", "p1")))

	values := []float64{4000, 6500, 3000, 3000}
	for i, v := range values {
		at := base.Add(time.Duration(i/2) * time.Hour)
		s.Require().NoError(s.store.AppendProgress(s.ctx, "g1", core.ProgressEntry{Date: at, Value: v}, v >= 6000))
	}

	g, err := s.store.GetGoalByID(s.ctx, "g1")
	s.Require().NoError(err)
	s.Require().Len(g.Progress, len(values))
	for i, v := range values {
		s.Equal(v, g.Progress[i].Value, "entry %d", i)
	}
	s.False(g.IsAchieved)

	s.ErrorIs(s.store.AppendProgress(s.ctx, "missing", core.ProgressEntry{Date: base, Value: 1}, false), core.ErrGoalNotFound)
}

func (s *Suite) TestConcurrentAppendsAreAllKept() {
	s.Require().NoError(s.store.CreateAccount(s.ctx, newAccount("p1", core.RoleSubject)))
	s.Require().NoError(s.store.CreateGoal(s.ctx, newGoal("g1", "p1")))

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(v float64) {
			defer wg.Done()
			errs <- s.store.AppendProgress(s.ctx, "g1", core.ProgressEntry{Date: base, Value: v}, v >= 6000)
		}(float64(i * 1000))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.Require().NoError(err)
	}

	g, err := s.store.GetGoalByID(s.ctx, "g1")
	s.Require().NoError(err)
	s.Len(g.Progress, n)
}

func (s *Suite) TestReminders() {
	s.Require().NoError(s.store.CreateAccount(s.ctx, newAccount("p1", core.RoleSubject)))

	for i, due := range []time.Duration{72, 24, 48} {
		r := &core.Reminder{
			ID:        fmt.Sprintf("r%d", i),
			Owner:     "p1",
			Message:   "checkup",
			Type:      "blood_test",
			DueDate:   base.Add(due * time.Hour),
			CreatedAt: base,
			UpdatedAt: base,
		}
		s.Require().NoError(s.store.CreateReminder(s.ctx, r))
	}

	list, err := s.store.ListRemindersByOwner(s.ctx, "p1")
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal([]string{"r1", "r2", "r0"}, []string{list[0].ID, list[1].ID, list[2].ID})

	r, err := s.store.GetReminderByID(s.ctx, "r1")
	s.Require().NoError(err)
	r.IsCompleted = true
	r.UpdatedAt = base.Add(time.Hour)
	s.Require().NoError(s.store.UpdateReminder(s.ctx, r))

	got, err := s.store.GetReminderByID(s.ctx, "r1")
	s.Require().NoError(err)
	s.True(got.IsCompleted)

	s.Require().NoError(s.store.DeleteReminder(s.ctx, "r1"))
	_, err = s.store.GetReminderByID(s.ctx, "r1")
	s.ErrorIs(err, core.ErrReminderNotFound)
	s.ErrorIs(s.store.DeleteReminder(s.ctx, "r1"), core.ErrReminderNotFound)
	s.ErrorIs(s.store.UpdateReminder(s.ctx, r), core.ErrReminderNotFound)
}
