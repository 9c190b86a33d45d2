package services

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/lborres/vitals/adapters/memory"
	"github.com/lborres/vitals/core"
	"github.com/lborres/vitals/pkg/cache"
	"github.com/lborres/vitals/pkg/crypto"
)

var testSecret = []byte(strings.Repeat("k", crypto.MinSecretLength))

// countingHasher counts Hash calls so tests can assert when rehashing happens.
type countingHasher struct {
	crypto.PasswordHandler
	hashes atomic.Int64
}

func (h *countingHasher) Hash(password string) (string, error) {
	h.hashes.Add(1)
	return h.PasswordHandler.Hash(password)
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

type fixture struct {
	store     *memory.Store
	hasher    *countingHasher
	clock     *clock
	tokens    *crypto.TokenSigner
	cache     *cache.InMemoryCache
	gate      *Gate
	accounts  *AccountService
	goals     *GoalService
	reminders *ReminderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:  memory.New(),
		hasher: &countingHasher{PasswordHandler: &crypto.Bcrypt{Cost: bcrypt.MinCost}},
		clock:  &clock{now: time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)},
		cache:  cache.NewInMemoryCache(core.CacheConfig{}),
	}

	tokens, err := crypto.NewTokenSigner(crypto.TokenConfig{Secret: testSecret, Now: f.clock.Now})
	if err != nil {
		t.Fatalf("NewTokenSigner() error = %v", err)
	}
	f.tokens = tokens

	f.gate = NewGate(f.store, tokens, f.cache)
	f.accounts = NewAccountService(f.store, f.hasher, tokens, f.cache)
	f.accounts.now = f.clock.Now
	f.goals = NewGoalService(f.store)
	f.goals.now = f.clock.Now
	f.reminders = NewReminderService(f.store)
	f.reminders.now = f.clock.Now

	return f
}

// register creates an account through the service and returns it with its token.
func (f *fixture) register(t *testing.T, name string, role core.Role) (*core.Account, string) {
	t.Helper()

	result, err := f.accounts.Register(context.Background(), core.RegisterInput{
		Username: name,
		Email:    name + "@example.com",
		Password: "password-" + name,
		Role:     role.String(),
	})
	if err != nil {
		t.Fatalf("Register(%s) error = %v", name, err)
	}
	return result.Account, result.Token
}

func (f *fixture) createGoal(t *testing.T, owner *core.Account, category string, target float64) *core.Goal {
	t.Helper()

	goal, err := f.goals.Create(context.Background(), owner, core.GoalInput{
		Type:   category,
		Target: &target,
		Unit:   "units",
	})
	if err != nil {
		t.Fatalf("Create goal error = %v", err)
	}
	return goal
}

func ptr[T any](v T) *T { return &v }
