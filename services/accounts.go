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

type AccountService struct {
	db        core.AccountStorage
	passwords crypto.PasswordHandler
	tokens    TokenService
	cache     core.Cache // nil when caching is disabled
	ids       IDGenerator
	now       func() time.Time
}

// Ensure AccountService implements AccountHandler
var _ core.AccountHandler = (*AccountService)(nil)

func NewAccountService(db core.AccountStorage, passwords crypto.PasswordHandler, tokens TokenService, cache core.Cache) *AccountService {
	return &AccountService{
		db:        db,
		passwords: passwords,
		tokens:    tokens,
		cache:     cache,
		ids:       crypto.NewIDGenerator(),
		now:       utcNow,
	}
}

// Register creates an account and signs the caller in.
func (s *AccountService) Register(ctx context.Context, input core.RegisterInput) (*core.AuthResult, error) {
	// Step 1: Validate input
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, core.ErrUsernameRequired
	}
	email := normalizeEmail(input.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}
	role, err := core.ParseRole(input.Role)
	if err != nil {
		return nil, err
	}

	// Step 2: Reject taken identities before hashing
	if err := s.ensureIdentityFree(ctx, "", username, email); err != nil {
		return nil, err
	}

	// Step 3: Hash the password, once
	hash, err := s.passwords.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	id, err := newID(s.ids)
	if err != nil {
		return nil, err
	}

	now := s.now()
	account := &core.Account{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Profile: core.Profile{
			Allergies:          []string{},
			CurrentMedications: []string{},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Step 4: Persist; the store's uniqueness check settles a racing duplicate
	if err := s.db.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, core.ErrConflict) {
			return nil, core.ErrAccountExists
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return s.signIn(account)
}

// Login checks credentials. An unknown email and a wrong password produce the
// same error.
func (s *AccountService) Login(ctx context.Context, input core.LoginInput) (*core.AuthResult, error) {
	email := normalizeEmail(input.Email)
	if email == "" {
		return nil, core.ErrEmailRequired
	}
	if input.Password == "" {
		return nil, core.ErrPasswordRequired
	}

	account, err := s.db.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrAccountNotFound) {
			return nil, core.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	valid, err := s.passwords.Verify(input.Password, account.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return nil, core.ErrInvalidCredentials
	}

	return s.signIn(account)
}

// Profile returns the account the gate resolved; it does not touch the store.
func (s *AccountService) Profile(ctx context.Context, account *core.Account) (*core.Account, error) {
	if account == nil {
		return nil, core.ErrAccountNotFound
	}
	return account.Clone(), nil
}

// UpdateProfile applies the non-empty fields of update and re-issues a token.
// The stored hash changes only on SecretChanged.
func (s *AccountService) UpdateProfile(ctx context.Context, account *core.Account, update core.ProfileUpdate) (*core.AuthResult, error) {
	if account == nil {
		return nil, core.ErrAccountNotFound
	}

	current, err := s.db.GetAccountByID(ctx, account.ID)
	if err != nil {
		if errors.Is(err, core.ErrAccountNotFound) {
			return nil, core.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	if username := strings.TrimSpace(update.Username); username != "" {
		current.Username = username
	}
	if update.Email != "" {
		email := normalizeEmail(update.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		current.Email = email
	}

	switch update.SecretTransition() {
	case core.SecretChanged:
		if err := validatePassword(update.Password); err != nil {
			return nil, err
		}
		hash, err := s.passwords.Hash(update.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		current.PasswordHash = hash
	case core.SecretUnchanged:
		// keep the stored hash as is
	}

	if update.FirstName != "" {
		current.Profile.FirstName = update.FirstName
	}
	if update.LastName != "" {
		current.Profile.LastName = update.LastName
	}
	if update.DateOfBirth != nil {
		dob := *update.DateOfBirth
		current.Profile.DateOfBirth = &dob
	}
	if update.Allergies != nil {
		current.Profile.Allergies = append([]string{}, update.Allergies...)
	}
	if update.CurrentMedications != nil {
		current.Profile.CurrentMedications = append([]string{}, update.CurrentMedications...)
	}

	if err := s.ensureIdentityFree(ctx, current.ID, current.Username, current.Email); err != nil {
		return nil, err
	}

	current.UpdatedAt = s.now()
	if err := s.db.UpdateAccount(ctx, current); err != nil {
		if errors.Is(err, core.ErrConflict) {
			return nil, core.ErrAccountExists
		}
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	if s.cache != nil {
		_ = s.cache.Delete(current.ID)
	}

	return s.signIn(current)
}

func (s *AccountService) ListSubjects(ctx context.Context) ([]*core.Account, error) {
	accounts, err := s.db.ListAccountsByRole(ctx, core.RoleSubject)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return accounts, nil
}

func (s *AccountService) SubjectProfile(ctx context.Context, id string) (*core.Account, error) {
	account, err := s.db.GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrAccountNotFound) {
			return nil, core.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	return account, nil
}

// ensureIdentityFree fails with ErrAccountExists when username or email
// belongs to an account other than selfID.
func (s *AccountService) ensureIdentityFree(ctx context.Context, selfID, username, email string) error {
	lookups := []struct {
		find func(context.Context, string) (*core.Account, error)
		key  string
	}{
		{find: s.db.GetAccountByEmail, key: email},
		{find: s.db.GetAccountByUsername, key: username},
	}

	for _, lookup := range lookups {
		existing, err := lookup.find(ctx, lookup.key)
		switch {
		case errors.Is(err, core.ErrAccountNotFound):
			continue
		case err != nil:
			return fmt.Errorf("failed to check existing account: %w", err)
		case existing.ID != selfID:
			return core.ErrAccountExists
		}
	}
	return nil
}

func (s *AccountService) signIn(account *core.Account) (*core.AuthResult, error) {
	token, expiresAt, err := s.tokens.Issue(account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &core.AuthResult{Account: account, Token: token, ExpiresAt: expiresAt}, nil
}
