// Package vitals assembles the patient/provider portal: token signing, the
// authorization gate and the account, goal and reminder services, mounted on
// an HTTPAdapter over a StorageAdapter.
package vitals

import (
	"fmt"
	"time"

	"github.com/lborres/vitals/core"
	"github.com/lborres/vitals/pkg/cache"
	"github.com/lborres/vitals/pkg/crypto"
	"github.com/lborres/vitals/services"
)

// interfaces
type (
	StorageAdapter = core.StorageAdapter
	Cache          = core.Cache
	HTTPAdapter    = core.HTTPAdapter

	PasswordHandler = crypto.PasswordHandler
)

// structs
type (
	Vitals      = core.Vitals
	Config      = core.Config
	CacheConfig = core.CacheConfig
	CacheStats  = core.CacheStats
	Endpoint    = core.Endpoint
)

type (
	Account       = core.Account
	Profile       = core.Profile
	Goal          = core.Goal
	ProgressEntry = core.ProgressEntry
	Reminder      = core.Reminder
	Role          = core.Role
	RoleSet       = core.RoleSet
)

const (
	RoleSubject   = core.RoleSubject
	RoleCustodian = core.RoleCustodian
)

const (
	defaultBasePath  = "/api"
	defaultSecretLen = crypto.MinSecretLength
)

// Constructors & helpers (convenience re-exports)
var (
	NewInMemoryCache = cache.NewInMemoryCache
	NewBcrypt        = crypto.NewBcrypt
	BaseEndpoints    = services.BaseEndpoints
)

// error classes
var (
	ErrUnauthenticated = core.ErrUnauthenticated
	ErrForbidden       = core.ErrForbidden
	ErrNotFound        = core.ErrNotFound
	ErrValidation      = core.ErrValidation
	ErrConflict        = core.ErrConflict
)

var (
	ErrAccountExists      = core.ErrAccountExists
	ErrAccountNotFound    = core.ErrAccountNotFound
	ErrInvalidCredentials = core.ErrInvalidCredentials
	ErrMissingAuthHeader  = core.ErrMissingAuthHeader
	ErrInvalidAuthHeader  = core.ErrInvalidAuthHeader
	ErrInvalidToken       = core.ErrInvalidToken
	ErrTokenExpired       = core.ErrTokenExpired
)

var (
	ErrDBAdapterRequired   = core.ErrDBAdapterRequired
	ErrHTTPAdapterRequired = core.ErrHTTPAdapterRequired
	ErrSecretRequired      = core.ErrSecretRequired
	ErrSecretTooShort      = core.ErrSecretTooShort
)

func New(config Config) (*Vitals, error) {
	if config.Secret == "" {
		return nil, ErrSecretRequired
	}
	if len(config.Secret) < defaultSecretLen {
		return nil, fmt.Errorf("%w - minimum of %d characters", ErrSecretTooShort, defaultSecretLen)
	}
	if config.Database == nil {
		return nil, ErrDBAdapterRequired
	}
	if config.HTTP == nil {
		return nil, ErrHTTPAdapterRequired
	}

	// Set Defaults

	cacheAdapter := config.CacheAdapter
	if config.DisableCache {
		cacheAdapter = nil
	} else if cacheAdapter == nil {
		cacheAdapter = NewInMemoryCache(CacheConfig{
			TTL:     cache.DefaultTTL,
			MaxSize: cache.DefaultMaxSize,
		})
	}

	passwordHasher := config.PasswordHasher
	if passwordHasher == nil {
		passwordHasher = crypto.NewBcrypt()
	}

	basePath := config.BasePath
	if basePath == "" {
		basePath = defaultBasePath
	}

	now := config.Now
	if now == nil {
		now = time.Now
	}

	tokens, err := crypto.NewTokenSigner(crypto.TokenConfig{
		Secret: []byte(config.Secret),
		TTL:    config.TokenTTL,
		Now:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to configure token signer: %w", err)
	}

	v := &Vitals{
		Gate:      services.NewGate(config.Database, tokens, cacheAdapter),
		Accounts:  services.NewAccountService(config.Database, passwordHasher, tokens, cacheAdapter),
		Goals:     services.NewGoalService(config.Database),
		Reminders: services.NewReminderService(config.Database),
		Endpoints: services.NewEndpointRegistry().Endpoints(),
		BasePath:  basePath,
	}

	if err := config.HTTP.RegisterRoutes(v); err != nil {
		return nil, err
	}

	return v, nil
}
