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

// TokenService issues and verifies bearer tokens.
type TokenService interface {
	Issue(accountID string) (string, time.Time, error)
	Verify(token string) (string, error)
}

// Ensure the JWT signer satisfies TokenService
var _ TokenService = (*crypto.TokenSigner)(nil)

// Gate authenticates requests and enforces the endpoint's role set.
type Gate struct {
	db     core.AccountStorage
	tokens TokenService
	cache  core.Cache // nil disables caching
}

// Ensure Gate implements core.Authorizer
var _ core.Authorizer = (*Gate)(nil)

func NewGate(db core.AccountStorage, tokens TokenService, cache core.Cache) *Gate {
	return &Gate{db: db, tokens: tokens, cache: cache}
}

const bearerScheme = "Bearer "

// ParseBearer extracts the token from an Authorization header value.
func ParseBearer(header string) (string, error) {
	if header == "" {
		return "", core.ErrMissingAuthHeader
	}
	if len(header) < len(bearerScheme) || !strings.EqualFold(header[:len(bearerScheme)], bearerScheme) {
		return "", core.ErrInvalidAuthHeader
	}

	token := strings.TrimSpace(header[len(bearerScheme):])
	if token == "" {
		return "", core.ErrInvalidAuthHeader
	}
	return token, nil
}

// Authorize resolves the caller and checks its role against allowed. It never
// writes to the store.
func (g *Gate) Authorize(ctx context.Context, header string, allowed core.RoleSet) (*core.Account, error) {
	token, err := ParseBearer(header)
	if err != nil {
		return nil, err
	}

	accountID, err := g.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, crypto.ErrTokenExpired) {
			return nil, core.ErrTokenExpired
		}
		return nil, core.ErrInvalidToken
	}

	account, err := g.resolve(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if !allowed.Allows(account.Role) {
		return nil, core.NewError(core.ErrForbidden,
			fmt.Sprintf("user role %s is not authorized to access this route", account.Role))
	}

	return account, nil
}

func (g *Gate) resolve(ctx context.Context, accountID string) (*core.Account, error) {
	if g.cache != nil {
		if account, err := g.cache.Get(accountID); err == nil {
			return account, nil
		}
	}

	account, err := g.db.GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, core.ErrAccountNotFound) {
			return nil, core.ErrAccountGone
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	if g.cache != nil {
		_ = g.cache.Set(accountID, account)
	}

	return account, nil
}
