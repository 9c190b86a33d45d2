package crypto

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenExpired     = errors.New("token expired")
	ErrSecretTooShort   = errors.New("token secret must be at least 32 bytes")
	ErrEmptyTokenClaims = errors.New("token subject cannot be empty")
)

const (
	MinSecretLength = 32
	DefaultTokenTTL = time.Hour
)

// Claims carries the account id of the bearer.
type Claims struct {
	ID string `json:"id"`
	jwt.RegisteredClaims
}

type TokenConfig struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

// TokenSigner issues and verifies HS256 bearer tokens.
//
// A token is valid while the verification time is strictly before its
// expiry. Expiry has second precision.
type TokenSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenSigner(cfg TokenConfig) (*TokenSigner, error) {
	if len(cfg.Secret) < MinSecretLength {
		return nil, ErrSecretTooShort
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTokenTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)

	return &TokenSigner{secret: secret, ttl: cfg.TTL, now: cfg.Now}, nil
}

func (s *TokenSigner) TTL() time.Duration { return s.ttl }

// Issue signs a token for accountID and returns it with its expiry.
func (s *TokenSigner) Issue(accountID string) (string, time.Time, error) {
	if accountID == "" {
		return "", time.Time{}, ErrEmptyTokenClaims
	}

	issuedAt := s.now()
	expiresAt := jwt.NewNumericDate(issuedAt.Add(s.ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		ID: accountID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: expiresAt,
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt.Time, nil
}

// Verify checks the signature and expiry of token and returns the account id
// it was issued for.
func (s *TokenSigner) Verify(token string) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrInvalidToken
	}

	if !parsed.Valid || claims.ID == "" {
		return "", ErrInvalidToken
	}

	return claims.ID, nil
}
