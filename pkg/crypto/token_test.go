package crypto

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte(strings.Repeat("s", MinSecretLength))

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func newTestSigner(t *testing.T, clock *fakeClock) *TokenSigner {
	t.Helper()
	signer, err := NewTokenSigner(TokenConfig{Secret: testSecret, TTL: time.Hour, Now: clock.Now})
	if err != nil {
		t.Fatalf("NewTokenSigner() error = %v", err)
	}
	return signer
}

func TestNewTokenSigner(t *testing.T) {
	tests := []struct {
		name    string
		cfg     TokenConfig
		wantErr error
		wantTTL time.Duration
	}{
		{name: "valid", cfg: TokenConfig{Secret: testSecret, TTL: 2 * time.Hour}, wantTTL: 2 * time.Hour},
		{name: "default ttl", cfg: TokenConfig{Secret: testSecret}, wantTTL: DefaultTokenTTL},
		{name: "short secret", cfg: TokenConfig{Secret: []byte("short")}, wantErr: ErrSecretTooShort},
		{name: "nil secret", cfg: TokenConfig{}, wantErr: ErrSecretTooShort},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			signer, err := NewTokenSigner(test.cfg)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("NewTokenSigner() error = %v, want %v", err, test.wantErr)
			}
			if err == nil && signer.TTL() != test.wantTTL {
				t.Errorf("TTL() = %v, want %v", signer.TTL(), test.wantTTL)
			}
		})
	}
}

func TestTokenSigner_IssueAndVerify(t *testing.T) {
	// Arrange
	clock := &fakeClock{now: time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)}
	signer := newTestSigner(t, clock)

	// Act
	token, expiresAt, err := signer.Issue("acct-123")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	id, err := signer.Verify(token)

	// Assert
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if id != "acct-123" {
		t.Errorf("Verify() = %q, want %q", id, "acct-123")
	}
	if !expiresAt.Equal(clock.now.Add(time.Hour)) {
		t.Errorf("expiresAt = %v, want %v", expiresAt, clock.now.Add(time.Hour))
	}
}

// Requirement: a token is accepted strictly before its expiry and rejected from the expiry on.
func TestTokenSigner_Verify_Expiry(t *testing.T) {
	issuedAt := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		at      time.Time
		wantErr error
	}{
		{name: "just issued", at: issuedAt},
		{name: "one second before expiry", at: issuedAt.Add(time.Hour - time.Second)},
		{name: "at expiry", at: issuedAt.Add(time.Hour), wantErr: ErrTokenExpired},
		{name: "long after expiry", at: issuedAt.Add(48 * time.Hour), wantErr: ErrTokenExpired},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			clock := &fakeClock{now: issuedAt}
			signer := newTestSigner(t, clock)
			token, _, err := signer.Issue("acct-1")
			if err != nil {
				t.Fatalf("Issue() error = %v", err)
			}

			// Act
			clock.now = test.at
			_, err = signer.Verify(token)

			// Assert
			if !errors.Is(err, test.wantErr) {
				t.Errorf("Verify() error = %v, want %v", err, test.wantErr)
			}
		})
	}
}

func TestTokenSigner_Verify_Rejects(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	signer := newTestSigner(t, clock)

	other, err := NewTokenSigner(TokenConfig{Secret: []byte(strings.Repeat("o", MinSecretLength)), Now: clock.Now})
	if err != nil {
		t.Fatalf("NewTokenSigner() error = %v", err)
	}
	foreign, _, _ := other.Issue("acct-1")

	hs384, _ := jwt.NewWithClaims(jwt.SigningMethodHS384, Claims{
		ID:               "acct-1",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Hour))},
	}).SignedString(testSecret)

	unsigned, _ := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		ID:               "acct-1",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	noExpiry, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{ID: "acct-1"}).SignedString(testSecret)

	noID, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Hour))},
	}).SignedString(testSecret)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "malformed", token: "not.a.jwt"},
		{name: "garbage", token: "abc"},
		{name: "wrong secret", token: foreign},
		{name: "other hmac algorithm", token: hs384},
		{name: "unsigned", token: unsigned},
		{name: "missing expiry", token: noExpiry},
		{name: "missing account id", token: noID},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			_, err := signer.Verify(test.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestTokenSigner_Issue_EmptyID(t *testing.T) {
	signer := newTestSigner(t, &fakeClock{now: time.Now()})

	if _, _, err := signer.Issue(""); !errors.Is(err, ErrEmptyTokenClaims) {
		t.Errorf("Issue(\"\") error = %v, want ErrEmptyTokenClaims", err)
	}
}
