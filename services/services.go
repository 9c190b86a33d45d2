package services

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/lborres/vitals/core"
	"github.com/lborres/vitals/pkg/crypto"
)

// IDGenerator produces record ids.
type IDGenerator interface {
	Generate() (string, error)
}

// Ensure NanoIDGenerator implements IDGenerator
var _ IDGenerator = (*crypto.NanoIDGenerator)(nil)

func newID(ids IDGenerator) (string, error) {
	id, err := ids.Generate()
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}
	return id, nil
}

func utcNow() time.Time { return time.Now().UTC() }

// normalizeEmail lowercases and trims an address so lookups are case-blind.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validateEmail accepts a bare RFC 5322 address; display names are rejected.
func validateEmail(email string) error {
	if email == "" {
		return core.ErrEmailRequired
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return core.ErrInvalidEmail
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return core.ErrPasswordRequired
	}
	if len(password) > crypto.MaxPasswordBytes {
		return core.ErrPasswordTooLong
	}
	return nil
}
