package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lborres/vitals/core"
)

func TestParseBearer(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{name: "valid", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "scheme is case-insensitive", header: "bearer abc", want: "abc"},
		{name: "surrounding space trimmed", header: "Bearer   abc  ", want: "abc"},
		{name: "missing", header: "", wantErr: core.ErrMissingAuthHeader},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz", wantErr: core.ErrInvalidAuthHeader},
		{name: "scheme only", header: "Bearer ", wantErr: core.ErrInvalidAuthHeader},
		{name: "no space", header: "Bearerabc", wantErr: core.ErrInvalidAuthHeader},
		{name: "raw token", header: "abc.def.ghi", wantErr: core.ErrInvalidAuthHeader},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			got, err := ParseBearer(test.header)

			if !errors.Is(err, test.wantErr) {
				t.Fatalf("ParseBearer(%q) error = %v, want %v", test.header, err, test.wantErr)
			}
			if err != nil && !errors.Is(err, core.ErrUnauthenticated) {
				t.Errorf("ParseBearer(%q) error should be Unauthenticated", test.header)
			}
			if got != test.want {
				t.Errorf("ParseBearer(%q) = %q, want %q", test.header, got, test.want)
			}
		})
	}
}

// Requirement: the gate authenticates, then checks the role set, and reports
// each failure with its class.
func TestGate_Authorize(t *testing.T) {
	f := newFixture(t)
	patient, patientToken := f.register(t, "pat", core.RoleSubject)
	provider, providerToken := f.register(t, "doc", core.RoleCustodian)

	tests := []struct {
		name      string
		header    string
		allowed   core.RoleSet
		wantID    string
		wantClass error
	}{
		{name: "subject on subject route", header: "Bearer " + patientToken, allowed: subjectOnly, wantID: patient.ID},
		{name: "custodian on custodian route", header: "Bearer " + providerToken, allowed: custodianOnly, wantID: provider.ID},
		{name: "subject on any-role route", header: "Bearer " + patientToken, allowed: core.AnyRole, wantID: patient.ID},
		{name: "custodian on any-role route", header: "Bearer " + providerToken, allowed: core.AnyRole, wantID: provider.ID},
		{name: "subject on custodian route", header: "Bearer " + patientToken, allowed: custodianOnly, wantClass: core.ErrForbidden},
		{name: "custodian on subject route", header: "Bearer " + providerToken, allowed: subjectOnly, wantClass: core.ErrForbidden},
		{name: "no header", header: "", allowed: core.AnyRole, wantClass: core.ErrUnauthenticated},
		{name: "garbage token", header: "Bearer nope", allowed: core.AnyRole, wantClass: core.ErrUnauthenticated},
		{name: "wrong scheme", header: "Token " + patientToken, allowed: core.AnyRole, wantClass: core.ErrUnauthenticated},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Act
			account, err := f.gate.Authorize(context.Background(), test.header, test.allowed)

			// Assert
			if test.wantClass != nil {
				if !errors.Is(err, test.wantClass) {
					t.Fatalf("Authorize() error = %v, want class %v", err, test.wantClass)
				}
				if account != nil {
					t.Error("Authorize() should not return an account on failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("Authorize() error = %v", err)
			}
			if account.ID != test.wantID {
				t.Errorf("Authorize() account = %s, want %s", account.ID, test.wantID)
			}
		})
	}
}

func TestGate_Authorize_ExpiredToken(t *testing.T) {
	// Arrange
	f := newFixture(t)
	_, token := f.register(t, "pat", core.RoleSubject)

	// Act
	f.clock.now = f.clock.now.Add(time.Hour)
	_, err := f.gate.Authorize(context.Background(), "Bearer "+token, core.AnyRole)

	// Assert
	if !errors.Is(err, core.ErrTokenExpired) {
		t.Fatalf("Authorize() error = %v, want ErrTokenExpired", err)
	}
	if !errors.Is(err, core.ErrUnauthenticated) {
		t.Error("expired token should be Unauthenticated")
	}
}

// Requirement: a valid token for an account that no longer resolves is Unauthenticated.
func TestGate_Authorize_AccountGone(t *testing.T) {
	f := newFixture(t)
	token, _, err := f.tokens.Issue("ghost")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	_, err = f.gate.Authorize(context.Background(), "Bearer "+token, core.AnyRole)

	if !errors.Is(err, core.ErrAccountGone) {
		t.Fatalf("Authorize() error = %v, want ErrAccountGone", err)
	}
}

func TestGate_Authorize_UsesCache(t *testing.T) {
	f := newFixture(t)
	patient, token := f.register(t, "pat", core.RoleSubject)

	if _, err := f.gate.Authorize(context.Background(), "Bearer "+token, core.AnyRole); err != nil {
		t.Fatalf("first Authorize() error = %v", err)
	}
	if _, err := f.cache.Get(patient.ID); err != nil {
		t.Fatalf("account should be cached after first resolve: %v", err)
	}

	if _, err := f.gate.Authorize(context.Background(), "Bearer "+token, core.AnyRole); err != nil {
		t.Fatalf("second Authorize() error = %v", err)
	}
	if hits := f.cache.Stats().Hits; hits < 2 {
		t.Errorf("cache hits = %d, want at least 2", hits)
	}
}

func TestGate_Authorize_WithoutCache(t *testing.T) {
	f := newFixture(t)
	patient, token := f.register(t, "pat", core.RoleSubject)
	gate := NewGate(f.store, f.tokens, nil)

	account, err := gate.Authorize(context.Background(), "Bearer "+token, subjectOnly)

	if err != nil {
		t.Fatalf("Authorize() error = %v", err)
	}
	if account.ID != patient.ID {
		t.Errorf("Authorize() account = %s, want %s", account.ID, patient.ID)
	}
}
