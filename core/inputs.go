package core

import "time"

// RegisterInput contains the data needed to register a new account
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// LoginInput contains the credentials for authentication
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is an account together with a freshly issued bearer token.
type AuthResult struct {
	Account   *Account
	Token     string
	ExpiresAt time.Time
}

// ProfileUpdate carries the fields of a profile update. Empty or nil fields
// keep their current value.
type ProfileUpdate struct {
	Username           string     `json:"username"`
	Email              string     `json:"email"`
	Password           string     `json:"password"`
	FirstName          string     `json:"firstName"`
	LastName           string     `json:"lastName"`
	DateOfBirth        *time.Time `json:"dateOfBirth"`
	Allergies          []string   `json:"allergies"`
	CurrentMedications []string   `json:"currentMedications"`
}

// SecretTransition tags whether an account update replaces the password.
type SecretTransition uint8

const (
	SecretUnchanged SecretTransition = iota
	SecretChanged
)

// SecretTransition derives the transition from the submitted fields.
func (u ProfileUpdate) SecretTransition() SecretTransition {
	if u.Password == "" {
		return SecretUnchanged
	}
	return SecretChanged
}

type GoalInput struct {
	Type      string     `json:"type"`
	Target    *float64   `json:"target"`
	Unit      string     `json:"unit"`
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
}

type ProgressInput struct {
	Value *float64   `json:"value"`
	Date  *time.Time `json:"date"`
}

type ReminderInput struct {
	Message string     `json:"message"`
	Type    string     `json:"type"`
	DueDate *time.Time `json:"dueDate"`
}

type ReminderUpdate struct {
	IsCompleted *bool `json:"isCompleted"`
}
