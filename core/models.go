package core

import (
	"slices"
	"time"
)

// Account is a registered portal user.
type Account struct {
	ID               string    `json:"_id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"` // Never expose in JSON
	Role             Role      `json:"role"`
	Profile          Profile   `json:"profile"`
	AssignedPatients []string  `json:"assignedPatients,omitempty"` // custodians only
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Profile holds free-form personal fields.
type Profile struct {
	FirstName          string     `json:"firstName,omitempty"`
	LastName           string     `json:"lastName,omitempty"`
	DateOfBirth        *time.Time `json:"dateOfBirth,omitempty"`
	Allergies          []string   `json:"allergies"`
	CurrentMedications []string   `json:"currentMedications"`
}

// Clone returns a deep copy, so cached or stored records are never aliased.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	c.AssignedPatients = slices.Clone(a.AssignedPatients)
	c.Profile.Allergies = slices.Clone(a.Profile.Allergies)
	c.Profile.CurrentMedications = slices.Clone(a.Profile.CurrentMedications)
	if a.Profile.DateOfBirth != nil {
		dob := *a.Profile.DateOfBirth
		c.Profile.DateOfBirth = &dob
	}
	return &c
}

// ProgressEntry is one logged measurement.
type ProgressEntry struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Goal is a wellness target owned by a patient.
type Goal struct {
	ID         string          `json:"_id"`
	Owner      string          `json:"user"`
	Type       string          `json:"type"` // e.g. "steps", "water_intake", "sleep"
	Target     float64         `json:"target"`
	Unit       string          `json:"unit"` // e.g. "steps", "glasses", "hours"
	Progress   []ProgressEntry `json:"progress"`
	StartDate  time.Time       `json:"startDate"`
	EndDate    *time.Time      `json:"endDate,omitempty"`
	IsAchieved bool            `json:"isAchieved"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

func (g *Goal) Clone() *Goal {
	if g == nil {
		return nil
	}
	c := *g
	c.Progress = slices.Clone(g.Progress)
	if c.Progress == nil {
		c.Progress = []ProgressEntry{}
	}
	if g.EndDate != nil {
		end := *g.EndDate
		c.EndDate = &end
	}
	return &c
}

// Reminder is a care reminder owned by a patient.
type Reminder struct {
	ID          string    `json:"_id"`
	Owner       string    `json:"user"`
	Message     string    `json:"message"`
	Type        string    `json:"type"` // e.g. "blood_test", "vaccination", "medication"
	DueDate     time.Time `json:"dueDate"`
	IsCompleted bool      `json:"isCompleted"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
