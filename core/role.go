package core

import "fmt"

// Role is the closed set of account roles.
type Role uint8

const (
	RoleSubject   Role = iota + 1 // a patient tracking their own goals and reminders
	RoleCustodian                 // a healthcare provider acting on named patients
)

// Wire values shared with the browser client.
const (
	roleSubjectName   = "patient"
	roleCustodianName = "healthcare_provider"
)

// ParseRole maps a wire value to a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case roleSubjectName:
		return RoleSubject, nil
	case roleCustodianName:
		return RoleCustodian, nil
	default:
		return 0, ErrInvalidRole
	}
}

func (r Role) String() string {
	switch r {
	case RoleSubject:
		return roleSubjectName
	case RoleCustodian:
		return roleCustodianName
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

func (r Role) Valid() bool {
	return r == RoleSubject || r == RoleCustodian
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, ErrInvalidRole
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// RoleSet is the set of roles an endpoint admits.
//
// The zero value admits every authenticated role.
type RoleSet uint8

// AnyRole admits any authenticated account.
const AnyRole RoleSet = 0

// Roles builds a RoleSet from the given roles. It panics on an empty list or
// an invalid role, either of which would otherwise collapse to AnyRole; use
// AnyRole to admit every role.
func Roles(roles ...Role) RoleSet {
	if len(roles) == 0 {
		panic("core: Roles needs at least one role")
	}
	var s RoleSet
	for _, r := range roles {
		if !r.Valid() {
			panic(fmt.Sprintf("core: invalid %v in role set", r))
		}
		s |= r.bit()
	}
	return s
}

// Allows reports whether r is a member of the set.
func (s RoleSet) Allows(r Role) bool {
	if s == AnyRole {
		return r.Valid()
	}
	return s&r.bit() != 0
}

func (s RoleSet) String() string {
	if s == AnyRole {
		return "any"
	}
	out := ""
	for _, r := range []Role{RoleSubject, RoleCustodian} {
		if s&r.bit() == 0 {
			continue
		}
		if out != "" {
			out += ","
		}
		out += r.String()
	}
	return out
}

func (r Role) bit() RoleSet {
	if !r.Valid() {
		return 0
	}
	return 1 << (r - 1)
}
