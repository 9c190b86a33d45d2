package services

import (
	"fmt"
	"net/http"

	"github.com/lborres/vitals/core"
)

// Operation ids. HTTP adapters bind one handler to each.
const (
	OpRegisterUser         = "registerUser"
	OpLoginUser            = "loginUser"
	OpGetProfile           = "getProfile"
	OpUpdateProfile        = "updateProfile"
	OpListPatients         = "listPatients"
	OpGetPatientProfile    = "getPatientProfile"
	OpListGoals            = "listGoals"
	OpCreateGoal           = "createGoal"
	OpGetGoal              = "getGoal"
	OpLogGoalProgress      = "logGoalProgress"
	OpDeleteGoal           = "deleteGoal"
	OpListPatientGoals     = "listPatientGoals"
	OpGetPatientGoal       = "getPatientGoal"
	OpListReminders        = "listReminders"
	OpCreateReminder       = "createReminder"
	OpUpdateReminder       = "updateReminder"
	OpDeleteReminder       = "deleteReminder"
	OpListPatientReminders = "listPatientReminders"
)

var (
	subjectOnly   = core.Roles(core.RoleSubject)
	custodianOnly = core.Roles(core.RoleCustodian)
)

// BaseEndpoints returns the portal's route table. Paths are relative to the
// base path; path parameters use the :name form.
//
// Every protected endpoint carries its role set here, so adapters never
// decide authorization on their own.
func BaseEndpoints() []core.Endpoint {
	return []core.Endpoint{
		// accounts
		{Method: http.MethodPost, Path: "/users/register", OperationID: OpRegisterUser, Public: true,
			Description: "Register a new patient or healthcare provider account"},
		{Method: http.MethodPost, Path: "/users/login", OperationID: OpLoginUser, Public: true,
			Description: "Sign in with email and password"},
		{Method: http.MethodGet, Path: "/users/profile", OperationID: OpGetProfile, Roles: core.AnyRole,
			Description: "Get the current user's profile"},
		{Method: http.MethodPut, Path: "/users/profile", OperationID: OpUpdateProfile, Roles: core.AnyRole,
			Description: "Update the current user's profile"},
		{Method: http.MethodGet, Path: "/users/patients", OperationID: OpListPatients, Roles: custodianOnly,
			Description: "List all patients"},
		{Method: http.MethodGet, Path: "/users/profile/:id", OperationID: OpGetPatientProfile, Roles: custodianOnly,
			Description: "Get a patient's profile"},

		// goals
		{Method: http.MethodGet, Path: "/goals", OperationID: OpListGoals, Roles: subjectOnly,
			Description: "List the current patient's goals"},
		{Method: http.MethodPost, Path: "/goals", OperationID: OpCreateGoal, Roles: subjectOnly,
			Description: "Create a goal"},
		{Method: http.MethodGet, Path: "/goals/:id", OperationID: OpGetGoal, Roles: subjectOnly,
			Description: "Get one of the current patient's goals"},
		{Method: http.MethodPut, Path: "/goals/:id/progress", OperationID: OpLogGoalProgress, Roles: subjectOnly,
			Description: "Log progress against a goal"},
		{Method: http.MethodDelete, Path: "/goals/:id", OperationID: OpDeleteGoal, Roles: subjectOnly,
			Description: "Delete a goal"},
		{Method: http.MethodGet, Path: "/goals/patient/:patientId", OperationID: OpListPatientGoals, Roles: custodianOnly,
			Description: "List a patient's goals"},
		{Method: http.MethodGet, Path: "/goals/patient/:patientId/:id", OperationID: OpGetPatientGoal, Roles: custodianOnly,
			Description: "Get one of a patient's goals"},

		// reminders
		{Method: http.MethodGet, Path: "/reminders", OperationID: OpListReminders, Roles: subjectOnly,
			Description: "List the current patient's reminders, earliest due first"},
		{Method: http.MethodPost, Path: "/reminders", OperationID: OpCreateReminder, Roles: subjectOnly,
			Description: "Create a reminder"},
		{Method: http.MethodPut, Path: "/reminders/:id", OperationID: OpUpdateReminder, Roles: subjectOnly,
			Description: "Mark a reminder completed or not"},
		{Method: http.MethodDelete, Path: "/reminders/:id", OperationID: OpDeleteReminder, Roles: subjectOnly,
			Description: "Delete a reminder"},
		{Method: http.MethodGet, Path: "/reminders/patient/:patientId", OperationID: OpListPatientReminders, Roles: custodianOnly,
			Description: "List a patient's reminders"},
	}
}

// EndpointRegistry manages a collection of framework-agnostic endpoints
// and handles conflict detection for duplicate METHOD:PATH combinations.
//
// Endpoints() preserves registration order, which is the order adapters
// mount routes in.
type EndpointRegistry struct {
	endpoints []core.Endpoint
	keys      map[string]struct{}
}

// NewEndpointRegistry creates a registry with BaseEndpoints pre-registered.
func NewEndpointRegistry() *EndpointRegistry {
	reg := &EndpointRegistry{keys: make(map[string]struct{})}
	if err := reg.Register(BaseEndpoints()...); err != nil {
		// the base table is static; a conflict here is a programming error
		panic(err)
	}
	return reg
}

// Register adds endpoints to the registry.
// Returns error if any endpoint conflicts with an existing one or with
// another in the same batch; on error nothing from the batch is registered.
func (r *EndpointRegistry) Register(endpoints ...core.Endpoint) error {
	seen := make(map[string]struct{}, len(endpoints))
	for _, ep := range endpoints {
		if ep.Method == "" || ep.Path == "" || ep.OperationID == "" {
			return fmt.Errorf("endpoint %q is missing method, path or operation id", ep.Key())
		}

		key := ep.Key()
		if _, exists := r.keys[key]; exists {
			return fmt.Errorf("endpoint conflict: %s %s already registered", ep.Method, ep.Path)
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("duplicate endpoint in batch: %s %s", ep.Method, ep.Path)
		}
		seen[key] = struct{}{}
	}

	for _, ep := range endpoints {
		r.keys[ep.Key()] = struct{}{}
		r.endpoints = append(r.endpoints, ep)
	}
	return nil
}

// Endpoints returns a copy of all registered endpoints.
func (r *EndpointRegistry) Endpoints() []core.Endpoint {
	out := make([]core.Endpoint, len(r.endpoints))
	copy(out, r.endpoints)
	return out
}
