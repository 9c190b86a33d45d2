package core

// Endpoint is a framework-agnostic route declaration. Adapters bind a
// handler to each OperationID.
//
// Roles is fixed when the endpoint is declared; there is no role hierarchy,
// so admitting a new role means listing it on every endpoint it may call.
type Endpoint struct {
	Path        string // relative to the base path
	Method      string
	OperationID string
	Description string
	Public      bool    // skips the authorization gate entirely
	Roles       RoleSet // ignored when Public
}

// Key identifies an endpoint by METHOD:PATH.
func (e Endpoint) Key() string {
	return e.Method + ":" + e.Path
}

// ErrorResponse represents an error response structure
type ErrorResponse struct {
	Message string `json:"message"`
}
