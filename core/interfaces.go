package core

import (
	"context"
	"time"
)

// ============================================
// CACHE PORT
// ============================================

// Cache holds resolved accounts keyed by account id.
type Cache interface {
	Get(accountID string) (*Account, error)
	Set(accountID string, account *Account) error
	Delete(accountID string) error
	Clear() error
}

// CacheWithStats extends Cache with statistics tracking
type CacheWithStats interface {
	Cache
	Stats() CacheStats
}

// CacheConfig configures cache behavior
type CacheConfig struct {
	TTL     time.Duration
	MaxSize int
}

// CacheStats tracks cache performance metrics
type CacheStats struct {
	Hits      int64         `json:"hits"`
	Misses    int64         `json:"misses"`
	Sets      int64         `json:"sets"`
	Deletes   int64         `json:"deletes"`
	Evictions int64         `json:"evictions"`
	Size      int           `json:"size"`
	TTL       time.Duration `json:"ttl"`
}

// ============================================
// SERVICE PORTS (for HTTP adapters)
// ============================================

// Authorizer resolves the caller of a request.
//
// header is the raw value of the Authorization request header. The returned
// error wraps ErrUnauthenticated or ErrForbidden.
type Authorizer interface {
	Authorize(ctx context.Context, header string, allowed RoleSet) (*Account, error)
}

type AccountHandler interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
	Profile(ctx context.Context, account *Account) (*Account, error)
	UpdateProfile(ctx context.Context, account *Account, update ProfileUpdate) (*AuthResult, error)
	ListSubjects(ctx context.Context) ([]*Account, error)
	SubjectProfile(ctx context.Context, id string) (*Account, error)
}

type GoalHandler interface {
	Create(ctx context.Context, owner *Account, input GoalInput) (*Goal, error)
	List(ctx context.Context, owner *Account) ([]*Goal, error)
	Get(ctx context.Context, account *Account, id, targetSubjectID string) (*Goal, error)
	LogProgress(ctx context.Context, account *Account, id string, input ProgressInput) (*Goal, error)
	Delete(ctx context.Context, account *Account, id string) error
	ListForSubject(ctx context.Context, custodian *Account, subjectID string) ([]*Goal, error)
}

type ReminderHandler interface {
	Create(ctx context.Context, owner *Account, input ReminderInput) (*Reminder, error)
	List(ctx context.Context, owner *Account) ([]*Reminder, error)
	Update(ctx context.Context, account *Account, id string, update ReminderUpdate) (*Reminder, error)
	Delete(ctx context.Context, account *Account, id string) error
	ListForSubject(ctx context.Context, custodian *Account, subjectID string) ([]*Reminder, error)
}

// ============================================
// HTTP PORT
// ============================================

type HTTPAdapter interface {
	RegisterRoutes(v *Vitals) error
}
