package core

import (
	"time"

	"github.com/lborres/vitals/pkg/crypto"
)

type Config struct {
	// Secret signs bearer tokens. At least 32 characters.
	Secret string

	Database StorageAdapter

	HTTP HTTPAdapter

	// Optional config
	CacheAdapter   Cache
	DisableCache   bool
	TokenTTL       time.Duration
	PasswordHasher crypto.PasswordHandler
	BasePath       string
	Now            func() time.Time // token clock
}

// Vitals is the assembled portal handed to an HTTPAdapter.
type Vitals struct {
	Gate      Authorizer
	Accounts  AccountHandler
	Goals     GoalHandler
	Reminders ReminderHandler
	Endpoints []Endpoint
	BasePath  string
}
