package fiber

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/lborres/vitals/core"
)

type Adapter struct {
	app    *fiber.App
	logger *slog.Logger
}

var _ core.HTTPAdapter = (*Adapter)(nil)

// New wraps app. A nil logger falls back to slog.Default.
func New(app *fiber.App, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{app: app, logger: logger}
}

// RegisterRoutes mounts every endpoint of v under its base path. Each
// endpoint's OperationID must have a handler; protected endpoints pass
// through the authorization gate with the endpoint's role set.
func (a *Adapter) RegisterRoutes(v *core.Vitals) error {
	handlers := a.handlers(v)

	// fail before mounting anything
	for _, ep := range v.Endpoints {
		if _, ok := handlers[ep.OperationID]; !ok {
			return fmt.Errorf("no fiber handler for operation %q (%s %s)", ep.OperationID, ep.Method, ep.Path)
		}
	}

	a.app.Get("/", a.liveness)

	api := a.app.Group(v.BasePath)
	for _, ep := range v.Endpoints {
		handler := handlers[ep.OperationID]
		if ep.Public {
			api.Add([]string{ep.Method}, ep.Path, handler)
			continue
		}
		api.Add([]string{ep.Method}, ep.Path, a.protect(v.Gate, ep.Roles), handler)
	}

	return nil
}

func (a *Adapter) liveness(c fiber.Ctx) error {
	return c.SendString("Vitals API is running!")
}
