package fiber

import (
	"github.com/gofiber/fiber/v3"

	"github.com/lborres/vitals/core"
)

const localsAccount = "account"

// protect builds a Fiber middleware that authorizes the request against roles
// and stores the resolved account in the context for downstream handlers.
func (a *Adapter) protect(gate core.Authorizer, roles core.RoleSet) fiber.Handler {
	return func(c fiber.Ctx) error {
		account, err := gate.Authorize(c.Context(), c.Get(fiber.HeaderAuthorization), roles)
		if err != nil {
			return a.writeError(c, err)
		}

		c.Locals(localsAccount, account)
		return c.Next()
	}
}

// withAccount adapts a handler that needs the caller resolved by protect.
func (a *Adapter) withAccount(fn func(fiber.Ctx, *core.Account) error) fiber.Handler {
	return func(c fiber.Ctx) error {
		account, ok := c.Locals(localsAccount).(*core.Account)
		if !ok || account == nil {
			return a.writeError(c, core.ErrMissingAuthHeader)
		}
		return fn(c, account)
	}
}
