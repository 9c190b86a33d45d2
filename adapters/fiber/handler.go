package fiber

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/lborres/vitals/core"
	"github.com/lborres/vitals/services"
)

// authResponse is the account flattened next to its bearer token, the shape
// the browser client stores after sign-in.
type authResponse struct {
	*core.Account
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func newAuthResponse(result *core.AuthResult) authResponse {
	return authResponse{Account: result.Account, Token: result.Token, ExpiresAt: result.ExpiresAt}
}

type messageResponse = core.ErrorResponse

func (a *Adapter) handlers(v *core.Vitals) map[string]fiber.Handler {
	return map[string]fiber.Handler{
		services.OpRegisterUser:      a.handleRegister(v.Accounts),
		services.OpLoginUser:         a.handleLogin(v.Accounts),
		services.OpGetProfile:        a.withAccount(a.handleGetProfile(v.Accounts)),
		services.OpUpdateProfile:     a.withAccount(a.handleUpdateProfile(v.Accounts)),
		services.OpListPatients:      a.withAccount(a.handleListPatients(v.Accounts)),
		services.OpGetPatientProfile: a.withAccount(a.handleGetPatientProfile(v.Accounts)),

		services.OpListGoals:        a.withAccount(a.handleListGoals(v.Goals)),
		services.OpCreateGoal:       a.withAccount(a.handleCreateGoal(v.Goals)),
		services.OpGetGoal:          a.withAccount(a.handleGetGoal(v.Goals)),
		services.OpLogGoalProgress:  a.withAccount(a.handleLogGoalProgress(v.Goals)),
		services.OpDeleteGoal:       a.withAccount(a.handleDeleteGoal(v.Goals)),
		services.OpListPatientGoals: a.withAccount(a.handleListPatientGoals(v.Goals)),
		services.OpGetPatientGoal:   a.withAccount(a.handleGetPatientGoal(v.Goals)),

		services.OpListReminders:        a.withAccount(a.handleListReminders(v.Reminders)),
		services.OpCreateReminder:       a.withAccount(a.handleCreateReminder(v.Reminders)),
		services.OpUpdateReminder:       a.withAccount(a.handleUpdateReminder(v.Reminders)),
		services.OpDeleteReminder:       a.withAccount(a.handleDeleteReminder(v.Reminders)),
		services.OpListPatientReminders: a.withAccount(a.handleListPatientReminders(v.Reminders)),
	}
}

// ============================================
// ACCOUNTS
// ============================================

func (a *Adapter) handleRegister(accounts core.AccountHandler) fiber.Handler {
	return func(c fiber.Ctx) error {
		var input core.RegisterInput
		if err := bindBody(c, &input); err != nil {
			return a.writeError(c, err)
		}

		result, err := accounts.Register(c.Context(), input)
		if err != nil {
			return a.writeError(c, err)
		}

		return c.Status(http.StatusCreated).JSON(newAuthResponse(result))
	}
}

func (a *Adapter) handleLogin(accounts core.AccountHandler) fiber.Handler {
	return func(c fiber.Ctx) error {
		var input core.LoginInput
		if err := bindBody(c, &input); err != nil {
			return a.writeError(c, err)
		}

		result, err := accounts.Login(c.Context(), input)
		if err != nil {
			return a.writeError(c, err)
		}

		return c.Status(http.StatusOK).JSON(newAuthResponse(result))
	}
}

func (a *Adapter) handleGetProfile(accounts core.AccountHandler) func(fiber.Ctx, *core.Account) error {
	return func(c fiber.Ctx, account *core.Account) error {
		profile, err := accounts.Profile(c.Context(), account)
		if err != nil {
			return a.writeError(c, err)
		}
		return c.Status(http.StatusOK).JSON(profile)
	}
}

func (a *Adapter) handleUpdateProfile(accounts core.AccountHandler) func(fiber.Ctx, *core.Account) error {
	return func(c fiber.Ctx, account *core.Account) error {
		var update core.ProfileUpdate
		if err := bindBody(c, &update); err != nil {
			return a.writeError(c, err)
		}

		result, err := accounts.UpdateProfile(c.Context(), account, update)
		if err != nil {
			return a.writeError(c, err)
		}

		return c.Status(http.StatusOK).JSON(newAuthResponse(result))
	}
}

func (a *Adapter) handleListPatients(accounts core.AccountHandler) func(fiber.Ctx, *core.Account) error {
	return func(c fiber.Ctx, _ *core.Account) error {
		patients, err := accounts.ListSubjects(c.Context())
		if err != nil {
			return a.writeError(c, err)
		}
		return c.Status(http.StatusOK).JSON(patients)
	}
}

func (a *Adapter) handleGetPatientProfile(accounts core.AccountHandler) func(fiber.Ctx, *core.Account) error {
	return func(c fiber.Ctx, _ *core.Account) error {
		patient, err := accounts.SubjectProfile(c.Context(), c.Params("id"))
		if err != nil {
			return a.writeError(c, err)
		}
		return c.Status(http.StatusOK).JSON(patient)
	}
}

// ============================================
// GOALS
// ============================================

func (a *Adapter) handleListGoals(goals core.GoalHandler) func(fiber.Ctx, *core.Account) error {
	return func(c fiber.Ctx, account *core.Account) error {
		list, err := goals.List(c.Context(), account)
		if err != nil {
			return a.writeError(c, err)
		}
		return c.Status(http.StatusOK).JSON(list)
	}
}

func (a *Adapter) handleCreateGoal(goals core.GoalHandler) func(fiber.Ctx, *core.Account) error {
	return func(c fiber.Ctx, account *core.Account) error {
		var input core.GoalInput
		if err := bindBody(c, &input); err != nil {
			return a.writeError(c, err)
		}

		goal, err := goals.Create(c.Context(), account, input)
		if err != nil {
			return a.writeError(c, err)
		}
		return c.Status(http.StatusCreated).JSON(goal)
	}
}

func (a *Adapter) handleGetGoal(goals core.GoalHandler) func(fiber.Ctx, *core.Account) error {
	return func(c fiber.Ctx, account *core.Account) error {
		goal, err := goals.Get(c.Context(), account, c.Params("id"), "")
		if err != nil {
			return a.writeError(c, err)
		}
		return c.Status(http.StatusOK).JSON(goal)
	}
}

func (a *Adapter) handleLogGoalProgress(goals core.GoalHandler) func(fiber.Ctx, *core.Account) error {
	return func(c fiber.Ctx, account *core.Account) error {
		var input core.ProgressInput
		if err := bindBody(c, &input); err != nil {
			return a.writeError(c, err)
		}

		goal, err := goals.LogProgress(c.Context(), account, c.Params("id"), input)
		if err != nil {
			return a.writeError(c, err)
		}
		return c.Status(http.StatusOK).JSON(goal)
	}
}

func (a *Adapter) handleDeleteGoal(goals core.GoalHandler) func(fiber.Ctx, *core.Account) error {
	return func(c fiber.Ctx, account *core.Account) error {
		if err := goals.Delete(c.Context(), account, c.Params("id")); err != nil {
			return a.writeError(c, err)
		}
		return c.Status(http.StatusOK).JSON(messageResponse{Message: "Goal removed"})
	}
}

func (a *Adapter) handleListPatientGoals(goals core.GoalHandler) func(fiber.Ctx, *core.Account) error {
	return func(c fiber.Ctx, account *core.Account) error {
		list, err := goals.ListForSubject(c.Context(), account, c.Params("patientId"))
		if err != nil {
			return a.writeError(c, err)
		}
		return c.Status(http.StatusOK).JSON(list)
	}
}

func (a *Adapter) handleGetPatientGoal(goals core.GoalHandler) func(fiber.Ctx, *core.Account) error {
	return func(c fiber.Ctx, account *core.Account) error {
		goal, err := goals.Get(c.Context(), account, c.Params("id"), c.Params("patientId"))
		if err != nil {
			return a.writeError(c, err)
		}
		return c.Status(http.StatusOK).JSON(goal)
	}
}

// ============================================
// REMINDERS
// ============================================

func (a *Adapter) handleListReminders(reminders core.ReminderHandler) func(fiber.Ctx, *core.Account) error {
	return func(c fiber.Ctx, account *core.Account) error {
		list, err := reminders.List(c.Context(), account)
		if err != nil {
			return a.writeError(c, err)
		}
		return c.Status(http.StatusOK).JSON(list)
	}
}

func (a *Adapter) handleCreateReminder(reminders core.ReminderHandler) func(fiber.Ctx, *core.Account) error {
	return func(c fiber.Ctx, account *core.Account) error {
		var input core.ReminderInput
		if err := bindBody(c, &input); err != nil {
			return a.writeError(c, err)
		}

		reminder, err := reminders.Create(c.Context(), account, input)
		if err != nil {
			return a.writeError(c, err)
		}
		return c.Status(http.StatusCreated).JSON(reminder)
	}
}

func (a *Adapter) handleUpdateReminder(reminders core.ReminderHandler) func(fiber.Ctx, *core.Account) error {
	return func(c fiber.Ctx, account *core.Account) error {
		var update core.ReminderUpdate
		if err := bindBody(c, &update); err != nil {
			return a.writeError(c, err)
		}

		reminder, err := reminders.Update(c.Context(), account, c.Params("id"), update)
		if err != nil {
			return a.writeError(c, err)
		}
		return c.Status(http.StatusOK).JSON(reminder)
	}
}

func (a *Adapter) handleDeleteReminder(reminders core.ReminderHandler) func(fiber.Ctx, *core.Account) error {
	return func(c fiber.Ctx, account *core.Account) error {
		if err := reminders.Delete(c.Context(), account, c.Params("id")); err != nil {
			return a.writeError(c, err)
		}
		return c.Status(http.StatusOK).JSON(messageResponse{Message: "Reminder removed"})
	}
}

func (a *Adapter) handleListPatientReminders(reminders core.ReminderHandler) func(fiber.Ctx, *core.Account) error {
	return func(c fiber.Ctx, account *core.Account) error {
		list, err := reminders.ListForSubject(c.Context(), account, c.Params("patientId"))
		if err != nil {
			return a.writeError(c, err)
		}
		return c.Status(http.StatusOK).JSON(list)
	}
}

// ============================================
// ERRORS
// ============================================

// bindBody decodes the JSON request body into out.
func bindBody(c fiber.Ctx, out any) error {
	if err := c.Bind().Body(out); err != nil {
		return core.ErrInvalidRequestBody
	}
	return nil
}

// writeError maps err to a status and writes {"message": ...}. Unclassified
// errors are logged and answered with a generic message.
func (a *Adapter) writeError(c fiber.Ctx, err error) error {
	status := mapErrorToStatus(err)
	message := err.Error()

	if status == http.StatusInternalServerError {
		a.logger.ErrorContext(c.Context(), "request failed",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Any("error", err),
		)
		message = "internal server error"
	}

	return c.Status(status).JSON(core.ErrorResponse{Message: message})
}

// mapErrorToStatus maps vitals error classes to HTTP status codes
func mapErrorToStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	switch {
	case errors.Is(err, core.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
