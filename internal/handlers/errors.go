package handlers

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/clientdesk/backend/internal/dto"
	"github.com/clientdesk/backend/internal/services"
	"github.com/clientdesk/backend/internal/validation"
	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
)

// ValidationError is a request that failed shape checks before reaching a service.
type ValidationError struct {
	Message string
	Fields  []validation.FieldError
}

func (e *ValidationError) Error() string {
	return e.Message
}

type serviceErrorMapping struct {
	target  error
	status  int
	message string
}

var serviceErrors = []serviceErrorMapping{
	{services.ErrEmailTaken, fiber.StatusBadRequest, "Email address already exists, please login to continue"},
	{services.ErrInvalidCredentials, fiber.StatusBadRequest, "Email Or Password Incorrect"},
	{services.ErrAccountDisabled, fiber.StatusBadRequest, "Your account has been disabled. Please contact support."},
	{services.ErrClientNotUpdatable, fiber.StatusBadRequest, "Client not found or cannot update admin."},
	{services.ErrClientNotDeletable, fiber.StatusNotFound, "Client not found or cannot delete admin."},
}

// serviceError turns a known service error into a client-safe fiber error.
// Anything unknown passes through and ends up as a 500.
func serviceError(err error) error {
	for _, m := range serviceErrors {
		if errors.Is(err, m.target) {
			return fiber.NewError(m.status, m.message)
		}
	}
	return err
}

// ErrorHandler renders every error as {"error": true, "message": ...}. Only
// 4xx messages reach the client; 5xx details are logged and reported.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var details interface{}

	var ve *ValidationError
	var fe *fiber.Error
	switch {
	case errors.As(err, &ve):
		code = fiber.StatusBadRequest
		message = ve.Message
		details = fiber.Map{"fields": ve.Fields}
	case errors.As(err, &fe):
		code = fe.Code
		message = fe.Message
	}

	if code >= fiber.StatusInternalServerError {
		slog.Error("unhandled server error",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", requestID(c),
			"error", err.Error(),
		)
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.WithScope(func(scope *sentry.Scope) {
				scope.SetTag("path", c.Path())
				hub.CaptureException(err)
			})
		}
		message = "Internal server error"
		details = nil
	}

	return c.Status(code).JSON(dto.ErrorResponse{
		Error:   true,
		Message: message,
		Details: details,
	})
}

// NotFound is mounted after every route and catches whatever is left.
func NotFound(c *fiber.Ctx) error {
	slog.Warn("route not found", "method", c.Method(), "path", c.Path())
	return fiber.NewError(fiber.StatusNotFound,
		fmt.Sprintf("The route you are trying to reach (%s) does not exist", c.Path()))
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok && id != "" {
		return id
	}
	return c.Get(fiber.HeaderXRequestID)
}
