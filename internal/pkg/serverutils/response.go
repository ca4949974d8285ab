package serverutils

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"legal-assistant-be/pkg/assistant"
)

type Response[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

func SuccessResponse[T any](message string, data T) Response[T] {
	return Response[T]{
		Success: true,
		Message: message,
		Data:    data,
	}
}

var ErrSessionNotFound = errors.New("session not found")

var validate = validator.New()

func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		return err
	}
	return nil
}

// ErrorHandlerMiddleware translates service errors into HTTP responses.
// Domain errors get mapped to client statuses, everything else is a 500.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		status := fiber.StatusInternalServerError
		switch {
		case errors.Is(err, assistant.ErrSubmissionPending),
			errors.Is(err, assistant.ErrAnalysisInFlight):
			status = fiber.StatusConflict
		case errors.Is(err, assistant.ErrNoUserTurn):
			status = fiber.StatusUnprocessableEntity
		case errors.Is(err, ErrSessionNotFound):
			status = fiber.StatusNotFound
		default:
			var ve validator.ValidationErrors
			var fe *fiber.Error
			if errors.As(err, &ve) {
				status = fiber.StatusBadRequest
			} else if errors.As(err, &fe) {
				status = fe.Code
			}
		}

		return ctx.Status(status).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}
}
