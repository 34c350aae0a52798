package serverutils

import (
	"errors"

	"ai-paperwriter-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts service errors into JSON responses.
// Retrieval exhaustion maps to 404, quality rejection to 422; fiber
// errors keep their own status codes.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var noContent *service.NoRelevantContentError
		if errors.As(err, &noContent) {
			return ctx.Status(fiber.StatusNotFound).JSON(ErrorResponse(err.Error()))
		}

		var quality *service.ContentQualityError
		if errors.As(err, &quality) {
			return ctx.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse(err.Error()))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message))
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(err.Error()))
	}
}
