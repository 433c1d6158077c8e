package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware renders handler errors in the standard response envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := StatusOf(err)
		message := err.Error()

		var appErr *AppError
		if errors.As(err, &appErr) {
			message = appErr.Error()
		} else if code == fiber.StatusInternalServerError {
			// Don't leak internals
			message = "internal server error"
		}

		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}
