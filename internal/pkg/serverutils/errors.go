package serverutils

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// AppError carries an HTTP status along with a client-safe message.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

var (
	ErrNotFound     = &AppError{Code: fiber.StatusNotFound, Message: "resource not found"}
	ErrUnauthorized = &AppError{Code: fiber.StatusUnauthorized, Message: "unauthorized"}
	ErrConflict     = &AppError{Code: fiber.StatusConflict, Message: "document was modified by another request"}
)

// ErrBadRequest wraps err as a 400 with message shown to the client.
func ErrBadRequest(message string, err error) *AppError {
	return &AppError{Code: fiber.StatusBadRequest, Message: message, Err: err}
}

// StatusOf resolves the HTTP status for any error returned by a handler.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}
	return fiber.StatusInternalServerError
}
