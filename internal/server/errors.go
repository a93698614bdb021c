package server

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
)

// TextCodeValidation is the stable code for payload validation failures.
const TextCodeValidation = "VALIDATION_ERROR"

// statusByCategory is the central business-error -> HTTP status table.
// Handlers never pick status codes themselves.
var statusByCategory = map[goerrors.Category]int{
	goerrors.CategoryValidation: http.StatusBadRequest,
	goerrors.CategoryBadInput:   http.StatusBadRequest,
	goerrors.CategoryAuth:       http.StatusUnauthorized,
	goerrors.CategoryAuthz:      http.StatusForbidden,
	goerrors.CategoryNotFound:   http.StatusNotFound,
	goerrors.CategoryConflict:   http.StatusConflict,
	goerrors.CategoryRateLimit:  http.StatusTooManyRequests,
}

// errorHandler translates errors into the response envelope. Business
// errors keep their message and stable code; anything unexpected becomes a
// generic 500, with details only in debug mode.
func errorHandler(debug bool, logger Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var verr validation.Errors
		if errors.As(err, &verr) {
			return c.Status(http.StatusBadRequest).JSON(Envelope{
				Success: false,
				Message: verr.Error(),
				Code:    TextCodeValidation,
			})
		}

		var rich *goerrors.Error
		if goerrors.As(err, &rich) {
			status := statusForError(rich)
			if status < http.StatusInternalServerError {
				return c.Status(status).JSON(Envelope{
					Success: false,
					Message: rich.Message,
					Code:    rich.TextCode,
				})
			}
			logger.Error("request failed: %v", rich)
			return internalError(c, debug, rich)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(Envelope{
				Success: false,
				Message: fiberErr.Message,
			})
		}

		logger.Error("request failed: %v", err)
		return internalError(c, debug, err)
	}
}

func statusForError(rich *goerrors.Error) int {
	if rich.Code != 0 {
		return int(rich.Code)
	}
	if status, ok := statusByCategory[rich.Category]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func internalError(c *fiber.Ctx, debug bool, err error) error {
	msg := "Internal server error"
	if debug {
		msg = err.Error()
	}
	return c.Status(http.StatusInternalServerError).JSON(Envelope{
		Success: false,
		Message: msg,
		Code:    "INTERNAL_ERROR",
	})
}
