package fiber

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"

	"github.com/lborres/quill/core"
)

const internalErrorMessage = "internal server error"

// errorResponse is the failure envelope for every non-2xx response.
type errorResponse struct {
	Success    bool     `json:"success"`
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Stack      []string `json:"stack,omitempty"`
}

// NewErrorHandler renders err as the failure envelope. Outside production the
// wrapped error chain is included as stack. Use it as fiber.Config.ErrorHandler
// so panics and unknown routes share the envelope.
func NewErrorHandler(logger *slog.Logger, production bool) fiber.ErrorHandler {
	return func(c fiber.Ctx, err error) error {
		status := mapErrorToStatus(err)

		message := err.Error()
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			message = fiberErr.Message
		}

		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				slog.String("method", c.Method()),
				slog.String("path", c.Path()),
				slog.String("request_id", requestid.FromContext(c)),
				slog.Any("error", err),
			)
			if production {
				message = internalErrorMessage
			}
		} else {
			logger.Debug("request rejected",
				slog.Int("status", status),
				slog.String("reason", message),
			)
		}

		resp := errorResponse{
			Success:    false,
			StatusCode: status,
			Message:    message,
		}
		if !production {
			resp.Stack = errorChain(err)
		}

		return c.Status(status).JSON(resp)
	}
}

// errorChain lists err and everything it wraps, outermost first.
func errorChain(err error) []string {
	var chain []string
	for err != nil {
		chain = append(chain, err.Error())
		err = errors.Unwrap(err)
	}
	return chain
}

// mapErrorToStatus maps quill error types to HTTP status codes
func mapErrorToStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}

	switch {
	case errors.Is(err, core.ErrUnauthenticated),
		errors.Is(err, core.ErrInvalidToken),
		errors.Is(err, core.ErrSessionExpired),
		errors.Is(err, core.ErrInvalidCredentials):
		return http.StatusUnauthorized

	case errors.Is(err, core.ErrCSRFTokenMissing),
		errors.Is(err, core.ErrCSRFTokenNotFound),
		errors.Is(err, core.ErrCSRFTokenInvalid),
		errors.Is(err, core.ErrForbidden),
		errors.Is(err, core.ErrUserInactive):
		return http.StatusForbidden

	case errors.Is(err, core.ErrUserNotFound),
		errors.Is(err, core.ErrAccountNotFound),
		errors.Is(err, core.ErrCategoryNotFound),
		errors.Is(err, core.ErrPostNotFound):
		return http.StatusNotFound

	case errors.Is(err, core.ErrUserExists),
		errors.Is(err, core.ErrCategoryExists),
		errors.Is(err, core.ErrCategoryInUse),
		errors.Is(err, core.ErrPostExists):
		return http.StatusConflict

	case errors.Is(err, core.ErrInvalidRequestBody),
		errors.Is(err, core.ErrNameRequired),
		errors.Is(err, core.ErrNameTooLong),
		errors.Is(err, core.ErrEmailRequired),
		errors.Is(err, core.ErrInvalidEmail),
		errors.Is(err, core.ErrPasswordRequired),
		errors.Is(err, core.ErrPasswordTooShort),
		errors.Is(err, core.ErrPasswordTooLong),
		errors.Is(err, core.ErrBioTooLong),
		errors.Is(err, core.ErrUserIDRequired),
		errors.Is(err, core.ErrTitleRequired),
		errors.Is(err, core.ErrTitleTooLong),
		errors.Is(err, core.ErrCategoryRequired),
		errors.Is(err, core.ErrContentRequired),
		errors.Is(err, core.ErrInvalidSlug),
		errors.Is(err, core.ErrTooManyTags):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}
