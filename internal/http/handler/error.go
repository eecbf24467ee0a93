package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"invoiceapi/internal/http/middleware"
	"invoiceapi/internal/logger"
	"invoiceapi/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string `json:"request_id"`
	Code      string `json:"code"`
	Error     string `json:"error"`
	Details   string `json:"details,omitempty"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "VALIDATION_ERROR", "NOT_FOUND")
// - message: human-readable safe message
// - details: the offending field or upstream detail, empty when there is none
func writeError(c *fiber.Ctx, status int, code, message, details string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Code:      code,
		Error:     message,
		Details:   details,
	})
}

// writeServiceError maps a service error kind to its status and code. Errors
// without a kind are logged and reported as internal errors.
func writeServiceError(c *fiber.Ctx, err error) error {
	var se *service.Error
	if !errors.As(err, &se) {
		logger.FromContext(c.UserContext()).Error("unclassified error", "error", err, "path", c.Path())
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", "")
	}

	switch {
	case errors.Is(err, service.ErrValidation):
		return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", se.Message, se.Details)
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", se.Message, se.Details)
	case errors.Is(err, service.ErrExtraction):
		return writeError(c, fiber.StatusBadGateway, "EXTRACTION_ERROR", se.Message, se.Details)
	case errors.Is(err, service.ErrFormat):
		return writeError(c, fiber.StatusInternalServerError, "FORMAT_ERROR", se.Message, se.Details)
	case errors.Is(err, service.ErrStorage):
		return writeError(c, fiber.StatusInternalServerError, "STORAGE_ERROR", se.Message, se.Details)
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", "")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
// An upload refused by the body limit never reaches UploadInvoice, so it is
// rejected through uploads here to keep the audit trail complete. uploads may be nil.
func ErrorHandler(uploads service.IngestionService) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		if status == fiber.StatusRequestEntityTooLarge && uploads != nil &&
			c.Method() == fiber.MethodPost && c.Path() == UploadPath {
			rerr := uploads.Reject(c.UserContext(), middleware.ActorFrom(c), "", "file", "request body too large")
			var se *service.Error
			if errors.As(rerr, &se) {
				return writeError(c, status, "PAYLOAD_TOO_LARGE", se.Message, se.Details)
			}
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request", "")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found", "")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed", "")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "request body too large", "")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error", "")
		}
	}
}
