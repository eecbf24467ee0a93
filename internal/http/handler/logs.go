package handler

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"invoiceapi/internal/http/middleware"
	"invoiceapi/internal/service"
)

// ListLogs returns recent audit entries, newest first.
//
// @Summary List audit entries
// @Tags logs
// @Produce json
// @Param limit query int false "Maximum entries (default 100)"
// @Success 200 {array} model.AuditEntry
// @Failure 400 {object} errorPayload
// @Router /logs [get]
func ListLogs(svc service.AuditService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := 0
		if q := c.Query("limit"); q != "" {
			n, err := strconv.Atoi(q)
			if err != nil || n < 0 {
				return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit", "limit")
			}
			limit = n
		}

		entries, err := svc.List(c.UserContext(), limit)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(entries)
	}
}

// WriteLog records a client-side event. A missing, blank or non-string message is
// accepted and ignored.
//
// @Summary Write an audit entry
// @Tags logs
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 400 {object} errorPayload
// @Router /logs [post]
func WriteLog(svc service.AuditService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body map[string]any
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be a JSON object", "")
		}

		msg, _ := body["message"].(string)
		if strings.TrimSpace(msg) == "" {
			return c.JSON(fiber.Map{"status": "ignored"})
		}
		severity, _ := body["severity"].(string)

		svc.Write(c.UserContext(), middleware.ActorFrom(c), msg, severity)
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
