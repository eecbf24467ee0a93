package handler

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"

	"invoiceapi/docs"
	"invoiceapi/internal/database"
	"invoiceapi/internal/service"
)

// UploadPath is the invoice upload route.
const UploadPath = "/invoices"

// Deps are the collaborators the routes are bound to. Metrics may be nil.
type Deps struct {
	DB        *sql.DB
	Ingestion service.IngestionService
	Export    service.ExportService
	Audit     service.AuditService
	Metrics   http.Handler
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())
	if d.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(d.Metrics))
	}
	app.Get("/swagger/*", swaggerUI())

	app.Post(UploadPath, UploadInvoice(d.Ingestion))
	app.Get("/export/:format", ExportLatest(d.Export))
	app.Get("/records/latest", LatestRecord(d.Export))
	app.Get("/logs", ListLogs(d.Audit))
	app.Post("/logs", WriteLog(d.Audit))
}

// HealthCheck reports whether the audit database answers a ping.
//
// @Summary Readiness probe
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} errorPayload
// @Router /health [get]
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := database.Ping(c.UserContext(), db); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable", "")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe always answers 200.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// swaggerUI serves the API docs with host and scheme taken from the request.
func swaggerUI() fiber.Handler {
	return func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	}
}
