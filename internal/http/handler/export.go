package handler

import (
	"github.com/gofiber/fiber/v2"

	"invoiceapi/internal/http/middleware"
	"invoiceapi/internal/service"
)

// ExportLatest downloads the latest stored record as CSV or XLSX.
//
// @Summary Export the latest record
// @Tags export
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format path string true "csv or xlsx"
// @Success 200 {file} file
// @Failure 404 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Router /export/{format} [get]
func ExportLatest(svc service.ExportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := middleware.ActorFrom(c)

		var (
			d   *service.Download
			err error
		)
		switch format := c.Params("format"); format {
		case "csv":
			d, err = svc.LatestCSV(c.UserContext(), actor)
		case "xlsx":
			d, err = svc.LatestXLSX(c.UserContext(), actor)
		default:
			return writeError(c, fiber.StatusNotFound, "UNSUPPORTED_FORMAT", "unsupported export format", format)
		}
		if err != nil {
			return writeServiceError(c, err)
		}

		c.Attachment(d.Filename)
		c.Set(fiber.HeaderContentType, d.ContentType)
		return c.Status(fiber.StatusOK).Send(d.Content)
	}
}

// LatestRecord returns the most recent canonical record for visualization.
//
// @Summary Latest financial record
// @Tags records
// @Produce json
// @Success 200 {object} service.RecordView
// @Failure 404 {object} errorPayload
// @Router /records/latest [get]
func LatestRecord(svc service.ExportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := svc.LatestRecord(c.UserContext(), middleware.ActorFrom(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(view)
	}
}
