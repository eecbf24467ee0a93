package handler

import (
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"invoiceapi/internal/http/middleware"
	"invoiceapi/internal/model"
	"invoiceapi/internal/service"
)

type uploadResponse struct {
	Message   string                `json:"message"`
	URL       string                `json:"url"`
	Key       string                `json:"key"`
	RecordKey string                `json:"record_key,omitempty"`
	Record    model.FinancialRecord `json:"record"`
}

// openFormFile opens an uploaded file part; replaced in tests.
var openFormFile = func(fh *multipart.FileHeader) (multipart.File, error) {
	return fh.Open()
}

// UploadInvoice runs the ingestion pipeline for a multipart upload.
// A request without a file still reaches the service so the rejection is audited.
// A file part that cannot be opened is rejected through the service for the same reason.
//
// @Summary Upload an invoice
// @Tags invoices
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Invoice PDF"
// @Param actor formData string false "Acting user"
// @Success 200 {object} uploadResponse
// @Failure 400 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Failure 502 {object} errorPayload
// @Router /invoices [post]
func UploadInvoice(svc service.IngestionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := service.UploadRequest{Actor: c.FormValue("actor")}
		if req.Actor == "" {
			req.Actor = middleware.ActorFrom(c)
		}

		if fh, err := c.FormFile("file"); err == nil {
			f, err := openFormFile(fh)
			if err != nil {
				return writeServiceError(c, svc.Reject(c.UserContext(), req.Actor, fh.Filename, "file", "cannot open uploaded file"))
			}
			req.File = f
			req.Filename = fh.Filename
			req.ContentType = fh.Header.Get("Content-Type")
			req.Size = fh.Size
		}

		res, err := svc.Ingest(c.UserContext(), req)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(uploadResponse{
			Message:   "Invoice processed",
			URL:       res.URL,
			Key:       res.Key,
			RecordKey: res.RecordKey,
			Record:    res.Record,
		})
	}
}
