package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"invoiceapi/internal/audit"
	"invoiceapi/internal/config"
	"invoiceapi/internal/events"
	"invoiceapi/internal/extraction"
	"invoiceapi/internal/model"
	"invoiceapi/internal/normalizer"
	"invoiceapi/internal/storage"
)

// ActionUpload is the audit action written for every upload attempt.
const ActionUpload = "invoice.upload"

// UploadRequest is one invoice upload. File is nil when the client sent no file;
// the service closes it on every path.
type UploadRequest struct {
	File        io.ReadCloser
	Filename    string
	ContentType string
	Size        int64
	Actor       string
}

// IngestResult describes a completed upload.
type IngestResult struct {
	Key       string                `json:"key"`
	URL       string                `json:"url"`
	RecordKey string                `json:"record_key,omitempty"`
	Record    model.FinancialRecord `json:"record"`
}

// IngestionService runs the upload pipeline: validate, store, extract, normalize.
// Reject records an upload that failed before Ingest could run, such as a body
// the transport refused or a file part that could not be opened.
type IngestionService interface {
	Ingest(ctx context.Context, req UploadRequest) (*IngestResult, error)
	Reject(ctx context.Context, actor, filename, field, reason string) error
}

type ingestionService struct {
	store     storage.Storage
	invoker   extraction.Invoker
	audit     audit.Logger
	publisher events.Publisher
	metrics   *Metrics
	cfg       config.IngestionConfig
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

// NewIngestionService wires the pipeline collaborators. publisher and metrics may be nil.
func NewIngestionService(
	store storage.Storage,
	invoker extraction.Invoker,
	auditLog audit.Logger,
	publisher events.Publisher,
	metrics *Metrics,
	cfg config.IngestionConfig,
	logger *slog.Logger,
) IngestionService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ingestionService{
		store:     store,
		invoker:   invoker,
		audit:     auditLog,
		publisher: publisher,
		metrics:   metrics,
		cfg:       cfg,
		logger:    logger.With("component", "ingestion"),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

func (s *ingestionService) Ingest(ctx context.Context, req UploadRequest) (*IngestResult, error) {
	if req.File != nil {
		defer req.File.Close()
	}
	actor := strings.TrimSpace(req.Actor)
	if actor == "" {
		actor = model.DefaultActor
	}
	log := s.logger.With("actor", actor, "filename", req.Filename)

	mediaType, verr := s.validate(req)
	if verr != nil {
		s.fail(ctx, actor, req.Filename, verr, model.SeverityWarning)
		log.Warn("upload rejected", "field", verr.Details, "reason", verr.Message)
		return nil, verr
	}

	id := s.newID()
	key := s.cfg.UploadPrefix + id + strings.ToLower(path.Ext(req.Filename))
	info, err := s.store.Put(ctx, key, req.File, storage.PutObjectOptions{
		Size:        req.Size,
		ContentType: mediaType,
		Metadata: map[string]string{
			"original-filename": req.Filename,
			"actor":             actor,
		},
	})
	if err != nil {
		serr := storageError("failed to store upload", err)
		s.fail(ctx, actor, req.Filename, serr, model.SeverityError)
		log.Error("upload storage failed", "key", key, "error", err)
		return nil, serr
	}
	if info.Key != "" {
		key = info.Key
	}
	uri := s.store.URI(key)

	start := time.Now()
	bag, err := s.invoker.Invoke(ctx, uri)
	s.metrics.extractionSeconds(time.Since(start).Seconds())
	if err != nil {
		xerr := &Error{
			Kind:    ErrExtraction,
			Stage:   StageExtraction,
			Message: "extraction service failed",
			Details: extractionDetail(err),
			Err:     err,
		}
		s.fail(ctx, actor, req.Filename, xerr, model.SeverityError)
		log.Error("extraction failed", "key", key, "error", err)
		return nil, xerr
	}

	record := normalizer.Normalize(bag)
	if s.cfg.DeriveRatios {
		record = normalizer.DeriveRatios(record)
	}

	res := &IngestResult{Key: key, URL: uri, Record: record}
	severity := model.SeverityInfo
	message := fmt.Sprintf("Invoice %q processed", req.Filename)
	if s.cfg.PersistRecords {
		recordKey, perr := s.persist(ctx, id, key, actor, record)
		if perr != nil {
			severity = model.SeverityWarning
			message = fmt.Sprintf("Invoice %q processed; record not saved: %v", req.Filename, perr)
			log.Warn("record persistence failed", "key", key, "error", perr)
		} else {
			res.RecordKey = recordKey
		}
	}

	s.audit.Append(ctx, actor, ActionUpload, message, severity)
	s.metrics.ingestion("completed", "")
	s.publisher.Publish(ctx, events.InvoiceProcessed{
		UploadKey:   key,
		RecordKey:   res.RecordKey,
		Actor:       actor,
		Record:      record,
		ProcessedAt: s.now(),
	})
	log.Info("invoice processed", "key", key, "record_key", res.RecordKey)
	return res, nil
}

func (s *ingestionService) Reject(ctx context.Context, actor, filename, field, reason string) error {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		actor = model.DefaultActor
	}
	verr := validationError(field, reason)
	s.fail(ctx, actor, filename, verr, model.SeverityWarning)
	s.logger.Warn("upload rejected", "actor", actor, "filename", filename, "field", field, "reason", reason)
	return verr
}

func (s *ingestionService) validate(req UploadRequest) (string, *Error) {
	if req.File == nil {
		return "", validationError("file", "file is required")
	}
	if req.Size == 0 {
		return "", validationError("file", "file is empty")
	}
	if s.cfg.MaxUploadBytes > 0 && req.Size > s.cfg.MaxUploadBytes {
		return "", validationError("file", fmt.Sprintf("file exceeds %d bytes", s.cfg.MaxUploadBytes))
	}
	mediaType, _, err := mime.ParseMediaType(req.ContentType)
	if err != nil || !strings.EqualFold(mediaType, s.cfg.AcceptedContentType) {
		return "", validationError("content_type",
			fmt.Sprintf("unsupported content type %q, expected %s", req.ContentType, s.cfg.AcceptedContentType))
	}
	return mediaType, nil
}

// persist stores the canonical record as JSON so the export path can find it.
func (s *ingestionService) persist(ctx context.Context, id, sourceKey, actor string, rec model.FinancialRecord) (string, error) {
	body, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}
	key := s.cfg.RecordPrefix + id + ".json"
	_, err = s.store.Put(ctx, key, bytes.NewReader(body), storage.PutObjectOptions{
		Size:        int64(len(body)),
		ContentType: model.ContentTypeJSON,
		Metadata: map[string]string{
			"source-key": sourceKey,
			"actor":      actor,
		},
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

func (s *ingestionService) fail(ctx context.Context, actor, filename string, e *Error, severity model.Severity) {
	msg := fmt.Sprintf("Invoice %q failed at %s: %s", filename, e.Stage, e.Message)
	if e.Details != "" {
		msg += " (" + e.Details + ")"
	}
	s.audit.Append(ctx, actor, ActionUpload, msg, severity)
	s.metrics.ingestion("failed", e.Stage)
}

func extractionDetail(err error) string {
	var xe *extraction.Error
	if errors.As(err, &xe) {
		return xe.Message
	}
	return err.Error()
}
