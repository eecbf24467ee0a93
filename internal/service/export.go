package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"invoiceapi/internal/audit"
	"invoiceapi/internal/config"
	"invoiceapi/internal/export"
	"invoiceapi/internal/model"
	"invoiceapi/internal/normalizer"
	"invoiceapi/internal/storage"
)

// Audit actions written by the export paths.
const (
	ActionExportCSV  = "export.csv"
	ActionExportXLSX = "export.xlsx"
	ActionRecordView = "record.view"
)

const contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Download is a rendered file ready to be sent as an attachment.
type Download struct {
	Filename    string
	ContentType string
	Content     []byte
	SourceKey   string
}

// RecordView is the most recent canonical record, for the dashboard.
type RecordView struct {
	Key       string                `json:"key"`
	CreatedAt time.Time             `json:"created_at"`
	Record    model.FinancialRecord `json:"record"`
}

// ExportService serves the latest stored record in downloadable formats.
type ExportService interface {
	LatestCSV(ctx context.Context, actor string) (*Download, error)
	LatestXLSX(ctx context.Context, actor string) (*Download, error)
	LatestRecord(ctx context.Context, actor string) (*RecordView, error)
}

type exportService struct {
	store   storage.Storage
	audit   audit.Logger
	metrics *Metrics
	prefix  string
	logger  *slog.Logger
}

// NewExportService reads records under cfg.RecordPrefix. metrics may be nil.
func NewExportService(store storage.Storage, auditLog audit.Logger, metrics *Metrics, cfg config.IngestionConfig, logger *slog.Logger) ExportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &exportService{
		store:   store,
		audit:   auditLog,
		metrics: metrics,
		prefix:  cfg.RecordPrefix,
		logger:  logger.With("component", "export"),
	}
}

func (s *exportService) LatestCSV(ctx context.Context, actor string) (*Download, error) {
	d, err := s.download(ctx, "csv", export.ToCSV, model.ContentTypeCSV)
	s.finish(ctx, actor, ActionExportCSV, "csv", d, err)
	return d, err
}

func (s *exportService) LatestXLSX(ctx context.Context, actor string) (*Download, error) {
	d, err := s.download(ctx, "xlsx", export.ToXLSX, contentTypeXLSX)
	s.finish(ctx, actor, ActionExportXLSX, "xlsx", d, err)
	return d, err
}

func (s *exportService) LatestRecord(ctx context.Context, actor string) (*RecordView, error) {
	view, err := s.latestRecord(ctx)
	var src string
	if view != nil {
		src = view.Key
	}
	s.record(ctx, actor, ActionRecordView, "json", src, err)
	return view, err
}

type renderFunc func(model.StoredObject) ([]byte, string, error)

func (s *exportService) download(ctx context.Context, format string, render renderFunc, contentType string) (*Download, error) {
	obj, err := s.latestObject(ctx)
	if err != nil {
		return nil, err
	}
	out, name, err := render(obj)
	if err != nil {
		return nil, formatError(fmt.Sprintf("%s conversion failed", format), err)
	}
	return &Download{Filename: name, ContentType: contentType, Content: out, SourceKey: obj.Key}, nil
}

func (s *exportService) latestRecord(ctx context.Context) (*RecordView, error) {
	obj, err := s.latestObject(ctx)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(obj.Content, &fields); err != nil {
		return nil, formatError("stored record is not a JSON object", export.ErrInvalidJSON)
	}
	return &RecordView{Key: obj.Key, CreatedAt: obj.CreatedAt, Record: normalizer.Normalize(fields)}, nil
}

func (s *exportService) latestObject(ctx context.Context) (model.StoredObject, error) {
	info, err := storage.LatestOf(ctx, s.store, s.prefix)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return model.StoredObject{}, notFoundError("no records stored yet", err)
		}
		return model.StoredObject{}, storageError("failed to list records", err)
	}
	obj, err := s.store.Get(ctx, info.Key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return model.StoredObject{}, notFoundError("latest record disappeared", err)
		}
		return model.StoredObject{}, storageError("failed to read record", err)
	}
	if obj.CreatedAt.IsZero() {
		obj.CreatedAt = info.LastModified
	}
	return obj, nil
}

func (s *exportService) finish(ctx context.Context, actor, action, format string, d *Download, err error) {
	var src string
	if d != nil {
		src = d.SourceKey
	}
	s.record(ctx, actor, action, format, src, err)
}

func (s *exportService) record(ctx context.Context, actor, action, format, source string, err error) {
	switch {
	case err == nil:
		s.audit.Append(ctx, actor, action, fmt.Sprintf("Exported %s as %s", source, format), model.SeverityInfo)
		s.metrics.export(format, "success")
	case errors.Is(err, ErrNotFound):
		s.audit.Append(ctx, actor, action, fmt.Sprintf("Export as %s requested but no record is stored", format), model.SeverityWarning)
		s.metrics.export(format, "not_found")
	default:
		s.audit.Append(ctx, actor, action, fmt.Sprintf("Export as %s failed: %v", format, err), model.SeverityError)
		s.metrics.export(format, "error")
		s.logger.Error("export failed", "format", format, "error", err)
	}
}
