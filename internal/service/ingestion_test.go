package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	auditMocks "invoiceapi/internal/audit/mocks"
	"invoiceapi/internal/config"
	"invoiceapi/internal/events"
	eventMocks "invoiceapi/internal/events/mocks"
	"invoiceapi/internal/extraction"
	extractionMocks "invoiceapi/internal/extraction/mocks"
	"invoiceapi/internal/model"
	"invoiceapi/internal/storage"
	storeMocks "invoiceapi/internal/storage/mocks"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type trackingFile struct {
	io.Reader
	closed bool
}

func (f *trackingFile) Close() error {
	f.closed = true
	return nil
}

func newFile(s string) *trackingFile {
	return &trackingFile{Reader: strings.NewReader(s)}
}

var testIngestionCfg = config.IngestionConfig{
	AcceptedContentType: "application/pdf",
	UploadPrefix:        "invoices/",
	RecordPrefix:        "records/",
	MaxUploadBytes:      1024,
	PersistRecords:      true,
}

type ingestionFixture struct {
	svc       *ingestionService
	store     *storeMocks.MockStorage
	invoker   *extractionMocks.MockInvoker
	audit     *auditMocks.MockLogger
	publisher *eventMocks.MockPublisher
	metrics   *Metrics
}

func newIngestionFixture(t *testing.T, cfg config.IngestionConfig) *ingestionFixture {
	t.Helper()
	metrics, err := NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	f := &ingestionFixture{
		store:     new(storeMocks.MockStorage),
		invoker:   new(extractionMocks.MockInvoker),
		audit:     new(auditMocks.MockLogger),
		publisher: new(eventMocks.MockPublisher),
		metrics:   metrics,
	}
	logger := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	f.svc = NewIngestionService(f.store, f.invoker, f.audit, f.publisher, metrics, cfg, logger).(*ingestionService)
	f.svc.newID = func() string { return "id-1" }
	return f
}

func (f *ingestionFixture) expectAudit(actor string, severity model.Severity) {
	f.audit.On("Append", mock.Anything, actor, ActionUpload, mock.AnythingOfType("string"), severity).Once()
}

func isUpload(key string) bool { return key == "invoices/id-1.pdf" }
func isRecord(key string) bool { return key == "records/id-1.json" }

func TestIngest_Success(t *testing.T) {
	f := newIngestionFixture(t, testIngestionCfg)
	file := newFile("%PDF-1.7")

	f.store.On("Put", mock.Anything, "invoices/id-1.pdf", mock.Anything, storage.PutObjectOptions{
		Size:        8,
		ContentType: "application/pdf",
		Metadata:    map[string]string{"original-filename": "Q1.PDF", "actor": "alice"},
	}).Return(storage.ObjectInfo{Key: "invoices/id-1.pdf", Size: 8}, nil).Once()
	f.invoker.On("Invoke", mock.Anything, "s3://test-bucket/invoices/id-1.pdf").
		Return(model.RawFieldBag{"Capital": "1,000", "Year": "2023", "Quick-Ratio": "N/A", "Note": "dropped"}, nil).Once()
	f.store.On("Put", mock.Anything, "records/id-1.json", mock.Anything, mock.MatchedBy(func(o storage.PutObjectOptions) bool {
		return o.ContentType == model.ContentTypeJSON && o.Metadata["source-key"] == "invoices/id-1.pdf" && o.Size > 0
	})).Return(storage.ObjectInfo{Key: "records/id-1.json"}, nil).Once()
	f.expectAudit("alice", model.SeverityInfo)
	f.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(ev events.InvoiceProcessed) bool {
		return ev.UploadKey == "invoices/id-1.pdf" && ev.RecordKey == "records/id-1.json" && ev.Actor == "alice"
	})).Once()

	res, err := f.svc.Ingest(context.Background(), UploadRequest{
		File:        file,
		Filename:    "Q1.PDF",
		ContentType: "application/pdf; name=Q1.PDF",
		Size:        8,
		Actor:       " alice ",
	})

	require.NoError(t, err)
	assert.Equal(t, "invoices/id-1.pdf", res.Key)
	assert.Equal(t, "s3://test-bucket/invoices/id-1.pdf", res.URL)
	assert.Equal(t, "records/id-1.json", res.RecordKey)
	capital, _ := res.Record.Get(model.KeyCapital)
	year, _ := res.Record.Get(model.KeyYear)
	quick, _ := res.Record.Get(model.KeyQuickRatio)
	assert.Equal(t, 1000.0, capital)
	assert.Equal(t, 2023.0, year)
	assert.Nil(t, quick)
	assert.True(t, file.closed)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ingestions.WithLabelValues("completed", "")))

	f.store.AssertExpectations(t)
	f.invoker.AssertExpectations(t)
	f.audit.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func TestIngest_ValidationFailures(t *testing.T) {
	tests := []struct {
		name        string
		file        *trackingFile
		contentType string
		size        int64
		wantField   string
	}{
		{name: "missing file", file: nil, contentType: "application/pdf", size: 0, wantField: "file"},
		{name: "empty file", file: newFile(""), contentType: "application/pdf", size: 0, wantField: "file"},
		{name: "too large", file: newFile("x"), contentType: "application/pdf", size: 4096, wantField: "file"},
		{name: "wrong media type", file: newFile("png"), contentType: "image/png", size: 3, wantField: "content_type"},
		{name: "malformed media type", file: newFile("pdf"), contentType: "not a media type", size: 3, wantField: "content_type"},
		{name: "no media type", file: newFile("pdf"), contentType: "", size: 3, wantField: "content_type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newIngestionFixture(t, testIngestionCfg)
			f.expectAudit(model.DefaultActor, model.SeverityWarning)

			req := UploadRequest{Filename: "a.pdf", ContentType: tt.contentType, Size: tt.size}
			if tt.file != nil {
				req.File = tt.file
			}
			res, err := f.svc.Ingest(context.Background(), req)

			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, errors.Is(err, ErrValidation))
			var se *Error
			require.ErrorAs(t, err, &se)
			assert.Equal(t, StageValidation, se.Stage)
			assert.Equal(t, tt.wantField, se.Details)
			if tt.file != nil {
				assert.True(t, tt.file.closed)
			}

			f.store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			f.invoker.AssertNotCalled(t, "Invoke", mock.Anything, mock.Anything)
			f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
			f.audit.AssertExpectations(t)
			assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ingestions.WithLabelValues("failed", StageValidation)))
		})
	}
}

func TestReject(t *testing.T) {
	f := newIngestionFixture(t, testIngestionCfg)
	f.audit.On("Append", mock.Anything, "carol", ActionUpload,
		`Invoice "big.pdf" failed at validation: request body too large (file)`, model.SeverityWarning).Once()

	err := f.svc.Reject(context.Background(), " carol ", "big.pdf", "file", "request body too large")

	assert.ErrorIs(t, err, ErrValidation)
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "file", se.Details)
	assert.Equal(t, "request body too large", se.Message)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ingestions.WithLabelValues("failed", StageValidation)))
	f.store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.audit.AssertExpectations(t)
}

func TestReject_DefaultActor(t *testing.T) {
	f := newIngestionFixture(t, testIngestionCfg)
	f.expectAudit(model.DefaultActor, model.SeverityWarning)

	err := f.svc.Reject(context.Background(), "", "", "file", "cannot open uploaded file")

	assert.ErrorIs(t, err, ErrValidation)
	f.audit.AssertExpectations(t)
}

func TestIngest_StorageFailure(t *testing.T) {
	f := newIngestionFixture(t, testIngestionCfg)
	file := newFile("%PDF")

	f.store.On("Put", mock.Anything, mock.MatchedBy(isUpload), mock.Anything, mock.Anything).
		Return(storage.ObjectInfo{}, storage.ErrShortWrite).Once()
	f.expectAudit("bob", model.SeverityError)

	res, err := f.svc.Ingest(context.Background(), UploadRequest{
		File: file, Filename: "a.pdf", ContentType: "application/pdf", Size: 4, Actor: "bob",
	})

	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, storage.ErrShortWrite)
	assert.True(t, file.closed)
	f.invoker.AssertNotCalled(t, "Invoke", mock.Anything, mock.Anything)
	f.audit.AssertExpectations(t)
}

func TestIngest_ExtractionFailure(t *testing.T) {
	f := newIngestionFixture(t, testIngestionCfg)

	f.store.On("Put", mock.Anything, mock.MatchedBy(isUpload), mock.Anything, mock.Anything).
		Return(storage.ObjectInfo{}, nil).Once()
	f.invoker.On("Invoke", mock.Anything, "s3://test-bucket/invoices/id-1.pdf").
		Return(nil, &extraction.Error{StatusCode: 500, Message: "model overloaded"}).Once()
	f.expectAudit("bob", model.SeverityError)

	res, err := f.svc.Ingest(context.Background(), UploadRequest{
		File: newFile("%PDF"), Filename: "a.pdf", ContentType: "application/pdf", Size: 4, Actor: "bob",
	})

	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrExtraction)
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "model overloaded", se.Details)
	assert.True(t, extraction.IsError(err))

	f.store.AssertNumberOfCalls(t, "Put", 1)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	f.audit.AssertExpectations(t)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ingestions.WithLabelValues("failed", StageExtraction)))
}

func TestIngest_PersistFailureDowngradesAudit(t *testing.T) {
	f := newIngestionFixture(t, testIngestionCfg)

	f.store.On("Put", mock.Anything, mock.MatchedBy(isUpload), mock.Anything, mock.Anything).
		Return(storage.ObjectInfo{}, nil).Once()
	f.invoker.On("Invoke", mock.Anything, mock.Anything).Return(model.RawFieldBag{"Capital": 5}, nil).Once()
	f.store.On("Put", mock.Anything, mock.MatchedBy(isRecord), mock.Anything, mock.Anything).
		Return(storage.ObjectInfo{}, errors.New("bucket read-only")).Once()
	f.expectAudit(model.DefaultActor, model.SeverityWarning)
	f.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(ev events.InvoiceProcessed) bool {
		return ev.RecordKey == ""
	})).Once()

	res, err := f.svc.Ingest(context.Background(), UploadRequest{
		File: newFile("%PDF"), Filename: "a.pdf", ContentType: "application/pdf", Size: 4,
	})

	require.NoError(t, err)
	assert.Empty(t, res.RecordKey)
	capital, _ := res.Record.Get(model.KeyCapital)
	assert.Equal(t, 5.0, capital)
	f.audit.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func TestIngest_NullDataSectionAndDerivedRatios(t *testing.T) {
	cfg := testIngestionCfg
	cfg.PersistRecords = false
	cfg.DeriveRatios = true
	f := newIngestionFixture(t, cfg)

	f.store.On("Put", mock.Anything, mock.MatchedBy(isUpload), mock.Anything, mock.Anything).
		Return(storage.ObjectInfo{}, nil).Once()
	f.invoker.On("Invoke", mock.Anything, mock.Anything).Return(nil, nil).Once()
	f.expectAudit(model.DefaultActor, model.SeverityInfo)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Once()

	res, err := f.svc.Ingest(context.Background(), UploadRequest{
		File: newFile("%PDF"), Filename: "a.pdf", ContentType: "application/pdf", Size: 4,
	})

	require.NoError(t, err)
	for _, v := range res.Record.Values() {
		assert.Nil(t, v)
	}
	f.store.AssertNumberOfCalls(t, "Put", 1)
}
