package mocks

import (
	"context"

	"invoiceapi/internal/model"
	"invoiceapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockIngestionService struct {
	mock.Mock
}

func (m *MockIngestionService) Ingest(ctx context.Context, req service.UploadRequest) (*service.IngestResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.IngestResult), args.Error(1)
}

func (m *MockIngestionService) Reject(ctx context.Context, actor, filename, field, reason string) error {
	args := m.Called(ctx, actor, filename, field, reason)
	return args.Error(0)
}

type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) LatestCSV(ctx context.Context, actor string) (*service.Download, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Download), args.Error(1)
}

func (m *MockExportService) LatestXLSX(ctx context.Context, actor string) (*service.Download, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Download), args.Error(1)
}

func (m *MockExportService) LatestRecord(ctx context.Context, actor string) (*service.RecordView, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RecordView), args.Error(1)
}

type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) Write(ctx context.Context, actor, message, severity string) {
	m.Called(ctx, actor, message, severity)
}

func (m *MockAuditService) List(ctx context.Context, limit int) ([]model.AuditEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AuditEntry), args.Error(1)
}
