package mocks

import (
	"context"

	"invoiceapi/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Append(ctx context.Context, actor, action, message string, severity model.Severity) {
	m.Called(ctx, actor, action, message, severity)
}

func (m *MockLogger) Query(ctx context.Context, limit int) ([]model.AuditEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AuditEntry), args.Error(1)
}
