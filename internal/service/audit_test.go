package service

import (
	"context"
	"errors"
	"testing"
	"time"

	auditMocks "invoiceapi/internal/audit/mocks"
	"invoiceapi/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAuditService_Write(t *testing.T) {
	tests := []struct {
		severity string
		want     model.Severity
	}{
		{"warning", model.SeverityWarning},
		{"ERROR", model.SeverityError},
		{"info", model.SeverityInfo},
		{"verbose", model.SeverityInfo},
		{"", model.SeverityInfo},
	}
	for _, tt := range tests {
		t.Run(tt.severity, func(t *testing.T) {
			al := new(auditMocks.MockLogger)
			al.On("Append", mock.Anything, "alice", ActionClientLog, "chart opened", tt.want).Once()

			NewAuditService(al).Write(context.Background(), "alice", "chart opened", tt.severity)

			al.AssertExpectations(t)
		})
	}
}

func TestAuditService_List(t *testing.T) {
	al := new(auditMocks.MockLogger)
	entries := []model.AuditEntry{{Timestamp: time.Now(), Severity: model.SeverityInfo, Actor: "a", Action: "x", Message: "m"}}
	al.On("Query", mock.Anything, 50).Return(entries, nil).Once()
	al.On("Query", mock.Anything, 10).Return(nil, errors.New("db down")).Once()

	svc := NewAuditService(al)

	got, err := svc.List(context.Background(), 50)
	require.NoError(t, err)
	assert.Equal(t, entries, got)

	got, err = svc.List(context.Background(), 10)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrStorage)
}
