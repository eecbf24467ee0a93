package service

import (
	"context"

	"invoiceapi/internal/audit"
	"invoiceapi/internal/model"
)

// ActionClientLog is the audit action for entries submitted by clients.
const ActionClientLog = "client.log"

// AuditService exposes the audit trail at the boundary.
type AuditService interface {
	// Write records a client-submitted message. Blank messages are ignored and
	// unknown severities are recorded as INFO.
	Write(ctx context.Context, actor, message, severity string)
	List(ctx context.Context, limit int) ([]model.AuditEntry, error)
}

type auditService struct {
	log audit.Logger
}

func NewAuditService(log audit.Logger) AuditService {
	return &auditService{log: log}
}

func (s *auditService) Write(ctx context.Context, actor, message, severity string) {
	s.log.Append(ctx, actor, ActionClientLog, message, model.ParseSeverity(severity))
}

func (s *auditService) List(ctx context.Context, limit int) ([]model.AuditEntry, error) {
	entries, err := s.log.Query(ctx, limit)
	if err != nil {
		return nil, storageError("failed to read audit log", err)
	}
	return entries, nil
}
