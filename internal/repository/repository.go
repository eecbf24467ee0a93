// Package repository contains data access layer abstractions.
// Implementations live in subpackages inside this directory.
package repository

import (
	"context"

	"invoiceapi/internal/model"
)

// AuditRepository persists audit entries. It holds no business rules: defaults for
// blank fields and page-size clamping belong to the caller.
type AuditRepository interface {
	// Insert appends one entry. Timestamp and ID are taken from the entry as given.
	Insert(ctx context.Context, entry model.AuditEntry) error

	// List returns up to limit entries with a non-blank message, newest first.
	List(ctx context.Context, limit int) ([]model.AuditEntry, error)
}
