// Package events announces processed invoices to downstream consumers.
package events

import (
	"context"
	"time"

	"invoiceapi/internal/model"
)

// InvoiceProcessed is published once per successfully ingested invoice.
type InvoiceProcessed struct {
	UploadKey   string                `json:"upload_key"`
	RecordKey   string                `json:"record_key,omitempty"`
	Actor       string                `json:"actor"`
	Record      model.FinancialRecord `json:"record"`
	ProcessedAt time.Time             `json:"processed_at"`
}

// Publisher sends events without blocking the caller. Delivery is best-effort;
// failures are logged by the implementation.
type Publisher interface {
	Publish(ctx context.Context, ev InvoiceProcessed)
	Close() error
}

// Noop discards events. It is used when no brokers are configured.
type Noop struct{}

func (Noop) Publish(context.Context, InvoiceProcessed) {}

func (Noop) Close() error { return nil }
