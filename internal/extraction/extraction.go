// Package extraction calls the external document extraction service.
package extraction

import (
	"context"
	"fmt"

	"invoiceapi/internal/model"
)

// Invoker sends a stored document's locator to the extraction service and
// returns the data section of its reply.
type Invoker interface {
	Invoke(ctx context.Context, documentURI string) (model.RawFieldBag, error)
}

// Error reports a failed or unusable extraction call. StatusCode is zero when
// no HTTP response was received.
type Error struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("extraction failed (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("extraction failed: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}
