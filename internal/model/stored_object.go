package model

import "time"

// Content-type tags written with stored objects. The export path trusts the tag
// instead of inspecting the content.
const (
	ContentTypeJSON   = "application/json"
	ContentTypeCSV    = "text/csv"
	ContentTypePDF    = "application/pdf"
	ContentTypeBinary = "application/octet-stream"
)

// StoredObject is an object read back from the object store.
// CreatedAt is the zero time when the backend did not report a timestamp.
type StoredObject struct {
	Key         string            `json:"key"`
	CreatedAt   time.Time         `json:"created_at"`
	ContentType string            `json:"content_type"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Content     []byte            `json:"-"`
}
