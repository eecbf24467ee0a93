package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"invoiceapi/internal/model"
)

// Package storage contains file/object storage abstractions and utilities for object stores (S3-compatible).
// Implementations must avoid using local disk and rely on streaming I/O only.
// Nothing is cached: every call goes to the backend.

var (
	// ErrNotFound is returned when a key does not exist or a prefix holds no objects.
	ErrNotFound = errors.New("object not found")
	// ErrShortWrite is returned when the backend stored fewer bytes than declared.
	ErrShortWrite = errors.New("object stored with unexpected size")
)

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1 and the implementation
// will buffer/chunk as supported by the backend.
// ContentType is stored as the object's format tag and read back by the export path.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
// LastModified is the zero time when the backend did not report one.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is a reusable, S3-compatible object storage client interface.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// List returns every object under prefix with its creation timestamp.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	// Get reads an object's full content. It returns ErrNotFound for unknown keys.
	Get(ctx context.Context, key string) (model.StoredObject, error)
	// URI returns the locator handed to external collaborators for key.
	URI(key string) string
}
