// Package storage defines the backend contract shared by the object-store,
// mounted-volume, and local-filesystem document backends.
package storage

import (
	"context"
	"errors"
)

// Backend type tags reported by Type().
const (
	TypeS3     = "s3"
	TypeVolume = "volume"
	TypeLocal  = "local"
)

// DocContentType is the MIME type served for stored documents.
const DocContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// ErrNotFound indicates the requested document is absent in the backend.
var ErrNotFound = errors.New("storage: not found")

// Backend is the five-operation contract every document backend implements.
// Names are logical document names (basenames, extension included); they
// never contain directory components.
type Backend interface {
	// Type returns the backend tag (s3, volume, local).
	Type() string
	// Exists reports whether a document is present in the backend.
	Exists(ctx context.Context, name string) (bool, error)
	// Fetch copies the document to destPath. Returns ErrNotFound when the
	// document is absent.
	Fetch(ctx context.Context, name, destPath string) error
	// Put uploads the file at srcPath under name and returns a locator
	// (URL or filesystem path depending on configuration).
	Put(ctx context.Context, srcPath, name string) (string, error)
	// Delete removes the document and reports whether one was removed.
	Delete(ctx context.Context, name string) (bool, error)
	// PublicURL returns a URL (or raw path when no base URL is configured)
	// under which the document can be retrieved.
	PublicURL(ctx context.Context, name string) string
	// Close releases backend resources.
	Close() error
}
