// Package storage archives raw import uploads so a rejected or disputed
// batch can be re-examined after the fact.
package storage

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// FileInfo contains metadata about an archived upload
type FileInfo struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	Scope     string    `json:"scope"` // import profile or "attendance"
	Path      string    `json:"path"`  // Internal storage path
	CreatedAt time.Time `json:"created_at"`
}

// Archive defines the interface for upload archival
type Archive interface {
	// Save stores an upload under a scope and returns its metadata
	Save(ctx context.Context, scope, filename string, r io.Reader) (*FileInfo, error)

	// Open returns a reader for an archived upload
	Open(ctx context.Context, scope string, fileID uuid.UUID) (io.ReadCloser, *FileInfo, error)

	// List returns metadata for every archived upload in a scope
	List(ctx context.Context, scope string) ([]*FileInfo, error)

	// Delete removes an archived upload
	Delete(ctx context.Context, scope string, fileID uuid.UUID) error
}

// Config holds archive configuration
type Config struct {
	LocalPath string
}

// New creates an Archive implementation based on configuration
func New(cfg *Config) (Archive, error) {
	return NewLocalArchive(cfg.LocalPath)
}
