// Package storage archives processed statement files so a watched
// directory is never imported twice and originals stay retrievable.
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// FileInfo describes an archived statement file.
type FileInfo struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	Path       string    `json:"path"`
	ArchivedAt time.Time `json:"archived_at"`
}

// Archive stores processed statement files.
type Archive interface {
	// Store moves the file into the archive and returns its metadata.
	// The source file no longer exists afterwards.
	Store(ctx context.Context, srcPath string) (*FileInfo, error)

	// List returns the archived files, newest first.
	List(ctx context.Context) ([]*FileInfo, error)
}
