// Package storage abstracts where listing images live. The API layer only
// depends on FileStore so the backing medium can change without touching
// handlers.
package storage

import (
	"context"
	"mime/multipart"
)

// SavedFile describes one stored upload.
type SavedFile struct {
	// Path is the relative path persisted on the listing record.
	Path string
	Size int64
	MIME string
}

// FileStore persists and removes uploaded listing images.
type FileStore interface {
	Save(ctx context.Context, fh *multipart.FileHeader) (*SavedFile, error)
	Remove(ctx context.Context, paths ...string) error
}
