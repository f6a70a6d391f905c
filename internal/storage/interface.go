package storage

import (
	"context"
	"io"
)

// ImportArchive stores the raw spreadsheet files behind bulk imports so
// the originating document of any job can be retrieved later. Keys are
// generated import IDs.
type ImportArchive interface {
	// Upload stores an import file under key.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Download retrieves an archived import file.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Exists checks whether an archived file is present.
	Exists(ctx context.Context, key string) (bool, error)

	// Delete removes an archived file.
	Delete(ctx context.Context, key string) error

	// GetURL returns the public URL for an archived file.
	GetURL(key string) string
}
