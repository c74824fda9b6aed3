// Package storage reads and writes sheets on local disk or object storage.
package storage

import (
	"context"
	"errors"
	"io"

	"github.com/timmy/batchpub/internal/sheet"
)

// ErrNotFound is returned when a sheet file, object or named sheet does not exist.
var ErrNotFound = errors.New("sheet not found")

// SheetStore reads and replaces the rows of a named sheet.
type SheetStore interface {
	// Read returns every row of the sheet. An empty sheetName selects the first sheet.
	Read(ctx context.Context, path, sheetName string) (sheet.Matrix, error)

	// Write replaces all rows of the sheet with m and flushes it.
	Write(ctx context.Context, path, sheetName string, m sheet.Matrix) error
}

// ObjectStorage defines the object operations needed to keep sheets in a bucket.
type ObjectStorage interface {
	// Upload uploads an object to storage
	Upload(ctx context.Context, bucket, key string, reader io.Reader, size int64, contentType string) error

	// Download downloads an object from storage; missing objects yield ErrNotFound
	Download(ctx context.Context, bucket, key string) (io.ReadCloser, error)

	// Exists checks if an object exists
	Exists(ctx context.Context, bucket, key string) (bool, error)
}
