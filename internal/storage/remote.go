package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/timmy/batchpub/internal/sheet"
)

// S3Scheme prefixes sheet paths that live in object storage.
const S3Scheme = "s3://"

// ParseS3URI splits "s3://bucket/key" into bucket and key.
func ParseS3URI(uri string) (bucket, key string, err error) {
	if !strings.HasPrefix(uri, S3Scheme) {
		return "", "", fmt.Errorf("not an s3 uri: %q", uri)
	}
	rest := strings.TrimPrefix(uri, S3Scheme)
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || strings.Trim(key, "/") == "" {
		return "", "", fmt.Errorf("s3 uri %q must name a bucket and a key", uri)
	}
	return bucket, key, nil
}

// RemoteStore keeps sheet files in object storage. Each call downloads the
// object to a temp directory, delegates to a local store, and for writes
// uploads the result with a single put.
type RemoteStore struct {
	objects ObjectStorage
	local   SheetStore
}

// NewRemoteStore wraps local, which must understand the object's file format.
func NewRemoteStore(objects ObjectStorage, local SheetStore) *RemoteStore {
	return &RemoteStore{objects: objects, local: local}
}

// Read downloads the object and reads the sheet from it.
func (r *RemoteStore) Read(ctx context.Context, uri, sheetName string) (sheet.Matrix, error) {
	var m sheet.Matrix
	err := r.withLocalCopy(ctx, uri, func(bucket, key, local string) error {
		var err error
		m, err = r.local.Read(ctx, local, sheetName)
		return err
	})
	return m, err
}

// Write replaces the sheet in a local copy and uploads the whole file.
func (r *RemoteStore) Write(ctx context.Context, uri, sheetName string, m sheet.Matrix) error {
	return r.withLocalCopy(ctx, uri, func(bucket, key, local string) error {
		if err := r.local.Write(ctx, local, sheetName, m); err != nil {
			return err
		}
		f, err := os.Open(local)
		if err != nil {
			return err
		}
		defer f.Close()
		info, err := f.Stat()
		if err != nil {
			return err
		}
		return r.objects.Upload(ctx, bucket, key, f, info.Size(), contentType(key))
	})
}

func (r *RemoteStore) withLocalCopy(ctx context.Context, uri string, fn func(bucket, key, local string) error) error {
	bucket, key, err := ParseS3URI(uri)
	if err != nil {
		return err
	}

	dir, err := os.MkdirTemp("", "batchpub-*")
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	// Keep the object's base name so the local store sees the same sheet name.
	local := filepath.Join(dir, path.Base(key))
	if err := r.download(ctx, bucket, key, local); err != nil {
		return err
	}
	return fn(bucket, key, local)
}

func (r *RemoteStore) download(ctx context.Context, bucket, key, dst string) error {
	body, err := r.objects.Download(ctx, bucket, key)
	if err != nil {
		return err
	}
	defer body.Close()

	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		return fmt.Errorf("failed to download s3://%s/%s: %w", bucket, key, err)
	}
	return f.Close()
}

func contentType(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".csv":
		return "text/csv"
	case ".xlsm":
		return "application/vnd.ms-excel.sheet.macroEnabled.12"
	default:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
}
