package storage

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/timmy/batchpub/internal/sheet"
)

// NewStorage creates an ObjectStorage instance based on the configuration.
// Parameters:
//   - ctx: context used while loading AWS configuration.
//   - cfg: storage configuration including endpoint and credentials.
//
// Returns:
//   - ObjectStorage: initialized storage client implementation.
//   - error: non-nil if the storage client cannot be created.
func NewStorage(ctx context.Context, cfg *S3Config) (ObjectStorage, error) {
	// Auto-detect storage type if not specified
	if cfg.Type == "" {
		cfg.Type = detectStorageType(cfg.Endpoint)
	}
	return NewS3Storage(ctx, cfg)
}

// detectStorageType attempts to detect the storage type from the endpoint
func detectStorageType(endpoint string) StorageType {
	endpoint = strings.ToLower(endpoint)

	switch {
	case strings.Contains(endpoint, "r2.cloudflarestorage.com"):
		return StorageTypeR2
	case endpoint == "" || strings.Contains(endpoint, "amazonaws.com"):
		return StorageTypeS3
	default:
		return StorageTypeS3Compatible
	}
}

// Dispatcher picks a SheetStore per path: by scheme for object storage and
// by extension for the file format.
type Dispatcher struct {
	objects ObjectStorage // nil disables s3:// paths
}

// NewSheetStore returns a store that serves local .xlsx/.xlsm/.csv files and,
// when objects is non-nil, the same formats under s3:// URIs.
func NewSheetStore(objects ObjectStorage) *Dispatcher {
	return &Dispatcher{objects: objects}
}

// Read implements SheetStore.
func (d *Dispatcher) Read(ctx context.Context, p, sheetName string) (sheet.Matrix, error) {
	store, err := d.storeFor(p)
	if err != nil {
		return nil, err
	}
	return store.Read(ctx, p, sheetName)
}

// Write implements SheetStore.
func (d *Dispatcher) Write(ctx context.Context, p, sheetName string, m sheet.Matrix) error {
	store, err := d.storeFor(p)
	if err != nil {
		return err
	}
	return store.Write(ctx, p, sheetName, m)
}

func (d *Dispatcher) storeFor(p string) (SheetStore, error) {
	var local SheetStore
	switch ext := strings.ToLower(path.Ext(p)); ext {
	case ".xlsx", ".xlsm":
		local = XLSXStore{}
	case ".csv":
		local = CSVStore{}
	default:
		return nil, fmt.Errorf("unsupported sheet format %q", ext)
	}

	if !strings.HasPrefix(p, S3Scheme) {
		return local, nil
	}
	if d.objects == nil {
		return nil, fmt.Errorf("object storage is not configured for %s", p)
	}
	return NewRemoteStore(d.objects, local), nil
}
