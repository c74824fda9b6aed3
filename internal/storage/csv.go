package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/timmy/batchpub/internal/sheet"
)

const utf8BOM = "\ufeff"

// CSVStore keeps a single sheet per CSV file. The sheet name must be empty
// or equal the file's base name without extension.
type CSVStore struct{}

// Read parses the whole file.
func (CSVStore) Read(ctx context.Context, path, sheetName string) (sheet.Matrix, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkCSVSheet(path, sheetName); err != nil {
		return nil, err
	}
	if err := requireFile(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], utf8BOM)
	}
	return sheet.Matrix(rows), nil
}

// Write replaces the file content with the padded matrix.
func (CSVStore) Write(ctx context.Context, path, sheetName string, m sheet.Matrix) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkCSVSheet(path, sheetName); err != nil {
		return err
	}
	if err := requireFile(path); err != nil {
		return err
	}

	return replaceFile(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.WriteAll(m.Padded()); err != nil {
			return fmt.Errorf("failed to encode %s: %w", path, err)
		}
		return nil
	})
}

func checkCSVSheet(path, sheetName string) error {
	if sheetName == "" {
		return nil
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if !strings.EqualFold(base, sheetName) {
		return fmt.Errorf("%w: csv file %s has no sheet %q", ErrNotFound, path, sheetName)
	}
	return nil
}
