package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/timmy/batchpub/internal/sheet"
)

// XLSXStore reads and writes one sheet of an Excel workbook, leaving the
// other sheets untouched.
type XLSXStore struct{}

// Read returns the rows of sheetName, or of the first sheet when empty.
func (XLSXStore) Read(ctx context.Context, path, sheetName string) (sheet.Matrix, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, name, err := openWorkbook(path, sheetName)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
	}
	return sheet.Matrix(rows), nil
}

// Write replaces every row of the sheet with the padded matrix.
func (XLSXStore) Write(ctx context.Context, path, sheetName string, m sheet.Matrix) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, name, err := openWorkbook(path, sheetName)
	if err != nil {
		return err
	}
	defer f.Close()

	// The stream writer discards the existing sheet data on Flush.
	sw, err := f.NewStreamWriter(name)
	if err != nil {
		return fmt.Errorf("failed to open sheet %q for writing: %w", name, err)
	}
	for i, row := range m.Padded() {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		axis, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := sw.SetRow(axis, cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet %q: %w", name, err)
	}

	return replaceFile(path, func(w io.Writer) error {
		if _, err := f.WriteTo(w); err != nil {
			return fmt.Errorf("failed to encode workbook %s: %w", path, err)
		}
		return nil
	})
}

func openWorkbook(path, sheetName string) (*excelize.File, string, error) {
	if err := requireFile(path); err != nil {
		return nil, "", err
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open workbook %s: %w", path, err)
	}

	name := sheetName
	if name == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			f.Close()
			return nil, "", fmt.Errorf("%w: workbook %s has no sheets", ErrNotFound, path)
		}
		name = sheets[0]
	}
	if idx, err := f.GetSheetIndex(name); err != nil || idx < 0 {
		f.Close()
		return nil, "", fmt.Errorf("%w: sheet %q in %s", ErrNotFound, name, path)
	}
	return f, name, nil
}
