// Package sheet holds the in-memory row matrix of a spreadsheet and the
// header resolver that maps column labels to semantic fields.
package sheet

// Matrix is an ordered sequence of rows; row 0 is the header.
// Rows may have different lengths; absent cells read as "".
type Matrix [][]string

// Header returns row 0, or nil for an empty matrix.
func (m Matrix) Header() []string {
	if len(m) == 0 {
		return nil
	}
	return m[0]
}

// DataRows returns the number of rows below the header.
func (m Matrix) DataRows() int {
	if len(m) <= 1 {
		return 0
	}
	return len(m) - 1
}

// Cell returns the value at (row, col), or "" when out of range.
func (m Matrix) Cell(row, col int) string {
	if row < 0 || row >= len(m) || col < 0 || col >= len(m[row]) {
		return ""
	}
	return m[row][col]
}

// Set writes value at (row, col), padding the row with empty cells as needed.
// Writes to rows outside the matrix are ignored.
func (m Matrix) Set(row, col int, value string) {
	if row < 0 || row >= len(m) || col < 0 {
		return
	}
	m[row] = PadRow(m[row], col+1)
	m[row][col] = value
}

// Width returns the length of the longest row.
func (m Matrix) Width() int {
	w := 0
	for _, r := range m {
		if len(r) > w {
			w = len(r)
		}
	}
	return w
}

// Padded returns a rectangular deep copy of m, every row extended to Width.
func (m Matrix) Padded() Matrix {
	w := m.Width()
	out := make(Matrix, len(m))
	for i, r := range m {
		row := make([]string, w)
		copy(row, r)
		out[i] = row
	}
	return out
}

// Clone returns a deep copy of m preserving row lengths.
func (m Matrix) Clone() Matrix {
	out := make(Matrix, len(m))
	for i, r := range m {
		out[i] = append([]string(nil), r...)
	}
	return out
}

// PadRow extends row with empty cells up to n. It never shrinks a row.
func PadRow(row []string, n int) []string {
	for len(row) < n {
		row = append(row, "")
	}
	return row
}
