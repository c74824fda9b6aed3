package sheet

import "testing"

func TestMatrix_SetPadsRow(t *testing.T) {
	m := Matrix{{"id"}, {"1"}}
	m.Set(1, 3, "done")

	if len(m[1]) != 4 {
		t.Fatalf("row length = %d, want 4", len(m[1]))
	}
	if m.Cell(1, 3) != "done" || m.Cell(1, 2) != "" {
		t.Errorf("unexpected row %v", m[1])
	}
}

func TestMatrix_SetOutOfRangeIgnored(t *testing.T) {
	m := Matrix{{"id"}}
	m.Set(5, 0, "x")
	m.Set(-1, 0, "x")
	if len(m) != 1 {
		t.Errorf("matrix grew: %v", m)
	}
}

func TestMatrix_Padded(t *testing.T) {
	m := Matrix{{"a", "b", "c"}, {"1"}, {}}
	p := m.Padded()

	for i, r := range p {
		if len(r) != 3 {
			t.Errorf("row %d length = %d, want 3", i, len(r))
		}
	}
	p[1][0] = "changed"
	if m[1][0] != "1" {
		t.Error("Padded must not share rows with the source")
	}
}

func TestMatrix_CellOutOfRange(t *testing.T) {
	m := Matrix{{"a"}}
	if m.Cell(0, 4) != "" || m.Cell(3, 0) != "" {
		t.Error("out of range cells must read empty")
	}
	if m.DataRows() != 0 {
		t.Errorf("DataRows = %d, want 0", m.DataRows())
	}
}
