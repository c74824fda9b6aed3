package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var lines []map[string]interface{}
	for _, raw := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if raw == "" {
			continue
		}
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			t.Fatalf("invalid json line %q: %v", raw, err)
		}
		lines = append(lines, m)
	}
	return lines
}

func TestContextFieldsPropagate(t *testing.T) {
	var buf bytes.Buffer
	l := New(&Config{Level: "debug", Format: "json", Output: &buf, ServiceName: "test"})

	ctx := l.WithContext(context.Background())
	ctx = SetRunID(ctx, "run-1")
	ctx = SetComponent(ctx, "publish")
	ctx = SetRow(ctx, 4, "abc")

	if GetRunID(ctx) != "run-1" || GetComponent(ctx) != "publish" || GetRequestID(ctx) != "" {
		t.Errorf("unexpected context fields: run=%q component=%q request=%q",
			GetRunID(ctx), GetComponent(ctx), GetRequestID(ctx))
	}

	With(Fields{FieldStatus: "uploaded"}).WithDuration(12).WithSlot(3).Info(ctx, "row %d done", 4)

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	got := lines[0]
	want := map[string]interface{}{
		"message":       "row 4 done",
		"service":       "test",
		FieldRunID:      "run-1",
		FieldComponent:  "publish",
		FieldIdentifier: "abc",
		FieldRow:        float64(4),
		FieldStatus:     "uploaded",
		FieldDurationMs: float64(12),
		FieldSlot:       float64(3),
		"level":         "info",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %v, want %v", k, got[k], v)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	ctx := New(&Config{Level: "warn", Output: &buf}).WithContext(context.Background())

	CtxInfo(ctx, "hidden")
	CtxWarn(ctx, "shown")

	lines := decodeLines(t, &buf)
	if len(lines) != 1 || lines[0]["message"] != "shown" {
		t.Errorf("unexpected output %s", buf.String())
	}
}

func TestNewWithOptions_FileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	opts := DefaultOptions()
	opts.File = path
	opts.FileOnly = true
	opts.Format = "text"

	l := NewWithOptions(opts)
	l.Info("written to file")
	if err := Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	data, err := readFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(data, "written to file") || !strings.Contains(data, "service=batchpub") {
		t.Errorf("unexpected log file contents %q", data)
	}
}

func TestNewWithOptions_ExplicitOutput(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Output = &buf
	opts.File = filepath.Join(t.TempDir(), "ignored.log")

	NewWithOptions(opts).Warn("to buffer")
	if !strings.Contains(buf.String(), "to buffer") {
		t.Errorf("explicit output not used: %q", buf.String())
	}
}

func readFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	return string(b), err
}
