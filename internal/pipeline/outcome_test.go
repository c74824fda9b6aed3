package pipeline

import (
	"testing"
	"time"
)

func TestOutcome_StatusText(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	publishAt := time.Date(2025, 3, 2, 9, 30, 0, 0, time.FixedZone("CST", 8*3600))

	tests := []struct {
		name string
		out  Outcome
		want string
	}{
		{
			name: "uploaded scheduled",
			out:  Outcome{Kind: KindUploaded, At: at, RemoteID: "abc", PublishAt: &publishAt},
			want: "2025-03-01T12:00:00Z | videoId: abc | publishAt: 2025-03-02T01:30:00Z",
		},
		{
			name: "uploaded immediate",
			out:  Outcome{Kind: KindUploaded, At: at, RemoteID: "abc"},
			want: "2025-03-01T12:00:00Z | videoId: abc | publishAt: NOW",
		},
		{
			name: "simulated",
			out:  Outcome{Kind: KindSimulated, At: at, MediaFile: "1.mp4"},
			want: "2025-03-01T12:00:00Z | SIMULATED | file: 1.mp4 | publishAt: NOW",
		},
		{
			name: "missing file",
			out:  Outcome{Kind: KindMissingFile, At: at, Identifier: "9"},
			want: "2025-03-01T12:00:00Z | MISSING_FILE | identifier: 9",
		},
		{
			name: "failed message is single line",
			out:  Outcome{Kind: KindFailed, At: at, Message: "quota\n  exceeded"},
			want: "2025-03-01T12:00:00Z | FAILED | error: quota exceeded",
		},
		{
			name: "skipped",
			out:  Outcome{Kind: KindSkipped, At: at},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.out.StatusText(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseStatus_RoundTrip(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	publishAt := time.Date(2025, 3, 2, 1, 30, 0, 0, time.UTC)

	outcomes := []Outcome{
		{Kind: KindUploaded, At: at, RemoteID: "abc", PublishAt: &publishAt},
		{Kind: KindUploaded, At: at, RemoteID: "abc"},
		{Kind: KindSimulated, At: at, MediaFile: "my | clip.mp4", PublishAt: &publishAt},
		{Kind: KindMissingFile, At: at, Identifier: "9"},
		{Kind: KindFailed, At: at, Message: "HTTP 500 | upstream"},
	}

	for _, want := range outcomes {
		got, ok := ParseStatus(want.StatusText())
		if !ok {
			t.Errorf("ParseStatus(%q) failed", want.StatusText())
			continue
		}
		if got.StatusText() != want.StatusText() {
			t.Errorf("round trip changed %q into %q", want.StatusText(), got.StatusText())
		}
		if got.Kind != want.Kind {
			t.Errorf("kind = %s, want %s", got.Kind, want.Kind)
		}
	}
}

func TestParseStatus_Rejects(t *testing.T) {
	for _, text := range []string{
		"",
		"done",
		"yesterday | videoId: x | publishAt: NOW",
		"2025-03-01T12:00:00Z | something else",
		"2025-03-01T12:00:00Z | videoId: x",
		"2025-03-01T12:00:00Z | videoId: x | publishAt: soon",
	} {
		if _, ok := ParseStatus(text); ok {
			t.Errorf("ParseStatus(%q) should fail", text)
		}
	}
}
