package pipeline

import (
	"strings"
	"time"
)

// Kind classifies the terminal result of a row.
type Kind string

const (
	KindUploaded    Kind = "uploaded"
	KindSimulated   Kind = "simulated"
	KindMissingFile Kind = "missing_file"
	KindFailed      Kind = "failed"
	KindSkipped     Kind = "skipped"
)

const (
	statusSep       = " | "
	markerSimulated = "SIMULATED"
	markerMissing   = "MISSING_FILE"
	markerFailed    = "FAILED"
	publishNow      = "NOW"
)

// Outcome is what gets written into a row's status cell.
type Outcome struct {
	Kind       Kind
	At         time.Time
	RemoteID   string     // uploaded
	MediaFile  string     // simulated
	PublishAt  *time.Time // uploaded, simulated
	Identifier string     // missing file
	Message    string     // failed
}

// StatusText renders the outcome as a single-line status cell. Skipped rows render empty.
func (o Outcome) StatusText() string {
	ts := o.At.Format(time.RFC3339)
	switch o.Kind {
	case KindUploaded:
		return strings.Join([]string{ts, "videoId: " + o.RemoteID, "publishAt: " + formatPublishAt(o.PublishAt)}, statusSep)
	case KindSimulated:
		return strings.Join([]string{ts, markerSimulated, "file: " + o.MediaFile, "publishAt: " + formatPublishAt(o.PublishAt)}, statusSep)
	case KindMissingFile:
		return strings.Join([]string{ts, markerMissing, "identifier: " + o.Identifier}, statusSep)
	case KindFailed:
		return strings.Join([]string{ts, markerFailed, "error: " + singleLine(o.Message)}, statusSep)
	default:
		return ""
	}
}

// ParseStatus reads a status cell written by StatusText.
// Returns false for empty or foreign text.
func ParseStatus(text string) (Outcome, bool) {
	text = strings.TrimSpace(text)
	first := strings.Index(text, statusSep)
	if first < 0 {
		return Outcome{}, false
	}
	at, err := time.Parse(time.RFC3339, text[:first])
	if err != nil {
		return Outcome{}, false
	}
	rest := text[first+len(statusSep):]
	out := Outcome{At: at}

	switch {
	case strings.HasPrefix(rest, "videoId: "):
		body, publishAt, ok := cutPublishAt(rest)
		if !ok {
			return Outcome{}, false
		}
		out.Kind = KindUploaded
		out.RemoteID = strings.TrimPrefix(body, "videoId: ")
		out.PublishAt = publishAt
	case strings.HasPrefix(rest, markerSimulated+statusSep+"file: "):
		body, publishAt, ok := cutPublishAt(rest)
		if !ok {
			return Outcome{}, false
		}
		out.Kind = KindSimulated
		out.MediaFile = strings.TrimPrefix(body, markerSimulated+statusSep+"file: ")
		out.PublishAt = publishAt
	case strings.HasPrefix(rest, markerMissing+statusSep+"identifier: "):
		out.Kind = KindMissingFile
		out.Identifier = strings.TrimPrefix(rest, markerMissing+statusSep+"identifier: ")
	case strings.HasPrefix(rest, markerFailed+statusSep+"error: "):
		out.Kind = KindFailed
		out.Message = strings.TrimPrefix(rest, markerFailed+statusSep+"error: ")
	default:
		return Outcome{}, false
	}
	return out, true
}

// cutPublishAt splits "<body> | publishAt: <value>" at its last publishAt marker.
func cutPublishAt(s string) (string, *time.Time, bool) {
	marker := statusSep + "publishAt: "
	i := strings.LastIndex(s, marker)
	if i < 0 {
		return "", nil, false
	}
	value := s[i+len(marker):]
	if value == publishNow {
		return s[:i], nil, true
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return "", nil, false
	}
	return s[:i], &t, true
}

func formatPublishAt(t *time.Time) string {
	if t == nil {
		return publishNow
	}
	return t.UTC().Format(time.RFC3339)
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
