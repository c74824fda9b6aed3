package pipeline

import (
	"strings"
	"time"

	"github.com/timmy/batchpub/internal/sheet"
)

const (
	titleSeparator = " / "
	paragraphBreak = "\n\n"
)

// Job is the publish request derived from one data row.
type Job struct {
	Row           int // matrix row index, header is 0
	Identifier    string
	MediaPath     string
	Title         string
	Description   string
	Tags          []string
	ThumbnailPath string

	Slot      int        // -1 when the row consumes no slot
	PublishAt *time.Time // nil publishes immediately
}

// BuildJob composes title, description and tags from row. Absent fields read empty.
func BuildJob(rowIndex int, row []string, idx sheet.FieldIndex) Job {
	identifier := idx.Value(row, sheet.FieldIdentifier)

	title := joinNonEmpty(titleSeparator,
		idx.Value(row, sheet.FieldTitlePrimary),
		idx.Value(row, sheet.FieldTitleSecondary),
	)
	if title == "" {
		title = identifier
	}

	description := joinNonEmpty(paragraphBreak,
		idx.Value(row, sheet.FieldDescriptionPrimary),
		idx.Value(row, sheet.FieldDescriptionSecondary),
		idx.Value(row, sheet.FieldHashtags),
	)

	return Job{
		Row:         rowIndex,
		Identifier:  identifier,
		Title:       title,
		Description: description,
		Tags:        SplitTags(idx.Value(row, sheet.FieldTags)),
		Slot:        -1,
	}
}

// SplitTags splits a comma-separated cell, trimming entries and dropping empty ones.
func SplitTags(cell string) []string {
	var tags []string
	for _, t := range strings.Split(cell, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
