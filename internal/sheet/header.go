package sheet

import (
	"errors"
	"fmt"
	"strings"
)

// Field is a semantic column the pipeline reads or writes.
type Field string

const (
	FieldTitlePrimary         Field = "title_primary"
	FieldTitleSecondary       Field = "title_secondary"
	FieldDescriptionPrimary   Field = "description_primary"
	FieldDescriptionSecondary Field = "description_secondary"
	FieldTags                 Field = "tags"
	FieldHashtags             Field = "hashtags"
	FieldIdentifier           Field = "identifier"
	FieldStatus               Field = "status"
)

// OptionalFields are resolved by exact label match and may be absent.
var OptionalFields = []Field{
	FieldTitlePrimary,
	FieldTitleSecondary,
	FieldDescriptionPrimary,
	FieldDescriptionSecondary,
	FieldTags,
	FieldHashtags,
}

// ErrIdentifierColumnMissing means no header cell could serve as the identifier column.
var ErrIdentifierColumnMissing = errors.New("identifier column not found in header")

// Labels are the header labels configured for each semantic field.
type Labels struct {
	Columns map[Field]string
	// IdentifierFallbacks are substrings tried when the identifier label has no exact match.
	IdentifierFallbacks []string
}

// DefaultLabels returns the labels of the bilingual upload sheet layout.
func DefaultLabels() Labels {
	return Labels{
		Columns: map[Field]string{
			FieldTitlePrimary:         "seo_title_zh",
			FieldTitleSecondary:       "seo_title_en",
			FieldDescriptionPrimary:   "seo_description_zh",
			FieldDescriptionSecondary: "seo_description_en",
			FieldTags:                 "tags",
			FieldHashtags:             "hashtags",
			FieldIdentifier:           "id",
			FieldStatus:               "upload_status",
		},
		IdentifierFallbacks: []string{"编号", "identifier"},
	}
}

// FieldIndex maps a semantic field to its zero-based column.
type FieldIndex map[Field]int

// Column returns the column of f and whether it is present.
func (idx FieldIndex) Column(f Field) (int, bool) {
	c, ok := idx[f]
	return c, ok
}

// Value returns the trimmed cell of row for f, or "" when f is not mapped.
func (idx FieldIndex) Value(row []string, f Field) string {
	c, ok := idx[f]
	if !ok || c >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[c])
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ResolveHeader builds the FieldIndex for header.
// Parameters:
//   - header: row 0 of the sheet.
//   - labels: configured labels for each field.
//
// Returns:
//   - FieldIndex: resolved column positions.
//   - []string: header, extended with a status column if none existed.
//   - error: ErrIdentifierColumnMissing when no identifier column is found.
func ResolveHeader(header []string, labels Labels) (FieldIndex, []string, error) {
	norm := make([]string, len(header))
	for i, h := range header {
		norm[i] = normalize(h)
	}
	find := func(label string) (int, bool) {
		want := normalize(label)
		if want == "" {
			return 0, false
		}
		for i, h := range norm {
			if h == want {
				return i, true
			}
		}
		return 0, false
	}

	idx := FieldIndex{}

	idCol, ok := find(labels.Columns[FieldIdentifier])
	if !ok {
		idCol, ok = findContaining(norm, labels.IdentifierFallbacks)
	}
	if !ok {
		return nil, header, fmt.Errorf("%w (label %q, fallbacks %v)", ErrIdentifierColumnMissing,
			labels.Columns[FieldIdentifier], labels.IdentifierFallbacks)
	}
	idx[FieldIdentifier] = idCol

	for _, f := range OptionalFields {
		if c, ok := find(labels.Columns[f]); ok {
			idx[f] = c
		}
	}

	statusLabel := labels.Columns[FieldStatus]
	if c, ok := find(statusLabel); ok {
		idx[FieldStatus] = c
	} else {
		if strings.TrimSpace(statusLabel) == "" {
			statusLabel = string(FieldStatus)
		}
		extended := make([]string, len(header), len(header)+1)
		copy(extended, header)
		header = append(extended, statusLabel)
		idx[FieldStatus] = len(header) - 1
	}

	return idx, header, nil
}

// Resolve runs ResolveHeader on m's header row and stores the possibly
// extended header back into m.
func Resolve(m Matrix, labels Labels) (FieldIndex, error) {
	if len(m) == 0 {
		return nil, fmt.Errorf("%w: sheet is empty", ErrIdentifierColumnMissing)
	}
	idx, header, err := ResolveHeader(m[0], labels)
	if err != nil {
		return nil, err
	}
	m[0] = header
	return idx, nil
}

func findContaining(norm []string, subs []string) (int, bool) {
	for i, h := range norm {
		if h == "" {
			continue
		}
		for _, s := range subs {
			s = normalize(s)
			if s != "" && strings.Contains(h, s) {
				return i, true
			}
		}
	}
	return 0, false
}
