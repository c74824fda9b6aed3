// Package media locates the media file that belongs to a sheet row.
package media

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExtensions are the video containers considered when no allow-list is configured.
var DefaultExtensions = []string{
	".mp4", ".mov", ".mkv", ".m4v", ".avi", ".wmv", ".flv", ".webm", ".mpg", ".mpeg", ".ts",
}

// Lister lists the file names directly inside a folder.
type Lister interface {
	List(folder string) ([]string, error)
}

// OSLister lists regular files on the local file system.
type OSLister struct{}

// List returns the names of non-directory entries in folder.
func (OSLister) List(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// Matcher resolves identifiers to media files.
type Matcher struct {
	lister     Lister
	extensions map[string]bool
}

// NewMatcher creates a Matcher.
// Parameters:
//   - lister: folder lister; nil uses OSLister.
//   - extensions: allowed extensions (".mp4"); empty allows any file.
//
// Returns:
//   - *Matcher: matcher ready for use.
func NewMatcher(lister Lister, extensions []string) *Matcher {
	if lister == nil {
		lister = OSLister{}
	}
	m := &Matcher{lister: lister}
	if len(extensions) > 0 {
		m.extensions = make(map[string]bool, len(extensions))
		for _, ext := range extensions {
			ext = strings.ToLower(strings.TrimSpace(ext))
			if ext == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			m.extensions[ext] = true
		}
	}
	return m
}

// Match returns the path of the file in folder whose base name equals
// identifier, else the first (sorted) file whose base name starts with it.
// Listing errors count as no match.
func (m *Matcher) Match(folder, identifier string) (string, bool) {
	return m.match(folder, identifier, true)
}

// MatchExact is Match without the prefix fallback.
func (m *Matcher) MatchExact(folder, identifier string) (string, bool) {
	return m.match(folder, identifier, false)
}

func (m *Matcher) match(folder, identifier string, allowPrefix bool) (string, bool) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return "", false
	}
	names, err := m.lister.List(folder)
	if err != nil {
		return "", false
	}
	sort.Strings(names)

	prefix := ""
	for _, name := range names {
		if !m.candidate(name) {
			continue
		}
		base := BaseName(name)
		if base == identifier {
			return filepath.Join(folder, name), true
		}
		if allowPrefix && prefix == "" && strings.HasPrefix(base, identifier) {
			prefix = name
		}
	}
	if prefix != "" {
		return filepath.Join(folder, prefix), true
	}
	return "", false
}

func (m *Matcher) candidate(name string) bool {
	if name == "" || strings.HasPrefix(name, ".") {
		return false
	}
	if m.extensions == nil {
		return true
	}
	return m.extensions[strings.ToLower(filepath.Ext(name))]
}

// BaseName strips the directory and the last extension from name.
func BaseName(name string) string {
	name = filepath.Base(name)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
