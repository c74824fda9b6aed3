package media

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/webp"
)

// ThumbnailExtensions are the still-image formats accepted as thumbnails.
var ThumbnailExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}

// Thumbnail describes a validated thumbnail image.
type Thumbnail struct {
	Path   string
	Format string
	Width  int
	Height int
}

// ThumbnailFinder locates and validates per-identifier thumbnails.
type ThumbnailFinder struct {
	dir     string
	matcher *Matcher
}

// NewThumbnailFinder returns nil when dir is empty, which disables thumbnails.
func NewThumbnailFinder(dir string, lister Lister) *ThumbnailFinder {
	if dir == "" {
		return nil
	}
	return &ThumbnailFinder{
		dir:     dir,
		matcher: NewMatcher(lister, ThumbnailExtensions),
	}
}

// Find returns the thumbnail named exactly <identifier>.<ext>.
// Parameters:
//   - identifier: row identifier.
//
// Returns:
//   - *Thumbnail: validated image, nil when none exists.
//   - error: non-nil if a file exists but cannot be decoded as an image.
func (f *ThumbnailFinder) Find(identifier string) (*Thumbnail, error) {
	if f == nil {
		return nil, nil
	}
	path, ok := f.matcher.MatchExact(f.dir, identifier)
	if !ok {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read thumbnail: %w", err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode thumbnail %s: %w", path, err)
	}
	return &Thumbnail{
		Path:   path,
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}
