// Package publisher uploads media to the remote publishing service.
package publisher

import (
	"context"
	"fmt"
	"time"
)

// Publisher sends one media item to the remote service.
type Publisher interface {
	// Publish uploads the media described by req and returns the remote ID.
	Publish(ctx context.Context, req Request) (string, error)
}

// Request is the input of a single publish call.
type Request struct {
	MediaPath     string
	Title         string
	Description   string
	Tags          []string
	PublishAt     *time.Time // nil publishes immediately
	ThumbnailPath string     // optional
	Privacy       string
}

// PublishError is a rejection reported by the remote service.
type PublishError struct {
	StatusCode int
	Message    string
}

func (e *PublishError) Error() string {
	if e.StatusCode == 0 {
		return "publish rejected: " + e.Message
	}
	return fmt.Sprintf("publish rejected (HTTP %d): %s", e.StatusCode, e.Message)
}

// Func adapts a function to the Publisher interface.
type Func func(ctx context.Context, req Request) (string, error)

// Publish calls f.
func (f Func) Publish(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
