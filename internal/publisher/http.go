package publisher

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/timmy/batchpub/internal/logger"
)

// HTTPConfig holds configuration for the HTTP publisher.
type HTTPConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	RetryCount int
	RetryWait  time.Duration
	Privacy    string
}

// HTTPPublisher publishes through a REST endpoint with multipart uploads.
type HTTPPublisher struct {
	client  *resty.Client
	privacy string
}

type uploadResponse struct {
	ID    string `json:"id"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewHTTPPublisher creates a new HTTP publisher.
// Parameters:
//   - cfg: endpoint, credentials and retry settings.
//
// Returns:
//   - *HTTPPublisher: initialized client wrapper.
func NewHTTPPublisher(cfg *HTTPConfig) *HTTPPublisher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	wait := cfg.RetryWait
	if wait <= 0 {
		wait = 2 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(wait).
		SetRetryMaxWaitTime(wait * 8).
		AddRetryCondition(retryThrottled)
	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}

	return &HTTPPublisher{client: client, privacy: cfg.Privacy}
}

// retryThrottled retries only 429. An upload answered with 5xx may already
// have been accepted, and repeating it would publish the video twice.
func retryThrottled(r *resty.Response, err error) bool {
	if err != nil || r == nil {
		return false
	}
	return r.StatusCode() == http.StatusTooManyRequests
}

// Publish uploads the media file with its metadata, then the thumbnail if any.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - req: media path and metadata.
//
// Returns:
//   - string: remote video ID.
//   - error: *PublishError on rejection, or a transport error.
func (p *HTTPPublisher) Publish(ctx context.Context, req Request) (string, error) {
	privacy := req.Privacy
	if privacy == "" {
		privacy = p.privacy
	}
	publishAt := ""
	if req.PublishAt != nil {
		publishAt = req.PublishAt.UTC().Format(time.RFC3339)
	}

	var result uploadResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetFile("media", req.MediaPath).
		SetMultipartFormData(map[string]string{
			"title":       req.Title,
			"description": req.Description,
			"tags":        strings.Join(req.Tags, ","),
			"privacy":     privacy,
			"publish_at":  publishAt,
		}).
		ForceContentType("application/json").
		SetResult(&result).
		SetError(&result).
		Post("/videos")
	if err != nil {
		return "", fmt.Errorf("failed to call publish API: %w", err)
	}
	if err := responseError(resp, result); err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", &PublishError{StatusCode: resp.StatusCode(), Message: "response carried no video id"}
	}

	if req.ThumbnailPath != "" {
		if err := p.uploadThumbnail(ctx, result.ID, req.ThumbnailPath); err != nil {
			// The video exists remotely; a missing thumbnail does not undo that.
			logger.CtxWarn(ctx, "Thumbnail upload failed for %s: %v", result.ID, err)
		}
	}
	return result.ID, nil
}

func (p *HTTPPublisher) uploadThumbnail(ctx context.Context, id, path string) error {
	var result uploadResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetFile("image", path).
		ForceContentType("application/json").
		SetError(&result).
		Post("/videos/{id}/thumbnail")
	if err != nil {
		return fmt.Errorf("failed to call thumbnail API: %w", err)
	}
	return responseError(resp, result)
}

func responseError(resp *resty.Response, body uploadResponse) error {
	if resp.StatusCode() >= 200 && resp.StatusCode() < 300 {
		return nil
	}
	msg := strings.TrimSpace(string(resp.Body()))
	if body.Error != nil && body.Error.Message != "" {
		msg = body.Error.Message
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode())
	}
	return &PublishError{StatusCode: resp.StatusCode(), Message: msg}
}
