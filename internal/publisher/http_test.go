package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func jsonReply(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestHTTPPublisher_Publish(t *testing.T) {
	media := writeFile(t, "1.mp4", "video-bytes")
	thumb := writeFile(t, "1.png", "png-bytes")
	publishAt := time.Date(2025, 1, 1, 8, 0, 0, 0, time.FixedZone("CST", 8*3600))

	var thumbnailHits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		switch r.URL.Path {
		case "/videos":
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Errorf("ParseMultipartForm: %v", err)
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			want := map[string]string{
				"title":       "Title A / Title A EN",
				"description": "desc",
				"tags":        "a,b",
				"privacy":     "private",
				"publish_at":  "2025-01-01T00:00:00Z",
			}
			for k, v := range want {
				if got := r.FormValue(k); got != v {
					t.Errorf("field %s = %q, want %q", k, got, v)
				}
			}
			f, _, err := r.FormFile("media")
			if err != nil {
				t.Errorf("FormFile: %v", err)
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			body, _ := io.ReadAll(f)
			if string(body) != "video-bytes" {
				t.Errorf("media body = %q", body)
			}
			jsonReply(w, http.StatusCreated, map[string]string{"id": "vid-1"})
		case "/videos/vid-1/thumbnail":
			atomic.AddInt32(&thumbnailHits, 1)
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	p := NewHTTPPublisher(&HTTPConfig{BaseURL: srv.URL + "/", APIKey: "secret", Privacy: "private"})
	id, err := p.Publish(context.Background(), Request{
		MediaPath:     media,
		Title:         "Title A / Title A EN",
		Description:   "desc",
		Tags:          []string{"a", "b"},
		PublishAt:     &publishAt,
		ThumbnailPath: thumb,
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if id != "vid-1" {
		t.Errorf("id = %q, want vid-1", id)
	}
	if atomic.LoadInt32(&thumbnailHits) != 1 {
		t.Errorf("thumbnail uploaded %d times, want 1", thumbnailHits)
	}
}

func TestHTTPPublisher_Rejection(t *testing.T) {
	media := writeFile(t, "1.mp4", "x")

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		jsonReply(w, http.StatusForbidden, map[string]interface{}{
			"error": map[string]string{"message": "quota exceeded"},
		})
	}))
	defer srv.Close()

	p := NewHTTPPublisher(&HTTPConfig{BaseURL: srv.URL, RetryCount: 3, RetryWait: time.Millisecond})
	_, err := p.Publish(context.Background(), Request{MediaPath: media, Title: "t"})

	var pubErr *PublishError
	if !errors.As(err, &pubErr) {
		t.Fatalf("expected *PublishError, got %v", err)
	}
	if pubErr.StatusCode != http.StatusForbidden || pubErr.Message != "quota exceeded" {
		t.Errorf("unexpected error %+v", pubErr)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("client errors must not be retried, got %d calls", n)
	}
}

func TestHTTPPublisher_ServerErrorIsNotRetried(t *testing.T) {
	media := writeFile(t, "1.mp4", "x")

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		jsonReply(w, http.StatusOK, map[string]string{"id": "vid-dup"})
	}))
	defer srv.Close()

	p := NewHTTPPublisher(&HTTPConfig{BaseURL: srv.URL, RetryCount: 3, RetryWait: time.Millisecond})
	_, err := p.Publish(context.Background(), Request{MediaPath: media, Title: "t"})

	var pubErr *PublishError
	if !errors.As(err, &pubErr) || pubErr.StatusCode != http.StatusBadGateway {
		t.Errorf("expected *PublishError with 502, got %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("upload sent %d times, want 1", n)
	}
}

func TestHTTPPublisher_RetriesThrottled(t *testing.T) {
	media := writeFile(t, "1.mp4", "x")

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		jsonReply(w, http.StatusOK, map[string]string{"id": "vid-2"})
	}))
	defer srv.Close()

	p := NewHTTPPublisher(&HTTPConfig{BaseURL: srv.URL, RetryCount: 2, RetryWait: time.Millisecond})
	id, err := p.Publish(context.Background(), Request{MediaPath: media, Title: "t"})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if id != "vid-2" || atomic.LoadInt32(&calls) != 2 {
		t.Errorf("id=%q calls=%d, want vid-2 after 2 calls", id, calls)
	}
}

func TestHTTPPublisher_JSONWithoutContentType(t *testing.T) {
	media := writeFile(t, "1.mp4", "x")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, `{"id":"vid-3"}`)
	}))
	defer srv.Close()

	p := NewHTTPPublisher(&HTTPConfig{BaseURL: srv.URL})
	id, err := p.Publish(context.Background(), Request{MediaPath: media, Title: "t"})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if id != "vid-3" {
		t.Errorf("id = %q, want vid-3", id)
	}
}

func TestHTTPPublisher_MissingID(t *testing.T) {
	media := writeFile(t, "1.mp4", "x")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		jsonReply(w, http.StatusOK, map[string]string{})
	}))
	defer srv.Close()

	p := NewHTTPPublisher(&HTTPConfig{BaseURL: srv.URL})
	var pubErr *PublishError
	if _, err := p.Publish(context.Background(), Request{MediaPath: media}); !errors.As(err, &pubErr) {
		t.Errorf("expected *PublishError for a response without id, got %v", err)
	}
}

func TestRateLimited(t *testing.T) {
	var calls int
	inner := Func(func(ctx context.Context, req Request) (string, error) {
		calls++
		return "ok", nil
	})

	if got := NewRateLimited(inner, 0); got == nil {
		t.Fatal("NewRateLimited returned nil")
	}

	limited := NewRateLimited(inner, 1)
	if _, err := limited.Publish(context.Background(), Request{}); err != nil {
		t.Fatalf("first call should pass immediately: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := limited.Publish(ctx, Request{}); err == nil {
		t.Error("expected error waiting with a cancelled context")
	}
	if calls != 1 {
		t.Errorf("inner called %d times, want 1", calls)
	}
}
