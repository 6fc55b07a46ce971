package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"membervoice/backend/internal/config"
)

func TestSearchImagesRequiresAccessKey(t *testing.T) {
	app := newTestApp(nil)

	recorder := getPath(t, app, "/api/v1/images/search?query=yoga")
	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 without access key, got %d", recorder.Code)
	}
}

func TestSearchImagesReshapesResults(t *testing.T) {
	var gotQuery, gotPerPage, gotOrientation string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Client-ID test-access" {
			t.Errorf("unexpected auth header: %q", auth)
		}
		gotQuery = r.URL.Query().Get("query")
		gotPerPage = r.URL.Query().Get("per_page")
		gotOrientation = r.URL.Query().Get("orientation")
		_, _ = w.Write([]byte(`{
			"total": 120,
			"results": [{
				"id": "abc123",
				"urls": {"regular": "https://img/reg", "full": "https://img/full", "small": "https://img/small"},
				"alt_description": "",
				"description": "a calm studio",
				"user": {"name": "Jane Doe", "links": {"html": "https://unsplash.com/@jane"}},
				"blur_hash": "LEHV6nWB2yk8",
				"width": 4000,
				"height": 3000
			}]
		}`))
	}))
	defer upstream.Close()

	app := newTestApp(func(cfg *config.Config) {
		cfg.UnsplashBaseURL = upstream.URL
		cfg.UnsplashAccessKey = "test-access"
	})

	recorder := getPath(t, app, "/api/v1/images/search?query=yoga+studio&count=25")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if gotQuery != "yoga studio" {
		t.Fatalf("unexpected upstream query: %q", gotQuery)
	}
	if gotPerPage != "10" {
		t.Fatalf("expected count capped at 10, got %q", gotPerPage)
	}
	if gotOrientation != "landscape" {
		t.Fatalf("expected default orientation, got %q", gotOrientation)
	}

	var payload struct {
		Images []map[string]any `json:"images"`
		Total  int              `json:"total"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Total != 120 {
		t.Fatalf("unexpected total: %d", payload.Total)
	}
	if len(payload.Images) != 1 {
		t.Fatalf("expected one image, got %d", len(payload.Images))
	}
	image := payload.Images[0]
	if image["url"] != "https://img/reg" || image["photographer"] != "Jane Doe" {
		t.Fatalf("unexpected image descriptor: %v", image)
	}
	// Empty alt_description falls back to the description.
	if image["alt"] != "a calm studio" {
		t.Fatalf("unexpected alt text: %v", image["alt"])
	}
}

func TestSearchImagesFailsOnUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer upstream.Close()

	app := newTestApp(func(cfg *config.Config) {
		cfg.UnsplashBaseURL = upstream.URL
		cfg.UnsplashAccessKey = "test-access"
	})

	recorder := getPath(t, app, "/api/v1/images/search")
	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on upstream error, got %d", recorder.Code)
	}
}
