package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"membervoice/backend/internal/config"
)

func getPath(t *testing.T, app *App, path string) *httptest.ResponseRecorder {
	t.Helper()
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, path, nil)
	app.Router().ServeHTTP(recorder, request)
	return recorder
}

type memoryContextPayload struct {
	Context  string            `json:"context"`
	Facts    []categorizedFact `json:"facts"`
	Entities factEntities      `json:"entities"`
}

func decodeMemoryContext(t *testing.T, recorder *httptest.ResponseRecorder) memoryContextPayload {
	t.Helper()
	var payload memoryContextPayload
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode memory context response: %v", err)
	}
	return payload
}

func TestMemoryContextEmptyWithoutUserID(t *testing.T) {
	app := newTestApp(func(cfg *config.Config) {
		cfg.ZepAPIKey = "test-key"
	})

	recorder := getPath(t, app, "/api/v1/memory/context")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	payload := decodeMemoryContext(t, recorder)
	if payload.Context != "" || len(payload.Facts) != 0 {
		t.Fatalf("expected empty payload, got %+v", payload)
	}
	if payload.Entities.Organisations == nil {
		t.Fatalf("entity buckets must be present even when empty")
	}
}

func TestMemoryContextEmptyWithoutAPIKey(t *testing.T) {
	app := newTestApp(nil)

	recorder := getPath(t, app, "/api/v1/memory/context?user_id=user-42")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if payload := decodeMemoryContext(t, recorder); payload.Context != "" {
		t.Fatalf("expected empty context, got %q", payload.Context)
	}
}

func TestMemoryContextGroupsFacts(t *testing.T) {
	memoryServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"edges":[
			{"fact":"The user runs a trade association"},
			{"fact":"Renewals are declining"},
			{"fact":"Based in Leeds"}
		]}`))
	}))
	defer memoryServer.Close()

	app := newTestApp(func(cfg *config.Config) {
		cfg.ZepBaseURL = memoryServer.URL
		cfg.ZepAPIKey = "test-key"
	})

	recorder := getPath(t, app, "/api/v1/memory/context?user_id=user-42")
	payload := decodeMemoryContext(t, recorder)
	if len(payload.Facts) != 3 {
		t.Fatalf("expected 3 categorized facts, got %d", len(payload.Facts))
	}
	if len(payload.Entities.Organisations) != 1 || payload.Entities.Organisations[0] != "runs a trade association" {
		t.Fatalf("unexpected organisations bucket: %v", payload.Entities.Organisations)
	}
	if payload.Context == "" {
		t.Fatalf("expected non-empty context summary")
	}
}

func TestMemoryContextEmptyOnUpstreamFailure(t *testing.T) {
	memoryServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer memoryServer.Close()

	app := newTestApp(func(cfg *config.Config) {
		cfg.ZepBaseURL = memoryServer.URL
		cfg.ZepAPIKey = "test-key"
	})

	recorder := getPath(t, app, "/api/v1/memory/context?user_id=user-42")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200 on upstream failure, got %d", recorder.Code)
	}
	if payload := decodeMemoryContext(t, recorder); payload.Context != "" {
		t.Fatalf("expected empty context, got %q", payload.Context)
	}
}
