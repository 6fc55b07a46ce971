package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const memoryContextQuery = "user preferences organisation challenges goals membership"

// zepClient wraps the memory-graph service holding per-user facts. Every
// method degrades when the API key is absent: searches return nothing and
// writes are no-ops, so a missing key never fails a request.
type zepClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func newZepClient(baseURL, apiKey string, httpClient *http.Client) *zepClient {
	return &zepClient{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: httpClient,
	}
}

func (z *zepClient) enabled() bool {
	return z.apiKey != ""
}

type memoryEdge struct {
	Fact string `json:"fact"`
	Name string `json:"name"`
}

type zepSessionMessage struct {
	RoleType string `json:"role_type"`
	Content  string `json:"content"`
}

func (z *zepClient) SearchFacts(ctx context.Context, userID, query string, limit int) ([]memoryEdge, error) {
	if !z.enabled() || strings.TrimSpace(userID) == "" {
		return nil, nil
	}

	statusCode, responseBody, err := z.post(ctx, "/api/v2/graph/search", map[string]any{
		"user_id": userID,
		"query":   query,
		"limit":   limit,
		"scope":   "edges",
	})
	if err != nil {
		return nil, err
	}
	if statusCode < 200 || statusCode >= 300 {
		return nil, fmt.Errorf("graph search returned %d", statusCode)
	}

	var parsed struct {
		Edges []memoryEdge `json:"edges"`
	}
	if err := json.Unmarshal(responseBody, &parsed); err != nil {
		return nil, err
	}
	return parsed.Edges, nil
}

// UserContext formats remembered facts into a short block for the system
// prompt. Any failure yields an empty string, never an error.
func (z *zepClient) UserContext(ctx context.Context, userID string) string {
	edges, err := z.SearchFacts(ctx, userID, memoryContextQuery, 10)
	if err != nil || len(edges) == 0 {
		return ""
	}

	facts := make([]string, 0, 5)
	for _, edge := range edges {
		if len(facts) == 5 {
			break
		}
		fact := strings.TrimSpace(edge.Fact)
		if fact == "" {
			continue
		}
		facts = append(facts, "- "+fact)
	}
	if len(facts) == 0 {
		return ""
	}
	return "\n\nWhat I remember about you:\n" + strings.Join(facts, "\n")
}

func (z *zepClient) CreateSession(ctx context.Context, sessionID, userID string, metadata map[string]any) error {
	if !z.enabled() {
		return nil
	}
	statusCode, _, err := z.post(ctx, "/api/v2/sessions", map[string]any{
		"session_id": sessionID,
		"user_id":    userID,
		"metadata":   metadata,
	})
	if err != nil {
		return err
	}
	if statusCode < 200 || statusCode >= 300 {
		return fmt.Errorf("session create returned %d", statusCode)
	}
	return nil
}

func (z *zepClient) AppendMessages(ctx context.Context, sessionID string, messages []zepSessionMessage) error {
	if !z.enabled() {
		return nil
	}
	path := "/api/v2/sessions/" + url.PathEscape(sessionID) + "/messages"
	statusCode, _, err := z.post(ctx, path, messages)
	if err != nil {
		return err
	}
	if statusCode < 200 || statusCode >= 300 {
		return fmt.Errorf("message append returned %d", statusCode)
	}
	return nil
}

func (z *zepClient) post(ctx context.Context, path string, payload any) (int, []byte, error) {
	bodyRaw, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, z.baseURL+path, bytes.NewReader(bodyRaw))
	if err != nil {
		return 0, nil, err
	}
	request.Header.Set("Authorization", "Api-Key "+z.apiKey)
	request.Header.Set("Content-Type", "application/json")

	response, err := z.httpClient.Do(request)
	if err != nil {
		return 0, nil, err
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return 0, nil, err
	}
	return response.StatusCode, responseBody, nil
}
