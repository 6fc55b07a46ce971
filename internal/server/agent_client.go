package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type AIUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// agentClient talks to the upstream CLM (custom language model) endpoint that
// hosts the marketing agent. The upstream always streams; the client collapses
// the event stream into the full assistant reply.
type agentClient struct {
	url        string
	model      string
	httpClient *http.Client
}

func newAgentClient(url, model string, httpClient *http.Client) *agentClient {
	return &agentClient{
		url:        strings.TrimSpace(url),
		model:      strings.TrimSpace(model),
		httpClient: httpClient,
	}
}

type agentChatRequest struct {
	Messages []ChatMessage `json:"messages"`
	Model    string        `json:"model"`
	Stream   bool          `json:"stream"`
}

func (c *agentClient) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	bodyRaw, err := json.Marshal(agentChatRequest{
		Messages: messages,
		Model:    c.model,
		Stream:   true,
	})
	if err != nil {
		return "", err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(bodyRaw))
	if err != nil {
		return "", err
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "text/event-stream")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return "", err
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(response.Body, 1024))
		return "", fmt.Errorf("agent returned %d: %s", response.StatusCode, truncateForLog(string(detail), 200))
	}

	return parseSSEStream(response.Body), nil
}

// parseSSEStream collapses a server-sent-event body into the concatenated
// assistant text. Bytes are buffered until a full line is available, so UTF-8
// runes split across read chunks never corrupt the output. A read error simply
// truncates the result to whatever arrived before it.
func parseSSEStream(body io.Reader) string {
	var content strings.Builder
	var buffer []byte
	chunk := make([]byte, 4096)

	for {
		n, err := body.Read(chunk)
		if n > 0 {
			buffer = append(buffer, chunk[:n]...)
			for {
				idx := bytes.IndexByte(buffer, '\n')
				if idx < 0 {
					break
				}
				line := string(buffer[:idx])
				buffer = buffer[idx+1:]
				appendSSELine(&content, line)
			}
		}
		if err != nil {
			break
		}
	}

	return strings.TrimSpace(content.String())
}

func appendSSELine(content *strings.Builder, line string) {
	if !strings.HasPrefix(line, "data:") {
		return
	}
	payload := strings.TrimSpace(line[len("data:"):])
	if payload == "" || payload == "[DONE]" {
		return
	}

	var event map[string]any
	if err := json.Unmarshal([]byte(payload), &event); err != nil || event == nil {
		// Non-JSON data lines contribute nothing.
		return
	}

	for _, extract := range sseExtractors {
		if text := extract(event); text != "" {
			content.WriteString(text)
			return
		}
	}
}

// sseExtractors are tried in order; the first non-empty match wins. The
// upstream has emitted several shapes over time, so the parser accepts all of
// them rather than pinning one.
var sseExtractors = []func(map[string]any) string{
	extractChoiceDeltaContent,
	extractTypedEventContent,
	extractBareDeltaContent,
	extractBareContent,
}

// extractChoiceDeltaContent handles the OpenAI chunk shape:
// choices[0].delta.content.
func extractChoiceDeltaContent(event map[string]any) string {
	choices, ok := event["choices"].([]any)
	if !ok || len(choices) == 0 {
		return ""
	}
	choice, ok := choices[0].(map[string]any)
	if !ok {
		return ""
	}
	delta, ok := choice["delta"].(map[string]any)
	if !ok {
		return ""
	}
	return toString(delta["content"])
}

// extractTypedEventContent handles AG-UI style events carrying a type tag and
// the text in either content or delta.
func extractTypedEventContent(event map[string]any) string {
	eventType := toString(event["type"])
	if eventType != "TEXT_MESSAGE_CONTENT" && eventType != "TextMessageContent" {
		return ""
	}
	if text := toString(event["content"]); text != "" {
		return text
	}
	return toString(event["delta"])
}

func extractBareDeltaContent(event map[string]any) string {
	delta, ok := event["delta"].(map[string]any)
	if !ok {
		return ""
	}
	return toString(delta["content"])
}

func extractBareContent(event map[string]any) string {
	text, ok := event["content"].(string)
	if !ok {
		return ""
	}
	return text
}
