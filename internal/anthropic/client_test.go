package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"notechat/internal/llm"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return &Client{baseURL: server.URL, client: server.Client()}
}

func TestChatUsesTopLevelSystemParameter(t *testing.T) {
	var payload map[string]any
	var headers http.Header
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		headers = r.Header.Clone()
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Errorf("unmarshal payload: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"ok"},{"type":"text","text":" more"}]}`))
	})

	resp, err := client.Chat(context.Background(), "sk-test", "claude-sonnet-4-5", "System instruction", []llm.Message{
		llm.UserMessage("Hello"),
		llm.AssistantMessage("Hi"),
		llm.UserMessage("Again"),
	})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if resp != "ok" {
		t.Fatalf("expected first content block %q, got %q", "ok", resp)
	}
	if got := headers.Get("x-api-key"); got != "sk-test" {
		t.Fatalf("expected x-api-key header, got %q", got)
	}
	if got := headers.Get("anthropic-version"); got != "2023-06-01" {
		t.Fatalf("expected anthropic-version header, got %q", got)
	}
	if got := headers.Get("Authorization"); got != "" {
		t.Fatalf("did not expect Authorization header, got %q", got)
	}

	if gotSystem, ok := payload["system"].(string); !ok || gotSystem != "System instruction" {
		t.Fatalf("expected payload.system to equal system prompt, got %#v", payload["system"])
	}
	if got, ok := payload["max_tokens"].(float64); !ok || int(got) != MaxTokens {
		t.Fatalf("expected max_tokens=%d, got %#v", MaxTokens, payload["max_tokens"])
	}
	if payload["model"] != "claude-sonnet-4-5" {
		t.Fatalf("unexpected model %#v", payload["model"])
	}
	rawMessages, ok := payload["messages"].([]any)
	if !ok {
		t.Fatalf("expected payload.messages array, got %#v", payload["messages"])
	}
	if len(rawMessages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(rawMessages))
	}
	for _, raw := range rawMessages {
		msg := raw.(map[string]any)
		if msg["role"] == "system" {
			t.Fatalf("did not expect system role in messages payload")
		}
	}
	if rawMessages[1].(map[string]any)["role"] != "assistant" {
		t.Fatalf("expected assistant role preserved, got %#v", rawMessages[1])
	}
}

func TestChatOmitsSystemWhenEmpty(t *testing.T) {
	var payload map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&payload)
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"ok"}]}`))
	})
	if _, err := client.Chat(context.Background(), "k", "m", "", []llm.Message{
		{Role: llm.RoleSystem, Content: "inline system is dropped"},
		llm.UserMessage("x"),
	}); err != nil {
		t.Fatalf("chat: %v", err)
	}
	if _, ok := payload["system"]; ok {
		t.Fatalf("expected no system field, got %#v", payload["system"])
	}
	if n := len(payload["messages"].([]any)); n != 1 {
		t.Fatalf("expected 1 message, got %d", n)
	}
}

func TestChatNonSuccessReturnsRequestError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error"}}`))
	})
	_, err := client.Chat(context.Background(), "k", "m", "", []llm.Message{llm.UserMessage("x")})
	var reqErr *llm.RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected RequestError, got %v", err)
	}
	if reqErr.StatusCode != http.StatusTooManyRequests || reqErr.Body == "" {
		t.Fatalf("unexpected request error %+v", reqErr)
	}
	if !errors.Is(err, llm.ErrRateLimited) {
		t.Fatalf("expected rate limited sentinel")
	}
}

func TestChatEmptyContent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":[]}`))
	})
	_, err := client.Chat(context.Background(), "k", "m", "", []llm.Message{llm.UserMessage("x")})
	if !errors.Is(err, llm.ErrEmptyResponse) {
		t.Fatalf("expected empty response error, got %v", err)
	}
}
