package egress

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"notechat/internal/llm"
)

type stubRT struct {
	called bool
}

func (s *stubRT) RoundTrip(req *http.Request) (*http.Response, error) {
	s.called = true
	return &http.Response{
		StatusCode: 200,
		Body:       io.NopCloser(strings.NewReader("{}")),
		Header:     make(http.Header),
	}, nil
}

func TestAllowlistRoundTripper(t *testing.T) {
	stub := &stubRT{}
	rt := NewAllowlistRoundTripper(stub, []string{"api.openai.com"})
	req, _ := http.NewRequest(http.MethodGet, "https://api.openai.com/v1/models", nil)
	if _, err := rt.RoundTrip(req); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !stub.called {
		t.Fatalf("expected base to be called")
	}

	for _, raw := range []string{"http://api.openai.com/v1", "https://example.com", "https://127.0.0.1/v1"} {
		reqBad, _ := http.NewRequest(http.MethodGet, raw, nil)
		if _, err := rt.RoundTrip(reqBad); err != llm.ErrEgressBlocked {
			t.Fatalf("expected egress blocked for %s, got %v", raw, err)
		}
	}
}

func TestForBaseURL(t *testing.T) {
	stub := &stubRT{}
	rt := ForBaseURL(stub, "https://Gateway.Example.com/openai")
	req, _ := http.NewRequest(http.MethodPost, "https://gateway.example.com/openai/v1/chat/completions", nil)
	if _, err := rt.RoundTrip(req); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	empty := ForBaseURL(stub, "::not a url")
	req, _ = http.NewRequest(http.MethodGet, "https://gateway.example.com", nil)
	if _, err := empty.RoundTrip(req); err != llm.ErrEgressBlocked {
		t.Fatalf("expected egress blocked, got %v", err)
	}
}
