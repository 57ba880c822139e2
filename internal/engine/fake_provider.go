package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"notechat/internal/gateway"
	"notechat/internal/llm"
	"notechat/internal/settings"
)

// Markers the fake provider reacts to when they appear in the last user turn.
const (
	fakeNetworkMarker = "[network-error]"
	fakeNoteMarker    = "[create-note]"
)

// WithFakeProviders routes every provider to an offline adapter that echoes
// the last user turn. Used for demos and end-to-end tests without keys.
func WithFakeProviders() Option {
	return func(e *Engine) {
		e.gateway = FakeGateway(e.logger.With().Str("component", "gateway").Logger())
	}
}

// FakeGateway is a gateway whose every provider is the offline echo adapter.
// A key containing "invalid" is rejected.
func FakeGateway(logger zerolog.Logger) *gateway.Gateway {
	opts := []gateway.Option{gateway.WithLogger(logger)}
	for _, id := range settings.ProviderIDs() {
		opts = append(opts, gateway.WithAdapter(id, fakeProvider{}))
	}
	return gateway.New(nil, opts...)
}

type fakeProvider struct{}

type fakeNetErr struct{}

func (fakeNetErr) Error() string   { return "network unavailable" }
func (fakeNetErr) Timeout() bool   { return true }
func (fakeNetErr) Temporary() bool { return true }

func (fakeProvider) ValidateKey(_ context.Context, apiKey string) error {
	if isInvalidKey(apiKey) {
		return llm.ErrUnauthorized
	}
	return nil
}

func (fakeProvider) Chat(_ context.Context, apiKey, model, _ string, messages []llm.Message) (string, error) {
	if isInvalidKey(apiKey) {
		return "", llm.ErrUnauthorized
	}
	lastUser := lastUserMessage(messages)
	if strings.Contains(lastUser, fakeNetworkMarker) {
		return "", fakeNetErr{}
	}
	reply := fmt.Sprintf("Echo from %s: %s", model, firstLine(lastUser))
	if strings.Contains(lastUser, fakeNoteMarker) {
		reply += "\n\n" + `See <create-note name="Echo">` + firstLine(lastUser) + `</create-note>`
	}
	return reply, nil
}

func isInvalidKey(apiKey string) bool {
	return strings.Contains(strings.ToLower(apiKey), "invalid")
}

func lastUserMessage(messages []llm.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == llm.RoleUser {
			return messages[i].Content
		}
	}
	return ""
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	return line
}
