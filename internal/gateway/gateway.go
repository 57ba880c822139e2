// Package gateway hides the three provider wire protocols behind one
// Adapter interface and resolves which provider, model and system
// instruction a dispatch uses.
package gateway

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"notechat/internal/anthropic"
	"notechat/internal/gemini"
	"notechat/internal/llm"
	"notechat/internal/openai"
	"notechat/internal/settings"
)

var errMissingModel = errors.New("no model configured")

// Adapter is one vendor protocol. The system instruction is passed separately
// so each adapter can place it where its API expects.
type Adapter interface {
	Chat(ctx context.Context, apiKey, model, system string, messages []llm.Message) (string, error)
	ValidateKey(ctx context.Context, apiKey string) error
}

type Gateway struct {
	adapters map[string]Adapter
	logger   zerolog.Logger
}

type Option func(*Gateway)

// WithAdapter registers or replaces the adapter for providerID.
func WithAdapter(providerID string, adapter Adapter) Option {
	return func(g *Gateway) {
		g.adapters[providerID] = adapter
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// New builds a gateway with the built-in adapters configured from cfg.
func New(cfg *settings.Settings, opts ...Option) *Gateway {
	var timeout time.Duration
	baseURL := func(string) string { return "" }
	if cfg != nil {
		timeout = cfg.RequestTimeout
		baseURL = cfg.ProviderBaseURL
	}
	g := &Gateway{
		adapters: map[string]Adapter{
			settings.ProviderOpenAI:    openai.NewClient(baseURL(settings.ProviderOpenAI), timeout),
			settings.ProviderAnthropic: anthropic.NewClient(baseURL(settings.ProviderAnthropic), timeout),
			settings.ProviderGemini:    gemini.NewClient(baseURL(settings.ProviderGemini), timeout),
		},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Providers lists registered provider ids in sorted order.
func (g *Gateway) Providers() []string {
	ids := make([]string, 0, len(g.adapters))
	for id := range g.adapters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Dispatch sends messages to the resolved provider and returns the reply
// text. Configuration problems are reported before any network I/O.
func (g *Gateway) Dispatch(ctx context.Context, messages []llm.Message, resolved Resolved) (string, error) {
	if len(messages) == 0 {
		return "", llm.ErrEmptyConversation
	}
	spec := resolved.Spec
	adapter, err := g.adapter(spec.ID)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(spec.APIKey) == "" {
		return "", &llm.ConfigurationError{Provider: spec.ID, Err: llm.ErrMissingCredential}
	}
	if strings.TrimSpace(spec.Model) == "" {
		return "", &llm.ConfigurationError{Provider: spec.ID, Err: errMissingModel}
	}

	started := time.Now()
	g.logger.Debug().
		Str("provider", spec.ID).
		Str("model", spec.Model).
		Int("messages", len(messages)).
		Bool("system", resolved.System != "").
		Msg("gateway.dispatch_started")
	reply, err := adapter.Chat(ctx, spec.APIKey, spec.Model, resolved.System, messages)
	if err != nil {
		g.logger.Warn().
			Str("provider", spec.ID).
			Dur("elapsed", time.Since(started)).
			Err(err).
			Msg("gateway.dispatch_failed")
		return "", err
	}
	g.logger.Debug().
		Str("provider", spec.ID).
		Dur("elapsed", time.Since(started)).
		Int("reply_chars", len(reply)).
		Msg("gateway.dispatch_finished")
	return reply, nil
}

// ValidateKey checks apiKey against the provider without sending a prompt.
func (g *Gateway) ValidateKey(ctx context.Context, providerID, apiKey string) error {
	adapter, err := g.adapter(providerID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(apiKey) == "" {
		return &llm.ConfigurationError{Provider: providerID, Err: llm.ErrMissingCredential}
	}
	return adapter.ValidateKey(ctx, apiKey)
}

func (g *Gateway) adapter(providerID string) (Adapter, error) {
	adapter, ok := g.adapters[providerID]
	if !ok || adapter == nil {
		return nil, &llm.ConfigurationError{Provider: providerID, Err: llm.ErrUnknownProvider}
	}
	return adapter, nil
}
