package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notechat/internal/llm"
	"notechat/internal/settings"
)

type fakeAdapter struct {
	calls    int
	apiKey   string
	model    string
	system   string
	messages []llm.Message
	reply    string
	err      error
}

func (f *fakeAdapter) Chat(ctx context.Context, apiKey, model, system string, messages []llm.Message) (string, error) {
	f.calls++
	f.apiKey = apiKey
	f.model = model
	f.system = system
	f.messages = append([]llm.Message(nil), messages...)
	return f.reply, f.err
}

func (f *fakeAdapter) ValidateKey(ctx context.Context, apiKey string) error {
	f.calls++
	f.apiKey = apiKey
	return f.err
}

func resolved(provider, key string) Resolved {
	return Resolved{Spec: ProviderSpec{ID: provider, Model: "m-1", APIKey: key}, System: "sys"}
}

func TestDispatchRoutesToResolvedAdapter(t *testing.T) {
	fakeA := &fakeAdapter{reply: "from openai"}
	fakeC := &fakeAdapter{reply: "from gemini"}
	g := New(nil, WithAdapter(settings.ProviderOpenAI, fakeA), WithAdapter(settings.ProviderGemini, fakeC))

	msgs := []llm.Message{llm.UserMessage("Title: n"), llm.UserMessage("hi")}
	reply, err := g.Dispatch(context.Background(), msgs, resolved(settings.ProviderGemini, "g-key"))
	require.NoError(t, err)
	assert.Equal(t, "from gemini", reply)
	assert.Equal(t, 0, fakeA.calls)
	assert.Equal(t, 1, fakeC.calls)
	assert.Equal(t, "g-key", fakeC.apiKey)
	assert.Equal(t, "m-1", fakeC.model)
	assert.Equal(t, "sys", fakeC.system)
	assert.Equal(t, msgs, fakeC.messages)
}

func TestDispatchRejectsEmptyConversationBeforeIO(t *testing.T) {
	fake := &fakeAdapter{}
	g := New(nil, WithAdapter(settings.ProviderOpenAI, fake))
	_, err := g.Dispatch(context.Background(), nil, resolved(settings.ProviderOpenAI, "k"))
	assert.ErrorIs(t, err, llm.ErrEmptyConversation)
	assert.Equal(t, 0, fake.calls)
}

func TestDispatchMissingCredential(t *testing.T) {
	fake := &fakeAdapter{}
	g := New(nil, WithAdapter(settings.ProviderAnthropic, fake))
	_, err := g.Dispatch(context.Background(), []llm.Message{llm.UserMessage("x")}, resolved(settings.ProviderAnthropic, " "))
	var cfgErr *llm.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, settings.ProviderAnthropic, cfgErr.Provider)
	assert.ErrorIs(t, err, llm.ErrMissingCredential)
	assert.Equal(t, 0, fake.calls)
}

func TestDispatchUnknownProvider(t *testing.T) {
	g := New(nil)
	_, err := g.Dispatch(context.Background(), []llm.Message{llm.UserMessage("x")}, resolved("mistral", "k"))
	var cfgErr *llm.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.ErrorIs(t, err, llm.ErrUnknownProvider)
}

func TestDispatchMissingModel(t *testing.T) {
	fake := &fakeAdapter{}
	g := New(nil, WithAdapter(settings.ProviderOpenAI, fake))
	r := resolved(settings.ProviderOpenAI, "k")
	r.Spec.Model = ""
	_, err := g.Dispatch(context.Background(), []llm.Message{llm.UserMessage("x")}, r)
	var cfgErr *llm.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, 0, fake.calls)
}

func TestDispatchPropagatesRequestError(t *testing.T) {
	fake := &fakeAdapter{err: &llm.RequestError{Provider: "openai", StatusCode: 500, Body: "boom"}}
	g := New(nil, WithAdapter(settings.ProviderOpenAI, fake))
	_, err := g.Dispatch(context.Background(), []llm.Message{llm.UserMessage("x")}, resolved(settings.ProviderOpenAI, "k"))
	var reqErr *llm.RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, "boom", reqErr.Body)
	assert.ErrorIs(t, err, llm.ErrUnavailable)
}

func TestNewRegistersBuiltInAdapters(t *testing.T) {
	g := New(&settings.Settings{})
	assert.Equal(t, []string{"anthropic", "gemini", "openai"}, g.Providers())
}

func TestValidateKey(t *testing.T) {
	fake := &fakeAdapter{}
	g := New(nil, WithAdapter(settings.ProviderOpenAI, fake))
	require.NoError(t, g.ValidateKey(context.Background(), settings.ProviderOpenAI, "sk"))
	assert.Equal(t, "sk", fake.apiKey)
	assert.ErrorIs(t, g.ValidateKey(context.Background(), settings.ProviderOpenAI, ""), llm.ErrMissingCredential)
	assert.ErrorIs(t, g.ValidateKey(context.Background(), "nope", "sk"), llm.ErrUnknownProvider)
}
