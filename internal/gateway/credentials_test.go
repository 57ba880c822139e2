package gateway

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSecrets struct {
	keys map[string]string
	err  error
}

func (f fakeSecrets) GetProviderKey(providerID string) (string, error) {
	return f.keys[providerID], f.err
}

func envLookup(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	}
}

func TestCredentialsPreferEnvironment(t *testing.T) {
	creds := NewCredentials(
		envLookup(map[string]string{"ANTHROPIC_API_KEY": "sk-env"}),
		fakeSecrets{keys: map[string]string{"anthropic": "sk-stored", "openai": "sk-o"}},
	)
	key, from, err := creds.Source("anthropic")
	require.NoError(t, err)
	assert.Equal(t, "sk-env", key)
	assert.Equal(t, "ANTHROPIC_API_KEY", from)

	key, from, err = creds.Source("openai")
	require.NoError(t, err)
	assert.Equal(t, "sk-o", key)
	assert.Equal(t, "secrets", from)

	key, from, err = creds.Source("gemini")
	require.NoError(t, err)
	assert.Empty(t, key)
	assert.Empty(t, from)
}

func TestCredentialsSecretStoreError(t *testing.T) {
	creds := NewCredentials(envLookup(nil), fakeSecrets{err: errors.New("corrupt")})
	_, err := creds.ProviderKey("openai")
	require.Error(t, err)
}

func TestCredentialsWithoutSecretStore(t *testing.T) {
	creds := NewCredentials(envLookup(map[string]string{"NOTECHAT_GEMINI_API_KEY": "g"}), nil)
	key, err := creds.ProviderKey("gemini")
	require.NoError(t, err)
	assert.Equal(t, "g", key)
	key, err = creds.ProviderKey("openai")
	require.NoError(t, err)
	assert.Empty(t, key)
}
