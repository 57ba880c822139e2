package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	root := t.TempDir()
	return NewStore(filepath.Join(root, "secrets.enc"), filepath.Join(root, "master.key")), root
}

func TestProviderKeyRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.SetProviderKey("openai", " sk-test "))
	require.NoError(t, store.SetProviderKey("gemini", "g-key"))

	key, err := store.GetProviderKey("openai")
	require.NoError(t, err)
	assert.Equal(t, "sk-test", key)

	key, err = store.GetProviderKey("gemini")
	require.NoError(t, err)
	assert.Equal(t, "g-key", key)

	key, err = store.GetProviderKey("anthropic")
	require.NoError(t, err)
	assert.Empty(t, key)
}

func TestClearProviderKey(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.SetProviderKey("anthropic", "sk-ant"))
	require.NoError(t, store.SetProviderKey("openai", "sk-oai"))
	require.NoError(t, store.ClearProviderKey("anthropic"))

	key, err := store.GetProviderKey("anthropic")
	require.NoError(t, err)
	assert.Empty(t, key)
	key, err = store.GetProviderKey("openai")
	require.NoError(t, err)
	assert.Equal(t, "sk-oai", key)
}

func TestSecretsFileIsEncrypted(t *testing.T) {
	store, root := newTestStore(t)
	require.NoError(t, store.SetProviderKey("openai", "sk-plaintext-marker"))

	data, err := os.ReadFile(filepath.Join(root, "secrets.enc"))
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(data), "sk-plaintext-marker"))

	info, err := os.Stat(filepath.Join(root, "master.key"))
	require.NoError(t, err)
	assert.Equal(t, int64(32), info.Size())
}

func TestInvalidMasterKeyLength(t *testing.T) {
	store, root := newTestStore(t)
	require.NoError(t, store.SetProviderKey("openai", "sk"))
	require.NoError(t, os.WriteFile(filepath.Join(root, "master.key"), []byte("short"), 0o600))
	_, err := store.GetProviderKey("openai")
	require.Error(t, err)
}

func TestEmptyProviderID(t *testing.T) {
	store, _ := newTestStore(t)
	assert.ErrorIs(t, store.SetProviderKey(" ", "x"), ErrInvalidProvider)
	_, err := store.GetProviderKey("")
	assert.ErrorIs(t, err, ErrInvalidProvider)
}
