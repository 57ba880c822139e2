package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCLI(t *testing.T) string {
	t.Helper()
	t.Setenv("NOTECHAT_DATA_DIR", t.TempDir())
	t.Setenv("NOTECHAT_ENV_PATH", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("NOTECHAT_FAKE_PROVIDER", "1")
	t.Setenv("NOTECHAT_PROVIDER", "")
	t.Setenv("NOTECHAT_SYSTEM", "")
	t.Setenv("NOTECHAT_OPENAI_API_KEY", "sk-test")
	return t.TempDir()
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRunAppendsReply(t *testing.T) {
	vaultDir := setupCLI(t)
	note := filepath.Join(vaultDir, "Chat.md")
	require.NoError(t, os.WriteFile(note, []byte("Hello there"), 0o644))

	_, err := execute(t, "--vault", vaultDir, "run", note)
	require.NoError(t, err)

	data, err := os.ReadFile(note)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.HasPrefix(text, "Hello there\n\n___\n\nai::gpt-4o\n"), text)
	assert.Contains(t, text, "Echo from gpt-4o: Hello there")
	assert.True(t, strings.HasSuffix(text, "\n\n___\n\n"))
}

func TestRunCreatesDirectiveNote(t *testing.T) {
	vaultDir := setupCLI(t)
	note := filepath.Join(vaultDir, "Chat.md")
	require.NoError(t, os.WriteFile(note, []byte("Ideas [create-note]"), 0o644))

	out, err := execute(t, "--vault", vaultDir, "run", note)
	require.NoError(t, err)
	assert.Contains(t, out, "created Echo.md")

	created, err := os.ReadFile(filepath.Join(vaultDir, "Echo.md"))
	require.NoError(t, err)
	assert.Equal(t, "Ideas [create-note]", string(created))
}

func TestRunHelpDescribesProjectContext(t *testing.T) {
	long := newRunCmd().Long
	assert.Contains(t, long, `"Project - "`)
	assert.Contains(t, long, "every other note in the same folder")
	assert.NotContains(t, long, "a sibling note")
}

func TestRunRejectsEmptyNote(t *testing.T) {
	vaultDir := setupCLI(t)
	note := filepath.Join(vaultDir, "Empty.md")
	require.NoError(t, os.WriteFile(note, []byte("  \n"), 0o644))

	_, err := execute(t, "--vault", vaultDir, "run", note)
	require.Error(t, err)

	data, err := os.ReadFile(note)
	require.NoError(t, err)
	assert.Equal(t, "  \n", string(data))
}

func TestRunRejectsNoteOutsideVault(t *testing.T) {
	vaultDir := setupCLI(t)
	outside := filepath.Join(t.TempDir(), "Elsewhere.md")
	require.NoError(t, os.WriteFile(outside, []byte("hi"), 0o644))

	_, err := execute(t, "--vault", vaultDir, "run", outside)
	require.Error(t, err)
}

func TestParseJSON(t *testing.T) {
	vaultDir := setupCLI(t)
	note := filepath.Join(vaultDir, "Chat.md")
	require.NoError(t, os.WriteFile(note, []byte("first\n___\nai::gpt-4o\nreply\n___\nsecond"), 0o644))

	out, err := execute(t, "--vault", vaultDir, "--json", "parse", note)
	require.NoError(t, err)

	var result struct {
		Path  string `json:"path"`
		Turns []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"turns"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "Chat.md", result.Path)
	require.Len(t, result.Turns, 3)
	assert.Equal(t, "user", result.Turns[0].Role)
	assert.Equal(t, "assistant", result.Turns[1].Role)
	assert.Equal(t, "reply", result.Turns[1].Content)
	assert.Equal(t, "user", result.Turns[2].Role)
}

func TestModelsJSON(t *testing.T) {
	setupCLI(t)
	out, err := execute(t, "--json", "models")
	require.NoError(t, err)

	var models []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &models))
	assert.NotEmpty(t, models)
}

func TestKeysSetAndCheck(t *testing.T) {
	setupCLI(t)
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("NOTECHAT_ANTHROPIC_API_KEY", "")
	_, err := execute(t, "keys", "set", "anthropic", "sk-ant-test")
	require.NoError(t, err)

	out, err := execute(t, "--json", "keys", "check", "anthropic")
	require.NoError(t, err)
	var statuses []keyStatus
	require.NoError(t, json.Unmarshal([]byte(out), &statuses))
	require.Len(t, statuses, 1)
	assert.Equal(t, "secrets", statuses[0].Source)
	assert.True(t, statuses[0].Valid)

	_, err = execute(t, "keys", "clear", "anthropic")
	require.NoError(t, err)
	out, err = execute(t, "--json", "keys", "check", "anthropic")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &statuses))
	assert.Equal(t, "none", statuses[0].Source)
	assert.False(t, statuses[0].Valid)
}
