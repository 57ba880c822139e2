package logging

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactValue(t *testing.T) {
	assert.Equal(t, "", RedactValue("  "))
	assert.Equal(t, "****", RedactValue("abc"))
	assert.Equal(t, "****5678", RedactValue("sk-12345678"))
	assert.Equal(t, "Bearer ****5678", RedactValue("bearer sk-12345678"))
}

func TestRedactURL(t *testing.T) {
	got := RedactURL("https://generativelanguage.googleapis.com/v1beta/models/m:generateContent?key=AIzaSECRET1234")
	assert.NotContains(t, got, "AIzaSECRET")
	assert.Contains(t, got, "1234")
	assert.Equal(t, "https://example.com/a?b=c", RedactURL("https://example.com/a?b=c"))
	assert.Equal(t, "not a url %%", RedactURL("not a url %%"))
}

func TestRedactJSON(t *testing.T) {
	raw := json.RawMessage(`{"provider":"openai","api_key":"sk-abcdef","nested":[{"Authorization":"Bearer tok-9999"}]}`)
	got := RedactJSON(raw).(map[string]any)
	assert.Equal(t, "openai", got["provider"])
	assert.Equal(t, "****cdef", got["api_key"])
	nested := got["nested"].([]any)[0].(map[string]any)
	assert.Equal(t, "Bearer ****9999", nested["Authorization"])
	assert.Nil(t, RedactJSON(nil))
	assert.Equal(t, "plain", RedactJSON(json.RawMessage(" plain ")))
}
