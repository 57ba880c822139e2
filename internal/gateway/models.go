package gateway

import (
	"strings"

	"notechat/internal/settings"
)

type ModelInfo struct {
	ModelID       string `json:"model_id"`
	ProviderID    string `json:"provider_id"`
	DisplayName   string `json:"display_name"`
	ContextTokens int    `json:"context_tokens_estimate"`
	Default       bool   `json:"default"`
}

var providerNames = map[string]string{
	settings.ProviderOpenAI:    "OpenAI",
	settings.ProviderAnthropic: "Anthropic",
	settings.ProviderGemini:    "Google Gemini",
}

var modelRegistry = []ModelInfo{
	{ModelID: "openai:gpt-4o", ProviderID: settings.ProviderOpenAI, DisplayName: "OpenAI GPT-4o", ContextTokens: 128000, Default: true},
	{ModelID: "openai:gpt-4.1", ProviderID: settings.ProviderOpenAI, DisplayName: "OpenAI GPT-4.1", ContextTokens: 1000000},
	{ModelID: "openai:gpt-4o-mini", ProviderID: settings.ProviderOpenAI, DisplayName: "OpenAI GPT-4o mini", ContextTokens: 128000},
	{ModelID: "anthropic:claude-sonnet-4-5", ProviderID: settings.ProviderAnthropic, DisplayName: "Anthropic Claude Sonnet 4.5", ContextTokens: 200000, Default: true},
	{ModelID: "anthropic:claude-opus-4-1", ProviderID: settings.ProviderAnthropic, DisplayName: "Anthropic Claude Opus 4.1", ContextTokens: 200000},
	{ModelID: "anthropic:claude-3-5-haiku-latest", ProviderID: settings.ProviderAnthropic, DisplayName: "Anthropic Claude 3.5 Haiku", ContextTokens: 200000},
	{ModelID: "gemini:gemini-2.5-flash", ProviderID: settings.ProviderGemini, DisplayName: "Google Gemini 2.5 Flash", ContextTokens: 1000000, Default: true},
	{ModelID: "gemini:gemini-2.5-pro", ProviderID: settings.ProviderGemini, DisplayName: "Google Gemini 2.5 Pro", ContextTokens: 1000000},
}

// Models lists the known models in display order.
func Models() []ModelInfo {
	out := make([]ModelInfo, len(modelRegistry))
	copy(out, modelRegistry)
	return out
}

// ProviderName is the display name of providerID, or providerID itself.
func ProviderName(providerID string) string {
	if name, ok := providerNames[providerID]; ok {
		return name
	}
	return providerID
}

// ModelName strips the provider prefix from a registry id. Bare names pass
// through unchanged.
func ModelName(modelID string) string {
	modelID = strings.TrimSpace(modelID)
	if _, name, ok := strings.Cut(modelID, ":"); ok {
		return name
	}
	return modelID
}
