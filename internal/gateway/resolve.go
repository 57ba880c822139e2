package gateway

import (
	"strings"

	"notechat/internal/settings"
)

// AppendSentinel marks a system override that extends the default
// instruction instead of replacing it.
const AppendSentinel = "+++"

// Metadata keys read from a note's frontmatter.
const (
	MetaProvider = "provider"
	MetaModel    = "model"
	MetaSystem   = "system"
)

// ProviderSpec is the fully resolved provider for one dispatch.
type ProviderSpec struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	APIKey  string `json:"-"`
	BaseURL string `json:"base_url,omitempty"`
}

// Overrides are the per-call values layered over note metadata and settings.
type Overrides struct {
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
	System   string `json:"system,omitempty"`
}

type Resolved struct {
	Spec   ProviderSpec `json:"spec"`
	System string       `json:"system"`
}

// KeySource yields the credential for a provider. An empty key with a nil
// error means none is configured.
type KeySource interface {
	ProviderKey(providerID string) (string, error)
}

// Resolve layers call-site overrides over note metadata over settings. A
// model from the note metadata is used only when it belongs to the provider
// that runs: the metadata provider, or the configured one when the metadata
// names none.
func Resolve(cfg *settings.Settings, keys KeySource, meta map[string]string, call Overrides) (Resolved, error) {
	providerID := strings.ToLower(firstNonEmpty(call.Provider, meta[MetaProvider], cfg.Provider))

	model := strings.TrimSpace(call.Model)
	if model == "" && strings.ToLower(firstNonEmpty(meta[MetaProvider], cfg.Provider)) == providerID {
		model = strings.TrimSpace(meta[MetaModel])
	}
	if model == "" {
		model = cfg.ProviderModel(providerID)
	}
	model = ModelName(model)

	override := call.System
	if strings.TrimSpace(override) == "" {
		override = meta[MetaSystem]
	}

	var apiKey string
	if keys != nil {
		key, err := keys.ProviderKey(providerID)
		if err != nil {
			return Resolved{}, err
		}
		apiKey = key
	}
	return Resolved{
		Spec: ProviderSpec{
			ID:      providerID,
			Model:   model,
			APIKey:  apiKey,
			BaseURL: cfg.ProviderBaseURL(providerID),
		},
		System: ResolveSystem(cfg.SystemInstruction, override),
	}, nil
}

// ResolveSystem picks the system instruction. An override starting with
// AppendSentinel is appended to base after a blank line.
func ResolveSystem(base, override string) string {
	if strings.TrimSpace(override) == "" {
		return base
	}
	rest, appended := strings.CutPrefix(override, AppendSentinel)
	if !appended {
		return override
	}
	rest = strings.TrimSpace(rest)
	switch {
	case rest == "":
		return base
	case strings.TrimSpace(base) == "":
		return rest
	}
	return base + "\n\n" + rest
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
