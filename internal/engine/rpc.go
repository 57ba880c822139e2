package engine

import (
	"context"
	"encoding/json"
	"strings"

	"notechat/internal/errinfo"
	"notechat/internal/gateway"
	"notechat/internal/settings"
)

func (e *Engine) EngineGetInfo(ctx context.Context, _ json.RawMessage) (any, *errinfo.ErrorInfo) {
	return map[string]any{
		"engine_version": EngineVersion,
		"api_version":    APIVersion,
		"provider":       e.settings.Provider,
	}, nil
}

func (e *Engine) ConversationRun(ctx context.Context, params json.RawMessage) (any, *errinfo.ErrorInfo) {
	var req struct {
		Path     string `json:"path"`
		Provider string `json:"provider"`
		Model    string `json:"model"`
		System   string `json:"system"`
	}
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, errinfo.ValidationFailed(errinfo.PhaseRead, "invalid params")
	}
	if strings.TrimSpace(req.Path) == "" {
		return nil, errinfo.ValidationFailed(errinfo.PhaseRead, "path is required")
	}
	result, err := e.Run(ctx, RunRequest{
		Path:      req.Path,
		Overrides: gateway.Overrides{Provider: req.Provider, Model: req.Model, System: req.System},
	})
	if err != nil {
		return nil, ErrorInfo(err)
	}
	return result, nil
}

func (e *Engine) ConversationParse(ctx context.Context, params json.RawMessage) (any, *errinfo.ErrorInfo) {
	var req struct {
		Path     string `json:"path"`
		Enriched bool   `json:"enriched"`
	}
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, errinfo.ValidationFailed(errinfo.PhaseParse, "invalid params")
	}
	result, err := e.Parse(ctx, req.Path, req.Enriched)
	if err != nil {
		return nil, ErrorInfo(err)
	}
	return result, nil
}

func (e *Engine) ModelsList(ctx context.Context, _ json.RawMessage) (any, *errinfo.ErrorInfo) {
	return map[string]any{"models": gateway.Models()}, nil
}

// ProvidersGetStatus reports each provider's model and whether a key is
// configured. Keys themselves are never returned.
func (e *Engine) ProvidersGetStatus(ctx context.Context, _ json.RawMessage) (any, *errinfo.ErrorInfo) {
	status := []map[string]any{}
	for _, id := range settings.ProviderIDs() {
		configured := false
		if e.keys != nil {
			key, err := e.keys.ProviderKey(id)
			if err != nil {
				return nil, errinfo.FileReadFailed(errinfo.PhaseSettings, err.Error())
			}
			configured = strings.TrimSpace(key) != ""
		}
		status = append(status, map[string]any{
			"provider_id":  id,
			"display_name": gateway.ProviderName(id),
			"model":        e.settings.ProviderModel(id),
			"active":       id == e.settings.Provider,
			"configured":   configured,
		})
	}
	return map[string]any{"providers": status}, nil
}
