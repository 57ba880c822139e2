package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"notechat/internal/egress"
	"notechat/internal/llm"
)

const (
	ProviderID        = "gemini"
	DefaultBaseURL    = "https://generativelanguage.googleapis.com"
	maxErrorBodyBytes = 64 * 1024
)

// NoResponseText is returned in place of a reply when a successful response
// carries no candidates.
const NoResponseText = "(no response)"

// Client implements a minimal Gemini generateContent API wrapper. The API key
// travels in the request URL.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout:   timeout,
			Transport: egress.ForBaseURL(http.DefaultTransport, baseURL),
		},
	}
}

func (c *Client) ValidateKey(ctx context.Context, apiKey string) error {
	if strings.TrimSpace(apiKey) == "" {
		return llm.ErrUnauthorized
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1beta/models?key="+url.QueryEscape(apiKey), nil)
	if err != nil {
		return err
	}
	_, err = c.do(req)
	return err
}

func (c *Client) Chat(ctx context.Context, apiKey, model, system string, messages []llm.Message) (string, error) {
	payload := geminiRequest{Contents: toGeminiContents(messages)}
	if system != "" {
		payload.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: system}}}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, url.PathEscape(model), url.QueryEscape(apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	respBody, err := c.do(req)
	if err != nil {
		return "", err
	}
	var response geminiResponse
	if err := json.Unmarshal(respBody, &response); err != nil {
		return "", fmt.Errorf("gemini decode response: %w", err)
	}
	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return NoResponseText, nil
	}
	return response.Candidates[0].Content.Parts[0].Text, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, llm.ErrEgressBlocked) {
			return nil, llm.ErrEgressBlocked
		}
		return nil, stripKey(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, &llm.RequestError{Provider: ProviderID, StatusCode: resp.StatusCode, Body: string(errorBody)}
	}
	return io.ReadAll(resp.Body)
}

// stripKey drops the request URL from transport errors so the key embedded in
// the query string never reaches logs.
func stripKey(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("gemini %s: %w", strings.ToLower(urlErr.Op), urlErr.Err)
	}
	return err
}

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func toGeminiContents(messages []llm.Message) []geminiContent {
	contents := make([]geminiContent, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == llm.RoleSystem {
			continue
		}
		contents = append(contents, geminiContent{
			Role:  mapRole(msg.Role),
			Parts: []geminiPart{{Text: msg.Content}},
		})
	}
	return contents
}

func mapRole(role string) string {
	if role == llm.RoleAssistant {
		return "model"
	}
	return "user"
}
