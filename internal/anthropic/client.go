package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"notechat/internal/egress"
	"notechat/internal/llm"
)

const (
	ProviderID        = "anthropic"
	DefaultBaseURL    = "https://api.anthropic.com"
	defaultVersion    = "2023-06-01"
	MaxTokens         = 4096
	maxErrorBodyBytes = 64 * 1024
)

// Client implements the Messages API. The system instruction is a top-level
// field and never appears in the message list.
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
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/models", nil)
	if err != nil {
		return err
	}
	c.setHeaders(req, apiKey)
	_, err = c.do(req)
	return err
}

func (c *Client) Chat(ctx context.Context, apiKey, model, system string, messages []llm.Message) (string, error) {
	payload := messagesRequest{
		Model:     model,
		MaxTokens: MaxTokens,
		Messages:  toAnthropicMessages(messages),
		System:    system,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	c.setHeaders(req, apiKey)
	req.Header.Set("content-type", "application/json")
	respBody, err := c.do(req)
	if err != nil {
		return "", err
	}
	var response messagesResponse
	if err := json.Unmarshal(respBody, &response); err != nil {
		return "", fmt.Errorf("anthropic decode response: %w", err)
	}
	if len(response.Content) == 0 {
		return "", fmt.Errorf("anthropic: %w", llm.ErrEmptyResponse)
	}
	return response.Content[0].Text, nil
}

func (c *Client) setHeaders(req *http.Request, apiKey string) {
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", defaultVersion)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, llm.ErrEgressBlocked) {
			return nil, llm.ErrEgressBlocked
		}
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, &llm.RequestError{Provider: ProviderID, StatusCode: resp.StatusCode, Body: string(errorBody)}
	}
	return io.ReadAll(resp.Body)
}

type messagesRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
	System    string             `json:"system,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type messagesResponse struct {
	Content []anthropicContent `json:"content"`
}

// toAnthropicMessages drops system turns; the API only accepts the system
// instruction as a top-level field.
func toAnthropicMessages(messages []llm.Message) []anthropicMessage {
	result := make([]anthropicMessage, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == llm.RoleSystem {
			continue
		}
		result = append(result, anthropicMessage{Role: msg.Role, Content: msg.Content})
	}
	return result
}
