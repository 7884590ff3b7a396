package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dealdesk/backend/internal/config"
	"github.com/dealdesk/backend/internal/infrastructure/logger"
)

// ErrNotConfigured marks a backend that has no model or API key set; it is
// distinct from runtime transport failures so callers can tell a deployment
// problem apart from a flaky network.
var ErrNotConfigured = errors.New("llm: chat backend not configured")

// ChatClient talks to one OpenAI-compatible chat-completions endpoint. The
// service layer holds two instances with independent configuration ("fast"
// for planning, "quality" for synthesis).
type ChatClient struct {
	name       string
	cfg        config.ChatBackendConfig
	httpClient *http.Client
	log        *logger.Logger
}

func NewChatClient(name string, cfg config.ChatBackendConfig, log *logger.Logger) *ChatClient {
	return &ChatClient{
		name: name,
		cfg:  cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: log,
	}
}

func (c *ChatClient) Configured() bool {
	return c.cfg.BaseURL != "" && c.cfg.Model != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func (c *ChatClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("%w: %s backend", ErrNotConfigured, c.name)
	}

	messages := make([]chatMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: userPrompt})

	reqBody := chatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("llm: failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("llm: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Errorw("llm_request_failed", "backend", c.name, "model", c.cfg.Model, "error", err)
		return "", fmt.Errorf("llm: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("llm: failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.log.Errorw("llm_bad_status", "backend", c.name, "status", resp.StatusCode, "body_bytes", len(body))
		return "", fmt.Errorf("llm: %s backend returned HTTP %d", c.name, resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("llm: failed to decode response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("llm: %s backend error: %s", c.name, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("llm: %s backend returned no choices", c.name)
	}

	c.log.Infow("llm_completion_ok",
		"backend", c.name,
		"model", c.cfg.Model,
		"finish_reason", parsed.Choices[0].FinishReason,
		"reply_chars", len(parsed.Choices[0].Message.Content),
	)
	return parsed.Choices[0].Message.Content, nil
}
