package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
)

const (
	DefaultOpenRouterURL   = "https://openrouter.ai/api/v1"
	DefaultOpenRouterModel = "google/gemini-2.0-flash-001"
)

type OpenRouter struct {
	baseURL string
	model   string
	client  *http.Client
}

func NewOpenRouter(baseURL, model string) *OpenRouter {
	if baseURL == "" {
		baseURL = DefaultOpenRouterURL
	}
	if model == "" {
		model = DefaultOpenRouterModel
	}
	return &OpenRouter{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (s *OpenRouter) Name() string {
	return "openrouter"
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (s *OpenRouter) Generate(ctx context.Context, apiKey string, req Request) (string, error) {
	if apiKey == "" {
		return "", errors.New("openrouter: API key required")
	}

	body, err := json.Marshal(chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: req.Instructions},
			{Role: "user", Content: req.Content},
		},
		MaxTokens:   4096,
		Temperature: 0.2,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return "", errors.Wrap(err, "failed to create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", apiKey))
	httpReq.Header.Set("X-Title", "listran")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024))
	if err != nil {
		return "", errors.Wrap(err, "failed to read response")
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", RateLimited(errors.Newf("openrouter returned status %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.Newf("openrouter returned status %d: %s", resp.StatusCode, string(raw))
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", errors.Wrap(err, "failed to decode response")
	}
	if out.Error != nil {
		return "", errors.Newf("openrouter error: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("empty response from API")
	}

	return out.Choices[0].Message.Content, nil
}
