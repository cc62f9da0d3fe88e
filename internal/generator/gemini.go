package generator

import (
	"context"
	"net/http"
	"sync"

	"github.com/cockroachdb/errors"
	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.0-flash"

// Gemini calls the Gemini API. A client is kept per API key so rotation
// does not rebuild the transport on every attempt.
type Gemini struct {
	model string

	mu      sync.Mutex
	clients map[string]*genai.Client
}

func NewGemini(model string) *Gemini {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &Gemini{model: model, clients: make(map[string]*genai.Client)}
}

func (g *Gemini) Name() string {
	return "gemini"
}

func (g *Gemini) client(ctx context.Context, apiKey string) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if c, ok := g.clients[apiKey]; ok {
		return c, nil
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create GenAI client")
	}
	g.clients[apiKey] = c
	return c, nil
}

func (g *Gemini) Generate(ctx context.Context, apiKey string, req Request) (string, error) {
	if apiKey == "" {
		return "", errors.New("gemini: API key required")
	}
	c, err := g.client(ctx, apiKey)
	if err != nil {
		return "", err
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.2),
	}
	if req.Instructions != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.Instructions, genai.RoleUser)
	}

	resp, err := c.Models.GenerateContent(ctx, g.model, genai.Text(req.Content), cfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
			return "", RateLimited(errors.Wrap(err, "gemini"))
		}
		return "", errors.Wrap(err, "gemini request failed")
	}
	return resp.Text(), nil
}
