package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/domain"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"

var errEmptyReply = errors.New("model returned empty text")

// GeminiConfig selects the backend: an API key means the Gemini API,
// otherwise Vertex AI with project and location.
type GeminiConfig struct {
	APIKey   string
	Project  string
	Location string

	Model           string
	Temperature     float32
	MaxOutputTokens int32
}

type GeminiClient struct {
	client  *genai.Client
	backend string
	model   string
	temp    float32
	maxOut  int32
}

// NewGeminiClient creates a CompletionGateway backed by Gemini.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	client, backend, err := newGenAIClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	maxOut := cfg.MaxOutputTokens
	if maxOut <= 0 {
		maxOut = 8192
	}

	return &GeminiClient{
		client:  client,
		backend: backend,
		model:   model,
		temp:    cfg.Temperature,
		maxOut:  maxOut,
	}, nil
}

func newGenAIClient(ctx context.Context, cfg GeminiConfig) (*genai.Client, string, error) {
	var cc *genai.ClientConfig
	var backend string

	switch {
	case cfg.APIKey != "":
		backend = "gemini"
		cc = &genai.ClientConfig{
			APIKey:  cfg.APIKey,
			Backend: genai.BackendGeminiAPI,
		}
	case cfg.Project != "" && cfg.Location != "":
		backend = "vertex"
		cc = &genai.ClientConfig{
			Project:  cfg.Project,
			Location: cfg.Location,
			Backend:  genai.BackendVertexAI,
		}
	default:
		return nil, "", fmt.Errorf("either an API key or GCP project and location must be set")
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, "", fmt.Errorf("creating %s client: %w", backend, err)
	}
	return client, backend, nil
}

// Complete implements domain.CompletionGateway.
func (c *GeminiClient) Complete(
	ctx context.Context,
	messages []domain.PromptMessage,
	systemPrompt string,
) (string, error) {
	temp := c.temp
	topP := float32(0.9)

	cfg := &genai.GenerateContentConfig{
		// genai has no system role; instructions travel as user content.
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       &temp,
		TopP:              &topP,
		MaxOutputTokens:   c.maxOut,
	}

	res, err := c.client.Models.GenerateContent(ctx, c.model, toContents(messages), cfg)
	if err != nil {
		return "", &domain.CompletionError{Backend: c.backend, Err: err}
	}

	// Only the text, never the structs.
	text := res.Text()
	if text == "" {
		return "", &domain.CompletionError{Backend: c.backend, Err: errEmptyReply}
	}

	return text, nil
}
