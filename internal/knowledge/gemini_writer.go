package knowledge

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiWriter implements CodeWriter using Gemini text generation.
type GeminiWriter struct {
	client *genai.Client
	model  string
}

func NewGeminiWriter(ctx context.Context, apiKey string, modelName string) (*GeminiWriter, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiWriter{
		client: client,
		model:  modelName,
	}, nil
}

func (w *GeminiWriter) GenerateComponent(ctx context.Context, prompt string) (string, error) {
	contents := genai.Text(prompt)
	resp, err := w.client.Models.GenerateContent(ctx, w.model, contents, nil)
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty response")
	}
	return cleanCodeOutput(text), nil
}
