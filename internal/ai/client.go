package ai

import (
	"SwipeVault/config"
	"context"
	"errors"
	"fmt"
	"sync"

	"google.golang.org/genai"
)

var (
	client     *genai.Client
	clientOnce sync.Once
	clientErr  error
)

// Client returns the process-wide Gemini client, constructing it on first
// use. A missing API key is a configuration error, not a per-request one.
func Client(ctx context.Context) (*genai.Client, error) {
	clientOnce.Do(func() {
		apiKey := config.AppConfig.GeminiAPIKey
		if apiKey == "" {
			clientErr = errors.New("gemini config: GEMINI_API_KEY is required")
			return
		}
		client, clientErr = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey: apiKey,
		})
	})
	return client, clientErr
}

// Complete sends one prompt to the completion API and returns the text.
func Complete(ctx context.Context, prompt string) (string, error) {
	c, err := Client(ctx)
	if err != nil {
		return "", err
	}
	model := config.AppConfig.GeminiModel
	if model == "" {
		model = "gemini-2.0-flash"
	}
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}
	resp, err := c.Models.GenerateContent(ctx, model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("completion returned no text")
	}
	return text, nil
}
