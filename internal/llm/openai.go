package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

// GeminiBaseURL is Gemini's OpenAI compatibility endpoint.
const GeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"

// Provider names reported in ProviderError.
const (
	Gemini = "Gemini"
	OpenAI = "OpenAI"
)

// Client talks to any OpenAI-compatible chat completion API.
type Client struct {
	client   *openai.Client
	provider string
	model    string
}

// NewGeminiClient returns a client for Gemini's OpenAI-compatible endpoint, or for
// baseURL when it is set.
func NewGeminiClient(httpClient *http.Client, baseURL, apiKey, model string) *Client {
	if baseURL == "" {
		baseURL = GeminiBaseURL
	}
	return newClient(Gemini, httpClient, baseURL, apiKey, model)
}

// NewOpenAIClient returns a client for the OpenAI API, or for baseURL when it is set.
func NewOpenAIClient(httpClient *http.Client, baseURL, apiKey, model string) *Client {
	return newClient(OpenAI, httpClient, baseURL, apiKey, model)
}

func newClient(provider string, httpClient *http.Client, baseURL, apiKey, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return &Client{client: openai.NewClientWithConfig(cfg), provider: provider, model: model}
}

func (c *Client) Complete(ctx context.Context, prompt string) (Completion, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
			return Completion{}, &ProviderError{Provider: c.provider, StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) {
			return Completion{}, &ProviderError{Provider: c.provider, StatusCode: reqErr.HTTPStatusCode, Body: string(reqErr.Body)}
		}
		return Completion{}, fmt.Errorf("%s completion failed: %w", c.provider, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return Completion{}, nil
	}
	return Completion{Text: resp.Choices[0].Message.Content, HasCandidate: true}, nil
}
