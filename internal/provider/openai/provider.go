// Package openai adapts OpenAI-compatible chat APIs to the provider
// Completer interface. With a custom name and base URL it also serves the
// OpenRouter aggregator, which speaks the same dialect.
package openai

import (
	"context"
	"errors"
	"net/http"

	openaiapi "github.com/chainwork/interviewd/internal/api/openai"
)

const defaultModel = "gpt-4o-mini"

// ErrEmptyCompletion is returned when the API answers without any choices
// or with empty content.
var ErrEmptyCompletion = errors.New("empty completion")

// ProviderOption configures the provider.
type ProviderOption func(*Provider)

// WithBaseURL sets a custom base URL for the API.
func WithBaseURL(baseURL string) ProviderOption {
	return func(p *Provider) {
		p.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ProviderOption {
	return func(p *Provider) {
		p.httpClient = httpClient
	}
}

// WithModel overrides the default model.
func WithModel(model string) ProviderOption {
	return func(p *Provider) {
		if model != "" {
			p.model = model
		}
	}
}

// WithName overrides the reported backend name (used by OpenRouter).
func WithName(name string) ProviderOption {
	return func(p *Provider) {
		p.name = name
	}
}

// Provider implements provider.Completer over the OpenAI chat API.
type Provider struct {
	client     *openaiapi.Client
	name       string
	model      string
	baseURL    string
	httpClient *http.Client
}

// New creates a new OpenAI provider.
func New(apiKey string, opts ...ProviderOption) *Provider {
	p := &Provider{
		name:  "openai",
		model: defaultModel,
	}
	for _, opt := range opts {
		opt(p)
	}

	var clientOpts []openaiapi.ClientOption
	if p.baseURL != "" {
		clientOpts = append(clientOpts, openaiapi.WithBaseURL(p.baseURL))
	}
	if p.httpClient != nil {
		clientOpts = append(clientOpts, openaiapi.WithHTTPClient(p.httpClient))
	}

	p.client = openaiapi.NewClient(apiKey, clientOpts...)
	return p
}

func (p *Provider) Name() string {
	return p.name
}

func (p *Provider) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	temp := float32(temperature)
	resp, err := p.client.CreateChatCompletion(ctx, &openaiapi.ChatCompletionRequest{
		Model:       p.model,
		Messages:    []openaiapi.ChatCompletionMessage{{Role: "user", Content: prompt}},
		Temperature: &temp,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}
