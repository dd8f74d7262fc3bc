// Package anthropic adapts the Anthropic Messages API to the provider
// Completer interface.
package anthropic

import (
	"context"
	"errors"
	"net/http"

	anthropicapi "github.com/chainwork/interviewd/internal/api/anthropic"
)

const (
	defaultModel = "claude-3-5-haiku-latest"

	// The interview prompts ask for compact JSON payloads; 1024 output
	// tokens covers both with room to spare.
	maxTokens = 1024
)

// ErrEmptyCompletion is returned when the API answers without a text block.
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

// Provider implements provider.Completer over the Anthropic Messages API.
type Provider struct {
	client     *anthropicapi.Client
	model      string
	baseURL    string
	httpClient *http.Client
}

// New creates a new Anthropic provider.
func New(apiKey string, opts ...ProviderOption) *Provider {
	p := &Provider{model: defaultModel}
	for _, opt := range opts {
		opt(p)
	}

	var clientOpts []anthropicapi.ClientOption
	if p.baseURL != "" {
		clientOpts = append(clientOpts, anthropicapi.WithBaseURL(p.baseURL))
	}
	if p.httpClient != nil {
		clientOpts = append(clientOpts, anthropicapi.WithHTTPClient(p.httpClient))
	}

	p.client = anthropicapi.NewClient(apiKey, clientOpts...)
	return p
}

func (p *Provider) Name() string {
	return "anthropic"
}

func (p *Provider) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	temp := float32(temperature)
	resp, err := p.client.CreateMessage(ctx, &anthropicapi.MessagesRequest{
		Model:       p.model,
		MaxTokens:   maxTokens,
		Messages:    []anthropicapi.Message{anthropicapi.TextMessage("user", prompt)},
		Temperature: &temp,
	})
	if err != nil {
		return "", err
	}

	text := resp.FirstText()
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
