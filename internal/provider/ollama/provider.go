// Package ollama adapts a self-hosted Ollama instance to the provider
// Completer interface. Unlike the hosted backends its transport carries a
// bounded timeout, set by the underlying client.
package ollama

import (
	"context"
	"errors"
	"net/http"

	ollamaapi "github.com/chainwork/interviewd/internal/api/ollama"
)

const defaultModel = "llama3"

// ErrEmptyCompletion is returned when the daemon answers with no text.
var ErrEmptyCompletion = errors.New("empty completion")

// ProviderOption configures the provider.
type ProviderOption func(*Provider)

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

// Provider implements provider.Completer over the Ollama generate API.
type Provider struct {
	client     *ollamaapi.Client
	model      string
	httpClient *http.Client
}

// New creates a new Ollama provider. An empty host selects the local
// default.
func New(host string, opts ...ProviderOption) *Provider {
	p := &Provider{model: defaultModel}
	for _, opt := range opts {
		opt(p)
	}

	var clientOpts []ollamaapi.ClientOption
	if p.httpClient != nil {
		clientOpts = append(clientOpts, ollamaapi.WithHTTPClient(p.httpClient))
	}

	p.client = ollamaapi.NewClient(host, clientOpts...)
	return p
}

func (p *Provider) Name() string {
	return "ollama"
}

func (p *Provider) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	temp := float32(temperature)
	resp, err := p.client.Generate(ctx, &ollamaapi.GenerateRequest{
		Model:   p.model,
		Prompt:  prompt,
		Stream:  false,
		Options: &ollamaapi.Options{Temperature: &temp},
	})
	if err != nil {
		return "", err
	}

	if resp.Response == "" {
		return "", ErrEmptyCompletion
	}
	return resp.Response, nil
}
