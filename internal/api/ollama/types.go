// Package ollama provides a minimal HTTP client for a self-hosted Ollama
// instance's generate API.
package ollama

// GenerateRequest represents a generate request. Stream is always false
// here; the service consumes complete responses only.
type GenerateRequest struct {
	Model   string   `json:"model"`
	Prompt  string   `json:"prompt"`
	Stream  bool     `json:"stream"`
	Options *Options `json:"options,omitempty"`
}

// Options carries model parameters.
type Options struct {
	Temperature *float32 `json:"temperature,omitempty"`
}

// GenerateResponse represents a non-streamed generate response.
type GenerateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}
