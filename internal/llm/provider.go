package llm

import (
	"context"
	"errors"
	"time"

	"github.com/ppiankov/truthcheck/internal/model"
)

// ErrImageUnsupported is returned by providers that cannot accept image input
var ErrImageUnsupported = errors.New("provider does not support image input")

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Generate sends one prompt (optionally with an image) and returns the raw reply text
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// Image is inline binary input for vision-capable models
type Image struct {
	MIMEType string
	Data     []byte
}

// GenerateRequest contains the input for one model call
type GenerateRequest struct {
	// Prompt is the full user prompt
	Prompt string

	// System is an optional system instruction
	System string

	// Image is attached to the prompt when set
	Image *Image

	// JSONMode asks the provider for structured JSON output where supported
	JSONMode bool

	// Model overrides the configured model
	Model string

	// MaxTokens limits the response length
	MaxTokens int

	// Purpose labels the call for metrics and logs (extract, synthesize, suspicion...)
	Purpose string
}

// GenerateResponse contains the model output
type GenerateResponse struct {
	// Text is the raw reply, possibly wrapped in code fences
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "gemini", "openai", "anthropic", "ollama"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for hosted providers
	APIKey string

	// BaseURL for custom endpoints (tests, proxies, Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout time.Duration

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "gemini",
		Model:     defaultGeminiModel,
		Timeout:   30 * time.Second,
		MaxTokens: 2048,
	}
}

// ConfigFromModel converts model configuration to llm.Config
func ConfigFromModel(llmConfig model.LLMConfig, httpConfig model.HTTPConfig) Config {
	return Config{
		Provider:   llmConfig.Provider,
		Model:      llmConfig.Model,
		APIKey:     llmConfig.APIKey,
		BaseURL:    llmConfig.BaseURL,
		Timeout:    llmConfig.Timeout,
		MaxTokens:  llmConfig.MaxTokens,
		HTTPProxy:  httpConfig.HTTPProxy,
		HTTPSProxy: httpConfig.HTTPSProxy,
		NoProxy:    httpConfig.NoProxy,
	}
}

func (c Config) timeout(fallback time.Duration) time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return fallback
}

func (c Config) maxTokens(requested int) int {
	if requested > 0 {
		return requested
	}
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return 2048
}
