// Package llm provides LLM client abstractions for the optional query parser.
// Ollama (streaming HTTP) and Google Gemini are supported.
package llm

import (
	"fmt"
	"time"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderOllama is a local Ollama server reached over its HTTP generate API
	ProviderOllama Provider = "ollama"
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
)

// Config holds the client configuration
type Config struct {
	Provider  Provider
	APIURL    string // Ollama generate endpoint
	APIKey    string // Gemini API key
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// DefaultConfig returns the default configuration (local Ollama)
func DefaultConfig() *Config {
	return DefaultOllamaConfig()
}

// DefaultOllamaConfig returns the default Ollama configuration
func DefaultOllamaConfig() *Config {
	return &Config{
		Provider:  ProviderOllama,
		APIURL:    "http://localhost:11434/api/generate",
		Model:     "llama3",
		MaxTokens: 256,
		Timeout:   20 * time.Second,
	}
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider:  ProviderGemini,
		Model:     "gemini-2.5-flash-lite",
		MaxTokens: 256,
		Timeout:   20 * time.Second,
	}
}

// GetModel returns the configured model, or the provider default when unset
func (c *Config) GetModel() string {
	if c.Model != "" {
		return c.Model
	}
	switch c.Provider {
	case ProviderGemini:
		return DefaultGeminiConfig().Model
	default:
		return DefaultOllamaConfig().Model
	}
}

// WithModel returns a copy of the config using model
func (c *Config) WithModel(model string) *Config {
	cp := *c
	cp.Model = model
	return &cp
}

// ParseProvider converts a configuration string into a Provider
func ParseProvider(s string) (Provider, error) {
	switch Provider(s) {
	case ProviderOllama, ProviderGemini:
		return Provider(s), nil
	default:
		return "", fmt.Errorf("unknown llm provider %q", s)
	}
}
