package llm

import (
	"context"
)

// Service defines the interface for LLM completion operations
type Service interface {
	// Complete sends a prompt to the configured model and returns the raw
	// completion text
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config represents LLM service configuration
type Config struct {
	Provider string `json:"provider"` // groq, openai, anthropic, ollama
	Model    string `json:"model"`
	APIKey   string `json:"api_key,omitempty"`
	BaseURL  string `json:"base_url,omitempty"`
}

// Provider constants for supported completion services
const (
	ProviderGroq      = "groq"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)
