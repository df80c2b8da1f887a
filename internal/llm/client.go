package llm

import (
	"context"
	"time"

	"github.com/Veraticus/plate-audit/internal/common"
)

// Client defines the interface for LLM providers.
type Client interface {
	// Analyze sends one system and user prompt pair and returns the raw text
	// of the reply.
	Analyze(ctx context.Context, prompt string, systemPrompt string) (string, error)
}

// Config holds configuration for an LLM provider.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
}

// Provider defaults.
const (
	defaultTemperature = 0.1
	defaultMaxTokens   = 2048
	defaultTimeout     = 60 * time.Second
)

func (cfg Config) withDefaults(model, baseURL string) Config {
	if cfg.Model == "" {
		cfg.Model = model
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = baseURL
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return cfg
}

// maxErrorBody bounds how much of a rejected response is kept.
const maxErrorBody = 4096

// rejected reports a non-2xx provider response.
func rejected(endpoint string, status int, body []byte) error {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return &common.UpstreamError{Endpoint: endpoint, StatusCode: status, Body: string(body)}
}

// unreachable reports a request that never got a response.
func unreachable(endpoint string, err error) error {
	return &common.UpstreamError{Endpoint: endpoint, Err: err}
}
