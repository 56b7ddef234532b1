// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm wraps the chat model used for query translation and answer
// synthesis. Both OpenAI-compatible endpoints and the Anthropic API are
// supported through langchaingo.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/pdiddy/paper-rag/pkg/types"
)

// ErrNotConfigured is returned when no chat model is configured.
var ErrNotConfigured = errors.New("no chat model configured")

// Client sends single-prompt completions to a chat model.
type Client struct {
	model       llms.Model
	temperature float64
	logger      *slog.Logger
}

// New builds a Client from cfg. An empty model name returns
// ErrNotConfigured.
func New(cfg types.LLMConfig) (*Client, error) {
	if cfg.Model == "" {
		return nil, ErrNotConfigured
	}

	var (
		model llms.Model
		err   error
	)
	switch strings.ToLower(cfg.Provider) {
	case "", "openai":
		token := cfg.APIKey
		if token == "" {
			token = "none"
		}
		opts := []openai.Option{openai.WithModel(cfg.Model), openai.WithToken(token)}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		model, err = openai.New(opts...)
	case "anthropic":
		opts := []anthropic.Option{anthropic.WithModel(cfg.Model), anthropic.WithToken(cfg.APIKey)}
		if cfg.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
		}
		model, err = anthropic.New(opts...)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("creating %s client: %w", cfg.Provider, err)
	}
	return NewWithModel(model, cfg.Temperature), nil
}

// NewWithModel wraps an existing langchaingo model.
func NewWithModel(model llms.Model, temperature float64) *Client {
	return &Client{
		model:       model,
		temperature: temperature,
		logger:      slog.Default().With("component", "llm"),
	}
}

// Generate returns the model's completion for prompt, trimmed.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c == nil || c.model == nil {
		return "", ErrNotConfigured
	}
	c.logger.Debug("generating completion", "prompt_chars", len(prompt))
	out, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt, llms.WithTemperature(c.temperature))
	if err != nil {
		return "", fmt.Errorf("generating completion: %w", err)
	}
	return strings.TrimSpace(out), nil
}
