// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package embed provides the optional semantic embedding backend used by
// the text processor. Any OpenAI-compatible embeddings endpoint works,
// including local servers that ignore the API key.
package embed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"
)

// DefaultInterval spaces consecutive embedding requests.
const DefaultInterval = 250 * time.Millisecond

// Config selects the embedding model and endpoint.
type Config struct {
	Model    string
	BaseURL  string
	APIKey   string
	Interval time.Duration
}

// Embedder generates embeddings through langchaingo. A zero Embedder, or
// one built without a model, reports itself unavailable.
type Embedder struct {
	embedder embeddings.Embedder
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// New creates an Embedder. An empty model returns an unavailable Embedder
// rather than an error, so callers can always pass the result along.
func New(cfg Config) (*Embedder, error) {
	e := &Embedder{logger: slog.Default().With("component", "embed")}
	if cfg.Model == "" {
		return e, nil
	}

	token := cfg.APIKey
	if token == "" {
		token = "none"
	}
	opts := []openai.Option{
		openai.WithToken(token),
		openai.WithEmbeddingModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating embedding client: %w", err)
	}
	emb, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	e.embedder = emb
	e.limiter = rate.NewLimiter(rate.Every(interval), 1)
	return e, nil
}

// Available reports whether an embedding model is configured.
func (e *Embedder) Available() bool {
	return e != nil && e.embedder != nil
}

// EmbedText generates a vector embedding for a single text.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if !e.Available() {
		return nil, errors.New("embedding backend not configured")
	}
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	e.logger.Debug("generating embedding", "length", len(text))
	vecs, err := e.embedder.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embedding text: %w", err)
	}
	if len(vecs) == 0 || len(vecs[0]) == 0 {
		return nil, errors.New("embedder returned no vectors")
	}
	return vecs[0], nil
}
