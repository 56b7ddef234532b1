// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pdiddy/paper-rag/internal/acquire"
	"github.com/pdiddy/paper-rag/internal/convert"
	"github.com/pdiddy/paper-rag/internal/embed"
	"github.com/pdiddy/paper-rag/internal/httputil"
	"github.com/pdiddy/paper-rag/internal/llm"
	"github.com/pdiddy/paper-rag/internal/search"
	"github.com/pdiddy/paper-rag/internal/textproc"
	"github.com/pdiddy/paper-rag/pkg/types"
)

// buildSources returns the enabled source clients in merge order. Each
// source gets its own pacer because each talks to a different host.
func buildSources(cfg types.SearchConfig) []search.Source {
	client := &http.Client{Timeout: cfg.Timeout}
	pacers := httputil.NewPacerSet(cfg.PolitenessDelay)

	var sources []search.Source
	if cfg.EnablePubMed {
		sources = append(sources, &search.PubMedSource{
			Client: client, Pacer: pacers.For(string(types.SourcePubMed)), UserAgent: cfg.UserAgent,
		})
	}
	if cfg.EnableArxiv {
		sources = append(sources, &search.ArxivSource{
			Client: client, Pacer: pacers.For(string(types.SourceArxiv)), UserAgent: cfg.UserAgent,
		})
	}
	if cfg.EnableOpenAlex {
		sources = append(sources, &search.OpenAlexSource{
			Client: client, Pacer: pacers.For(string(types.SourceOpenAlex)), UserAgent: cfg.UserAgent,
			Email: cfg.OpenAlexEmail,
		})
	}
	return sources
}

// buildLLM returns the chat client, or nil when no model is configured.
func buildLLM(cfg types.LLMConfig) (*llm.Client, error) {
	client, err := llm.New(cfg)
	if errors.Is(err, llm.ErrNotConfigured) {
		slog.Info("no chat model configured, keywords are joined and no answer is generated")
		return nil, nil
	}
	return client, err
}

func buildAggregator(cfg types.PipelineConfig, chat *llm.Client) (*search.Aggregator, error) {
	sources := buildSources(cfg.Search)
	if len(sources) == 0 {
		return nil, fmt.Errorf("no search sources enabled")
	}
	opts := []search.Option{search.WithDefaultBudget(cfg.Search.MaxResults)}
	if chat != nil {
		opts = append(opts, search.WithTranslator(llm.NewTranslator(chat)))
	}
	return search.NewAggregator(sources, opts...), nil
}

func buildExtractor(ctx context.Context, cfg types.ExtractionConfig) (*acquire.Extractor, error) {
	conv, err := convert.New(ctx, cfg.Converter)
	if err != nil {
		return nil, fmt.Errorf("setting up %s converter: %w", cfg.Converter, err)
	}
	opts := []acquire.Option{acquire.WithConverter(conv)}
	if cfg.DocumentsDir != "" {
		store, err := acquire.NewDocumentStore(cfg.DocumentsDir)
		if err != nil {
			return nil, err
		}
		opts = append(opts, acquire.WithDocumentStore(store))
	}
	return acquire.NewExtractor(cfg, opts...), nil
}

func buildProcessor(cfg types.PipelineConfig) (*textproc.Processor, error) {
	key := cfg.LLM.EmbeddingAPIKey
	if key == "" {
		key = cfg.LLM.APIKey
	}
	emb, err := embed.New(embed.Config{
		Model:   cfg.LLM.EmbeddingModel,
		BaseURL: cfg.LLM.EmbeddingBaseURL,
		APIKey:  key,
	})
	if err != nil {
		return nil, err
	}
	return textproc.NewProcessor(cfg.Processing, textproc.WithEmbedder(emb)), nil
}
