// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries bibliographic sources and returns unified,
// deduplicated candidate records.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/pdiddy/paper-rag/pkg/types"
)

// Source converts a free-text query into candidate records from one
// upstream bibliographic source. Implementations own all wire-level details
// and apply their own politeness delay before each request.
type Source interface {
	Search(ctx context.Context, query string, limit int) ([]types.CandidateRecord, error)
}

// Tagged is implemented by sources that can name themselves in logs.
type Tagged interface {
	Tag() types.SourceTag
}

// Translator turns a keyword set into one search phrase suitable for
// source APIs.
type Translator interface {
	Translate(ctx context.Context, keywords []string) (string, error)
}

// Output holds the aggregated records and merge statistics.
type Output struct {
	// Phrase is the search phrase sent to every source.
	Phrase string

	// Records is the deduplicated, budget-truncated result.
	Records []types.CandidateRecord

	// Found is the number of records returned before deduplication.
	Found int

	// DupsRemoved counts records dropped by title deduplication.
	DupsRemoved int

	// SourceErrors lists soft failures as "source: error".
	SourceErrors []string
}

// Aggregator fans a query out to every configured source, merges the
// results in source order, deduplicates by title, and truncates to budget.
type Aggregator struct {
	sources    []Source
	translator Translator
	budget     int
	logger     *slog.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithTranslator sets the query-translation collaborator. Without one the
// keywords are joined with spaces.
func WithTranslator(t Translator) Option {
	return func(a *Aggregator) { a.translator = t }
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithDefaultBudget sets the budget used when SearchAll is called with a
// non-positive budget.
func WithDefaultBudget(n int) Option {
	return func(a *Aggregator) { a.budget = n }
}

// NewAggregator creates an Aggregator over sources, queried in the given
// order. Source order decides which duplicate wins.
func NewAggregator(sources []Source, opts ...Option) *Aggregator {
	a := &Aggregator{
		sources: sources,
		budget:  types.DefaultMaxResults,
		logger:  slog.Default().With("component", "search"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SearchAll queries every source with the translated keywords. Empty
// keywords return an empty Output without touching the network. A failing
// source contributes zero records and is recorded in SourceErrors; it never
// aborts the aggregation.
func (a *Aggregator) SearchAll(ctx context.Context, keywords []string, budget int) Output {
	if len(keywords) == 0 || len(a.sources) == 0 {
		return Output{}
	}
	if budget <= 0 {
		budget = a.budget
	}

	phrase := a.translate(ctx, keywords)
	perSource := budget / len(a.sources)

	type sourceResult struct {
		records []types.CandidateRecord
		err     error
	}

	// Sources share no state and each paces its own requests, so they run
	// concurrently; results are merged back in source order.
	results := make([]sourceResult, len(a.sources))
	var wg sync.WaitGroup
	for i, src := range a.sources {
		if perSource <= 0 {
			continue
		}
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			recs, err := src.Search(ctx, phrase, perSource)
			results[i] = sourceResult{records: recs, err: err}
		}(i, src)
	}
	wg.Wait()

	out := Output{Phrase: phrase}
	var all []types.CandidateRecord
	for i, br := range results {
		name := sourceName(a.sources[i])
		if br.err != nil {
			out.SourceErrors = append(out.SourceErrors, fmt.Sprintf("%s: %v", name, br.err))
			a.logger.Error("source query failed", "source", name, "query", phrase, "err", br.err)
			continue
		}
		a.logger.Info("source returned records", "source", name, "count", len(br.records))
		all = append(all, br.records...)
	}

	deduped := Deduplicate(all)
	out.Found = len(all)
	out.DupsRemoved = len(all) - len(deduped)
	if len(deduped) > budget {
		deduped = deduped[:budget]
	}
	out.Records = deduped

	a.logger.Info("aggregated search results",
		"found", out.Found, "unique", len(out.Records), "duplicates", out.DupsRemoved)
	return out
}

// translate asks the translator for a phrase, falling back to the keywords
// joined with spaces when no translator is set or it fails.
func (a *Aggregator) translate(ctx context.Context, keywords []string) string {
	fallback := strings.Join(keywords, " ")
	if a.translator == nil {
		return fallback
	}
	phrase, err := a.translator.Translate(ctx, keywords)
	if err != nil {
		a.logger.Warn("query translation failed, joining keywords", "keywords", keywords, "err", err)
		return fallback
	}
	phrase = strings.TrimSpace(phrase)
	if phrase == "" {
		return fallback
	}
	a.logger.Info("translated keywords", "keywords", keywords, "phrase", phrase)
	return phrase
}

// Deduplicate removes records whose lowercased, trimmed titles collide.
// Each key keeps the position of its first occurrence but the record of its
// last occurrence, so a later source overrides an earlier one in place.
func Deduplicate(records []types.CandidateRecord) []types.CandidateRecord {
	index := make(map[string]int, len(records))
	var deduped []types.CandidateRecord
	for _, r := range records {
		key := r.DedupKey()
		if idx, ok := index[key]; ok {
			deduped[idx] = r
			continue
		}
		index[key] = len(deduped)
		deduped = append(deduped, r)
	}
	return deduped
}

func sourceName(s Source) string {
	if t, ok := s.(Tagged); ok {
		return string(t.Tag())
	}
	return fmt.Sprintf("%T", s)
}
