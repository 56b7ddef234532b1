// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one question through search, extraction, text
// processing, ranking, and answer synthesis. Each phase finishes before the
// next starts; the corpus is fitted once and only then queried.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/pdiddy/paper-rag/internal/acquire"
	"github.com/pdiddy/paper-rag/internal/answer"
	"github.com/pdiddy/paper-rag/internal/history"
	"github.com/pdiddy/paper-rag/internal/rank"
	"github.com/pdiddy/paper-rag/internal/search"
	"github.com/pdiddy/paper-rag/internal/textproc"
	"github.com/pdiddy/paper-rag/pkg/types"
)

// Result is everything one run produced.
type Result struct {
	Question   string
	Keywords   []string
	Search     search.Output
	Extraction acquire.BatchResult
	Documents  []types.ProcessedDocument
	Answer     answer.Result

	// RunID is the history row for this run, or 0 when history is disabled
	// or recording failed.
	RunID int64
}

// Pipeline holds the phase collaborators for repeated runs.
type Pipeline struct {
	cfg        types.PipelineConfig
	aggregator *search.Aggregator
	extractor  *acquire.Extractor
	processor  *textproc.Processor
	generator  answer.Generator
	history    *history.Store
	progress   io.Writer
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithGenerator enables answer synthesis. Without one, runs return
// citations and an empty answer.
func WithGenerator(g answer.Generator) Option {
	return func(p *Pipeline) { p.generator = g }
}

// WithHistory records every run in s.
func WithHistory(s *history.Store) Option {
	return func(p *Pipeline) { p.history = s }
}

// WithProgress writes one human-readable line per phase to w.
func WithProgress(w io.Writer) Option {
	return func(p *Pipeline) { p.progress = w }
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a Pipeline from its phase collaborators.
func New(cfg types.PipelineConfig, agg *search.Aggregator, ext *acquire.Extractor, proc *textproc.Processor, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:        cfg,
		aggregator: agg,
		extractor:  ext,
		processor:  proc,
		progress:   io.Discard,
		logger:     slog.Default().With("component", "pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run answers question. When keywords is empty they are derived from the
// question. Source and candidate failures only shrink the result; the
// returned error is non-nil only for cancellation or a worker pool failure.
func (p *Pipeline) Run(ctx context.Context, question string, keywords []string) (*Result, error) {
	started := time.Now()
	if len(keywords) == 0 {
		keywords = QueryKeywords(question, p.cfg.Processing.KeywordCount)
	}
	res := &Result{Question: question, Keywords: keywords}

	res.Search = p.aggregator.SearchAll(ctx, keywords, p.cfg.Search.MaxResults)
	fmt.Fprintf(p.progress, "search: %q found %d, %d duplicate(s), %d candidate(s)\n",
		res.Search.Phrase, res.Search.Found, res.Search.DupsRemoved, len(res.Search.Records))
	if err := ctx.Err(); err != nil {
		return res, err
	}

	batch, err := p.extractor.ExtractAll(ctx, res.Search.Records)
	res.Extraction = batch
	if err != nil {
		return res, fmt.Errorf("extracting content: %w", err)
	}
	fmt.Fprintf(p.progress, "extract: %d extracted (%d primary, %d secondary, %d abstract), %d dropped\n",
		len(batch.Records), batch.ByTier[types.ContentPrimary], batch.ByTier[types.ContentSecondary],
		batch.ByTier[types.ContentAbstract], batch.Dropped)

	corpus := p.processor.Process(ctx, batch.Records)
	res.Documents = rank.Rank(corpus, rankingQuery(question, res.Search.Phrase), p.topK())
	fmt.Fprintf(p.progress, "rank: %d of %d document(s)\n", len(res.Documents), corpus.Len())

	if p.generator != nil {
		res.Answer = answer.Synthesize(ctx, p.generator, question, res.Documents)
	} else {
		res.Answer = answer.Result{Citations: answer.Citations(res.Documents)}
	}

	p.record(ctx, res, started)
	return res, nil
}

func (p *Pipeline) topK() int {
	if p.cfg.TopK > 0 {
		return p.cfg.TopK
	}
	return types.DefaultTopK
}

func (p *Pipeline) record(ctx context.Context, res *Result, started time.Time) {
	if p.history == nil {
		return
	}
	id, err := p.history.Record(ctx, history.Run{
		Query:             res.Question,
		Keywords:          res.Keywords,
		Phrase:            res.Search.Phrase,
		StartedAt:         started,
		Found:             res.Search.Found,
		DuplicatesRemoved: res.Search.DupsRemoved,
		Extracted:         len(res.Extraction.Records),
		Dropped:           res.Extraction.Dropped,
		Answer:            res.Answer.Answer,
		Documents:         history.FromDocuments(res.Documents, res.Answer.Citations),
	})
	if err != nil {
		p.logger.Warn("recording run history", "err", err)
		return
	}
	res.RunID = id
}

// rankingQuery combines the question with the translated search phrase so a
// question in another language still shares terms with the corpus.
func rankingQuery(question, phrase string) string {
	if phrase == "" || strings.EqualFold(strings.TrimSpace(question), strings.TrimSpace(phrase)) {
		return question
	}
	return question + " " + phrase
}

// QueryKeywords derives search keywords from a question: the most frequent
// non-stopword terms, or the question's words when none survive (for
// example in scripts the keyword tokenizer does not cover).
func QueryKeywords(question string, n int) []string {
	if n <= 0 {
		n = types.DefaultKeywordCount
	}
	if kw := textproc.Keywords(question, n); len(kw) > 0 {
		return kw
	}
	fields := strings.Fields(question)
	if len(fields) > n {
		fields = fields[:n]
	}
	return fields
}
