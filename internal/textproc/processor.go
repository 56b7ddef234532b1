// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package textproc

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/paper-rag/pkg/types"
)

var (
	// ErrNoContent is returned by Enrich when a record has neither enough
	// full text nor a usable abstract.
	ErrNoContent = errors.New("no content to process")

	// ErrInsufficientText is returned by Enrich when cleaning leaves too
	// little text for keyword and summary extraction.
	ErrInsufficientText = errors.New("insufficient text after cleaning")
)

const (
	minCorpusChars   = 50
	minFullTextChars = 200
	minAbstractChars = 50
	minCleanChars    = 100
)

// Embedder encodes text as a dense vector.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// HasEmbeddingBackend is implemented by embedders that may be configured
// but unusable, such as a client without a model name.
type HasEmbeddingBackend interface {
	Available() bool
}

// Corpus is the fitted vector space for one pipeline run. It is immutable
// once returned by Process; ranking reads it and a new Process call builds
// a new Corpus.
type Corpus struct {
	docs  []*types.ProcessedDocument
	rows  []Vector
	model *tfidfModel
}

// Len returns the number of registered documents.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.docs)
}

// Fitted reports whether a vector space exists. A corpus with no documents
// or no indexable terms is never fitted.
func (c *Corpus) Fitted() bool { return c != nil && c.model != nil }

// Document returns the i-th registered document.
func (c *Corpus) Document(i int) *types.ProcessedDocument { return c.docs[i] }

// Row returns the term vector of the i-th registered document.
func (c *Corpus) Row(i int) Vector { return c.rows[i] }

// Project maps query into the corpus term space. It returns nil when the
// corpus is not fitted.
func (c *Corpus) Project(query string) Vector {
	if !c.Fitted() {
		return nil
	}
	return c.model.transform(query)
}

// Processor turns extracted records into processed documents and a corpus.
type Processor struct {
	cfg      types.ProcessingConfig
	embedder Embedder
	logger   *slog.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithEmbedder sets the embedding backend.
func WithEmbedder(e Embedder) Option {
	return func(p *Processor) { p.embedder = e }
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewProcessor creates a Processor. Zero values in cfg use the defaults.
func NewProcessor(cfg types.ProcessingConfig, opts ...Option) *Processor {
	def := types.DefaultProcessingConfig()
	if cfg.KeywordCount <= 0 {
		cfg.KeywordCount = def.KeywordCount
	}
	if cfg.SummaryKeywordCount <= 0 {
		cfg.SummaryKeywordCount = def.SummaryKeywordCount
	}
	if cfg.SummarySentences <= 0 {
		cfg.SummarySentences = def.SummarySentences
	}
	if cfg.EmbeddingChars <= 0 {
		cfg.EmbeddingChars = def.EmbeddingChars
	}
	p := &Processor{cfg: cfg, logger: slog.Default().With("component", "textproc")}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process registers every record with usable text (full text, else the
// abstract, longer than 50 characters) and fits a fresh TF-IDF model over
// their whitespace-collapsed text. Registered documents are also enriched;
// enrichment failure leaves keywords and summary empty but keeps the
// document in the corpus. An empty corpus is returned unfitted.
func (p *Processor) Process(ctx context.Context, records []*types.ExtractedRecord) *Corpus {
	c := &Corpus{}
	var texts []string
	for _, rec := range records {
		if rec == nil {
			continue
		}
		text := rec.FullText
		if text == "" {
			text = rec.Abstract
		}
		if utf8.RuneCountInString(strings.TrimSpace(text)) <= minCorpusChars {
			p.logger.Debug("skipping record without usable text", "id", rec.ID)
			continue
		}

		doc := &types.ProcessedDocument{ExtractedRecord: *rec, CleanText: CollapseWhitespace(text)}
		if enriched, err := p.Enrich(ctx, rec); err == nil {
			doc.Keywords = enriched.Keywords
			doc.Summary = enriched.Summary
			doc.TextStats = enriched.TextStats
			doc.Embedding = enriched.Embedding
		} else {
			doc.TextStats = Stats(doc.CleanText)
		}
		c.docs = append(c.docs, doc)
		texts = append(texts, doc.CleanText)
	}

	if len(texts) == 0 {
		p.logger.Warn("empty corpus, ranking will use registration order")
		return c
	}
	model, rows := fitTFIDF(texts)
	if len(model.vocab) == 0 {
		p.logger.Warn("corpus has no indexable terms, ranking will use registration order")
		return c
	}
	c.model, c.rows = model, rows
	p.logger.Info("fitted corpus", "documents", len(texts), "terms", len(c.model.vocab))
	return c
}

// Enrich derives a ProcessedDocument from one record. The source text is
// the full text when it has at least 200 characters, else the abstract when
// longer than 50 characters. It returns ErrNoContent or ErrInsufficientText
// when the record cannot support keyword and summary extraction.
func (p *Processor) Enrich(ctx context.Context, rec *types.ExtractedRecord) (*types.ProcessedDocument, error) {
	var text string
	switch {
	case utf8.RuneCountInString(rec.FullText) >= minFullTextChars:
		text = rec.FullText
	case utf8.RuneCountInString(rec.Abstract) > minAbstractChars:
		text = rec.Abstract
	default:
		p.logger.Warn("no text to process", "id", rec.ID)
		return nil, ErrNoContent
	}

	clean := Clean(text)
	if utf8.RuneCountInString(strings.TrimSpace(clean)) < minCleanChars {
		p.logger.Warn("insufficient text after cleaning", "id", rec.ID)
		return nil, ErrInsufficientText
	}

	doc := &types.ProcessedDocument{
		ExtractedRecord: *rec,
		CleanText:       clean,
		Keywords:        Keywords(clean, p.cfg.KeywordCount),
		Summary:         Summarize(clean, p.cfg.SummarySentences, p.cfg.SummaryKeywordCount),
		TextStats:       Stats(clean),
	}

	if p.embeddingAvailable() {
		vec, err := p.embedder.EmbedText(ctx, truncateRunes(clean, p.cfg.EmbeddingChars))
		if err != nil {
			p.logger.Warn("embedding failed", "id", rec.ID, "err", err)
		} else {
			doc.Embedding = vec
		}
	}
	return doc, nil
}

func (p *Processor) embeddingAvailable() bool {
	if p.embedder == nil {
		return false
	}
	if c, ok := p.embedder.(HasEmbeddingBackend); ok {
		return c.Available()
	}
	return true
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
