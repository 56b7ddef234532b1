// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package acquire obtains usable text for candidate records through a fixed
// fallback chain: the primary document, then the source's web rendering,
// then the metadata abstract. The first tier whose text clears its minimum
// length wins; records that clear no tier are dropped.
package acquire

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/paper-rag/internal/convert"
	"github.com/pdiddy/paper-rag/internal/httputil"
	"github.com/pdiddy/paper-rag/internal/textproc"
	"github.com/pdiddy/paper-rag/pkg/types"
)

// ErrNoContent is returned when no tier produced enough text. It signals an
// expected outcome, not a fault.
var ErrNoContent = errors.New("no usable content")

// errTooShort marks a tier that ran but produced text at or below its
// threshold.
var errTooShort = errors.New("text below minimum length")

// Extractor runs the fallback chain for one record at a time. It is safe
// for concurrent use; requests to the same host share one politeness pacer.
type Extractor struct {
	cfg       types.ExtractionConfig
	client    *http.Client
	pacers    *httputil.PacerSet
	converter convert.Converter
	store     *DocumentStore
	logger    *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithHTTPClient sets the client used for document and page fetches.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Extractor) { e.client = c }
}

// WithConverter sets the primary-document converter. Default is the
// in-process PDF converter.
func WithConverter(c convert.Converter) Option {
	return func(e *Extractor) { e.converter = c }
}

// WithPacers shares a pacer set with other components that reach the same
// hosts, such as the source clients.
func WithPacers(p *httputil.PacerSet) Option {
	return func(e *Extractor) { e.pacers = p }
}

// WithDocumentStore keeps primary documents and extraction results on disk.
func WithDocumentStore(s *DocumentStore) Option {
	return func(e *Extractor) { e.store = s }
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExtractor creates an Extractor. Zero thresholds in cfg fall back to the
// package defaults.
func NewExtractor(cfg types.ExtractionConfig, opts ...Option) *Extractor {
	if cfg.MinPrimaryChars <= 0 {
		cfg.MinPrimaryChars = types.DefaultMinPrimaryChars
	}
	if cfg.MinSecondaryChars <= 0 {
		cfg.MinSecondaryChars = types.DefaultMinSecondaryChars
	}
	if cfg.MinAbstractChars <= 0 {
		cfg.MinAbstractChars = types.DefaultMinAbstractChars
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = types.DefaultUserAgent
	}

	e := &Extractor{
		cfg:       cfg,
		client:    &http.Client{Timeout: cfg.Timeout},
		converter: convert.PDFConverter{},
		logger:    slog.Default().With("component", "acquire"),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.pacers == nil {
		e.pacers = httputil.NewPacerSet(cfg.PolitenessDelay)
	}
	return e
}

// Extract walks the fallback chain for rec. It returns ErrNoContent when
// every tier fails; tier failures are logged, never returned.
func (e *Extractor) Extract(ctx context.Context, rec types.CandidateRecord) (*types.ExtractedRecord, error) {
	log := e.logger.With("source", rec.Source, "id", rec.ID)

	if rec.PrimaryDocumentURL != "" {
		text, err := e.primary(ctx, rec)
		if err == nil {
			log.Info("extracted primary document", "chars", utf8.RuneCountInString(text))
			return e.finish(rec, text, types.ContentPrimary), nil
		}
		log.Warn("primary document tier failed", "url", rec.PrimaryDocumentURL, "err", err)
	}

	if rec.WebRenderingURL != "" {
		text, err := e.secondary(ctx, rec)
		if err == nil {
			log.Info("extracted web rendering", "chars", utf8.RuneCountInString(text))
			return e.finish(rec, text, types.ContentSecondary), nil
		}
		log.Warn("web rendering tier failed", "url", rec.WebRenderingURL, "err", err)
	}

	if text, ok := e.abstract(rec); ok {
		log.Info("using abstract", "chars", utf8.RuneCountInString(text))
		return e.finish(rec, text, types.ContentAbstract), nil
	}

	log.Warn("no usable content, dropping record", "title", rec.Title)
	return nil, ErrNoContent
}

func (e *Extractor) primary(ctx context.Context, rec types.CandidateRecord) (string, error) {
	data, err := e.loadPrimary(ctx, rec)
	if err != nil {
		return "", err
	}
	raw, err := e.converter.Convert(ctx, data)
	if err != nil {
		return "", fmt.Errorf("converting document: %w", err)
	}
	return clearsThreshold(textproc.NormalizeLines(raw), e.cfg.MinPrimaryChars)
}

// loadPrimary returns the document bytes from the store when present,
// otherwise downloads them and saves a copy.
func (e *Extractor) loadPrimary(ctx context.Context, rec types.CandidateRecord) ([]byte, error) {
	if data, ok := e.store.LoadPrimary(rec); ok {
		return data, nil
	}
	data, err := httputil.Fetch(ctx, e.client, e.pacers.ForURL(rec.PrimaryDocumentURL), httputil.Request{
		URL:       rec.PrimaryDocumentURL,
		UserAgent: e.cfg.UserAgent,
		Accept:    "application/pdf",
	})
	if err != nil {
		return nil, err
	}
	if err := e.store.SavePrimary(rec, data); err != nil {
		e.logger.Warn("saving primary document", "id", rec.ID, "err", err)
	}
	return data, nil
}

func (e *Extractor) secondary(ctx context.Context, rec types.CandidateRecord) (string, error) {
	selector, ok := webSelectors[rec.Source]
	if !ok {
		return "", fmt.Errorf("no web selector for source %q", rec.Source)
	}
	body, err := httputil.Fetch(ctx, e.client, e.pacers.ForURL(rec.WebRenderingURL), httputil.Request{
		URL:       rec.WebRenderingURL,
		UserAgent: e.cfg.UserAgent,
		Accept:    "text/html",
	})
	if err != nil {
		return "", err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}
	return clearsThreshold(textproc.NormalizeLines(selectText(doc, selector)), e.cfg.MinSecondaryChars)
}

func (e *Extractor) abstract(rec types.CandidateRecord) (string, bool) {
	text, err := clearsThreshold(textproc.NormalizeLines(rec.Abstract), e.cfg.MinAbstractChars)
	return text, err == nil
}

func (e *Extractor) finish(rec types.CandidateRecord, text string, ct types.ContentType) *types.ExtractedRecord {
	er := types.NewExtractedRecord(rec, text, ct)
	if err := e.store.SaveRecord(er); err != nil {
		e.logger.Warn("saving extraction metadata", "id", rec.ID, "err", err)
	}
	return er
}

// clearsThreshold succeeds when text is strictly longer than min characters.
func clearsThreshold(text string, min int) (string, error) {
	if n := utf8.RuneCountInString(text); n <= min {
		return "", fmt.Errorf("%w: %d <= %d", errTooShort, n, min)
	}
	return text, nil
}
