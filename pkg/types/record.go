// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paper-rag pipeline:
// candidate records from search sources, extracted records from the content
// extractor, and processed documents from the text processor.
package types

import (
	"regexp"
	"strings"
)

// SourceTag identifies the upstream bibliographic source of a record.
type SourceTag string

const (
	SourcePubMed   SourceTag = "pubmed"
	SourceArxiv    SourceTag = "arxiv"
	SourceOpenAlex SourceTag = "openalex"
)

// DisplayName returns the human-readable source name used in citations.
func (s SourceTag) DisplayName() string {
	switch s {
	case SourcePubMed:
		return "PubMed"
	case SourceArxiv:
		return "ArXiv"
	case SourceOpenAlex:
		return "OpenAlex"
	default:
		return string(s)
	}
}

// ContentType records which extraction tier produced a record's text.
type ContentType string

const (
	ContentPrimary   ContentType = "primary"
	ContentSecondary ContentType = "secondary"
	ContentAbstract  ContentType = "abstract"
)

// CandidateRecord is a normalized reference to one document returned by a
// single source. ID is unique within a source but not across sources.
type CandidateRecord struct {
	// ID is the source-scoped identifier (PMID, arXiv ID, DOI).
	ID string `json:"id" yaml:"id"`

	// Title is the whitespace-trimmed document title. Never empty.
	Title string `json:"title" yaml:"title"`

	// Authors lists author names in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Abstract is the abstract or summary text; may be empty.
	Abstract string `json:"abstract" yaml:"abstract"`

	// PrimaryDocumentURL points to a downloadable document (usually a PDF).
	PrimaryDocumentURL string `json:"primary_document_url,omitempty" yaml:"primary_document_url,omitempty"`

	// WebRenderingURL points to an HTML landing page for the document.
	WebRenderingURL string `json:"web_rendering_url,omitempty" yaml:"web_rendering_url,omitempty"`

	// Source identifies which source client produced this record.
	Source SourceTag `json:"source" yaml:"source"`
}

// DedupKey returns the aggregation deduplication key: the lowercased,
// whitespace-trimmed title.
func (r CandidateRecord) DedupKey() string {
	return strings.ToLower(strings.TrimSpace(r.Title))
}

var arxivYearRe = regexp.MustCompile(`(\d{2})\d{2}\.`)

// Year returns the publication year encoded in an arXiv identifier's YYMM
// prefix, or "" when the record carries no derivable year.
func (r CandidateRecord) Year() string {
	if r.Source != SourceArxiv {
		return ""
	}
	if m := arxivYearRe.FindStringSubmatch(r.ID); m != nil {
		return "20" + m[1]
	}
	return ""
}

// PreviewLength is the number of characters kept in SummaryPreview.
const PreviewLength = 500

// ExtractedRecord is a CandidateRecord augmented with the text obtained by
// the content extractor and the tier that produced it.
type ExtractedRecord struct {
	CandidateRecord `yaml:",inline"`

	FullText       string      `json:"full_text" yaml:"full_text"`
	ContentType    ContentType `json:"content_type" yaml:"content_type"`
	TextLength     int         `json:"text_length" yaml:"text_length"`
	SummaryPreview string      `json:"summary_preview" yaml:"summary_preview"`
}

// NewExtractedRecord builds an ExtractedRecord from a candidate and the text
// extracted at the given tier. The preview keeps the first PreviewLength
// characters and appends "..." when the text was truncated.
func NewExtractedRecord(rec CandidateRecord, text string, ct ContentType) *ExtractedRecord {
	runes := []rune(text)
	preview := text
	if len(runes) > PreviewLength {
		preview = string(runes[:PreviewLength]) + "..."
	}
	return &ExtractedRecord{
		CandidateRecord: rec,
		FullText:        text,
		ContentType:     ct,
		TextLength:      len(runes),
		SummaryPreview:  preview,
	}
}

// TextStats holds simple size statistics for a cleaned text.
type TextStats struct {
	CharCount           int     `json:"char_count" yaml:"char_count"`
	WordCount           int     `json:"word_count" yaml:"word_count"`
	SentenceCount       int     `json:"sentence_count" yaml:"sentence_count"`
	AvgWordsPerSentence float64 `json:"avg_words_per_sentence" yaml:"avg_words_per_sentence"`
	AvgCharsPerWord     float64 `json:"avg_chars_per_word" yaml:"avg_chars_per_word"`
}

// ProcessedDocument is an ExtractedRecord enriched by the text processor.
// It lives for one pipeline run and is never persisted as an index.
type ProcessedDocument struct {
	ExtractedRecord `yaml:",inline"`

	CleanText string    `json:"clean_text" yaml:"clean_text"`
	Keywords  []string  `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Summary   []string  `json:"summary,omitempty" yaml:"summary,omitempty"`
	TextStats TextStats `json:"text_stats" yaml:"text_stats"`

	// Embedding is set only when an embedding backend is configured and
	// succeeded for this document.
	Embedding []float32 `json:"embedding,omitempty" yaml:"-"`

	// RelevanceScore is set by the ranker; nil in degraded ranking mode.
	RelevanceScore *float64 `json:"relevance_score,omitempty" yaml:"relevance_score,omitempty"`
}

// Excerpt returns the text handed to answer synthesis: the clean text when
// present, otherwise the summary preview.
func (d ProcessedDocument) Excerpt() string {
	if d.CleanText != "" {
		return d.CleanText
	}
	return d.SummaryPreview
}
