// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Defaults for the configuration surface.
const (
	DefaultMaxResults          = 15
	DefaultPolitenessDelay     = 1500 * time.Millisecond
	DefaultSearchTimeout       = 15 * time.Second
	DefaultExtractionTimeout   = 20 * time.Second
	DefaultUserAgent           = "paper-rag/0.1 (non-commercial)"
	DefaultMinPrimaryChars     = 500
	DefaultMinSecondaryChars   = 200
	DefaultMinAbstractChars    = 50
	DefaultKeywordCount        = 10
	DefaultSummaryKeywordCount = 5
	DefaultSummarySentences    = 3
	DefaultEmbeddingChars      = 2000
	DefaultTopK                = 5
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the per-request timeout. A timed-out request is a soft failure.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// PolitenessDelay is the pause applied before every outbound request to
	// an upstream source.
	PolitenessDelay time.Duration `json:"politeness_delay" yaml:"politeness_delay" mapstructure:"politeness_delay"`
}

// SearchConfig holds settings for the search stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// MaxResults is the total candidate budget per query. Each source gets
	// MaxResults / number-of-sources.
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`

	EnablePubMed   bool `json:"enable_pubmed" yaml:"enable_pubmed" mapstructure:"enable_pubmed"`
	EnableArxiv    bool `json:"enable_arxiv" yaml:"enable_arxiv" mapstructure:"enable_arxiv"`
	EnableOpenAlex bool `json:"enable_openalex" yaml:"enable_openalex" mapstructure:"enable_openalex"`

	// OpenAlexEmail is sent as the mailto parameter for polite pool access.
	OpenAlexEmail string `json:"openalex_email,omitempty" yaml:"openalex_email,omitempty" mapstructure:"openalex_email"`
}

// ConverterKind selects the primary-document text extraction backend.
type ConverterKind string

const (
	ConverterPDF        ConverterKind = "pdf"
	ConverterMarkitdown ConverterKind = "markitdown"
)

// ExtractionConfig holds settings for the content extraction stage.
type ExtractionConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Minimum text lengths per tier. A tier succeeds only when its text is
	// strictly longer than the threshold.
	MinPrimaryChars   int `json:"min_primary_chars" yaml:"min_primary_chars" mapstructure:"min_primary_chars"`
	MinSecondaryChars int `json:"min_secondary_chars" yaml:"min_secondary_chars" mapstructure:"min_secondary_chars"`
	MinAbstractChars  int `json:"min_abstract_chars" yaml:"min_abstract_chars" mapstructure:"min_abstract_chars"`

	// Converter selects the primary-document backend.
	Converter ConverterKind `json:"converter" yaml:"converter" mapstructure:"converter"`

	// Workers is the number of candidates extracted concurrently (default 1).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`

	// DocumentsDir, when set, keeps downloaded primary documents and
	// extraction metadata on disk and reuses them on later runs.
	DocumentsDir string `json:"documents_dir,omitempty" yaml:"documents_dir,omitempty" mapstructure:"documents_dir"`
}

// ProcessingConfig holds settings for the text processor.
type ProcessingConfig struct {
	KeywordCount        int `json:"keyword_count" yaml:"keyword_count" mapstructure:"keyword_count"`
	SummaryKeywordCount int `json:"summary_keyword_count" yaml:"summary_keyword_count" mapstructure:"summary_keyword_count"`
	SummarySentences    int `json:"summary_sentences" yaml:"summary_sentences" mapstructure:"summary_sentences"`
	EmbeddingChars      int `json:"embedding_chars" yaml:"embedding_chars" mapstructure:"embedding_chars"`
}

// LLMConfig holds settings for the model-backed collaborators: query
// translation, answer synthesis, and optional embeddings.
type LLMConfig struct {
	// Provider selects the chat API: "openai" (any OpenAI-compatible
	// endpoint, the default) or "anthropic".
	Provider string `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Model is the chat model used for translation and synthesis. Empty
	// disables both (keywords are joined and no answer is generated).
	Model   string `json:"model" yaml:"model" mapstructure:"model"`
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`
	APIKey  string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// EmbeddingModel enables semantic embeddings when set.
	EmbeddingModel   string `json:"embedding_model,omitempty" yaml:"embedding_model,omitempty" mapstructure:"embedding_model"`
	EmbeddingBaseURL string `json:"embedding_base_url,omitempty" yaml:"embedding_base_url,omitempty" mapstructure:"embedding_base_url"`
	// EmbeddingAPIKey defaults to APIKey when empty.
	EmbeddingAPIKey string `json:"embedding_api_key,omitempty" yaml:"embedding_api_key,omitempty" mapstructure:"embedding_api_key"`

	// Temperature for generation (default 0.1).
	Temperature float64 `json:"temperature" yaml:"temperature" mapstructure:"temperature"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Search     SearchConfig     `json:"search" yaml:"search" mapstructure:"search"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction" mapstructure:"extraction"`
	Processing ProcessingConfig `json:"processing" yaml:"processing" mapstructure:"processing"`
	LLM        LLMConfig        `json:"llm" yaml:"llm" mapstructure:"llm"`

	// TopK is the number of ranked documents handed to answer synthesis.
	TopK int `json:"top_k" yaml:"top_k" mapstructure:"top_k"`

	// HistoryDir holds the run history database. Empty disables history.
	HistoryDir string `json:"history_dir" yaml:"history_dir" mapstructure:"history_dir"`
}

// DefaultPipelineConfig returns the configuration used when no file, flag,
// or environment variable overrides a value.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Search: SearchConfig{
			HTTPConfig: HTTPConfig{
				Timeout:         DefaultSearchTimeout,
				UserAgent:       DefaultUserAgent,
				PolitenessDelay: DefaultPolitenessDelay,
			},
			MaxResults:   DefaultMaxResults,
			EnablePubMed: true,
			EnableArxiv:  true,
		},
		Extraction: ExtractionConfig{
			HTTPConfig: HTTPConfig{
				Timeout:         DefaultExtractionTimeout,
				UserAgent:       DefaultUserAgent,
				PolitenessDelay: DefaultPolitenessDelay,
			},
			MinPrimaryChars:   DefaultMinPrimaryChars,
			MinSecondaryChars: DefaultMinSecondaryChars,
			MinAbstractChars:  DefaultMinAbstractChars,
			Converter:         ConverterPDF,
			Workers:           1,
		},
		Processing: DefaultProcessingConfig(),
		LLM:        LLMConfig{Provider: "openai", Temperature: 0.1},
		TopK:       DefaultTopK,
		HistoryDir: "history",
	}
}

// DefaultProcessingConfig returns the text processor defaults.
func DefaultProcessingConfig() ProcessingConfig {
	return ProcessingConfig{
		KeywordCount:        DefaultKeywordCount,
		SummaryKeywordCount: DefaultSummaryKeywordCount,
		SummarySentences:    DefaultSummarySentences,
		EmbeddingChars:      DefaultEmbeddingChars,
	}
}
