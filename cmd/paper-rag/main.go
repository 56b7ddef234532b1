// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-rag CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-rag/internal/secrets"
	"github.com/pdiddy/paper-rag/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the paper-rag CLI.
var rootCmd = &cobra.Command{
	Use:   "paper-rag",
	Short: "Answer research questions from PubMed and arXiv papers",
	Long: `paper-rag searches bibliographic sources for a question, extracts the
best available text for each candidate (full document, landing page, or
abstract), ranks the documents by relevance, and synthesizes a cited answer.

Each stage is also available on its own: search saves candidates to a
file, and extract reloads them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(cmd)

		secretsDir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(secretsDir)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			slog.Debug("loaded secrets", "keys", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./paper-rag.yaml or ~/.config/paper-rag/config.yaml)")
	pf.String("secrets-dir", ".secrets/", "directory of secret files (llm-api-key, embedding-api-key, openalex-email)")
	pf.String("log-level", "warn", "log level: debug, info, warn, error")
	pf.Int("max-results", 0, "total candidate budget per query (default 15)")
	pf.Int("workers", 0, "concurrent extractions (default 1)")
	pf.String("model", "", "chat model for query translation and answers")

	_ = viper.BindPFlag("search.max_results", pf.Lookup("max-results"))
	_ = viper.BindPFlag("extraction.workers", pf.Lookup("workers"))
	_ = viper.BindPFlag("llm.model", pf.Lookup("model"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paper-rag")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paper-rag"))
		}
	}

	viper.SetEnvPrefix("PAPER_RAG")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults(types.DefaultPipelineConfig())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults registers every configuration key so that environment
// variables are honored by Unmarshal.
func setDefaults(d types.PipelineConfig) {
	defaults := map[string]any{
		"search.timeout":                   d.Search.Timeout,
		"search.user_agent":                d.Search.UserAgent,
		"search.politeness_delay":          d.Search.PolitenessDelay,
		"search.max_results":               d.Search.MaxResults,
		"search.enable_pubmed":             d.Search.EnablePubMed,
		"search.enable_arxiv":              d.Search.EnableArxiv,
		"search.enable_openalex":           d.Search.EnableOpenAlex,
		"search.openalex_email":            d.Search.OpenAlexEmail,
		"extraction.timeout":               d.Extraction.Timeout,
		"extraction.user_agent":            d.Extraction.UserAgent,
		"extraction.politeness_delay":      d.Extraction.PolitenessDelay,
		"extraction.min_primary_chars":     d.Extraction.MinPrimaryChars,
		"extraction.min_secondary_chars":   d.Extraction.MinSecondaryChars,
		"extraction.min_abstract_chars":    d.Extraction.MinAbstractChars,
		"extraction.converter":             string(d.Extraction.Converter),
		"extraction.workers":               d.Extraction.Workers,
		"extraction.documents_dir":         d.Extraction.DocumentsDir,
		"processing.keyword_count":         d.Processing.KeywordCount,
		"processing.summary_keyword_count": d.Processing.SummaryKeywordCount,
		"processing.summary_sentences":     d.Processing.SummarySentences,
		"processing.embedding_chars":       d.Processing.EmbeddingChars,
		"llm.provider":                     d.LLM.Provider,
		"llm.model":                        d.LLM.Model,
		"llm.base_url":                     d.LLM.BaseURL,
		"llm.api_key":                      d.LLM.APIKey,
		"llm.embedding_model":              d.LLM.EmbeddingModel,
		"llm.embedding_base_url":           d.LLM.EmbeddingBaseURL,
		"llm.embedding_api_key":            d.LLM.EmbeddingAPIKey,
		"llm.temperature":                  d.LLM.Temperature,
		"top_k":                            d.TopK,
		"history_dir":                      d.HistoryDir,
	}
	for k, v := range defaults {
		viper.SetDefault(k, v)
	}
}

// loadConfig resolves the pipeline configuration from defaults, config
// file, environment, and flags, then fills empty credentials from secrets.
func loadConfig() (types.PipelineConfig, error) {
	cfg := types.DefaultPipelineConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading configuration: %w", err)
	}
	secrets.Apply(&cfg, loadedSecrets)
	return cfg, nil
}

func setupLogging(cmd *cobra.Command) {
	levelName, _ := cmd.Flags().GetString("log-level")
	var level slog.Level
	if err := level.UnmarshalText([]byte(levelName)); err != nil {
		level = slog.LevelWarn
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
