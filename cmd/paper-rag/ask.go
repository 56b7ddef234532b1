// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-rag/internal/answer"
	"github.com/pdiddy/paper-rag/internal/history"
	"github.com/pdiddy/paper-rag/internal/pipeline"
	"github.com/pdiddy/paper-rag/pkg/types"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a research question from retrieved papers",
	Long: `Ask runs the full pipeline: it searches the enabled sources, extracts
text for every candidate, ranks the documents against the question, and
asks the configured chat model for a cited answer. Without a chat model
the ranked documents and citations are still printed.

Every run is recorded in the history database unless --no-history is set.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().String("keywords", "", "search keywords (comma-separated); derived from the question when empty")
	askCmd.Flags().Int("top-k", 0, "number of ranked documents used for the answer (default 5)")
	askCmd.Flags().Bool("json", false, "output the result as JSON")
	askCmd.Flags().Bool("no-history", false, "do not record this run")

	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	question := strings.Join(args, " ")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if k, _ := cmd.Flags().GetInt("top-k"); k > 0 {
		cfg.TopK = k
	}

	chat, err := buildLLM(cfg.LLM)
	if err != nil {
		return err
	}
	agg, err := buildAggregator(cfg, chat)
	if err != nil {
		return err
	}
	ext, err := buildExtractor(ctx, cfg.Extraction)
	if err != nil {
		return err
	}
	proc, err := buildProcessor(cfg)
	if err != nil {
		return err
	}

	opts := []pipeline.Option{pipeline.WithProgress(os.Stderr)}
	if chat != nil {
		opts = append(opts, pipeline.WithGenerator(chat))
	}
	noHistory, _ := cmd.Flags().GetBool("no-history")
	if !noHistory && cfg.HistoryDir != "" {
		store, err := history.Open(cfg.HistoryDir)
		if err != nil {
			return err
		}
		defer store.Close()
		opts = append(opts, pipeline.WithHistory(store))
	}

	res, err := pipeline.New(cfg, agg, ext, proc, opts...).Run(ctx, question, splitKeywords(cmd))
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(askOutput{
			Question:  res.Question,
			Keywords:  res.Keywords,
			Phrase:    res.Search.Phrase,
			Answer:    res.Answer.Answer,
			Citations: res.Answer.Citations,
			Documents: res.Documents,
			RunID:     res.RunID,
		})
	}
	printAnswer(os.Stdout, res)
	return nil
}

type askOutput struct {
	Question  string                    `json:"question"`
	Keywords  []string                  `json:"keywords"`
	Phrase    string                    `json:"phrase"`
	Answer    string                    `json:"answer,omitempty"`
	Citations []string                  `json:"citations"`
	Documents []types.ProcessedDocument `json:"documents"`
	RunID     int64                     `json:"run_id,omitempty"`
}

func printAnswer(w io.Writer, res *pipeline.Result) {
	if res.Answer.Answer != "" {
		fmt.Fprintln(w, res.Answer.Answer)
		fmt.Fprintln(w)
	}
	if len(res.Documents) == 0 {
		fmt.Fprintln(w, "No documents found.")
		return
	}

	uncited := make(map[int]bool)
	if res.Answer.Answer != "" {
		for _, n := range answer.UncitedSources(res.Answer.Answer, len(res.Documents)) {
			uncited[n] = true
		}
	}

	fmt.Fprintln(w, "Sources:")
	for i, c := range res.Answer.Citations {
		if uncited[i+1] {
			c += " (not cited)"
		}
		fmt.Fprintf(w, "  %s\n", c)
		d := res.Documents[i]
		score := "-"
		if d.RelevanceScore != nil {
			score = fmt.Sprintf("%.3f", *d.RelevanceScore)
		}
		fmt.Fprintf(w, "      score %s, %s, %d chars", score, d.ContentType, d.TextLength)
		if len(d.Keywords) > 0 {
			fmt.Fprintf(w, ", keywords: %s", strings.Join(d.Keywords, ", "))
		}
		fmt.Fprintln(w)
	}
	if res.RunID > 0 {
		fmt.Fprintf(w, "\nRecorded as run %d\n", res.RunID)
	}
}

func splitKeywords(cmd *cobra.Command) []string {
	raw, _ := cmd.Flags().GetString("keywords")
	var out []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
