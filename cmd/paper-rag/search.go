// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-rag/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search [keywords...]",
	Short: "Search bibliographic sources for candidate papers",
	Long: `Search translates the keywords into one search phrase, queries every
enabled source (PubMed, arXiv, optionally OpenAlex), and merges the results
in source order. Records with the same title are deduplicated and the list
is truncated to the result budget.

Use --save to write the candidates to a YAML file for "extract --from".`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("format", "table", "output format: table, json, csl, or bibtex")
	searchCmd.Flags().String("save", "", "write the results to a YAML result file")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	chat, err := buildLLM(cfg.LLM)
	if err != nil {
		return err
	}
	agg, err := buildAggregator(cfg, chat)
	if err != nil {
		return err
	}

	out := agg.SearchAll(cmd.Context(), args, cfg.Search.MaxResults)
	for _, e := range out.SourceErrors {
		fmt.Fprintf(os.Stderr, "warning: %s\n", e)
	}

	if path, _ := cmd.Flags().GetString("save"); path != "" {
		if err := search.WriteResultFile(path, args, cfg.Search.MaxResults, out); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved %d records to %s\n", len(out.Records), path)
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "table", "":
		search.FormatTable(out, os.Stdout)
		return nil
	case "json":
		return search.FormatJSON(out, os.Stdout)
	case "csl":
		return search.FormatCSL(out, os.Stdout)
	case "bibtex":
		return search.FormatBibTeX(out, os.Stdout)
	default:
		return fmt.Errorf("unsupported format %q: use table, json, csl, or bibtex", format)
	}
}
