// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-rag/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List, show, search, and export recorded runs",
	Long: `History reads the run database written by "ask". Each run keeps the
question, keywords, translated search phrase, the ranked documents with
their scores and citations, and the generated answer.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := store.List(cmd.Context(), limit)
		if err != nil {
			return err
		}
		printRuns(os.Stdout, runs)
		return nil
	},
}

var historySearchCmd = &cobra.Command{
	Use:   "search [term]",
	Short: "Find runs whose question or answer contains a term",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := store.Search(cmd.Context(), args[0], limit)
		if err != nil {
			return err
		}
		printRuns(os.Stdout, runs)
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Show one run with its ranked documents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid run id %q", args[0])
		}
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		run, err := store.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		printRun(os.Stdout, run)
		return nil
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every run to YAML or JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		var w io.Writer = os.Stdout
		if path, _ := cmd.Flags().GetString("output"); path != "" {
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("creating %s: %w", path, err)
			}
			defer f.Close()
			w = f
		}

		format, _ := cmd.Flags().GetString("format")
		switch format {
		case "yaml", "":
			return store.ExportYAML(cmd.Context(), w)
		case "json":
			return store.ExportJSON(cmd.Context(), w)
		default:
			return fmt.Errorf("unsupported format %q: use yaml or json", format)
		}
	},
}

func init() {
	historyListCmd.Flags().Int("limit", 20, "maximum number of runs to list (0 for all)")
	historySearchCmd.Flags().Int("limit", 20, "maximum number of runs to list (0 for all)")
	historyExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	historyExportCmd.Flags().String("output", "", "write to a file instead of stdout")

	historyCmd.AddCommand(historyListCmd, historySearchCmd, historyShowCmd, historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}

func openHistory() (*history.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.HistoryDir == "" {
		return nil, fmt.Errorf("history is disabled: set history_dir")
	}
	return history.Open(cfg.HistoryDir)
}

func printRuns(w io.Writer, runs []history.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}
	fmt.Fprintf(w, "%-5s  %-20s  %-50s  %s\n", "ID", "Started", "Question", "Found/Extracted")
	fmt.Fprintln(w, strings.Repeat("-", 96))
	for _, r := range runs {
		q := r.Query
		if len([]rune(q)) > 50 {
			q = string([]rune(q)[:47]) + "..."
		}
		fmt.Fprintf(w, "%-5d  %-20s  %-50s  %d/%d\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04:05"), q, r.Found, r.Extracted)
	}
}

func printRun(w io.Writer, r *history.Run) {
	fmt.Fprintf(w, "Run %d (%s)\n", r.ID, r.StartedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Question: %s\n", r.Query)
	fmt.Fprintf(w, "Keywords: %s\n", strings.Join(r.Keywords, ", "))
	fmt.Fprintf(w, "Phrase:   %s\n", r.Phrase)
	fmt.Fprintf(w, "Found %d, %d duplicate(s), %d extracted, %d dropped\n\n",
		r.Found, r.DuplicatesRemoved, r.Extracted, r.Dropped)
	for _, d := range r.Documents {
		score := "-"
		if d.Score != nil {
			score = fmt.Sprintf("%.3f", *d.Score)
		}
		fmt.Fprintf(w, "%2d. [%s] %s (%s, score %s)\n", d.Rank, d.Source.DisplayName(), d.Title, d.ContentType, score)
	}
	if r.Answer != "" {
		fmt.Fprintf(w, "\n%s\n", r.Answer)
	}
}
