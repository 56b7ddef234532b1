// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-rag/internal/acquire"
	"github.com/pdiddy/paper-rag/internal/search"
	"github.com/pdiddy/paper-rag/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract text for the candidates in a saved search",
	Long: `Extract reloads a result file written by "search --save" and walks the
fallback chain for every record: the primary document (PDF), then the web
landing page, then the abstract. Records with no usable text are dropped.

Set extraction.documents_dir to keep downloaded documents between runs.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().String("from", "", "result file written by search --save (required)")
	extractCmd.Flags().Bool("json", false, "output extracted records as JSON")
	_ = extractCmd.MarkFlagRequired("from")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	from, _ := cmd.Flags().GetString("from")
	rf, err := search.ReadResultFile(from)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ext, err := buildExtractor(cmd.Context(), cfg.Extraction)
	if err != nil {
		return err
	}

	result, err := ext.ExtractAll(cmd.Context(), rf.Records)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Records)
	}
	printExtraction(os.Stdout, result)
	return nil
}

func printExtraction(w io.Writer, result acquire.BatchResult) {
	fmt.Fprintf(w, "%-4s  %-10s  %-20s  %-50s  %s\n", "#", "Tier", "ID", "Title", "Chars")
	fmt.Fprintln(w, strings.Repeat("-", 96))
	for i, r := range result.Records {
		title := r.Title
		if len([]rune(title)) > 50 {
			title = string([]rune(title)[:47]) + "..."
		}
		fmt.Fprintf(w, "%-4d  %-10s  %-20s  %-50s  %d\n", i+1, r.ContentType, r.ID, title, r.TextLength)
	}
	fmt.Fprintf(w, "\n%d extracted (%d primary, %d secondary, %d abstract), %d dropped\n",
		len(result.Records),
		result.ByTier[types.ContentPrimary],
		result.ByTier[types.ContentSecondary],
		result.ByTier[types.ContentAbstract],
		result.Dropped)
}
