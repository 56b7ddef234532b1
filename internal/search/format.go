// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
)

const titleWidth = 60

// FormatTable prints the candidates as aligned columns followed by a one-line
// summary and any per-source warnings.
func FormatTable(out Output, w io.Writer) {
	if len(out.Records) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTITLE\tAUTHORS\tSOURCE\tPDF\tID")
	for i, r := range out.Records {
		pdf := "-"
		if r.PrimaryDocumentURL != "" {
			pdf = "yes"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			i+1, truncate(r.Title, titleWidth), leadAuthor(r.Authors), r.Source, pdf, r.ID)
	}
	tw.Flush()

	fmt.Fprintf(w, "\n%d results for %q", len(out.Records), out.Phrase)
	if out.DupsRemoved > 0 {
		fmt.Fprintf(w, " (%d duplicates removed)", out.DupsRemoved)
	}
	fmt.Fprintln(w)
	for _, e := range out.SourceErrors {
		fmt.Fprintln(w, "warning:", e)
	}
}

// FormatJSON writes the candidates as an indented JSON array.
func FormatJSON(out Output, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out.Records)
}

func leadAuthor(authors []string) string {
	if len(authors) == 0 {
		return ""
	}
	if len(authors) == 1 {
		return truncate(authors[0], 20)
	}
	return truncate(authors[0], 14) + " et al."
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
