// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/paper-rag/pkg/types"
)

// bibtexEscaper protects characters BibTeX treats specially inside braces.
var bibtexEscaper = strings.NewReplacer("{", "\\{", "}", "\\}", "&", "\\&", "%", "\\%")

// FormatBibTeX writes aggregated records as BibTeX entries to w. Citation
// keys are the record's source and identifier, so they are unique across a
// deduplicated result.
func FormatBibTeX(out Output, w io.Writer) error {
	var b strings.Builder
	for _, r := range out.Records {
		writeBibEntry(&b, r)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeBibEntry(b *strings.Builder, r types.CandidateRecord) {
	kind := "article"
	if r.Source == types.SourceArxiv {
		kind = "misc"
	}
	fmt.Fprintf(b, "@%s{%s,\n", kind, bibKey(r))
	fmt.Fprintf(b, "  title = {%s},\n", bibtexEscaper.Replace(r.Title))
	if len(r.Authors) > 0 {
		fmt.Fprintf(b, "  author = {%s},\n", bibtexEscaper.Replace(strings.Join(r.Authors, " and ")))
	}
	if y := r.Year(); y != "" {
		fmt.Fprintf(b, "  year = {%s},\n", y)
	}
	switch {
	case r.Source == types.SourceArxiv:
		fmt.Fprintf(b, "  eprint = {%s},\n", r.ID)
		fmt.Fprintf(b, "  archivePrefix = {arXiv},\n")
	case r.Source == types.SourcePubMed:
		fmt.Fprintf(b, "  pmid = {%s},\n", r.ID)
	case strings.HasPrefix(r.ID, "10."):
		fmt.Fprintf(b, "  doi = {%s},\n", r.ID)
	}
	if r.WebRenderingURL != "" {
		fmt.Fprintf(b, "  url = {%s},\n", r.WebRenderingURL)
	}
	fmt.Fprintf(b, "}\n\n")
}

// bibKey builds a citation key from characters BibTeX accepts in keys.
func bibKey(r types.CandidateRecord) string {
	var b strings.Builder
	b.WriteString(string(r.Source))
	b.WriteByte(':')
	for _, c := range r.ID {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '.', c == '-', c == '_':
			b.WriteRune(c)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}
