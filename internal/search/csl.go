// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"io"
	"strconv"
	"strings"
	"unicode"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-rag/pkg/types"
)

// CSLItem is one entry of a CSL-YAML bibliography, readable by Pandoc and
// most reference managers. Field names follow the CSL schema.
type CSLItem struct {
	ID        string    `yaml:"id"`
	Type      string    `yaml:"type"`
	Title     string    `yaml:"title"`
	Author    []CSLName `yaml:"author,omitempty"`
	Issued    *CSLDate  `yaml:"issued,omitempty"`
	Abstract  string    `yaml:"abstract,omitempty"`
	DOI       string    `yaml:"DOI,omitempty"`
	PMID      string    `yaml:"PMID,omitempty"`
	URL       string    `yaml:"URL,omitempty"`
	Publisher string    `yaml:"publisher,omitempty"`
}

// CSLName is a person name. Literal is used when the name cannot be split.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate holds CSL date-parts; only the year is known for our sources.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// FormatCSL writes the aggregated records as a CSL-YAML list.
func FormatCSL(out Output, w io.Writer) error {
	items := make([]CSLItem, 0, len(out.Records))
	for _, r := range out.Records {
		items = append(items, cslItem(r))
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(items)
}

func cslItem(r types.CandidateRecord) CSLItem {
	item := CSLItem{
		ID:        bibKey(r),
		Type:      "article-journal",
		Title:     r.Title,
		Abstract:  r.Abstract,
		URL:       r.WebRenderingURL,
		Publisher: r.Source.DisplayName(),
	}
	switch {
	case r.Source == types.SourceArxiv:
		// CSL types preprints as "article".
		item.Type = "article"
	case r.Source == types.SourcePubMed:
		item.PMID = r.ID
	case strings.HasPrefix(r.ID, "10."):
		item.DOI = r.ID
	}
	if y, err := strconv.Atoi(r.Year()); err == nil {
		item.Issued = &CSLDate{DateParts: [][]int{{y}}}
	}

	nameFn := splitGivenFamily
	if r.Source == types.SourcePubMed {
		nameFn = splitFamilyInitials
	}
	for _, a := range r.Authors {
		if n := nameFn(strings.TrimSpace(a)); n != (CSLName{}) {
			item.Author = append(item.Author, n)
		}
	}
	return item
}

// splitGivenFamily handles "Given Middle Family" names.
func splitGivenFamily(name string) CSLName {
	if name == "" {
		return CSLName{}
	}
	i := strings.LastIndexByte(name, ' ')
	if i < 0 {
		return CSLName{Literal: name}
	}
	return CSLName{Given: name[:i], Family: name[i+1:]}
}

// splitFamilyInitials handles PubMed's "Family IN" form, expanding the
// initials to "I. N.".
func splitFamilyInitials(name string) CSLName {
	if name == "" {
		return CSLName{}
	}
	i := strings.LastIndexByte(name, ' ')
	if i < 0 || !allUpper(name[i+1:]) {
		return CSLName{Literal: name}
	}
	var given []string
	for _, c := range name[i+1:] {
		given = append(given, string(c)+".")
	}
	return CSLName{Family: name[:i], Given: strings.Join(given, " ")}
}

func allUpper(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if !unicode.IsUpper(c) {
			return false
		}
	}
	return true
}
