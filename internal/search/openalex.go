// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/paper-rag/internal/httputil"
	"github.com/pdiddy/paper-rag/pkg/types"
)

// openAlexSearchBase is the OpenAlex Works search endpoint. Declared as a
// var so tests can substitute an httptest server.
var openAlexSearchBase = "https://api.openalex.org/works"

// openAlexMaxPerPage is the largest page size OpenAlex accepts.
const openAlexMaxPerPage = 200

// OpenAlexSource queries the OpenAlex Works API. It is the only source that
// can advertise an open-access PDF for DOI-registered works.
type OpenAlexSource struct {
	Client    *http.Client
	Pacer     *httputil.Pacer
	UserAgent string
	// Email is sent as mailto parameter for polite pool access.
	Email string
}

// Tag returns the source identifier.
func (s *OpenAlexSource) Tag() types.SourceTag { return types.SourceOpenAlex }

// Search queries OpenAlex for up to limit works matching query.
func (s *OpenAlexSource) Search(ctx context.Context, query string, limit int) ([]types.CandidateRecord, error) {
	query = strings.TrimSpace(query)
	if query == "" || limit <= 0 {
		return nil, nil
	}
	if limit > openAlexMaxPerPage {
		limit = openAlexMaxPerPage
	}

	params := url.Values{
		"search":   {query},
		"per_page": {strconv.Itoa(limit)},
		"page":     {"1"},
	}
	if s.Email != "" {
		params.Set("mailto", s.Email)
	}

	body, err := httputil.Fetch(ctx, s.Client, s.Pacer, httputil.Request{
		URL:       openAlexSearchBase + "?" + params.Encode(),
		UserAgent: s.UserAgent,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAlex API request: %w", err)
	}

	var oar openAlexResponse
	if err := json.Unmarshal(body, &oar); err != nil {
		return nil, fmt.Errorf("parsing OpenAlex response: %w", err)
	}

	var records []types.CandidateRecord
	for _, w := range oar.Results {
		if r, ok := w.record(); ok {
			records = append(records, r)
		}
	}
	return records, nil
}

// record maps one work to a candidate. Untitled works are dropped. The bare
// DOI is the identifier when present, else the OpenAlex work key.
func (w openAlexWork) record() (types.CandidateRecord, bool) {
	title := strings.TrimSpace(w.Title)
	if title == "" {
		return types.CandidateRecord{}, false
	}
	r := types.CandidateRecord{
		ID:              strings.TrimPrefix(w.ID, "https://openalex.org/"),
		Title:           title,
		Abstract:        reconstructAbstract(w.AbstractInvertedIndex),
		WebRenderingURL: w.DOI,
		Source:          types.SourceOpenAlex,
	}
	if w.DOI != "" {
		r.ID = strings.TrimPrefix(w.DOI, "https://doi.org/")
	}
	for _, a := range w.Authorships {
		if a.Author.DisplayName != "" {
			r.Authors = append(r.Authors, a.Author.DisplayName)
		}
	}
	if loc := w.BestOALocation; loc != nil {
		r.PrimaryDocumentURL = loc.PDFURL
		if loc.LandingURL != "" {
			r.WebRenderingURL = loc.LandingURL
		}
	}
	return r, true
}

// reconstructAbstract rebuilds the text from OpenAlex's inverted index, which
// maps each word to the positions it occupies. Gaps in the positions are
// skipped.
func reconstructAbstract(index map[string][]int) string {
	n := 0
	for _, positions := range index {
		for _, p := range positions {
			n = max(n, p+1)
		}
	}
	if n == 0 {
		return ""
	}
	slots := make([]string, n)
	for word, positions := range index {
		for _, p := range positions {
			if p >= 0 {
				slots[p] = word
			}
		}
	}
	words := slots[:0]
	for _, w := range slots {
		if w != "" {
			words = append(words, w)
		}
	}
	return strings.Join(words, " ")
}

// OpenAlex API JSON structures.
type openAlexResponse struct {
	Results []openAlexWork `json:"results"`
}

type openAlexWork struct {
	ID                    string               `json:"id"`
	Title                 string               `json:"title"`
	DOI                   string               `json:"doi"`
	Authorships           []openAlexAuthorship `json:"authorships"`
	AbstractInvertedIndex map[string][]int     `json:"abstract_inverted_index"`
	BestOALocation        *openAlexLocation    `json:"best_oa_location"`
}

type openAlexAuthorship struct {
	Author struct {
		DisplayName string `json:"display_name"`
	} `json:"author"`
}

type openAlexLocation struct {
	PDFURL     string `json:"pdf_url"`
	LandingURL string `json:"landing_page_url"`
}
