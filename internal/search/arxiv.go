// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/paper-rag/internal/httputil"
	"github.com/pdiddy/paper-rag/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "http://export.arxiv.org/api/query"

// arxivAbsBase is the prefix for arXiv abstract pages.
const arxivAbsBase = "https://arxiv.org/abs/"

// ArxivSource queries the arXiv Atom API in a single step.
type ArxivSource struct {
	Client    *http.Client
	Pacer     *httputil.Pacer
	UserAgent string
}

// Tag returns the source identifier.
func (s *ArxivSource) Tag() types.SourceTag { return types.SourceArxiv }

// Search queries arXiv for up to limit entries matching query.
func (s *ArxivSource) Search(ctx context.Context, query string, limit int) ([]types.CandidateRecord, error) {
	query = strings.TrimSpace(query)
	if query == "" || limit <= 0 {
		return nil, nil
	}

	params := url.Values{
		"search_query": {"all:" + query},
		"start":        {"0"},
		"max_results":  {strconv.Itoa(limit)},
	}
	reqURL := arxivAPIBase + "?" + params.Encode()

	body, err := httputil.Fetch(ctx, s.Client, s.Pacer, httputil.Request{
		URL:       reqURL,
		UserAgent: s.UserAgent,
	})
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(bytes.NewReader(body)).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	var records []types.CandidateRecord
	for _, entry := range feed.Entries {
		arxivID := extractArxivID(entry.ID)
		title := strings.TrimSpace(entry.Title)
		if arxivID == "" || title == "" {
			continue
		}

		r := types.CandidateRecord{
			ID:                 arxivID,
			Title:              title,
			Abstract:           strings.TrimSpace(entry.Summary),
			PrimaryDocumentURL: entry.pdfLink(),
			WebRenderingURL:    arxivAbsBase + arxivID,
			Source:             types.SourceArxiv,
		}
		for _, a := range entry.Authors {
			if name := strings.TrimSpace(a.Name); name != "" {
				r.Authors = append(r.Authors, name)
			}
		}
		records = append(records, r)
	}
	return records, nil
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID      string        `xml:"id"`
	Title   string        `xml:"title"`
	Summary string        `xml:"summary"`
	Authors []arxivAuthor `xml:"author"`
	Links   []arxivLink   `xml:"link"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivLink struct {
	Href  string `xml:"href,attr"`
	Title string `xml:"title,attr"`
	Rel   string `xml:"rel,attr"`
	Type  string `xml:"type,attr"`
}

// pdfLink returns the href of the link tagged as the PDF rendering.
func (e arxivEntry) pdfLink() string {
	for _, l := range e.Links {
		if l.Title == "pdf" {
			return l.Href
		}
	}
	return ""
}

// extractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" → "2301.07041").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := idURL[idx+len(prefix):]

	// Strip version suffix (e.g. "v1", "v2").
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}
