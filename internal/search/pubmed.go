// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/paper-rag/internal/httputil"
	"github.com/pdiddy/paper-rag/pkg/types"
)

// pubmedAPIBase is the NCBI E-utilities base URL. Declared as a var so
// tests can substitute an httptest server.
var pubmedAPIBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/"

// pubmedWebBase is the prefix for PubMed article pages.
const pubmedWebBase = "https://pubmed.ncbi.nlm.nih.gov/"

// PubMedSource queries PubMed in two steps: esearch for matching PMIDs,
// then esummary for their metadata.
type PubMedSource struct {
	Client    *http.Client
	Pacer     *httputil.Pacer
	UserAgent string
	// Logger receives per-record skip events. Nil uses slog.Default().
	Logger *slog.Logger
}

// Tag returns the source identifier.
func (s *PubMedSource) Tag() types.SourceTag { return types.SourcePubMed }

func (s *PubMedSource) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default().With("component", "pubmed")
}

// Search queries PubMed for up to limit articles matching query. Records
// keep esearch order.
func (s *PubMedSource) Search(ctx context.Context, query string, limit int) ([]types.CandidateRecord, error) {
	query = strings.TrimSpace(query)
	if query == "" || limit <= 0 {
		return nil, nil
	}

	ids, err := s.searchIDs(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	summaries, err := s.fetchSummaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	var records []types.CandidateRecord
	for _, pmid := range ids {
		raw, ok := summaries[pmid]
		if !ok {
			s.logger().Warn("esummary missing record", "source", types.SourcePubMed, "record_id", pmid)
			continue
		}
		var doc pubmedSummary
		if err := json.Unmarshal(raw, &doc); err != nil {
			s.logger().Warn("skipping undecodable esummary record",
				"source", types.SourcePubMed, "record_id", pmid, "err", err)
			continue
		}
		title := strings.TrimSpace(doc.Title)
		if title == "" {
			continue
		}

		r := types.CandidateRecord{
			ID:              pmid,
			Title:           title,
			Abstract:        doc.ELocationID,
			WebRenderingURL: pubmedWebBase + pmid + "/",
			Source:          types.SourcePubMed,
		}
		for _, a := range doc.Authors {
			if a.Name != "" {
				r.Authors = append(r.Authors, a.Name)
			}
		}
		records = append(records, r)
	}
	return records, nil
}

func (s *PubMedSource) searchIDs(ctx context.Context, query string, limit int) ([]string, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"term":    {query},
		"retmax":  {strconv.Itoa(limit)},
		"retmode": {"json"},
	}
	body, err := httputil.Fetch(ctx, s.Client, s.Pacer, httputil.Request{
		URL:       pubmedAPIBase + "esearch.fcgi?" + params.Encode(),
		UserAgent: s.UserAgent,
	})
	if err != nil {
		return nil, fmt.Errorf("PubMed esearch request: %w", err)
	}

	var sr pubmedSearchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("parsing PubMed esearch response: %w", err)
	}
	return sr.Result.IDList, nil
}

func (s *PubMedSource) fetchSummaries(ctx context.Context, ids []string) (map[string]json.RawMessage, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(ids, ",")},
		"retmode": {"json"},
	}
	body, err := httputil.Fetch(ctx, s.Client, s.Pacer, httputil.Request{
		URL:       pubmedAPIBase + "esummary.fcgi?" + params.Encode(),
		UserAgent: s.UserAgent,
	})
	if err != nil {
		return nil, fmt.Errorf("PubMed esummary request: %w", err)
	}

	// The result object mixes per-PMID documents with a "uids" array, so
	// documents are decoded lazily by key.
	var sr pubmedSummaryResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("parsing PubMed esummary response: %w", err)
	}
	return sr.Result, nil
}

// PubMed E-utilities JSON structures.
type pubmedSearchResponse struct {
	Result struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

type pubmedSummaryResponse struct {
	Result map[string]json.RawMessage `json:"result"`
}

type pubmedSummary struct {
	Title       string         `json:"title"`
	Authors     []pubmedAuthor `json:"authors"`
	ELocationID string         `json:"elocationid"`
}

type pubmedAuthor struct {
	Name string `json:"name"`
}
