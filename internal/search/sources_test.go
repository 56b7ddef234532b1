// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-rag/pkg/types"
)

const sampleArxivFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2301.07041v2</id>
    <title>
      Attention Is All You Need
    </title>
    <summary>  We propose a new simple network architecture.  </summary>
    <author><name>Ashish Vaswani</name></author>
    <author><name> Noam Shazeer </name></author>
    <link href="http://arxiv.org/abs/2301.07041v2" rel="alternate" type="text/html"/>
    <link title="pdf" href="http://arxiv.org/pdf/2301.07041v2" rel="related" type="application/pdf"/>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2302.00001v1</id>
    <title>No PDF Link</title>
    <summary>Short.</summary>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2302.00002v1</id>
    <title>   </title>
  </entry>
</feed>`

func TestArxivSourceSearch(t *testing.T) {
	var gotQuery url.Values
	var gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotUA = r.Header.Get("User-Agent")
		fmt.Fprint(w, sampleArxivFeed)
	}))
	defer ts.Close()

	old := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = old }()

	s := &ArxivSource{Client: ts.Client(), UserAgent: "test/0.1"}
	recs, err := s.Search(context.Background(), "attention mechanisms", 5)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "all:attention mechanisms", gotQuery.Get("search_query"))
	assert.Equal(t, "0", gotQuery.Get("start"))
	assert.Equal(t, "5", gotQuery.Get("max_results"))
	assert.Equal(t, "test/0.1", gotUA)

	r0 := recs[0]
	assert.Equal(t, "2301.07041", r0.ID)
	assert.Equal(t, "Attention Is All You Need", r0.Title)
	assert.Equal(t, []string{"Ashish Vaswani", "Noam Shazeer"}, r0.Authors)
	assert.Equal(t, "We propose a new simple network architecture.", r0.Abstract)
	assert.Equal(t, "http://arxiv.org/pdf/2301.07041v2", r0.PrimaryDocumentURL)
	assert.Equal(t, "https://arxiv.org/abs/2301.07041", r0.WebRenderingURL)
	assert.Equal(t, types.SourceArxiv, r0.Source)

	assert.Empty(t, recs[1].PrimaryDocumentURL)
}

func TestArxivSourceEscapesQuery(t *testing.T) {
	var got []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.URL.Query().Get("search_query"))
		fmt.Fprint(w, `<feed xmlns="http://www.w3.org/2005/Atom"></feed>`)
	}))
	defer ts.Close()

	old := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = old }()

	s := &ArxivSource{Client: ts.Client()}
	for _, q := range []string{"R&D funding", "C++ compilers", "p=0.05 thresholds"} {
		_, err := s.Search(context.Background(), q, 3)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"all:R&D funding", "all:C++ compilers", "all:p=0.05 thresholds"}, got)
}

func TestArxivSourceHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	old := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = old }()

	s := &ArxivSource{Client: ts.Client()}
	_, err := s.Search(context.Background(), "x", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 500")
}

func TestArxivSourceEmptyQuery(t *testing.T) {
	s := &ArxivSource{}
	recs, err := s.Search(context.Background(), "  ", 5)
	assert.NoError(t, err)
	assert.Nil(t, recs)
}

func TestExtractArxivID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"http://arxiv.org/abs/2301.07041v1", "2301.07041"},
		{"http://arxiv.org/abs/2301.07041", "2301.07041"},
		{"http://arxiv.org/abs/hep-th/9901001v3", "hep-th/9901001"},
		{"http://example.com/nothing", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractArxivID(tt.in), tt.in)
	}
}

const samplePubMedSearch = `{"esearchresult": {"count": "2", "idlist": ["39000002", "39000001"]}}`

const samplePubMedSummary = `{
  "result": {
    "uids": ["39000002", "39000001"],
    "39000001": {
      "uid": "39000001",
      "title": "Base editing in primary cells",
      "authors": [{"name": "Liu DR"}, {"name": ""}],
      "elocationid": "doi: 10.1000/base.1"
    },
    "39000002": {
      "uid": "39000002",
      "title": " CRISPR Review ",
      "authors": [{"name": "Doudna JA"}, {"name": "Charpentier E"}],
      "elocationid": ""
    }
  }
}`

func TestPubMedSourceSearch(t *testing.T) {
	var summaryIDs string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "esearch.fcgi"):
			assert.Equal(t, "pubmed", r.URL.Query().Get("db"))
			assert.Equal(t, "crispr", r.URL.Query().Get("term"))
			assert.Equal(t, "7", r.URL.Query().Get("retmax"))
			fmt.Fprint(w, samplePubMedSearch)
		case strings.HasSuffix(r.URL.Path, "esummary.fcgi"):
			summaryIDs = r.URL.Query().Get("id")
			fmt.Fprint(w, samplePubMedSummary)
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	old := pubmedAPIBase
	pubmedAPIBase = ts.URL + "/"
	defer func() { pubmedAPIBase = old }()

	s := &PubMedSource{Client: ts.Client()}
	recs, err := s.Search(context.Background(), "crispr", 7)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "39000002,39000001", summaryIDs)

	// esearch order is preserved.
	assert.Equal(t, "39000002", recs[0].ID)
	assert.Equal(t, "CRISPR Review", recs[0].Title)
	assert.Equal(t, []string{"Doudna JA", "Charpentier E"}, recs[0].Authors)
	assert.Equal(t, "https://pubmed.ncbi.nlm.nih.gov/39000002/", recs[0].WebRenderingURL)
	assert.Empty(t, recs[0].PrimaryDocumentURL)
	assert.Equal(t, types.SourcePubMed, recs[0].Source)

	assert.Equal(t, "doi: 10.1000/base.1", recs[1].Abstract)
	assert.Equal(t, []string{"Liu DR"}, recs[1].Authors)
}

func TestPubMedSourceLogsSkippedSummaries(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "esearch.fcgi") {
			fmt.Fprint(w, `{"esearchresult": {"idlist": ["39000001", "39000003", "39000004"]}}`)
			return
		}
		fmt.Fprint(w, `{"result": {
  "uids": ["39000001", "39000003"],
  "39000001": {"title": "Kept"},
  "39000003": "not an object"
}}`)
	}))
	defer ts.Close()

	old := pubmedAPIBase
	pubmedAPIBase = ts.URL + "/"
	defer func() { pubmedAPIBase = old }()

	var logs bytes.Buffer
	s := &PubMedSource{Client: ts.Client(), Logger: slog.New(slog.NewTextHandler(&logs, nil))}
	recs, err := s.Search(context.Background(), "crispr", 5)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "39000001", recs[0].ID)

	out := logs.String()
	assert.Contains(t, out, "skipping undecodable esummary record")
	assert.Contains(t, out, "record_id=39000003")
	assert.Contains(t, out, "esummary missing record")
	assert.Contains(t, out, "record_id=39000004")
}

func TestPubMedSourceNoHits(t *testing.T) {
	var summaryCalled bool
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "esummary.fcgi") {
			summaryCalled = true
		}
		fmt.Fprint(w, `{"esearchresult": {"idlist": []}}`)
	}))
	defer ts.Close()

	old := pubmedAPIBase
	pubmedAPIBase = ts.URL + "/"
	defer func() { pubmedAPIBase = old }()

	s := &PubMedSource{Client: ts.Client()}
	recs, err := s.Search(context.Background(), "nothing matches", 5)
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.False(t, summaryCalled)
}

func TestPubMedSourceMalformedJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{not json`)
	}))
	defer ts.Close()

	old := pubmedAPIBase
	pubmedAPIBase = ts.URL + "/"
	defer func() { pubmedAPIBase = old }()

	s := &PubMedSource{Client: ts.Client()}
	_, err := s.Search(context.Background(), "crispr", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "esearch")
}
