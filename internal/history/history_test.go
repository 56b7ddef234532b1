// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-rag/pkg/types"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRun(query string) Run {
	score := 0.42
	return Run{
		Query:             query,
		Keywords:          []string{"gene", "editing"},
		Phrase:            "gene editing",
		StartedAt:         time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Found:             8,
		DuplicatesRemoved: 2,
		Extracted:         5,
		Dropped:           1,
		Answer:            "Overview of gene editing.",
		Documents: []RunDocument{
			{Rank: 1, Source: types.SourcePubMed, DocID: "123", Title: "CRISPR", ContentType: types.ContentAbstract, Score: &score, Citation: "Doe J. (n.d.). CRISPR."},
			{Rank: 2, Source: types.SourceArxiv, DocID: "2401.00001", Title: "Base editing", ContentType: types.ContentPrimary},
		},
	}
}

func TestRecordAndGet(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	id, err := s.Record(ctx, sampleRun("how does gene editing work"))
	require.NoError(t, err)
	assert.Positive(t, id)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "how does gene editing work", got.Query)
	assert.Equal(t, []string{"gene", "editing"}, got.Keywords)
	assert.Equal(t, 8, got.Found)
	assert.Equal(t, 2, got.DuplicatesRemoved)
	assert.True(t, got.StartedAt.Equal(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)))

	require.Len(t, got.Documents, 2)
	assert.Equal(t, "CRISPR", got.Documents[0].Title)
	require.NotNil(t, got.Documents[0].Score)
	assert.InDelta(t, 0.42, *got.Documents[0].Score, 1e-9)
	assert.Nil(t, got.Documents[1].Score)
	assert.Equal(t, types.ContentPrimary, got.Documents[1].ContentType)
}

func TestGetMissing(t *testing.T) {
	s := openStore(t)
	_, err := s.Get(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListNewestFirst(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	for _, q := range []string{"first", "second", "third"} {
		_, err := s.Record(ctx, sampleRun(q))
		require.NoError(t, err)
	}

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "third", all[0].Query)
	assert.Empty(t, all[0].Documents)

	limited, err := s.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestSearch(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	_, err := s.Record(ctx, sampleRun("protein folding"))
	require.NoError(t, err)
	_, err = s.Record(ctx, sampleRun("gene therapy"))
	require.NoError(t, err)

	got, err := s.Search(ctx, "folding", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "protein folding", got[0].Query)
}

func TestReopenKeepsRuns(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	_, err = s.Record(context.Background(), sampleRun("persisted"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(dir)
	require.NoError(t, err)
	defer s.Close()
	runs, err := s.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "persisted", runs[0].Query)
}

func TestExportYAML(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	_, err := s.Record(ctx, sampleRun("exported"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.ExportYAML(ctx, &buf))

	var runs []Run
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "exported", runs[0].Query)
	assert.Len(t, runs[0].Documents, 2)
}

func TestExportJSONEmpty(t *testing.T) {
	s := openStore(t)
	var buf bytes.Buffer
	require.NoError(t, s.ExportJSON(context.Background(), &buf))

	var runs []Run
	require.NoError(t, json.Unmarshal(buf.Bytes(), &runs))
	assert.Empty(t, runs)
	assert.Equal(t, "[]\n", buf.String())
}

func TestFromDocuments(t *testing.T) {
	score := 0.9
	docs := []types.ProcessedDocument{
		{ExtractedRecord: types.ExtractedRecord{
			CandidateRecord: types.CandidateRecord{ID: "a", Title: "A", Source: types.SourceArxiv},
			ContentType:     types.ContentSecondary,
		}, RelevanceScore: &score},
		{ExtractedRecord: types.ExtractedRecord{
			CandidateRecord: types.CandidateRecord{ID: "b", Title: "B", Source: types.SourcePubMed},
		}},
	}

	got := FromDocuments(docs, []string{"cite a"})
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, "cite a", got[0].Citation)
	assert.Equal(t, &score, got[0].Score)
	assert.Equal(t, 2, got[1].Rank)
	assert.Empty(t, got[1].Citation)
	assert.Nil(t, got[1].Score)
}
