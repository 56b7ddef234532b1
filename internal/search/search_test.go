// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-rag/pkg/types"
)

// --- mock source ---

type mockSource struct {
	tag     types.SourceTag
	records []types.CandidateRecord
	err     error

	mu     sync.Mutex
	calls  int
	query  string
	limits []int
}

func (m *mockSource) Tag() types.SourceTag { return m.tag }

func (m *mockSource) Search(_ context.Context, query string, limit int) ([]types.CandidateRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.query = query
	m.limits = append(m.limits, limit)
	if m.err != nil {
		return nil, m.err
	}
	if len(m.records) > limit {
		return m.records[:limit], nil
	}
	return m.records, nil
}

type mockTranslator struct {
	phrase string
	err    error
	calls  atomic.Int32
}

func (m *mockTranslator) Translate(context.Context, []string) (string, error) {
	m.calls.Add(1)
	return m.phrase, m.err
}

func rec(id, title string, src types.SourceTag) types.CandidateRecord {
	return types.CandidateRecord{ID: id, Title: title, Source: src}
}

// --- Deduplicate ---

func TestDeduplicateCaseInsensitiveTitles(t *testing.T) {
	in := []types.CandidateRecord{
		rec("1", "Deep Learning Survey", types.SourcePubMed),
		rec("2", "deep learning survey", types.SourceArxiv),
		rec("3", "CRISPR Review", types.SourceArxiv),
	}

	got := Deduplicate(in)
	require.Len(t, got, 2)

	// First occurrence keeps its slot but the later record wins.
	assert.Equal(t, "2", got[0].ID)
	assert.Equal(t, types.SourceArxiv, got[0].Source)
	assert.Equal(t, "3", got[1].ID)
}

func TestDeduplicateTrimsWhitespace(t *testing.T) {
	in := []types.CandidateRecord{
		rec("a", "  Attention Is All You Need ", types.SourceArxiv),
		rec("b", "attention is all you need", types.SourceOpenAlex),
	}
	got := Deduplicate(in)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)
}

func TestDeduplicateNoDuplicates(t *testing.T) {
	in := []types.CandidateRecord{
		rec("1", "Paper A", types.SourceArxiv),
		rec("2", "Paper B", types.SourceArxiv),
	}
	assert.Equal(t, in, Deduplicate(in))
}

func TestDeduplicateEmpty(t *testing.T) {
	assert.Empty(t, Deduplicate(nil))
}

// --- Aggregator.SearchAll ---

func TestSearchAllEmptyKeywordsSkipsSources(t *testing.T) {
	src := &mockSource{tag: types.SourceArxiv, records: []types.CandidateRecord{rec("1", "A", types.SourceArxiv)}}
	tr := &mockTranslator{phrase: "ignored"}
	agg := NewAggregator([]Source{src}, WithTranslator(tr))

	out := agg.SearchAll(context.Background(), nil, 10)

	assert.Empty(t, out.Records)
	assert.Zero(t, src.calls)
	assert.Zero(t, tr.calls.Load())
}

func TestSearchAllNoSources(t *testing.T) {
	agg := NewAggregator(nil)
	out := agg.SearchAll(context.Background(), []string{"crispr"}, 10)
	assert.Empty(t, out.Records)
}

func TestSearchAllMergesInSourceOrder(t *testing.T) {
	pub := &mockSource{tag: types.SourcePubMed, records: []types.CandidateRecord{
		rec("p1", "Deep Learning Survey", types.SourcePubMed),
		rec("p2", "Gene Editing", types.SourcePubMed),
	}}
	arx := &mockSource{tag: types.SourceArxiv, records: []types.CandidateRecord{
		rec("a1", "deep learning survey", types.SourceArxiv),
		rec("a2", "CRISPR Review", types.SourceArxiv),
	}}
	agg := NewAggregator([]Source{pub, arx})

	out := agg.SearchAll(context.Background(), []string{"deep", "learning"}, 10)

	require.Len(t, out.Records, 3)
	assert.Equal(t, "a1", out.Records[0].ID)
	assert.Equal(t, "p2", out.Records[1].ID)
	assert.Equal(t, "a2", out.Records[2].ID)
	assert.Equal(t, 4, out.Found)
	assert.Equal(t, 1, out.DupsRemoved)
	assert.Empty(t, out.SourceErrors)
}

func TestSearchAllCaseInsensitiveTitleDuplicate(t *testing.T) {
	pub := &mockSource{tag: types.SourcePubMed, records: []types.CandidateRecord{
		rec("p1", "Deep Learning Survey", types.SourcePubMed),
	}}
	arx := &mockSource{tag: types.SourceArxiv, records: []types.CandidateRecord{
		rec("a1", "deep learning survey", types.SourceArxiv),
		rec("a2", "CRISPR Review", types.SourceArxiv),
	}}
	agg := NewAggregator([]Source{pub, arx})

	out := agg.SearchAll(context.Background(), []string{"deep", "learning"}, 10)

	require.Len(t, out.Records, 2)
	assert.Equal(t, "deep learning survey", out.Records[0].Title)
	assert.Equal(t, "CRISPR Review", out.Records[1].Title)
	assert.Equal(t, 3, out.Found)
	assert.Equal(t, 1, out.DupsRemoved)
}

func TestSearchAllSplitsBudgetAcrossSources(t *testing.T) {
	a := &mockSource{tag: types.SourcePubMed}
	b := &mockSource{tag: types.SourceArxiv}
	agg := NewAggregator([]Source{a, b})

	agg.SearchAll(context.Background(), []string{"x"}, 15)

	assert.Equal(t, []int{7}, a.limits)
	assert.Equal(t, []int{7}, b.limits)
}

func TestSearchAllSkipsSourcesWhenBudgetTooSmall(t *testing.T) {
	a := &mockSource{tag: types.SourcePubMed}
	b := &mockSource{tag: types.SourceArxiv}
	agg := NewAggregator([]Source{a, b})

	out := agg.SearchAll(context.Background(), []string{"x"}, 1)

	assert.Zero(t, a.calls)
	assert.Zero(t, b.calls)
	assert.Empty(t, out.Records)
}

func TestSearchAllDefaultBudget(t *testing.T) {
	a := &mockSource{tag: types.SourceArxiv}
	agg := NewAggregator([]Source{a}, WithDefaultBudget(4))

	agg.SearchAll(context.Background(), []string{"x"}, 0)

	assert.Equal(t, []int{4}, a.limits)
}

func TestSearchAllTruncatesToBudget(t *testing.T) {
	var many []types.CandidateRecord
	for _, title := range []string{"A", "B", "C", "D", "E"} {
		many = append(many, rec(title, title, types.SourceArxiv))
	}
	a := &mockSource{tag: types.SourceArxiv, records: many}
	agg := NewAggregator([]Source{a})

	out := agg.SearchAll(context.Background(), []string{"x"}, 3)

	require.Len(t, out.Records, 3)
	assert.Equal(t, "A", out.Records[0].ID)
}

func TestSearchAllFailingSourceIsSoft(t *testing.T) {
	bad := &mockSource{tag: types.SourcePubMed, err: errors.New("connection refused")}
	good := &mockSource{tag: types.SourceArxiv, records: []types.CandidateRecord{
		rec("a1", "CRISPR Review", types.SourceArxiv),
	}}
	agg := NewAggregator([]Source{bad, good})

	out := agg.SearchAll(context.Background(), []string{"crispr"}, 10)

	require.Len(t, out.Records, 1)
	assert.Equal(t, "a1", out.Records[0].ID)
	require.Len(t, out.SourceErrors, 1)
	assert.Contains(t, out.SourceErrors[0], "pubmed")
	assert.Contains(t, out.SourceErrors[0], "connection refused")
}

func TestSearchAllUsesTranslatedPhrase(t *testing.T) {
	a := &mockSource{tag: types.SourceArxiv}
	tr := &mockTranslator{phrase: "  gene editing  "}
	agg := NewAggregator([]Source{a}, WithTranslator(tr))

	out := agg.SearchAll(context.Background(), []string{"édition", "génique"}, 5)

	assert.Equal(t, "gene editing", out.Phrase)
	assert.Equal(t, "gene editing", a.query)
	assert.EqualValues(t, 1, tr.calls.Load())
}

func TestSearchAllTranslatorFallback(t *testing.T) {
	tests := []struct {
		name string
		tr   Translator
	}{
		{"no translator", nil},
		{"translator error", &mockTranslator{err: errors.New("model offline")}},
		{"empty translation", &mockTranslator{phrase: "   "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &mockSource{tag: types.SourceArxiv}
			var opts []Option
			if tt.tr != nil {
				opts = append(opts, WithTranslator(tt.tr))
			}
			agg := NewAggregator([]Source{a}, opts...)

			out := agg.SearchAll(context.Background(), []string{"gene", "editing"}, 5)

			assert.Equal(t, "gene editing", out.Phrase)
			assert.Equal(t, "gene editing", a.query)
		})
	}
}

type untaggedSource struct{}

func (untaggedSource) Search(context.Context, string, int) ([]types.CandidateRecord, error) {
	return nil, errors.New("boom")
}

func TestSourceNameFallsBackToType(t *testing.T) {
	assert.Equal(t, "pubmed", sourceName(&mockSource{tag: types.SourcePubMed}))
	assert.Equal(t, "search.untaggedSource", sourceName(untaggedSource{}))
}
