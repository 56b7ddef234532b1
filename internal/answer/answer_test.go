// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-rag/pkg/types"
)

type fakeGenerator struct {
	reply  string
	err    error
	prompt string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.reply, f.err
}

func doc(rec types.CandidateRecord, clean, preview string) types.ProcessedDocument {
	d := types.ProcessedDocument{CleanText: clean}
	d.CandidateRecord = rec
	d.SummaryPreview = preview
	return d
}

func TestFormatCitation(t *testing.T) {
	tests := []struct {
		name string
		rec  types.CandidateRecord
		want string
	}{
		{
			"arxiv many authors",
			types.CandidateRecord{ID: "2301.07041", Title: "Attention", Authors: []string{"A", "B", "C"}, Source: types.SourceArxiv},
			"[1] A et al.. (2023). Attention *arXiv:2301.07041*.",
		},
		{
			"pubmed two authors",
			types.CandidateRecord{ID: "39000001", Title: "CRISPR Review", Authors: []string{"Doudna JA", "Charpentier E"}, Source: types.SourcePubMed},
			"[1] Doudna JA & Charpentier E. (n.d.). CRISPR Review *Retrieved from PubMed.*",
		},
		{
			"arxiv old-style id has no year",
			types.CandidateRecord{ID: "hep-th/9901001", Title: "Strings", Authors: []string{"Witten"}, Source: types.SourceArxiv},
			"[1] Witten. (n.d.). Strings *arXiv:hep-th/9901001*.",
		},
		{
			"openalex",
			types.CandidateRecord{ID: "10.1/x", Title: "T", Source: types.SourceOpenAlex},
			"[1] . (n.d.). T *Retrieved from OpenAlex (10.1/x).*",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCitation(tt.rec, 1))
		})
	}
}

func TestFormatContext(t *testing.T) {
	docs := []types.ProcessedDocument{
		doc(types.CandidateRecord{Title: "First"}, strings.Repeat("x", 3500), ""),
		doc(types.CandidateRecord{}, "", "preview text"),
	}
	got := FormatContext(docs)

	assert.Contains(t, got, "[Source 1]\nTitle: First\nSummary: "+strings.Repeat("x", 3000)+"...")
	assert.NotContains(t, got, strings.Repeat("x", 3001))
	assert.Contains(t, got, "[Source 2]\nTitle: Untitled\nSummary: preview text...")
}

func TestSynthesize(t *testing.T) {
	gen := &fakeGenerator{reply: "  ## Overview\nGene editing works. [Source 1]  "}
	docs := []types.ProcessedDocument{
		doc(types.CandidateRecord{ID: "1", Title: "CRISPR Review", Source: types.SourcePubMed}, "clean text", ""),
	}

	res := Synthesize(context.Background(), gen, "Does gene editing work?", docs)

	assert.Equal(t, "## Overview\nGene editing works. [Source 1]", res.Answer)
	require.Len(t, res.Citations, 1)
	assert.Contains(t, res.Citations[0], "CRISPR Review")
	assert.Contains(t, gen.prompt, "[Question]\nDoes gene editing work?")
	assert.Contains(t, gen.prompt, "Title: CRISPR Review")
}

func TestSynthesizeFallbacks(t *testing.T) {
	res := Synthesize(context.Background(), &fakeGenerator{}, "q", nil)
	assert.Equal(t, NoSourcesAnswer, res.Answer)
	assert.Empty(t, res.Citations)

	docs := []types.ProcessedDocument{doc(types.CandidateRecord{Title: "T"}, "c", "")}
	res = Synthesize(context.Background(), &fakeGenerator{err: errors.New("down")}, "q", docs)
	assert.Equal(t, FailedAnswer, res.Answer)
	assert.Len(t, res.Citations, 1)

	res = Synthesize(context.Background(), nil, "q", docs)
	assert.Equal(t, FailedAnswer, res.Answer)
}

func TestSynthesizeFlagsUnknownSources(t *testing.T) {
	gen := &fakeGenerator{reply: "Finding one [Source 1]. Finding two [Source 4]."}
	docs := []types.ProcessedDocument{
		doc(types.CandidateRecord{ID: "1", Title: "A"}, "c", ""),
		doc(types.CandidateRecord{ID: "2", Title: "B"}, "c", ""),
	}
	res := Synthesize(context.Background(), gen, "q", docs)
	assert.Equal(t, []int{4}, res.UnknownSources)
}

func TestSourceRefs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []int
	}{
		{"single", "Claim [Source 2].", []int{2}},
		{"semicolon list", "Claim [Source 1; Source 3].", []int{1, 3}},
		{"comma list", "Claim [Source 3, 1].", []int{1, 3}},
		{"duplicates collapse", "[Source 2] and again [Source 2]", []int{2}},
		{"ignores other brackets", "See [link](x) and [1].", []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SourceRefs(tt.text))
		})
	}
}

func TestUnknownAndUncitedSources(t *testing.T) {
	text := "A [Source 1]. B [Source 3; Source 5]."
	assert.Equal(t, []int{5}, UnknownSources(text, 4))
	assert.Equal(t, []int{2, 4}, UncitedSources(text, 4))
	assert.Nil(t, UnknownSources("no refs", 2))
}
