// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank orders a fitted corpus by cosine similarity to a query.
package rank

import (
	"log/slog"
	"sort"

	"github.com/pdiddy/paper-rag/internal/textproc"
	"github.com/pdiddy/paper-rag/pkg/types"
)

// Rank returns up to topK documents from corpus ordered by descending
// cosine similarity to query, each carrying its score. Equal scores keep
// registration order. When the corpus has no vector space the first topK
// documents are returned in registration order with no score.
//
// Returned documents are copies; the corpus is never modified.
func Rank(corpus *textproc.Corpus, query string, topK int) []types.ProcessedDocument {
	n := corpus.Len()
	if topK <= 0 || n == 0 {
		return nil
	}
	if topK > n {
		topK = n
	}

	if !corpus.Fitted() {
		out := make([]types.ProcessedDocument, topK)
		for i := range out {
			out[i] = *corpus.Document(i)
			out[i].RelevanceScore = nil
		}
		slog.Debug("ranking in registration order", "returned", topK)
		return out
	}

	q := corpus.Project(query)
	type scored struct {
		idx   int
		score float64
	}
	all := make([]scored, n)
	for i := range all {
		all[i] = scored{idx: i, score: Cosine(q, corpus.Row(i))}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].score > all[j].score })

	out := make([]types.ProcessedDocument, topK)
	for i := range out {
		s := all[i].score
		out[i] = *corpus.Document(all[i].idx)
		out[i].RelevanceScore = &s
	}
	slog.Debug("ranked corpus", "query", query, "returned", topK, "top_score", all[0].score)
	return out
}

// Cosine returns the cosine similarity of a and b, or 0 when either is
// empty.
func Cosine(a, b textproc.Vector) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	return a.Dot(b) / (na * nb)
}
