// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package textproc

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// maxFeatures caps the vocabulary at the most frequent corpus terms.
const maxFeatures = 1000

var vectorTokenRe = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Vector is a sparse, L2-normalized term-weight vector keyed by vocabulary
// index.
type Vector map[int]float64

// Dot returns the inner product of v and w.
func (v Vector) Dot(w Vector) float64 {
	if len(w) < len(v) {
		v, w = w, v
	}
	var sum float64
	for i, x := range v {
		sum += x * w[i]
	}
	return sum
}

// Norm returns the Euclidean length of v.
func (v Vector) Norm() float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// tfidfModel holds a vocabulary and smoothed inverse document frequencies:
// idf(t) = ln((1+n)/(1+df(t))) + 1.
type tfidfModel struct {
	vocab map[string]int
	idf   []float64
}

func tokenize(text string) []string {
	var out []string
	for _, tok := range vectorTokenRe.FindAllString(strings.ToLower(text), -1) {
		if _, stop := vectorStopwords[tok]; !stop {
			out = append(out, tok)
		}
	}
	return out
}

// fitTFIDF builds a model over docs and returns it with one vector per doc.
// The vocabulary keeps the maxFeatures most frequent terms; equal
// frequencies are ordered alphabetically.
func fitTFIDF(docs []string) (*tfidfModel, []Vector) {
	tokens := make([][]string, len(docs))
	total := make(map[string]int)
	df := make(map[string]int)
	for i, d := range docs {
		tokens[i] = tokenize(d)
		seen := make(map[string]bool)
		for _, t := range tokens[i] {
			total[t]++
			if !seen[t] {
				seen[t] = true
				df[t]++
			}
		}
	}

	terms := make([]string, 0, len(total))
	for t := range total {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	sort.SliceStable(terms, func(i, j int) bool { return total[terms[i]] > total[terms[j]] })
	if len(terms) > maxFeatures {
		terms = terms[:maxFeatures]
	}
	sort.Strings(terms)

	m := &tfidfModel{vocab: make(map[string]int, len(terms)), idf: make([]float64, len(terms))}
	n := float64(len(docs))
	for i, t := range terms {
		m.vocab[t] = i
		m.idf[i] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}

	rows := make([]Vector, len(docs))
	for i, toks := range tokens {
		rows[i] = m.weigh(toks)
	}
	return m, rows
}

// transform projects text into the model's term space.
func (m *tfidfModel) transform(text string) Vector {
	return m.weigh(tokenize(text))
}

func (m *tfidfModel) weigh(toks []string) Vector {
	v := make(Vector)
	for _, t := range toks {
		if i, ok := m.vocab[t]; ok {
			v[i]++
		}
	}
	for i := range v {
		v[i] *= m.idf[i]
	}
	if norm := v.Norm(); norm > 0 {
		for i := range v {
			v[i] /= norm
		}
	}
	return v
}
