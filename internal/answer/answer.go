// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package answer hands ranked documents to a chat model and formats the
// citation list that accompanies the generated answer.
package answer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/pdiddy/paper-rag/pkg/types"
)

const (
	// maxExcerptChars bounds each document's excerpt in the prompt.
	maxExcerptChars = 3000

	// NoSourcesAnswer is returned when ranking produced no documents.
	NoSourcesAnswer = "No relevant papers were found, so no answer could be generated."

	// FailedAnswer is returned when the model call fails.
	FailedAnswer = "An error occurred while generating the answer."
)

// Generator produces a completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Result is the synthesized answer and its numbered citations.
type Result struct {
	Answer    string   `json:"answer" yaml:"answer"`
	Citations []string `json:"citations" yaml:"citations"`

	// UnknownSources lists [Source n] references in the answer with no
	// matching document.
	UnknownSources []int `json:"unknown_sources,omitempty" yaml:"unknown_sources,omitempty"`
}

var answerPromptTmpl = template.Must(template.New("answer").Parse(`You are a research analyst who reads academic literature and summarizes its key findings.
Using only the Documents below, answer the Question in the following format.

## Overview
- Summarize the core answer to the question in 2 to 3 sentences.

## Key Points
- List the main facts or evidence found in the documents as bullet points.
- Mark each **key term** in bold and end every bullet with its source as [Source 1], [Source 2], and so on.

## Conclusion
- Conclude with one sentence that synthesizes the whole answer.

---
[Documents]
{{.Context}}
---
[Question]
{{.Question}}
---
[Answer]
`))

// Synthesize generates an answer to question from docs. It never fails:
// an empty document list or a model error yields a fixed answer, and
// citations are built whenever documents exist.
func Synthesize(ctx context.Context, gen Generator, question string, docs []types.ProcessedDocument) Result {
	if len(docs) == 0 {
		return Result{Answer: NoSourcesAnswer, Citations: []string{}}
	}
	res := Result{Citations: Citations(docs)}

	var buf bytes.Buffer
	if err := answerPromptTmpl.Execute(&buf, struct {
		Context  string
		Question string
	}{FormatContext(docs), question}); err != nil {
		slog.Error("rendering answer prompt", "err", err)
		res.Answer = FailedAnswer
		return res
	}

	if gen == nil {
		res.Answer = FailedAnswer
		return res
	}
	out, err := gen.Generate(ctx, buf.String())
	if err != nil {
		slog.Error("answer generation failed", "err", err)
		res.Answer = FailedAnswer
		return res
	}
	res.Answer = strings.TrimSpace(out)
	if res.UnknownSources = UnknownSources(res.Answer, len(docs)); len(res.UnknownSources) > 0 {
		slog.Warn("answer cites sources that were not provided", "sources", res.UnknownSources)
	}
	return res
}

// FormatContext renders docs as numbered source blocks with a title and an
// excerpt of at most 3000 characters.
func FormatContext(docs []types.ProcessedDocument) string {
	blocks := make([]string, len(docs))
	for i, d := range docs {
		title := d.Title
		if title == "" {
			title = "Untitled"
		}
		excerpt := []rune(d.Excerpt())
		if len(excerpt) > maxExcerptChars {
			excerpt = excerpt[:maxExcerptChars]
		}
		blocks[i] = fmt.Sprintf("[Source %d]\nTitle: %s\nSummary: %s...", i+1, title, string(excerpt))
	}
	return strings.Join(blocks, "\n\n")
}

// Citations formats one numbered citation per document.
func Citations(docs []types.ProcessedDocument) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = FormatCitation(d.CandidateRecord, i+1)
	}
	return out
}

// FormatCitation renders rec as "[n] Authors. (year). Title" followed by a
// source marker. More than two authors collapse to "First et al."; arXiv
// years come from the identifier's YYMM prefix.
func FormatCitation(rec types.CandidateRecord, n int) string {
	var authors string
	switch {
	case len(rec.Authors) > 2:
		authors = rec.Authors[0] + " et al."
	default:
		authors = strings.Join(rec.Authors, " & ")
	}

	year := rec.Year()
	if year == "" {
		year = "n.d."
	}

	title := rec.Title
	if title == "" {
		title = "Untitled"
	}

	switch rec.Source {
	case types.SourceArxiv:
		return fmt.Sprintf("[%d] %s. (%s). %s *arXiv:%s*.", n, authors, year, title, rec.ID)
	case types.SourceOpenAlex:
		return fmt.Sprintf("[%d] %s. (%s). %s *Retrieved from OpenAlex (%s).*", n, authors, year, title, rec.ID)
	default:
		return fmt.Sprintf("[%d] %s. (%s). %s *Retrieved from PubMed.*", n, authors, year, title)
	}
}
