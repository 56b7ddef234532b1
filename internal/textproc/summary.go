// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package textproc

import (
	"sort"
	"strings"

	"github.com/pdiddy/paper-rag/pkg/types"
)

// sentenceSep splits cleaned text into sentences; Clean joins with it.
const sentenceSep = ". "

// Summarize selects up to target sentences from cleaned text and returns
// them in document order. Text with target sentences or fewer is returned
// whole, split into its sentences.
//
// Each sentence scores +1 for 10 to 30 words, +0.5 when it lies in the
// first 30% of the text, and +0.2 per keyword it yields (at most
// keywordCount). The highest scores win; equal scores prefer the earlier
// sentence.
func Summarize(text string, target, keywordCount int) []string {
	if text == "" {
		return nil
	}
	sentences := strings.Split(text, sentenceSep)
	if target <= 0 || len(sentences) <= target {
		return sentences
	}

	type scored struct {
		pos   int
		score float64
	}
	ranked := make([]scored, len(sentences))
	early := float64(len(sentences)) * 0.3
	for i, s := range sentences {
		score := 0.0
		if n := len(strings.Fields(s)); n >= 10 && n <= 30 {
			score += 1
		}
		if float64(i) < early {
			score += 0.5
		}
		score += 0.2 * float64(len(Keywords(s, keywordCount)))
		ranked[i] = scored{pos: i, score: score}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	picked := ranked[:target]
	sort.Slice(picked, func(i, j int) bool { return picked[i].pos < picked[j].pos })

	out := make([]string, len(picked))
	for i, p := range picked {
		out[i] = sentences[p.pos]
	}
	return out
}

// Stats computes size statistics for text. Sentences are counted by
// splitting on periods; both averages divide by at least one.
func Stats(text string) types.TextStats {
	chars := len([]rune(text))
	words := len(strings.Fields(text))
	sentences := len(strings.Split(text, "."))
	return types.TextStats{
		CharCount:           chars,
		WordCount:           words,
		SentenceCount:       sentences,
		AvgWordsPerSentence: float64(words) / float64(max(sentences, 1)),
		AvgCharsPerWord:     float64(chars) / float64(max(words, 1)),
	}
}
