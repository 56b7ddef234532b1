// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package textproc

import (
	"regexp"
	"sort"
	"strings"
)

// wordRe splits text into Unicode word runs. Only runs made entirely of
// ASCII letters are keyword candidates, so "café" yields nothing.
var wordRe = regexp.MustCompile(`[\p{L}\p{N}_]+`)

func isKeywordToken(w string) bool {
	if len(w) < 3 {
		return false
	}
	for i := 0; i < len(w); i++ {
		if c := w[i]; c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}

// Keywords returns up to n of the most frequent non-stopword tokens in text,
// most frequent first. Tokens are lowercase ASCII words of three or more
// letters. Equal counts keep the order in which each token first appears.
func Keywords(text string, n int) []string {
	if n <= 0 {
		return nil
	}

	counts := make(map[string]int)
	var order []string
	for _, w := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if !isKeywordToken(w) {
			continue
		}
		if _, stop := keywordStopwords[w]; stop {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > n {
		order = order[:n]
	}
	return order
}
