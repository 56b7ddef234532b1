// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package answer

import (
	"regexp"
	"sort"
	"strconv"
)

// sourceRefRe matches bracketed source references: [Source 2] or
// [Source 1; Source 3] or [Source 1, 3].
var sourceRefRe = regexp.MustCompile(`\[(Source\s+\d+(?:\s*[;,]\s*(?:Source\s+)?\d+)*)\]`)

var refNumberRe = regexp.MustCompile(`\d+`)

// SourceRefs returns the distinct source numbers referenced in text, in
// ascending order.
func SourceRefs(text string) []int {
	seen := make(map[int]bool)
	for _, m := range sourceRefRe.FindAllStringSubmatch(text, -1) {
		for _, num := range refNumberRe.FindAllString(m[1], -1) {
			n, err := strconv.Atoi(num)
			if err == nil {
				seen[n] = true
			}
		}
	}
	refs := make([]int, 0, len(seen))
	for n := range seen {
		refs = append(refs, n)
	}
	sort.Ints(refs)
	return refs
}

// UnknownSources returns the references in text outside 1..n.
func UnknownSources(text string, n int) []int {
	var unknown []int
	for _, r := range SourceRefs(text) {
		if r < 1 || r > n {
			unknown = append(unknown, r)
		}
	}
	return unknown
}

// UncitedSources returns the source numbers in 1..n never referenced in
// text.
func UncitedSources(text string, n int) []int {
	cited := make(map[int]bool)
	for _, r := range SourceRefs(text) {
		cited[r] = true
	}
	var out []int
	for i := 1; i <= n; i++ {
		if !cited[i] {
			out = append(out, i)
		}
	}
	return out
}
