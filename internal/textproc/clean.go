// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textproc cleans extracted text and derives keywords, extractive
// summaries, statistics, and the TF-IDF corpus used for ranking.
package textproc

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	lineBreakRe  = regexp.MustCompile(`\s*\n\s*`)
	horizontalRe = regexp.MustCompile(`[ \t]+`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	markupRe     = regexp.MustCompile(`<[^>]+>`)
	disallowedRe = regexp.MustCompile(`[^\p{L}\p{N}_\s.,;:!?\-()]`)
)

// NormalizeLines collapses whitespace around line breaks to a single
// newline, collapses runs of spaces and tabs to one space, and trims.
func NormalizeLines(text string) string {
	text = lineBreakRe.ReplaceAllString(text, "\n")
	text = horizontalRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// CollapseWhitespace replaces every whitespace run with one space and trims.
func CollapseWhitespace(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// minFragmentChars is the length a sentence fragment must exceed to survive
// Clean.
const minFragmentChars = 10

// Clean strips angle-bracket markup, replaces characters outside a word and
// punctuation allowlist with spaces, and collapses whitespace. The result is
// split on periods; fragments of ten characters or fewer, and purely
// numeric fragments, are dropped and the rest re-joined with ". ".
func Clean(text string) string {
	if text == "" {
		return ""
	}
	text = markupRe.ReplaceAllString(text, "")
	text = disallowedRe.ReplaceAllString(text, " ")
	text = whitespaceRe.ReplaceAllString(text, " ")

	var kept []string
	for _, s := range strings.Split(text, ".") {
		s = strings.TrimSpace(s)
		if utf8.RuneCountInString(s) > minFragmentChars && !isDigits(s) {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, ". ")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
