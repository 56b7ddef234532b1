// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/paper-rag/pkg/types"
)

// webSelectors maps each source to the CSS selector for the abstract block
// on its landing page. Sources without an entry have no secondary tier.
var webSelectors = map[types.SourceTag]string{
	types.SourcePubMed: "div.abstract-content, div#abstract",
	types.SourceArxiv:  "blockquote.abstract",
}

// selectText returns the text of the first element matching selector, with
// one newline between adjacent text nodes. It returns "" when nothing
// matches.
func selectText(doc *goquery.Document, selector string) string {
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return ""
	}
	var parts []string
	collectText(sel, &parts)
	return strings.Join(parts, "\n")
}

// collectText appends text nodes under s in document order. Comments are
// skipped.
func collectText(s *goquery.Selection, parts *[]string) {
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		switch goquery.NodeName(c) {
		case "#text":
			*parts = append(*parts, c.Text())
		case "#comment", "script", "style":
		default:
			collectText(c, parts)
		}
	})
}
