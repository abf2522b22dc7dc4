package parse

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FindInstantDLLink locates the single "Instant DL" anchor on an episode
// page. Three heuristics are tried in descending priority, stopping at the
// first match:
//
//  1. a button-styled danger anchor whose text contains "instant dl"
//  2. any anchor whose text contains "instant dl"
//  3. any anchor whose text contains both "instant" and "dl"
//
// Returns false when none of them match.
func FindInstantDLLink(html string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", false
	}

	if href, ok := firstAnchor(doc, "a.btn.btn-danger", func(text string) bool {
		return strings.Contains(strings.ToLower(text), "instant dl")
	}); ok {
		return href, true
	}

	if href, ok := firstAnchor(doc, "a[href]", func(text string) bool {
		return strings.Contains(strings.ToLower(text), "instant dl")
	}); ok {
		return href, true
	}

	return firstAnchor(doc, "a[href]", func(text string) bool {
		lower := strings.ToLower(text)
		return strings.Contains(lower, "instant") && strings.Contains(lower, "dl")
	})
}

// firstAnchor returns the href of the first anchor under selector whose
// visible text satisfies match
func firstAnchor(doc *goquery.Document, selector string, match func(string) bool) (string, bool) {
	var href string
	var found bool

	doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		h, ok := sel.Attr("href")
		if !ok || h == "" {
			return true
		}
		if match(strings.TrimSpace(sel.Text())) {
			href = h
			found = true
			return false
		}
		return true
	})

	return href, found
}
