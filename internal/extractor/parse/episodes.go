// Package parse extracts links out of the target site's static markup. The
// selection rules follow one site's markup conventions and make no attempt at
// generality.
package parse

import (
	"net/url"
	"regexp"
	"strings"

	"epextract/pkg/models"

	"github.com/PuerkitoBio/goquery"
)

var episodePattern = regexp.MustCompile(`(?i)episode\s*\d+`)

// ExtractEpisodeLinks returns the per-episode links found on a listing page,
// in page order, excluding season-archive and zip entries. Relative hrefs are
// resolved against baseURL. An empty result means the page carried no
// recognizable episode links under either rule.
func ExtractEpisodeLinks(html, baseURL string) ([]models.EpisodeLink, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var links []models.EpisodeLink
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		text := strings.TrimSpace(sel.Text())

		if href == "" {
			return
		}
		if strings.Contains(text, "Episode") &&
			!strings.Contains(text, "Season") &&
			!strings.Contains(text, "Zip") {
			links = append(links, models.EpisodeLink{
				EpisodeName: text,
				EpisodeURL:  resolveURL(baseURL, href),
			})
		}
	})

	// Fallback: "episode N" pattern, case-insensitive, when the primary rule
	// matched nothing
	if len(links) == 0 {
		doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
			href, _ := sel.Attr("href")
			text := strings.TrimSpace(sel.Text())

			if href == "" || !episodePattern.MatchString(text) {
				return
			}
			lower := strings.ToLower(text)
			if strings.Contains(lower, "zip") || strings.Contains(lower, "season") {
				return
			}
			links = append(links, models.EpisodeLink{
				EpisodeName: text,
				EpisodeURL:  resolveURL(baseURL, href),
			})
		})
	}

	return links, nil
}

// resolveURL resolves href against base, falling back to href as-is when
// either side does not parse
func resolveURL(base, href string) string {
	baseParsed, err := url.Parse(base)
	if err != nil {
		return href
	}
	hrefParsed, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseParsed.ResolveReference(hrefParsed).String()
}
