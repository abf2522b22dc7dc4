// Package browser drives a headless Chrome session to pull the final
// download link out of an intermediate page whose anchors are generated by
// JavaScript after load.
package browser

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"epextract/internal/common/config"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"
)

const anchorHrefsJS = `[...document.querySelectorAll('a[href]')].map(a => a.href)`

// Poller resolves an intermediate page URL into a final download link by
// polling the rendered DOM, with a full-content regex scan as the fallback
// once the poll budget runs out.
type Poller struct {
	cfg       *config.BrowserConfig
	userAgent string
	log       *logrus.Logger
	pattern   *regexp.Regexp
}

// New creates a Poller. The fallback regex is derived from the hostnames of
// the accepted prefixes so test fixtures can substitute their own domains.
func New(cfg *config.BrowserConfig, userAgent string, log *logrus.Logger) *Poller {
	return &Poller{
		cfg:       cfg,
		userAgent: userAgent,
		log:       log,
		pattern:   linkPattern(cfg.AcceptedPrefixes),
	}
}

// Resolve opens an isolated browser session, blocks requests to known ad
// domains, navigates to intermediateURL and polls the rendered anchors for a
// link starting with one of the accepted prefixes. Both browser contexts are
// torn down on every exit path.
func (p *Poller) Resolve(ctx context.Context, intermediateURL string) (string, error) {
	p.log.WithField("url", intermediateURL).Info("Resolving final link with headless browser")

	allocCtx, allocCancel := p.createChromeContext(ctx)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(p.log.Debugf))
	defer browserCancel()

	// Abort ad requests at the network layer before navigating, so ad
	// payloads never load or redirect the page
	if err := chromedp.Run(browserCtx,
		network.Enable(),
		network.SetBlockedURLS(blockPatterns(p.cfg.AdDomains)),
	); err != nil {
		return "", fmt.Errorf("preparing browser session: %w", err)
	}

	// Navigate in the background: polling starts against the DOM as it is
	// being constructed instead of waiting for the full load event
	navCtx, navCancel := context.WithTimeout(browserCtx, p.cfg.NavTimeout())
	defer navCancel()

	navErr := make(chan error, 1)
	go func() {
		navErr <- chromedp.Run(navCtx, chromedp.Navigate(intermediateURL))
	}()

	probe := func(context.Context) (string, bool, error) {
		select {
		case err := <-navErr:
			if err != nil {
				return "", false, fmt.Errorf("navigating to %s: %w", intermediateURL, err)
			}
		default:
		}

		var hrefs []string
		evalCtx, cancel := context.WithTimeout(browserCtx, 5*time.Second)
		defer cancel()
		if err := chromedp.Run(evalCtx, chromedp.Evaluate(anchorHrefsJS, &hrefs)); err != nil {
			// The DOM may not exist yet; treat as "not found" and let the
			// budget decide
			p.log.WithError(err).Debug("Anchor enumeration not ready")
			return "", false, nil
		}

		href, ok := matchAccepted(hrefs, p.cfg.AdDomains, p.cfg.AcceptedPrefixes)
		return href, ok, nil
	}

	fallback := func(context.Context) (string, error) {
		p.log.WithField("url", intermediateURL).Warn("Poll budget exhausted, scanning final page content")

		var content string
		snapCtx, cancel := context.WithTimeout(browserCtx, 10*time.Second)
		defer cancel()
		if err := chromedp.Run(snapCtx, chromedp.OuterHTML("html", &content)); err != nil {
			return "", fmt.Errorf("snapshotting page content: %w", err)
		}

		if link, ok := scanContent(p.pattern, content, p.cfg.DomainToken); ok {
			return link, nil
		}
		return "", fmt.Errorf("no download link found on %s after %s", intermediateURL, p.cfg.MaxWait())
	}

	link, err := resolveTwoPhase(ctx, p.cfg.MaxWait(), p.cfg.PollInterval(), probe, fallback)
	if err != nil {
		return "", err
	}

	p.log.WithField("link", truncate(link, 100)).Info("Found final download link")
	return link, nil
}

// createChromeContext creates the exec allocator for an isolated session
func (p *Poller) createChromeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(p.userAgent),
	)
	return chromedp.NewExecAllocator(ctx, opts...)
}

// blockPatterns turns the ad-domain substrings into CDP URL patterns
func blockPatterns(adDomains []string) []string {
	patterns := make([]string, 0, len(adDomains))
	for _, d := range adDomains {
		patterns = append(patterns, "*"+d+"*")
	}
	return patterns
}

// matchAccepted returns the first href that starts with one of the accepted
// prefixes. The prefix anchoring is deliberate: a contains match would
// false-positive on ad URLs that embed an accepted-looking URL inside a query
// parameter. Hrefs touching a known ad domain are skipped outright.
func matchAccepted(hrefs, adDomains, prefixes []string) (string, bool) {
	for _, href := range hrefs {
		if containsAny(href, adDomains) {
			continue
		}
		for _, prefix := range prefixes {
			if strings.HasPrefix(href, prefix) {
				return href, true
			}
		}
	}
	return "", false
}

// scanContent scans a full page snapshot for an accepted download URL. Each
// regex candidate is re-parsed and its host checked against token, guarding
// against matches sitting in surrounding text.
func scanContent(pattern *regexp.Regexp, content, token string) (string, bool) {
	for _, candidate := range pattern.FindAllString(content, -1) {
		parsed, err := url.Parse(candidate)
		if err != nil {
			continue
		}
		if strings.Contains(parsed.Host, token) {
			return candidate, true
		}
	}
	return "", false
}

// linkPattern builds the fallback regex from the accepted prefixes' hostnames
func linkPattern(prefixes []string) *regexp.Regexp {
	hosts := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		if u, err := url.Parse(p); err == nil && u.Host != "" {
			hosts = append(hosts, regexp.QuoteMeta(u.Host))
		}
	}
	if len(hosts) == 0 {
		// Unmatchable pattern rather than a panic on empty config
		return regexp.MustCompile(`$^`)
	}
	return regexp.MustCompile(`https?://(?:` + strings.Join(hosts, "|") + `)/[^"'>\s]+`)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
