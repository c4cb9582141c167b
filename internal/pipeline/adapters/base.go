package adapters

import (
	"context"
	"fmt"
	"math/rand"
	neturl "net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"newsdesk/pkg/pipelineerr"
)

func rodTarget(url string) proto.TargetCreateTarget {
	return proto.TargetCreateTarget{URL: url}
}

// trackerPathPattern matches listing-page hrefs that are never individual
// stories even though they sit alongside story links on a section page:
// tag/author index pages, search, and pagination.
var trackerPathPattern = regexp.MustCompile(`(?i)(/tag/|/author/|/search\b|/page/\d+)`)

const minArticleContentChars = 50

// siteConfig is the data-driven description of one source's listing page
// and the CSS selectors needed to discover and fetch its stories. Every
// concrete adapter in sources.go is one siteConfig value.
type siteConfig struct {
	source       string
	listingURL   string
	linkSelector string // anchors on the listing page that point at stories
	titleSelector string
	contentSelector string
	disabled     bool // true only for abs_cbn, per the upstream removal
	maxPages     int  // >1 enables pagination (rappler)
	stealthMinMs int
	stealthMaxMs int
	advHeaders   bool
}

// siteAdapter is the Adapter implementation shared by every configured
// source; behavior is driven entirely by its siteConfig.
type siteAdapter struct {
	cfg     siteConfig
	browser *rod.Browser
	host    string // publisher host parsed from cfg.listingURL, for domain-anchored link validation
}

func newSiteAdapter(cfg siteConfig, browser *rod.Browser) *siteAdapter {
	return &siteAdapter{cfg: cfg, browser: browser, host: hostOf(cfg.listingURL)}
}

func hostOf(rawURL string) string {
	u, err := neturl.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}

// isCandidateArticle rejects hrefs that don't belong to this adapter's
// publisher host or that match a known tracker/non-article path, without
// needing a full fetch to find out.
func (a *siteAdapter) isCandidateArticle(href string) bool {
	if href == "" || trackerPathPattern.MatchString(href) {
		return false
	}
	if strings.HasPrefix(href, "/") {
		return true // relative to the listing page's own host
	}
	return hostOf(href) == a.host
}

func (a *siteAdapter) Name() string { return a.cfg.source }

func (a *siteAdapter) Discover(ctx context.Context, limit int) ([]string, error) {
	if a.cfg.disabled {
		return nil, pipelineerr.Configf(a.cfg.source, fmt.Errorf("scraper disabled upstream"))
	}

	pages := 1
	if a.cfg.maxPages > 1 {
		pages = a.cfg.maxPages
	}

	var urls []string
	seen := map[string]bool{}

	for page := 1; page <= pages && len(urls) < limit; page++ {
		listingURL := a.cfg.listingURL
		if page > 1 {
			listingURL = fmt.Sprintf("%s?page=%d", a.cfg.listingURL, page)
		}

		html, err := a.renderPage(ctx, listingURL)
		if err != nil {
			return urls, err
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			return urls, pipelineerr.ParseErrorf(a.cfg.source, err)
		}

		doc.Find(a.cfg.linkSelector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			href, ok := sel.Attr("href")
			if !ok || seen[href] || !a.isCandidateArticle(href) {
				return true
			}
			seen[href] = true
			urls = append(urls, href)
			return len(urls) < limit
		})

		a.stealthDelay(ctx)
	}

	return urls, nil
}

func (a *siteAdapter) Fetch(ctx context.Context, url string) (*FetchedArticle, error) {
	if a.cfg.disabled {
		return nil, pipelineerr.Configf(a.cfg.source, fmt.Errorf("scraper disabled upstream"))
	}

	a.stealthDelay(ctx)

	html, err := a.renderPage(ctx, url)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, pipelineerr.ParseErrorf(a.cfg.source, err)
	}

	title := strings.TrimSpace(doc.Find(a.cfg.titleSelector).First().Text())
	content := strings.TrimSpace(doc.Find(a.cfg.contentSelector).Text())
	if title == "" || len(title) < 10 {
		return nil, pipelineerr.ParseErrorf(a.cfg.source, fmt.Errorf("title too short for %s", url))
	}

	if ogType, ok := doc.Find(`meta[property="og:type"]`).First().Attr("content"); ok &&
		ogType != "" && ogType != "article" && len(content) < minArticleContentChars {
		return nil, pipelineerr.ParseErrorf(a.cfg.source, fmt.Errorf("not_article: %s", url))
	}

	return &FetchedArticle{
		Source:      a.cfg.source,
		URL:         url,
		Title:       title,
		Content:     content,
		PublishedAt: extractPublishedAt(doc),
		Doc:         doc,
	}, nil
}

// publishedTimeLayouts are the timestamp formats seen across the covered
// sites' article:published_time / time[datetime] markup.
var publishedTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// extractPublishedAt looks for a publish timestamp in the common places
// Philippine news sites expose one. It returns nil when none parses,
// leaving the scraper-clock fallback (see scrape_runner.go) to apply.
func extractPublishedAt(doc *goquery.Document) *time.Time {
	candidates := []string{}
	if v, ok := doc.Find(`meta[property="article:published_time"]`).First().Attr("content"); ok {
		candidates = append(candidates, v)
	}
	if v, ok := doc.Find(`meta[name="publish-date"]`).First().Attr("content"); ok {
		candidates = append(candidates, v)
	}
	if v, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok {
		candidates = append(candidates, v)
	}

	for _, raw := range candidates {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		for _, layout := range publishedTimeLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return &t
			}
		}
	}

	return nil
}

// renderPage loads url in the shared browser and returns the rendered
// HTML, honoring ctx cancellation. The stealth delay is applied by its
// callers (Discover, Fetch), not here.
func (a *siteAdapter) renderPage(ctx context.Context, url string) (string, error) {
	select {
	case <-ctx.Done():
		return "", pipelineerr.Cancelledf(a.cfg.source, ctx.Err())
	default:
	}

	page, err := a.browser.Page(rodTarget(url))
	if err != nil {
		return "", pipelineerr.Transientf(a.cfg.source, err)
	}
	defer page.Close()

	if a.cfg.advHeaders {
		if _, err := page.SetExtraHeaders(
			"User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
			"Accept-Language", "en-PH,en;q=0.9",
		); err != nil {
			return "", pipelineerr.Transientf(a.cfg.source, err)
		}
	}

	if err := page.WaitLoad(); err != nil {
		return "", pipelineerr.Transientf(a.cfg.source, err)
	}

	html, err := page.HTML()
	if err != nil {
		return "", pipelineerr.Transientf(a.cfg.source, err)
	}
	return html, nil
}

// stealthDelay sleeps a random duration within the configured bounds
// before the adapter's next request, or does nothing if disabled/zero.
func (a *siteAdapter) stealthDelay(ctx context.Context) {
	if a.cfg.stealthMaxMs <= 0 {
		return
	}
	min := a.cfg.stealthMinMs
	max := a.cfg.stealthMaxMs
	delay := time.Duration(min) * time.Millisecond
	if max > min {
		delay += time.Duration(rand.Intn(max-min)) * time.Millisecond
	}
	select {
	case <-ctx.Done():
	case <-time.After(delay):
	}
}
