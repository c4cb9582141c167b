// Package category resolves a scraped article's section/category, first
// from the page markup and falling back to the URL path, then normalizes
// whatever was found against a fixed canonical vocabulary.
package category

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CanonicalCategories maps every recognized raw category spelling
// (lower-cased) to the title-cased canonical category used in storage
// and the read API. Unrecognized tokens are title-cased verbatim rather
// than dropped; GeneralCategory is used only when nothing resolves.
var CanonicalCategories = map[string]string{
	"news":          "News",
	"nation":        "News",
	"national":      "News",
	"metro":         "News",
	"regions":       "News",
	"headlines":     "Headlines",
	"politics":      "Politics",
	"government":    "Politics",
	"world":         "World",
	"international": "World",
	"business":      "Business",
	"money":         "Business",
	"economy":       "Business",
	"sports":        "Sports",
	"sport":         "Sports",
	"entertainment": "Entertainment",
	"lifestyle":     "Lifestyle",
	"opinion":       "Opinion",
	"editorial":     "Opinion",
	"technology":    "Technology",
	"tech":          "Technology",
	"science":       "Technology",
	"crime":         "Crime",
	"disasters":     "Disasters",
	"weather":       "Disasters",
}

// GeneralCategory is returned when no category signal resolves at all.
const GeneralCategory = "General"

// CanonicalSources maps every known raw source spelling to its canonical
// identifier, matching the adapter registry keys in internal/pipeline/adapters.
var CanonicalSources = map[string]string{
	"inquirer":        "inquirer",
	"inq":             "inquirer",
	"gma":             "gma",
	"gmanetwork":      "gma",
	"philstar":        "philstar",
	"manilabulletin":  "manila_bulletin",
	"manila_bulletin": "manila_bulletin",
	"manilatimes":     "manila_times",
	"manila_times":    "manila_times",
	"rappler":         "rappler",
	"abscbn":          "abs_cbn",
	"abs_cbn":         "abs_cbn",
}

// blacklistSegments are URL path segments that are never categories even
// though they occupy the category-like position in a URL.
var blacklistSegments = map[string]bool{
	"photo":   true,
	"photos":  true,
	"video":   true,
	"videos":  true,
	"about":   true,
	"section": true,
	"tag":     true,
	"author":  true,
	"page":    true,
}

var yearPathPattern = regexp.MustCompile(`^20\d{2}$`)

// NormalizeSource maps a raw source string to its canonical identifier,
// returning the lower-cased, trimmed input unchanged if unrecognized.
func NormalizeSource(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if canonical, ok := CanonicalSources[key]; ok {
		return canonical
	}
	return key
}

// NormalizeCategory maps a raw category string to its title-cased
// canonical category. Unrecognized but otherwise legitimate tokens are
// title-cased verbatim; blacklisted, year-shaped, or empty input resolves
// to "" so callers can fall back further before finally defaulting to
// GeneralCategory.
func NormalizeCategory(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.Trim(key, "/")
	if key == "" || blacklistSegments[key] || yearPathPattern.MatchString(key) {
		return ""
	}
	if canonical, ok := CanonicalCategories[key]; ok {
		return canonical
	}
	return strings.Title(key)
}

// ExtractFromURL inspects the path segments of an article URL and returns
// the first segment that looks like a category, skipping blacklisted
// segments and year-shaped path components (e.g. "/2024/07/31/...").
func ExtractFromURL(rawURL string) string {
	trimmed := strings.TrimPrefix(rawURL, "https://")
	trimmed = strings.TrimPrefix(trimmed, "http://")
	parts := strings.Split(trimmed, "/")
	if len(parts) < 2 {
		return ""
	}
	for _, segment := range parts[1:] {
		segment = strings.ToLower(strings.TrimSpace(segment))
		if segment == "" || blacklistSegments[segment] || yearPathPattern.MatchString(segment) {
			continue
		}
		return segment
	}
	return ""
}

// jsonLD is the minimal shape needed to pull articleSection out of a
// schema.org NewsArticle block.
type jsonLD struct {
	ArticleSection string `json:"articleSection"`
}

// ExtractFromHTML looks for a category signal in page markup, in
// descending order of reliability: schema.org JSON-LD articleSection,
// then <meta property="article:section"> / <meta name="category">, then
// a breadcrumb nav.
func ExtractFromHTML(doc *goquery.Document) string {
	var fromJSONLD string
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var block jsonLD
		if err := json.Unmarshal([]byte(s.Text()), &block); err == nil && block.ArticleSection != "" {
			fromJSONLD = block.ArticleSection
			return false
		}
		return true
	})
	if fromJSONLD != "" {
		return fromJSONLD
	}

	if meta, ok := doc.Find(`meta[property="article:section"]`).First().Attr("content"); ok && meta != "" {
		return meta
	}
	if meta, ok := doc.Find(`meta[name="category"]`).First().Attr("content"); ok && meta != "" {
		return meta
	}

	if crumb := doc.Find(".breadcrumb a, nav[aria-label='breadcrumb'] a").Last().Text(); strings.TrimSpace(crumb) != "" {
		return strings.TrimSpace(crumb)
	}

	return ""
}

// ResolvePair returns both the raw category signal (for storage/audit, as
// scraped, before normalization) and the resolved canonical category.
// HTML markup takes priority over the URL path; when nothing at all
// resolves, canonical defaults to GeneralCategory.
func ResolvePair(rawURL string, doc *goquery.Document) (raw string, canonical string) {
	if doc != nil {
		if fromHTML := ExtractFromHTML(doc); fromHTML != "" {
			raw = fromHTML
			if canonical = NormalizeCategory(fromHTML); canonical != "" {
				return raw, canonical
			}
		}
	}
	fromURL := ExtractFromURL(rawURL)
	if raw == "" {
		raw = fromURL
	}
	if canonical == "" {
		canonical = NormalizeCategory(fromURL)
	}
	if canonical == "" {
		canonical = GeneralCategory
	}
	return raw, canonical
}
