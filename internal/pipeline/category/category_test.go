package category

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestNormalizeCategory(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Nation", "News"},
		{"SPORTS", "Sports"},
		{"tech", "Technology"},
		{"photo", ""},
		{"2024", ""},
		{"", ""},
		{"showbiz", "Showbiz"}, // unrecognized but legitimate token, title-cased verbatim
	}
	for _, tc := range cases {
		if got := NormalizeCategory(tc.in); got != tc.want {
			t.Errorf("NormalizeCategory(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestExtractFromURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://example.com/nation/2024/07/31/story-title", "nation"},
		{"https://example.com/photo/2024/story", "story"},
		{"https://example.com/", ""},
	}
	for _, tc := range cases {
		if got := ExtractFromURL(tc.in); got != tc.want {
			t.Errorf("ExtractFromURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestExtractFromHTMLPrefersJSONLD(t *testing.T) {
	html := `<html><head>
		<script type="application/ld+json">{"articleSection": "Business"}</script>
		<meta property="article:section" content="Nation">
	</head></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	if got := ExtractFromHTML(doc); got != "Business" {
		t.Errorf("ExtractFromHTML() = %q, want JSON-LD value %q", got, "Business")
	}
}

func TestExtractFromHTMLFallsBackToMeta(t *testing.T) {
	html := `<html><head><meta property="article:section" content="Nation"></head></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	if got := ExtractFromHTML(doc); got != "Nation" {
		t.Errorf("ExtractFromHTML() = %q, want meta value %q", got, "Nation")
	}
}

func TestResolvePairDefaultsToGeneral(t *testing.T) {
	html := `<html><head></head><body></body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	_, canonical := ResolvePair("https://example.com/photo/2024/", doc)
	if canonical != GeneralCategory {
		t.Errorf("ResolvePair canonical = %q, want %q", canonical, GeneralCategory)
	}
}

func TestResolvePairPrefersHTMLOverURL(t *testing.T) {
	html := `<html><head><meta property="article:section" content="Sports"></head></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	_, canonical := ResolvePair("https://example.com/nation/story", doc)
	if canonical != "Sports" {
		t.Errorf("ResolvePair canonical = %q, want %q", canonical, "Sports")
	}
}
