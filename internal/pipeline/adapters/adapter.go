// Package adapters implements the per-source discovery and fetch tier.
// Discovery uses a headless browser (go-rod) because the listing pages of
// every configured source render their story links client-side; fetch
// parses the resulting HTML with goquery once the browser has it.
package adapters

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// FetchedArticle is one adapter's raw extraction of a single story page,
// before URL canonicalization, category resolution, or funds/sentiment/
// bias analysis run over it.
type FetchedArticle struct {
	Source      string
	URL         string
	Title       string
	Content     string
	RawCategory string
	PublishedAt *time.Time
	Doc         *goquery.Document
}

// Adapter discovers story URLs on one source's listing pages and fetches
// each one's article markup.
type Adapter interface {
	// Name is the canonical source identifier (see internal/pipeline/category).
	Name() string
	// Discover returns up to limit candidate article URLs, freshest first.
	Discover(ctx context.Context, limit int) ([]string, error)
	// Fetch retrieves and parses a single article page.
	Fetch(ctx context.Context, url string) (*FetchedArticle, error)
}

// Registry is the set of adapters the scrape runner and scheduler can
// dispatch to, keyed by canonical source name.
type Registry struct {
	adapters map[string]Adapter
}

func NewRegistry() *Registry {
	return &Registry{adapters: map[string]Adapter{}}
}

func (r *Registry) Register(a Adapter) {
	r.adapters[a.Name()] = a
}

func (r *Registry) Get(source string) (Adapter, bool) {
	a, ok := r.adapters[source]
	return a, ok
}

// Sources returns every registered source name, sorted is not guaranteed -
// callers that need a stable order should sort the result themselves.
func (r *Registry) Sources() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	return names
}
