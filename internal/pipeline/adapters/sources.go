package adapters

import "github.com/go-rod/rod"

// BuildDefaultRegistry registers one adapter per configured source,
// sharing a single browser instance across all of them. abs_cbn is
// registered disabled, matching its removal from the upstream worker -
// it stays in the registry (so a scrape task queued for abs_cbn ends its
// run log with a clear Config error) rather than being silently absent.
func BuildDefaultRegistry(browser *rod.Browser, advHeaders, humanDelay bool, rapplerMaxPages, stealthMinMs, stealthMaxMs int) *Registry {
	reg := NewRegistry()

	delayMin, delayMax := 0, 0
	if humanDelay {
		delayMin, delayMax = stealthMinMs, stealthMaxMs
	}

	configs := []siteConfig{
		{
			source:          "inquirer",
			listingURL:      "https://newsinfo.inquirer.net/",
			linkSelector:    "h1.post_title a, h2.post_title a",
			titleSelector:   "h1.entry-title",
			contentSelector: "div.article_content p",
			stealthMinMs:    delayMin,
			stealthMaxMs:    delayMax,
			advHeaders:      advHeaders,
		},
		{
			source:          "gma",
			listingURL:      "https://www.gmanetwork.com/news/news/nation/",
			linkSelector:    "div.story_block a.story_link",
			titleSelector:   "h1.article_title",
			contentSelector: "div.article_body p",
			stealthMinMs:    delayMin,
			stealthMaxMs:    delayMax,
			advHeaders:      advHeaders,
		},
		{
			source:          "philstar",
			listingURL:      "https://www.philstar.com/headlines",
			linkSelector:    "div.article-listing a.title_link",
			titleSelector:   "h1.article__title",
			contentSelector: "div.article__content p",
			stealthMinMs:    delayMin,
			stealthMaxMs:    delayMax,
			advHeaders:      advHeaders,
		},
		{
			source:          "manila_bulletin",
			listingURL:      "https://mb.com.ph/category/news/",
			linkSelector:    "h2.entry-title a",
			titleSelector:   "h1.entry-title",
			contentSelector: "div.entry-content p",
			stealthMinMs:    delayMin,
			stealthMaxMs:    delayMax,
			advHeaders:      advHeaders,
		},
		{
			source:          "manila_times",
			listingURL:      "https://www.manilatimes.net/news/",
			linkSelector:    "article.post a.post-title-link",
			titleSelector:   "h1.post-title",
			contentSelector: "div.post-content p",
			stealthMinMs:    delayMin,
			stealthMaxMs:    delayMax,
			advHeaders:      advHeaders,
		},
		{
			source:          "rappler",
			listingURL:      "https://www.rappler.com/nation/",
			linkSelector:    "a.post-card__title-link",
			titleSelector:   "h1.post-single__title",
			contentSelector: "div.post-single__content p",
			maxPages:        rapplerMaxPages,
			stealthMinMs:    delayMin,
			stealthMaxMs:    delayMax,
			advHeaders:      advHeaders,
		},
		{
			source:   "abs_cbn",
			disabled: true,
		},
	}

	for _, cfg := range configs {
		reg.Register(newSiteAdapter(cfg, browser))
	}

	return reg
}
