// Package runner drives one scrape run end to end: discover candidate
// URLs, fetch and classify each one, store what's new, log the run, and
// hand the freshly inserted article ids to the analysis queue. This
// mirrors the per-source Celery task shape in the upstream worker, but as
// one source-parameterized function instead of one function per source.
package runner

import (
	"context"
	"fmt"
	"time"

	"newsdesk/internal/models"
	"newsdesk/internal/pipeline/adapters"
	"newsdesk/internal/pipeline/category"
	"newsdesk/internal/pipeline/funds"
	"newsdesk/internal/pipeline/queue"
	"newsdesk/internal/pipeline/runlog"
	"newsdesk/internal/pipeline/urlcanon"
	"newsdesk/internal/repository"
	"newsdesk/pkg/logger"
	"newsdesk/pkg/pipelineerr"
)

// ScrapeRunner executes one run of one source's adapter.
type ScrapeRunner struct {
	registry        *adapters.Registry
	repo            *repository.ArticleRepository
	runs            *runlog.Store
	queue           *queue.Queue
	log             *logger.Logger
	classifier      *funds.Classifier
	maxArticles     int
	maxFetchRetries int
	baseBackoff     time.Duration
}

func NewScrapeRunner(
	registry *adapters.Registry,
	repo *repository.ArticleRepository,
	runs *runlog.Store,
	q *queue.Queue,
	log *logger.Logger,
	classifier *funds.Classifier,
	maxArticles, maxFetchRetries int,
	baseBackoff time.Duration,
) *ScrapeRunner {
	return &ScrapeRunner{
		registry:        registry,
		repo:            repo,
		runs:            runs,
		queue:           q,
		log:             log,
		classifier:      classifier,
		maxArticles:     maxArticles,
		maxFetchRetries: maxFetchRetries,
		baseBackoff:     baseBackoff,
	}
}

// RunResult summarizes one scrape run.
type RunResult struct {
	Source          string
	RunID           string
	ArticlesScraped int
	InsertedIDs     []int
}

// Run discovers, fetches, classifies, and stores articles for source,
// then enqueues analysis for whatever was newly inserted. The run log row
// is opened before any work starts and always closed, success or failure.
// runID, when non-empty, is a correlation token an API caller was already
// handed before this run started; pass "" to let the run log mint
// its own.
func (r *ScrapeRunner) Run(ctx context.Context, source, runID string, oversampleFactor int) (*RunResult, error) {
	adapter, ok := r.registry.Get(source)
	if !ok {
		return nil, pipelineerr.Configf(source, fmt.Errorf("no adapter registered for source %q", source))
	}

	logID, runID, _, err := r.runs.Start(ctx, source, runID)
	if err != nil {
		return nil, err
	}

	result := &RunResult{Source: source, RunID: runID}
	status := models.RunStatusSuccess
	var runErr error

	defer func() {
		msg := ""
		if runErr != nil {
			msg = runErr.Error()
		}
		if finishErr := r.runs.Finish(ctx, logID, status, result.ArticlesScraped, msg); finishErr != nil {
			r.log.Error("failed to finalize run log", "source", source, "error", finishErr.Error())
		}
	}()

	discoverLimit := r.maxArticles * oversampleFactor
	if discoverLimit <= 0 {
		discoverLimit = r.maxArticles
	}

	urls, err := fetchWithRetry(r, ctx, func() ([]string, error) {
		return adapter.Discover(ctx, discoverLimit)
	})
	if err != nil {
		status, runErr = models.RunStatusError, err
		return result, runErr
	}

	var toStore []*models.Article
	for _, u := range urls {
		if len(toStore) >= r.maxArticles {
			break
		}

		fetched, err := fetchWithRetry(r, ctx, func() (*adapters.FetchedArticle, error) {
			return adapter.Fetch(ctx, u)
		})
		if err != nil {
			// A bad story is logged and skipped; the run itself still
			// finalizes as success as long as it didn't throw outright.
			r.log.Warn("fetch failed", "source", source, "url", u, "error", err.Error())
			continue
		}

		canonicalURL := urlcanon.Canonicalize(fetched.URL)
		if canonicalURL == "" {
			r.log.Warn("dropping article with no canonical URL", "source", source, "url", fetched.URL)
			continue
		}

		rawCategory, resolvedCategory := category.ResolvePair(canonicalURL, fetched.Doc)
		isFunds := r.classifier.Classify(fetched.Title, fetched.Content)

		publishedAt := fetched.PublishedAt
		if publishedAt == nil {
			now := time.Now()
			publishedAt = &now
		}

		var categoryPtr, rawCategoryPtr *string
		if resolvedCategory != "" {
			categoryPtr = &resolvedCategory
		}
		if rawCategory != "" {
			rawCategoryPtr = &rawCategory
		}

		toStore = append(toStore, &models.Article{
			Source:      source,
			Category:    categoryPtr,
			RawCategory: rawCategoryPtr,
			Title:       fetched.Title,
			URL:         canonicalURL,
			Content:     fetched.Content,
			PublishedAt: publishedAt,
			IsFunds:     isFunds,
		})
	}

	storeResult, err := r.repo.StoreArticles(ctx, toStore)
	if err != nil {
		status, runErr = models.RunStatusError, err
		return result, runErr
	}

	result.ArticlesScraped = storeResult.Inserted
	result.InsertedIDs = storeResult.InsertedIDs

	if len(storeResult.InsertedIDs) > 0 {
		if err := r.queue.PublishAnalyze(ctx, queue.AnalyzeMessage{ArticleIDs: storeResult.InsertedIDs}); err != nil {
			r.log.Error("failed to enqueue analysis", "source", source, "error", err.Error())
		}
	}

	return result, nil
}

// fetchWithRetry retries a transient/throttled failure with exponential
// backoff, up to maxFetchRetries retries after the first attempt, matching the upstream task's
// countdown = base * 2**attempt behavior.
func fetchWithRetry[T any](r *ScrapeRunner, ctx context.Context, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= r.maxFetchRetries; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !pipelineerr.IsRetryable(err) {
			return zero, err
		}
		if attempt == r.maxFetchRetries {
			break
		}

		backoff := r.baseBackoff * time.Duration(1<<attempt)
		select {
		case <-ctx.Done():
			return zero, pipelineerr.Cancelledf("runner", ctx.Err())
		case <-time.After(backoff):
		}
	}

	return zero, lastErr
}
