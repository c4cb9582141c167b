// internal/repository/article_repository.go

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"newsdesk/internal/models"
	"newsdesk/pkg/pipelineerr"
)

var ErrArticleNotFound = errors.New("article not found")

// ArticleRepository implements the Store+Dedup contract: every insert is
// pre-checked against the url unique index, and a race that slips past the
// pre-check is still caught by the index itself (pq error code 23505) and
// reported as a dedup skip rather than a hard failure.
type ArticleRepository struct {
	db *sqlx.DB
}

func NewArticleRepository(db *sqlx.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

// StoreResult is the outcome of one StoreArticles call.
type StoreResult struct {
	Checked     int
	Skipped     int
	Inserted    int
	InsertedIDs []int
}

// StoreArticles inserts each article that isn't already present by
// (canonicalized) URL. Articles are expected to already have gone through
// urlcanon, category, and funds classification - this layer only persists.
func (r *ArticleRepository) StoreArticles(ctx context.Context, articles []*models.Article) (StoreResult, error) {
	result := StoreResult{Checked: len(articles)}

	for _, a := range articles {
		id, inserted, err := r.storeOne(ctx, a)
		if err != nil {
			return result, pipelineerr.StoreHardErrorf("repository", err)
		}
		if inserted {
			result.Inserted++
			result.InsertedIDs = append(result.InsertedIDs, id)
		} else {
			result.Skipped++
		}
	}

	return result, nil
}

func (r *ArticleRepository) storeOne(ctx context.Context, a *models.Article) (id int, inserted bool, err error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM articles WHERE url = $1)`, a.URL); err != nil {
		return 0, false, fmt.Errorf("dedup pre-check for %s: %w", a.URL, err)
	}
	if exists {
		return 0, false, nil
	}

	const query = `
		INSERT INTO articles (source, category, raw_category, title, url, content, published_at, is_funds, inserted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	if a.InsertedAt.IsZero() {
		a.InsertedAt = time.Now()
	}

	err = r.db.GetContext(ctx, &id, query,
		a.Source, a.Category, a.RawCategory, a.Title, a.URL, a.Content, a.PublishedAt, a.IsFunds, a.InsertedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			// Lost the race with a concurrent insert of the same URL -
			// treat exactly like a pre-check hit, not a hard error.
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("insert article %s: %w", a.URL, err)
	}

	return id, true, nil
}

// GetByID retrieves a single article.
func (r *ArticleRepository) GetByID(ctx context.Context, id int) (*models.Article, error) {
	var a models.Article
	const query = `
		SELECT id, source, category, raw_category, title, url, content, published_at, is_funds, inserted_at
		FROM articles WHERE id = $1`
	if err := r.db.GetContext(ctx, &a, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrArticleNotFound
		}
		return nil, fmt.Errorf("get article %d: %w", id, err)
	}
	return &a, nil
}

// GetByIDs retrieves multiple articles, preserving no particular order.
func (r *ArticleRepository) GetByIDs(ctx context.Context, ids []int) ([]*models.Article, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var articles []*models.Article
	const query = `
		SELECT id, source, category, raw_category, title, url, content, published_at, is_funds, inserted_at
		FROM articles WHERE id = ANY($1)`
	if err := r.db.SelectContext(ctx, &articles, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("get articles by ids: %w", err)
	}
	return articles, nil
}

// ListSince returns articles inserted at or after since, oldest first -
// used by the analysis trigger's "since" mode and by maintenance backfill.
func (r *ArticleRepository) ListSince(ctx context.Context, since time.Time, limit int) ([]*models.Article, error) {
	var articles []*models.Article
	const query = `
		SELECT id, source, category, raw_category, title, url, content, published_at, is_funds, inserted_at
		FROM articles
		WHERE inserted_at >= $1
		ORDER BY inserted_at ASC
		LIMIT $2`
	if err := r.db.SelectContext(ctx, &articles, query, since, limit); err != nil {
		return nil, fmt.Errorf("list articles since %s: %w", since, err)
	}
	return articles, nil
}

// List returns a page of articles filtered by source/category, newest
// first - backs the read API's GET /articles.
func (r *ArticleRepository) List(ctx context.Context, source, category string, limit, offset int) ([]*models.Article, error) {
	query := `
		SELECT id, source, category, raw_category, title, url, content, published_at, is_funds, inserted_at
		FROM articles
		WHERE ($1 = '' OR source = $1) AND ($2 = '' OR category = $2)
		ORDER BY published_at DESC NULLS LAST, inserted_at DESC
		LIMIT $3 OFFSET $4`

	var articles []*models.Article
	if err := r.db.SelectContext(ctx, &articles, query, source, category, limit, offset); err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return articles, nil
}

// FundsArticles returns every article flagged is_funds=true, used to
// compute internal/pipeline/funds.Insight on demand.
func (r *ArticleRepository) FundsArticles(ctx context.Context) ([]*models.Article, error) {
	var articles []*models.Article
	const query = `
		SELECT id, source, category, raw_category, title, url, content, published_at, is_funds, inserted_at
		FROM articles WHERE is_funds = true
		ORDER BY published_at DESC NULLS LAST`
	if err := r.db.SelectContext(ctx, &articles, query); err != nil {
		return nil, fmt.Errorf("list funds articles: %w", err)
	}
	return articles, nil
}

// UpdateIsFunds overwrites the stored funds-classifier flag for one
// article, used by the offline recompute maintenance path when the
// classifier's rules change after articles were already stored.
func (r *ArticleRepository) UpdateIsFunds(ctx context.Context, id int, isFunds bool) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE articles SET is_funds = $1 WHERE id = $2`, isFunds, id); err != nil {
		return fmt.Errorf("update is_funds for article %d: %w", id, err)
	}
	return nil
}

// UpsertBiasAnalysis writes or replaces one bias_analysis row keyed by
// (article_id, model_version, model_type), matching the upstream
// on_conflict composite key.
func (r *ArticleRepository) UpsertBiasAnalysis(ctx context.Context, b *models.BiasAnalysis) error {
	const query = `
		INSERT INTO bias_analysis (
			article_id, model_version, model_type, sentiment_score, sentiment_label,
			political_bias_score, toxicity_score, confidence_score, processing_time_ms, model_metadata
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (article_id, model_version, model_type) DO UPDATE SET
			sentiment_score = EXCLUDED.sentiment_score,
			sentiment_label = EXCLUDED.sentiment_label,
			political_bias_score = EXCLUDED.political_bias_score,
			toxicity_score = EXCLUDED.toxicity_score,
			confidence_score = EXCLUDED.confidence_score,
			processing_time_ms = EXCLUDED.processing_time_ms,
			model_metadata = EXCLUDED.model_metadata`

	_, err := r.db.ExecContext(ctx, query,
		b.ArticleID, b.ModelVersion, b.ModelType, b.SentimentScore, b.SentimentLabel,
		b.PoliticalBiasScore, b.ToxicityScore, b.ConfidenceScore, b.ProcessingTimeMs, b.ModelMetadata)
	if err != nil {
		return fmt.Errorf("upsert bias analysis for article %d: %w", b.ArticleID, err)
	}
	return nil
}
