// internal/models/entities.go

package models

import (
	"encoding/json"
	"time"
)

// Article is one canonicalized, deduplicated news item.
type Article struct {
	ID          int        `db:"id" json:"id"`
	Source      string     `db:"source" json:"source"`
	Category    *string    `db:"category" json:"category,omitempty"`
	RawCategory *string    `db:"raw_category" json:"raw_category,omitempty"`
	Title       string     `db:"title" json:"title"`
	URL         string     `db:"url" json:"url"`
	Content     string     `db:"content" json:"content"`
	PublishedAt *time.Time `db:"published_at" json:"published_at,omitempty"`
	IsFunds     bool       `db:"is_funds" json:"is_funds"`
	InsertedAt  time.Time  `db:"inserted_at" json:"inserted_at"`
}

// ModelType enumerates the two analysis kinds stored against an article.
type ModelType string

const (
	ModelTypeSentiment     ModelType = "sentiment"
	ModelTypePoliticalBias ModelType = "political_bias"
)

// BiasAnalysis is one sentiment or political-bias scoring run for an
// article, keyed by (article_id, model_version, model_type).
type BiasAnalysis struct {
	ID                  int             `db:"id" json:"id"`
	ArticleID           int             `db:"article_id" json:"article_id"`
	ModelVersion        string          `db:"model_version" json:"model_version"`
	ModelType           ModelType       `db:"model_type" json:"model_type"`
	SentimentScore      *float64        `db:"sentiment_score" json:"sentiment_score,omitempty"`
	SentimentLabel      *string         `db:"sentiment_label" json:"sentiment_label,omitempty"`
	PoliticalBiasScore  *float64        `db:"political_bias_score" json:"political_bias_score,omitempty"`
	ToxicityScore       *float64        `db:"toxicity_score" json:"toxicity_score,omitempty"`
	ConfidenceScore     *float64        `db:"confidence_score" json:"confidence_score,omitempty"`
	ProcessingTimeMs    int             `db:"processing_time_ms" json:"processing_time_ms"`
	ModelMetadata       json.RawMessage `db:"model_metadata" json:"model_metadata,omitempty"`
	CreatedAt           time.Time       `db:"created_at" json:"created_at"`
}

// RunStatus is the terminal or in-flight state of a scraping_logs row.
type RunStatus string

const (
	RunStatusPartial RunStatus = "partial"
	RunStatusSuccess RunStatus = "success"
	RunStatusError   RunStatus = "error"
)

// ScrapingLog records one source run from start to finish.
type ScrapingLog struct {
	ID               int        `db:"id" json:"id"`
	RunID            string     `db:"run_id" json:"run_id"`
	Source           string     `db:"source" json:"source"`
	Status           RunStatus  `db:"status" json:"status"`
	ArticlesScraped  int        `db:"articles_scraped" json:"articles_scraped"`
	StartedAt        time.Time  `db:"started_at" json:"started_at"`
	CompletedAt      *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	ExecutionTimeMs  *int       `db:"execution_time_ms" json:"execution_time_ms,omitempty"`
	ErrorMessage     *string    `db:"error_message" json:"error_message,omitempty"`
}

// FundsEntities is the per-article entity bundle attached to a
// funds-classified article on demand: the primary implicated agency,
// named contractors, project locations, total peso amount, and
// corruption-indicator terms extracted from its text.
type FundsEntities struct {
	PrimaryAgency        string   `json:"primary_agency,omitempty"`
	Contractors          []string `json:"contractors,omitempty"`
	ProjectLocations     []string `json:"project_locations,omitempty"`
	TotalAmount          *int64   `json:"total_amount,omitempty"`
	CorruptionIndicators []string `json:"corruption_indicators,omitempty"`
}

// ArticleFundsEntities pairs an article id with its extracted FundsEntities.
type ArticleFundsEntities struct {
	ArticleID int `json:"article_id"`
	FundsEntities
}

// FundsInsight is a computed-on-demand summary over is_funds=true articles.
// It is not persisted; it is assembled from the flagged articles alone at
// request time (see internal/pipeline/funds).
type FundsInsight struct {
	TotalFundsArticles int                    `json:"total_funds_articles"`
	TopAgencies        map[string]int         `json:"top_agencies"`
	TopCorruptionTerms map[string]int         `json:"top_corruption_terms"`
	MoneyAmounts       []string               `json:"money_amounts"`
	TopSources         map[string]int         `json:"top_sources"`
	TopCategories      map[string]int         `json:"top_categories"`
	Articles           []ArticleFundsEntities `json:"articles"`
	GeneratedAt        time.Time              `json:"generated_at"`
}
