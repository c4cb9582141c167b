package database

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

// Connect establishes a connection to PostgreSQL database
func Connect(databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// ConnectRedis establishes a connection to Redis. The same client doubles as
// the Celery-compatible broker (list-backed queues) and result backend.
func ConnectRedis(redisURL string) *redis.Client {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		// Fallback to default Redis configuration
		opt = &redis.Options{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
		}
	}

	// Configure Redis client for optimal performance
	opt.PoolSize = 10
	opt.MinIdleConns = 5
	opt.PoolTimeout = 10 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute
	opt.ConnMaxLifetime = 30 * time.Minute

	return redis.NewClient(opt)
}

// Migrate runs database migrations for the article/bias-analysis/scraping-log
// schema. Only plain INSERT is used in the scrape path (see repository package)
// so article ids stay deterministic; bias_analysis is the one table upserted
// by composite key.
func Migrate(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS articles (
			id SERIAL PRIMARY KEY,
			source VARCHAR(200) NOT NULL,
			category VARCHAR(100),
			raw_category VARCHAR(200),
			title VARCHAR(500) NOT NULL,
			url VARCHAR(1000) NOT NULL,
			content TEXT,
			published_at TIMESTAMP WITH TIME ZONE,
			is_funds BOOLEAN NOT NULL DEFAULT false,
			inserted_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`,

		`CREATE UNIQUE INDEX IF NOT EXISTS idx_articles_url_unique ON articles(url)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_source ON articles(source)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_category ON articles(category)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_is_funds ON articles(is_funds) WHERE is_funds = true`,
		`CREATE INDEX IF NOT EXISTS idx_articles_published_at ON articles(published_at DESC)`,

		`CREATE TABLE IF NOT EXISTS bias_analysis (
			id SERIAL PRIMARY KEY,
			article_id INTEGER NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
			model_version VARCHAR(50) NOT NULL,
			model_type VARCHAR(30) NOT NULL CHECK (model_type IN ('sentiment', 'political_bias')),
			sentiment_score DOUBLE PRECISION,
			sentiment_label VARCHAR(10),
			political_bias_score DOUBLE PRECISION,
			toxicity_score DOUBLE PRECISION,
			confidence_score DOUBLE PRECISION,
			processing_time_ms INTEGER NOT NULL DEFAULT 0,
			model_metadata JSONB,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`,

		`CREATE UNIQUE INDEX IF NOT EXISTS idx_bias_analysis_composite_key
			ON bias_analysis(article_id, model_version, model_type)`,
		`CREATE INDEX IF NOT EXISTS idx_bias_analysis_article ON bias_analysis(article_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bias_analysis_type ON bias_analysis(model_type)`,

		`CREATE TABLE IF NOT EXISTS scraping_logs (
			id SERIAL PRIMARY KEY,
			run_id UUID NOT NULL DEFAULT gen_random_uuid(),
			source VARCHAR(200) NOT NULL,
			status VARCHAR(10) NOT NULL DEFAULT 'partial' CHECK (status IN ('partial', 'success', 'error')),
			articles_scraped INTEGER NOT NULL DEFAULT 0,
			started_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			completed_at TIMESTAMP WITH TIME ZONE,
			execution_time_ms INTEGER,
			error_message TEXT
		)`,

		`CREATE INDEX IF NOT EXISTS idx_scraping_logs_source ON scraping_logs(source, started_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_scraping_logs_status ON scraping_logs(status)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_scraping_logs_run_id ON scraping_logs(run_id)`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to execute migration %d: %w", i+1, err)
		}
	}

	return nil
}
