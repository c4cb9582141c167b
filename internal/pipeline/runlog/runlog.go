// Package runlog records the lifecycle of one scrape run in the
// scraping_logs table: a row is opened in "partial" status when a run
// starts and closed with a terminal status once it finishes.
package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"newsdesk/internal/models"
)

type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Start opens a new run for source, returning its database id and run id.
// Status starts as "partial" and is only narrowed to success/error by Finish.
// If runID is empty, one is generated; callers that already handed a
// correlation token to an API client pass it through here so the
// token doubles as the run_id from the very first row.
func (s *Store) Start(ctx context.Context, source, runID string) (id int, runIDOut string, startedAt time.Time, err error) {
	if runID == "" {
		runID = uuid.New().String()
	}
	startedAt = time.Now()

	const query = `
		INSERT INTO scraping_logs (run_id, source, status, started_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	if err = s.db.GetContext(ctx, &id, query, runID, source, models.RunStatusPartial, startedAt); err != nil {
		return 0, "", time.Time{}, fmt.Errorf("start run log for %s: %w", source, err)
	}
	return id, runID, startedAt, nil
}

// Finish closes a run with a terminal status, the final article count,
// and an optional error message. articlesScraped is clamped to 0 if
// negative - a runner bug should not corrupt the audit trail.
func (s *Store) Finish(ctx context.Context, id int, status models.RunStatus, articlesScraped int, errMsg string) error {
	if articlesScraped < 0 {
		articlesScraped = 0
	}

	completedAt := time.Now()
	const query = `
		UPDATE scraping_logs
		SET status = $1, articles_scraped = $2, error_message = NULLIF($3, ''),
		    completed_at = $4, execution_time_ms = $5
		WHERE id = $6`

	var startedAt time.Time
	if err := s.db.GetContext(ctx, &startedAt, `SELECT started_at FROM scraping_logs WHERE id = $1`, id); err != nil {
		return fmt.Errorf("lookup started_at for run %d: %w", id, err)
	}
	execMs := int(completedAt.Sub(startedAt) / time.Millisecond)

	if _, err := s.db.ExecContext(ctx, query, status, articlesScraped, errMsg, completedAt, execMs, id); err != nil {
		return fmt.Errorf("finish run log %d: %w", id, err)
	}
	return nil
}

var ErrRunNotFound = fmt.Errorf("run not found")

// GetByRunID looks up one run by its public correlation token, backing
// GET /scrape/status/{task_id}.
func (s *Store) GetByRunID(ctx context.Context, runID string) (*models.ScrapingLog, error) {
	var log models.ScrapingLog
	const query = `
		SELECT id, run_id, source, status, articles_scraped, started_at,
		       completed_at, execution_time_ms, error_message
		FROM scraping_logs WHERE run_id = $1`
	if err := s.db.GetContext(ctx, &log, query, runID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("get run %s: %w", runID, err)
	}
	return &log, nil
}

// Recent returns the most recent runs, newest first, backing the read
// API's GET /logs/recent.
func (s *Store) Recent(ctx context.Context, limit int) ([]models.ScrapingLog, error) {
	var logs []models.ScrapingLog
	const query = `
		SELECT id, run_id, source, status, articles_scraped, started_at,
		       completed_at, execution_time_ms, error_message
		FROM scraping_logs
		ORDER BY started_at DESC
		LIMIT $1`
	if err := s.db.SelectContext(ctx, &logs, query, limit); err != nil {
		return nil, fmt.Errorf("list recent run logs: %w", err)
	}
	return logs, nil
}
