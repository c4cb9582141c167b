package runlog

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdesk/internal/models"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := sqlx.NewDb(mockDB, "sqlmock")
	return NewStore(db), mock
}

func TestStartGeneratesRunIDWhenEmpty(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`INSERT INTO scraping_logs`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	id, runID, _, err := store.Start(context.Background(), "inquirer", "")

	require.NoError(t, err)
	assert.Equal(t, 7, id)
	assert.NotEmpty(t, runID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStartPassesThroughSuppliedRunID(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`INSERT INTO scraping_logs`).
		WithArgs("caller-token", "gma", models.RunStatusPartial, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	id, runID, _, err := store.Start(context.Background(), "gma", "caller-token")

	require.NoError(t, err)
	assert.Equal(t, 11, id)
	assert.Equal(t, "caller-token", runID)
}

func TestFinishClampsNegativeArticleCount(t *testing.T) {
	store, mock := newMockStore(t)

	startedAt := time.Now().Add(-time.Minute)
	mock.ExpectQuery(`SELECT started_at FROM scraping_logs WHERE id = \$1`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"started_at"}).AddRow(startedAt))

	mock.ExpectExec(`UPDATE scraping_logs`).
		WithArgs(models.RunStatusError, 0, "boom", sqlmock.AnyArg(), sqlmock.AnyArg(), 7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Finish(context.Background(), 7, models.RunStatusError, -3, "boom")

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByRunIDReturnsErrRunNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT id, run_id, source, status, articles_scraped, started_at`).
		WithArgs("missing-token").
		WillReturnError(sql.ErrNoRows)

	log, err := store.GetByRunID(context.Background(), "missing-token")

	assert.Nil(t, log)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestRecentOrdersNewestFirst(t *testing.T) {
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{
		"id", "run_id", "source", "status", "articles_scraped", "started_at",
		"completed_at", "execution_time_ms", "error_message",
	}).AddRow(2, "run-2", "inquirer", models.RunStatusSuccess, 5, time.Now(), time.Now(), 1200, nil).
		AddRow(1, "run-1", "inquirer", models.RunStatusSuccess, 3, time.Now(), time.Now(), 900, nil)

	mock.ExpectQuery(`SELECT id, run_id, source, status, articles_scraped, started_at`).
		WithArgs(20).
		WillReturnRows(rows)

	logs, err := store.Recent(context.Background(), 20)

	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "run-2", logs[0].RunID)
}
