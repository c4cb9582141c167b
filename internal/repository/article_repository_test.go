package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdesk/internal/models"
)

func newMockRepo(t *testing.T) (*ArticleRepository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := sqlx.NewDb(mockDB, "sqlmock")
	return NewArticleRepository(db), mock
}

func TestStoreArticlesSkipsAlreadyPresentURL(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM articles WHERE url = \$1\)`).
		WithArgs("https://example.com/story-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	result, err := repo.StoreArticles(context.Background(), []*models.Article{
		{Source: "inquirer", Title: "Story one", URL: "https://example.com/story-1"},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Checked)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 0, result.Inserted)
	assert.Empty(t, result.InsertedIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreArticlesInsertsNewURLAndReturnsID(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM articles WHERE url = \$1\)`).
		WithArgs("https://example.com/story-2").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	mock.ExpectQuery(`INSERT INTO articles`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	result, err := repo.StoreArticles(context.Background(), []*models.Article{
		{Source: "inquirer", Title: "Story two", URL: "https://example.com/story-2"},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Inserted)
	assert.Equal(t, []int{42}, result.InsertedIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreArticlesTreatsUniqueViolationAsSkip(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM articles WHERE url = \$1\)`).
		WithArgs("https://example.com/story-3").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	mock.ExpectQuery(`INSERT INTO articles`).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	result, err := repo.StoreArticles(context.Background(), []*models.Article{
		{Source: "inquirer", Title: "Story three", URL: "https://example.com/story-3"},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 0, result.Inserted)
}
