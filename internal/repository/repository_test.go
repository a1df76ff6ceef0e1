package repository

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/teacher-admin-api/pkg/errors"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func TestClassify(t *testing.T) {
	assert.ErrorIs(t, classify(&pq.Error{Code: pqUniqueViolation}), ErrDuplicate)
	assert.ErrorIs(t, classify(&pq.Error{Code: pqForeignKeyViolation}), ErrForeignKey)

	other := &pq.Error{Code: "40001"}
	assert.Same(t, other, classify(other))

	plain := errors.New("plain")
	assert.Same(t, plain, classify(plain))
}

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil)
	var dest []string
	assert.ErrorIs(t, repo.Get(context.Background(), "k", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(context.Background(), "k", []string{"a"}, 0))
	assert.NoError(t, repo.DeleteByPattern(context.Background(), "k*"))
	n, err := repo.Counter(context.Background(), "generation:k")
	assert.NoError(t, err)
	assert.Zero(t, n)
	n, err = repo.Incr(context.Background(), "generation:k")
	assert.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, repo.Close())
}
