package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/inventory-api/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

var (
	deleteTokenSQL = regexp.QuoteMeta("DELETE FROM refresh_tokens WHERE token_hash=?")
	insertTokenSQL = regexp.QuoteMeta("INSERT INTO refresh_tokens (token_hash, user_id, expires_at) VALUES (?,?,?)")
)

func TestTokenRepo_Rotate(t *testing.T) {
	next := model.RefreshToken{TokenHash: "new-hash", UserID: "user-1", ExpiresAt: time.Now().Add(time.Hour)}

	t.Run("commits delete then insert", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(deleteTokenSQL).WithArgs("old-hash").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(insertTokenSQL).WithArgs("new-hash", "user-1", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := NewTokenRepo(db).Rotate(context.Background(), "old-hash", next)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert failure rolls back", func(t *testing.T) {
		db, mock := newMock(t)
		boom := errors.New("insert failed")
		mock.ExpectBegin()
		mock.ExpectExec(deleteTokenSQL).WithArgs("old-hash").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(insertTokenSQL).WithArgs("new-hash", "user-1", sqlmock.AnyArg()).WillReturnError(boom)
		mock.ExpectRollback()

		err := NewTokenRepo(db).Rotate(context.Background(), "old-hash", next)
		require.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already consumed token rolls back", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(deleteTokenSQL).WithArgs("old-hash").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := NewTokenRepo(db).Rotate(context.Background(), "old-hash", next)
		require.ErrorIs(t, err, ErrTokenNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin failure", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))

		err := NewTokenRepo(db).Rotate(context.Background(), "old-hash", next)
		require.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTokenRepo_Find(t *testing.T) {
	selectSQL := regexp.QuoteMeta("SELECT token_hash, user_id, expires_at FROM refresh_tokens WHERE token_hash=? LIMIT 1")

	t.Run("found", func(t *testing.T) {
		db, mock := newMock(t)
		exp := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
		mock.ExpectQuery(selectSQL).WithArgs("h").
			WillReturnRows(sqlmock.NewRows([]string{"token_hash", "user_id", "expires_at"}).AddRow("h", "user-1", exp))

		got, err := NewTokenRepo(db).Find(context.Background(), "h")
		require.NoError(t, err)
		assert.Equal(t, model.RefreshToken{TokenHash: "h", UserID: "user-1", ExpiresAt: exp}, got)
	})

	t.Run("missing", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(selectSQL).WithArgs("h").
			WillReturnRows(sqlmock.NewRows([]string{"token_hash", "user_id", "expires_at"}))

		_, err := NewTokenRepo(db).Find(context.Background(), "h")
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})
}

func TestTokenRepo_DeleteMissingRowIsNotAnError(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(deleteTokenSQL).WithArgs("h").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, NewTokenRepo(db).Delete(context.Background(), "h"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
