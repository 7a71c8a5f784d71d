package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/inventory-api/internal/model"
)

var auditColumns = []string{"id", "user_id", "role", "action", "resource", "resource_id", "ip", "created_at"}

func TestAuditRepo_ListByUser(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM audit_logs WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?")).
		WithArgs("user-1", 15, 15).
		WillReturnRows(sqlmock.NewRows(auditColumns).
			AddRow("a1", "user-1", "ADMIN", "CREATE", "PRODUCT", "p1", "10.0.0.1", now).
			AddRow("a2", "user-1", nil, "UPDATE", "CATEGORY", nil, nil, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM audit_logs WHERE user_id = ?")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(17))

	rows, total, err := NewAuditRepo(db).List(context.Background(), AuditFilter{UserID: "user-1"}, 15, 15)
	require.NoError(t, err)
	assert.Equal(t, 17, total)
	require.Len(t, rows, 2)

	assert.Equal(t, model.ActionCreate, rows[0].Action)
	require.NotNil(t, rows[0].ResourceID)
	assert.Equal(t, "p1", *rows[0].ResourceID)
	assert.Equal(t, "10.0.0.1", rows[0].IP)

	assert.Nil(t, rows[1].ResourceID)
	assert.Empty(t, rows[1].Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepo_ListUnfiltered(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM audit_logs ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?")).
		WithArgs(15, 0).
		WillReturnRows(sqlmock.NewRows(auditColumns))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM audit_logs")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	rows, total, err := NewAuditRepo(db).List(context.Background(), AuditFilter{}, 15, 0)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Zero(t, total)
}

func TestAuditRepo_Insert(t *testing.T) {
	db, mock := newMock(t)
	rid := "p1"

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_logs")).
		WithArgs(sqlmock.AnyArg(), "user-1", "ADMIN", "SOFT_DELETE", "PRODUCT", sqlmock.AnyArg(), "127.0.0.1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	entry := &model.AuditLog{UserID: "user-1", Role: "ADMIN", Action: model.ActionSoftDelete, Resource: "PRODUCT", ResourceID: &rid, IP: "127.0.0.1"}
	require.NoError(t, NewAuditRepo(db).Insert(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNameRepo(t *testing.T) {
	t.Run("deleted rows still resolve", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT name FROM products WHERE id = ?")).
			WithArgs("p1").
			WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Hammer"))

		name, err := NewNameRepo(db).ProductName(context.Background(), "p1")
		require.NoError(t, err)
		assert.Equal(t, "Hammer", name)
	})

	t.Run("missing row", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT name FROM categories WHERE id = ?")).
			WithArgs("c1").
			WillReturnRows(sqlmock.NewRows([]string{"name"}))

		_, err := NewNameRepo(db).CategoryName(context.Background(), "c1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("query error passes through", func(t *testing.T) {
		db, mock := newMock(t)
		boom := errors.New("connection reset")
		mock.ExpectQuery(regexp.QuoteMeta("JOIN products p ON p.id = im.product_id")).
			WithArgs("m1").
			WillReturnError(boom)

		_, err := NewNameRepo(db).MovementProductName(context.Background(), "m1")
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrNotFound)
	})
}

func TestUserRepo_CreateDuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(sqlmock.AnyArg(), "Ana", "ana@example.com", "hash", "USER").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	_, err := NewUserRepo(db).Create(context.Background(), "Ana", " Ana@Example.com ", "hash", model.RoleUser)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestUserRepo_GetByEmailNotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=? LIMIT 1")).
		WithArgs("nobody@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := NewUserRepo(db).GetByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}
