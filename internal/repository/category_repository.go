package repository

// This file defines the category repository. Categories are soft
// deleted: every read except the audit name lookups filters on
// deleted_at IS NULL.

import (
	"context"      // context allows passing deadlines and cancellation signals to DB operations
	"database/sql" // sql provides generic database operations and drivers
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/inventory-api/internal/model"
)

// CategoryRepo encapsulates all database queries related to categories.
type CategoryRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewCategoryRepo constructs a CategoryRepo with the provided DB handle.
func NewCategoryRepo(db *sql.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

const categoryColumns = "id, name, description, created_at, deleted_at"

// List returns all live categories ordered by name.
func (r *CategoryRepo) List(ctx context.Context) ([]model.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE deleted_at IS NULL ORDER BY name ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetByID fetches a live category. ErrNotFound covers both missing and
// soft-deleted rows.
func (r *CategoryRepo) GetByID(ctx context.Context, id string) (model.Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE id = ? AND deleted_at IS NULL", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Category{}, ErrNotFound
	}
	return c, err
}

// Create inserts a category and returns the stored row.
func (r *CategoryRepo) Create(ctx context.Context, name string, description *string) (model.Category, error) {
	id := uuid.NewString()
	if _, err := r.db.ExecContext(ctx,
		"INSERT INTO categories (id, name, description) VALUES (?, ?, ?)", id, name, description); err != nil {
		return model.Category{}, err
	}
	return r.GetByID(ctx, id)
}

// Update rewrites name and description of a live category.
func (r *CategoryRepo) Update(ctx context.Context, id, name string, description *string) (model.Category, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return model.Category{}, err
	}
	if _, err := r.db.ExecContext(ctx,
		"UPDATE categories SET name = ?, description = ? WHERE id = ? AND deleted_at IS NULL",
		name, description, id); err != nil {
		return model.Category{}, err
	}
	return r.GetByID(ctx, id)
}

// SoftDelete marks the category as deleted. Already deleted rows are left alone.
func (r *CategoryRepo) SoftDelete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE categories SET deleted_at = UTC_TIMESTAMP() WHERE id = ? AND deleted_at IS NULL", id)
	return err
}

// Restore clears the deletion marker.
func (r *CategoryRepo) Restore(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE categories SET deleted_at = NULL WHERE id = ?", id)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCategory(s rowScanner) (model.Category, error) {
	var (
		c         model.Category
		desc      sql.NullString
		deletedAt sql.NullTime
	)
	if err := s.Scan(&c.ID, &c.Name, &desc, &c.CreatedAt, &deletedAt); err != nil {
		return model.Category{}, err
	}
	c.Description = nullString(desc)
	if deletedAt.Valid {
		t := deletedAt.Time
		c.DeletedAt = &t
	}
	return c, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
