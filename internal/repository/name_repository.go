package repository

import (
	"context"
	"database/sql"
	"errors"
)

// NameRepo resolves display names for audit decoration. None of its
// queries filter on deleted_at: historical entries must still show the
// name of a resource that was soft deleted afterwards. A row that was
// physically removed yields ErrNotFound.
type NameRepo struct {
	db *sql.DB
}

func NewNameRepo(db *sql.DB) *NameRepo { return &NameRepo{db: db} }

// UserName returns users.name for id.
func (r *NameRepo) UserName(ctx context.Context, id string) (string, error) {
	return r.one(ctx, "SELECT name FROM users WHERE id = ?", id)
}

// CategoryName returns categories.name for id, deleted or not.
func (r *NameRepo) CategoryName(ctx context.Context, id string) (string, error) {
	return r.one(ctx, "SELECT name FROM categories WHERE id = ?", id)
}

// ProductName returns products.name for id, deleted or not.
func (r *NameRepo) ProductName(ctx context.Context, id string) (string, error) {
	return r.one(ctx, "SELECT name FROM products WHERE id = ?", id)
}

// MovementProductName returns the name of the product a movement belongs to.
func (r *NameRepo) MovementProductName(ctx context.Context, movementID string) (string, error) {
	return r.one(ctx, `SELECT p.name
	                   FROM inventory_movements im
	                   JOIN products p ON p.id = im.product_id
	                   WHERE im.id = ?`, movementID)
}

func (r *NameRepo) one(ctx context.Context, q, id string) (string, error) {
	var name string
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return name, nil
}
