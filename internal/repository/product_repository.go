package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/inventory-api/internal/model"
)

// ProductRepo provides CRUD for the `products` table with soft delete.
type ProductRepo struct {
	db *sql.DB
}

// NewProductRepo returns a new ProductRepo bound to the given database.
func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{db: db} }

// ProductInput carries the writable product fields.
type ProductInput struct {
	Name        string
	Description *string
	SKU         string
	CategoryID  string
}

const productColumns = "id, name, description, sku, category_id, created_at, deleted_at"

// List returns live products, newest first.
func (r *ProductRepo) List(ctx context.Context) ([]model.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE deleted_at IS NULL ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetByID fetches a live product or ErrNotFound.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (model.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = ? AND deleted_at IS NULL", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Product{}, ErrNotFound
	}
	return p, err
}

// Create inserts a product and returns the stored row.
func (r *ProductRepo) Create(ctx context.Context, in ProductInput) (model.Product, error) {
	id := uuid.NewString()
	const q = `INSERT INTO products (id, name, description, sku, category_id) VALUES (?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, id, in.Name, in.Description, in.SKU, in.CategoryID); err != nil {
		return model.Product{}, err
	}
	return r.GetByID(ctx, id)
}

// Update rewrites every writable field of a live product.
func (r *ProductRepo) Update(ctx context.Context, id string, in ProductInput) (model.Product, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return model.Product{}, err
	}
	const q = `UPDATE products SET name = ?, description = ?, sku = ?, category_id = ?
	           WHERE id = ? AND deleted_at IS NULL`
	if _, err := r.db.ExecContext(ctx, q, in.Name, in.Description, in.SKU, in.CategoryID, id); err != nil {
		return model.Product{}, err
	}
	return r.GetByID(ctx, id)
}

// SoftDelete marks the product as deleted.
func (r *ProductRepo) SoftDelete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE products SET deleted_at = UTC_TIMESTAMP() WHERE id = ? AND deleted_at IS NULL", id)
	return err
}

// Restore clears the deletion marker.
func (r *ProductRepo) Restore(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE products SET deleted_at = NULL WHERE id = ?", id)
	return err
}

func scanProduct(s rowScanner) (model.Product, error) {
	var (
		p         model.Product
		desc      sql.NullString
		deletedAt sql.NullTime
	)
	if err := s.Scan(&p.ID, &p.Name, &desc, &p.SKU, &p.CategoryID, &p.CreatedAt, &deletedAt); err != nil {
		return model.Product{}, err
	}
	p.Description = nullString(desc)
	if deletedAt.Valid {
		t := deletedAt.Time
		p.DeletedAt = &t
	}
	return p, nil
}
