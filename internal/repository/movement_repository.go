package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/inventory-api/internal/model"
)

// MovementRepo stores stock movements and derives stock levels from them.
type MovementRepo struct {
	db *sql.DB
}

func NewMovementRepo(db *sql.DB) *MovementRepo { return &MovementRepo{db: db} }

// execQuerier is satisfied by both *sql.DB and *sql.Tx.
type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Create inserts one movement and returns it.
func (r *MovementRepo) Create(ctx context.Context, productID string, typ model.MovementType, quantity int, reason *string) (model.InventoryMovement, error) {
	return insertMovement(ctx, r.db, productID, typ, quantity, reason)
}

// CreateExit records an OUT movement after checking stock. The product row
// is locked with SELECT ... FOR UPDATE so concurrent exits for the same
// product are serialized. It returns ErrNotFound for a missing or
// soft-deleted product and ErrInsufficientStock when stock is below
// quantity; in both cases nothing is written.
func (r *MovementRepo) CreateExit(ctx context.Context, productID string, quantity int, reason *string) (m model.InventoryMovement, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.InventoryMovement{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var id string
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM products WHERE id = ? AND deleted_at IS NULL FOR UPDATE", productID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.InventoryMovement{}, ErrNotFound
	}
	if err != nil {
		return model.InventoryMovement{}, err
	}

	var stock int
	if err = tx.QueryRowContext(ctx, stockSQL, productID).Scan(&stock); err != nil {
		return model.InventoryMovement{}, err
	}
	if stock < quantity {
		return model.InventoryMovement{}, ErrInsufficientStock
	}

	m, err = insertMovement(ctx, tx, productID, model.MovementOut, quantity, reason)
	if err != nil {
		return model.InventoryMovement{}, err
	}
	if err = tx.Commit(); err != nil {
		return model.InventoryMovement{}, err
	}
	return m, nil
}

const stockSQL = `SELECT COALESCE(SUM(CASE WHEN movement_type = 'IN' THEN quantity ELSE -quantity END), 0)
	FROM inventory_movements WHERE product_id = ?`

func insertMovement(ctx context.Context, db execQuerier, productID string, typ model.MovementType, quantity int, reason *string) (model.InventoryMovement, error) {
	m := model.InventoryMovement{
		ID:           uuid.NewString(),
		ProductID:    productID,
		MovementType: typ,
		Quantity:     quantity,
		Reason:       reason,
	}
	const q = `INSERT INTO inventory_movements (id, product_id, movement_type, quantity, reason) VALUES (?, ?, ?, ?, ?)`
	if _, err := db.ExecContext(ctx, q, m.ID, m.ProductID, string(m.MovementType), m.Quantity, m.Reason); err != nil {
		return model.InventoryMovement{}, err
	}
	err := db.QueryRowContext(ctx,
		"SELECT created_at FROM inventory_movements WHERE id = ?", m.ID).Scan(&m.CreatedAt)
	return m, err
}

// AllStock reports the stock level of every live product.
func (r *MovementRepo) AllStock(ctx context.Context) ([]model.ProductStock, error) {
	const q = `SELECT p.id, p.name, p.sku,
	                  COALESCE(SUM(CASE WHEN im.movement_type = 'IN' THEN im.quantity
	                                    WHEN im.movement_type = 'OUT' THEN -im.quantity
	                                    ELSE 0 END), 0)
	           FROM products p
	           LEFT JOIN inventory_movements im ON im.product_id = p.id
	           WHERE p.deleted_at IS NULL
	           GROUP BY p.id, p.name, p.sku
	           ORDER BY p.name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.ProductStock{}
	for rows.Next() {
		var s model.ProductStock
		if err := rows.Scan(&s.ProductID, &s.ProductName, &s.SKU, &s.Stock); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// MovementFilter narrows a movement listing. Empty fields are ignored.
type MovementFilter struct {
	ProductID string
	Type      model.MovementType
}

func (f MovementFilter) where() (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	if f.ProductID != "" {
		conds = append(conds, "im.product_id = ?")
		args = append(args, f.ProductID)
	}
	if f.Type != "" {
		conds = append(conds, "im.movement_type = ?")
		args = append(args, string(f.Type))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns a page of movements newest first, with the total count.
func (r *MovementRepo) List(ctx context.Context, f MovementFilter, limit, offset int) ([]model.DecodedMovement, int, error) {
	where, args := f.where()

	q := `SELECT im.id, im.product_id, im.movement_type, im.quantity, im.reason, im.created_at, p.name
	      FROM inventory_movements im
	      LEFT JOIN products p ON p.id = im.product_id` + where + `
	      ORDER BY im.created_at DESC, im.id DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.DecodedMovement, 0, limit)
	for rows.Next() {
		var (
			m      model.DecodedMovement
			typ    string
			reason sql.NullString
			name   sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.ProductID, &typ, &m.Quantity, &reason, &m.CreatedAt, &name); err != nil {
			return nil, 0, err
		}
		m.MovementType = model.MovementType(strings.TrimSpace(typ))
		m.Reason = nullString(reason)
		m.ProductName = nullString(name)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM inventory_movements im"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
