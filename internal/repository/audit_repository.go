package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/inventory-api/internal/model"
)

// AuditRepo reads and appends rows of the `audit_logs` table. Rows are
// never updated or deleted.
type AuditRepo struct {
	db *sql.DB
}

// NewAuditRepo returns a new AuditRepo bound to the given database.
func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{db: db} }

// AuditFilter narrows a listing. Empty fields are ignored.
type AuditFilter struct {
	UserID     string
	ResourceID string
}

func (f AuditFilter) where() (string, []interface{}) {
	switch {
	case f.UserID != "":
		return " WHERE user_id = ?", []interface{}{f.UserID}
	case f.ResourceID != "":
		return " WHERE resource_id = ?", []interface{}{f.ResourceID}
	default:
		return "", nil
	}
}

// Insert appends one audit row. ID and CreatedAt are filled in when zero.
func (r *AuditRepo) Insert(ctx context.Context, a *model.AuditLog) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	var role sql.NullString
	if a.Role != "" {
		role = sql.NullString{String: a.Role, Valid: true}
	}
	const q = `INSERT INTO audit_logs (id, user_id, role, action, resource, resource_id, ip, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		a.ID, a.UserID, role, string(a.Action), a.Resource, a.ResourceID, a.IP, a.CreatedAt.UTC())
	return err
}

// List returns one page of audit rows, newest first, together with the
// total number of rows matching the filter.
func (r *AuditRepo) List(ctx context.Context, f AuditFilter, limit, offset int) ([]model.AuditLog, int, error) {
	where, args := f.where()

	q := `SELECT id, user_id, role, action, resource, resource_id, ip, created_at
	      FROM audit_logs` + where + ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.AuditLog, 0, limit)
	for rows.Next() {
		var (
			a          model.AuditLog
			role       sql.NullString
			action     string
			resourceID sql.NullString
			ip         sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.UserID, &role, &action, &a.Resource, &resourceID, &ip, &a.CreatedAt); err != nil {
			return nil, 0, err
		}
		a.Role = role.String
		a.Action = model.Action(action)
		a.IP = ip.String
		if resourceID.Valid {
			id := resourceID.String
			a.ResourceID = &id
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_logs"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
