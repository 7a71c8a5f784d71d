package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/inventory-api/internal/model"
)

// TokenRepo persists refresh tokens keyed by their SHA‑256 hash. A row
// exists only while the token may still be exchanged; every terminal
// transition deletes it.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Store inserts a refresh token hash row.
func (r *TokenRepo) Store(ctx context.Context, t model.RefreshToken) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (token_hash, user_id, expires_at) VALUES (?,?,?)",
		t.TokenHash, t.UserID, t.ExpiresAt.UTC())
	return err
}

// Find returns the row for tokenHash or ErrTokenNotFound. Expiry is not
// checked here; the signed token carries its own TTL.
func (r *TokenRepo) Find(ctx context.Context, tokenHash string) (model.RefreshToken, error) {
	var t model.RefreshToken
	err := r.DB.QueryRowContext(ctx,
		"SELECT token_hash, user_id, expires_at FROM refresh_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&t.TokenHash, &t.UserID, &t.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.RefreshToken{}, ErrTokenNotFound
		}
		return model.RefreshToken{}, err
	}
	return t, nil
}

// Delete removes the row for tokenHash. Deleting a missing row is not an
// error.
func (r *TokenRepo) Delete(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE token_hash=?", tokenHash)
	return err
}

// Rotate replaces oldHash with next inside one transaction. The delete
// must remove exactly one row; when it removes none (the token was
// already rotated or revoked) the transaction is rolled back and
// ErrTokenNotFound is returned. Any failure leaves the old row intact.
func (r *TokenRepo) Rotate(ctx context.Context, oldHash string, next model.RefreshToken) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE token_hash=?", oldHash)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return ErrTokenNotFound
	}

	if _, err = tx.ExecContext(ctx,
		"INSERT INTO refresh_tokens (token_hash, user_id, expires_at) VALUES (?,?,?)",
		next.TokenHash, next.UserID, next.ExpiresAt.UTC()); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteExpired purges rows whose stored expiry has passed and returns how
// many were removed.
func (r *TokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE expires_at < ?", now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
