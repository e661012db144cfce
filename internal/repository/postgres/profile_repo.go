package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/dkorovin/tagproof/internal/errs"
)

// ProfileRepo implements repository.ProfileDirectory using PostgreSQL.
type ProfileRepo struct{ db *DB }

// NewProfileRepo constructs a profile directory repository.
func NewProfileRepo(db *DB) *ProfileRepo { return &ProfileRepo{db: db} }

// DisplayName selects the display name for a user id.
func (r *ProfileRepo) DisplayName(ctx context.Context, userID string) (string, error) {
	const q = `SELECT display_name FROM profiles WHERE user_id=$1`
	var name string
	if err := r.db.Pool.QueryRow(ctx, q, userID).Scan(&name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", errs.ErrNotFound
		}
		return "", err
	}
	return name, nil
}

// Upsert stores or replaces a profile entry.
func (r *ProfileRepo) Upsert(ctx context.Context, userID, displayName string) error {
	const q = `
INSERT INTO profiles (user_id, display_name) VALUES ($1,$2)
ON CONFLICT (user_id) DO UPDATE SET display_name=EXCLUDED.display_name`
	_, err := r.db.Pool.Exec(ctx, q, userID, displayName)
	return err
}
