package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/hazyhaar/beewatch/internal/dbopen"
)

// SaveSession stores the browser cookie blob, replacing any previous session.
// Most recent wins: older rows are deleted first.
func (s *Store) SaveSession(ctx context.Context, cookies string) error {
	now := time.Now().UnixMilli()
	return dbopen.RunTx(ctx, s.DB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM session`); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO session (cookies, created_at, updated_at) VALUES (?, ?, ?)`,
			cookies, now, now)
		return err
	})
}

// LoadSession returns the stored cookie blob, or "" when no session exists.
func (s *Store) LoadSession(ctx context.Context) (string, error) {
	var cookies string
	err := s.DB.QueryRowContext(ctx,
		`SELECT cookies FROM session ORDER BY id DESC LIMIT 1`).Scan(&cookies)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return cookies, err
}

// DeleteSession removes the stored session blob.
func (s *Store) DeleteSession(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM session`)
	return err
}
