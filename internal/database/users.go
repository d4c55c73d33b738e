// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/eventsnap/internal/models"
)

// UpsertUser inserts or refreshes a directory entry.
func (db *DB) UpsertUser(ctx context.Context, u models.User) (err error) {
	defer track("upsert_user")(&err)

	if u.Role == "" {
		u.Role = models.RoleMember
	}
	if _, err := db.conn.ExecContext(ctx, `
		INSERT INTO users (id, email, role, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET email = excluded.email, role = excluded.role, updated_at = excluded.updated_at`,
		u.ID, u.Email, u.Role, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to upsert user %d: %w", u.ID, err)
	}
	return nil
}

// GetUser loads a directory entry.
func (db *DB) GetUser(ctx context.Context, id int64) (u *models.User, err error) {
	defer track("get_user")(&err)

	u = &models.User{}
	err = db.conn.QueryRowContext(ctx, `SELECT id, email, role FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Email, &u.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return u, nil
}
