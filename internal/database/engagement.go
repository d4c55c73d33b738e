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

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func photoExists(ctx context.Context, q queryer, photoID int64) error {
	var exists bool
	if err := q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM photos WHERE id = ?)`, photoID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check photo %d: %w", photoID, err)
	}
	if !exists {
		return ErrPhotoNotFound
	}
	return nil
}

// getOrCreateEngagement returns the engagement id for photoID, inserting
// the row on first use.
func getOrCreateEngagement(ctx context.Context, q queryer, photoID int64) (int64, error) {
	if _, err := q.ExecContext(ctx,
		`INSERT INTO engagements (photo_id) VALUES (?) ON CONFLICT (photo_id) DO NOTHING`, photoID); err != nil {
		return 0, fmt.Errorf("failed to create engagement: %w", err)
	}
	var id int64
	if err := q.QueryRowContext(ctx, `SELECT id FROM engagements WHERE photo_id = ?`, photoID).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to load engagement: %w", err)
	}
	return id, nil
}

// ToggleLike flips the like and rewrites likes_count from the like rows.
func (db *DB) ToggleLike(ctx context.Context, photoID, userID int64) (liked bool, count int, err error) {
	defer track("toggle_like")(&err)

	err = db.inTx(ctx, func(tx *sql.Tx) error {
		if err := photoExists(ctx, tx, photoID); err != nil {
			return err
		}
		engagementID, err := getOrCreateEngagement(ctx, tx, photoID)
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM likes WHERE photo_id = ? AND user_id = ?`, photoID, userID)
		if err != nil {
			return fmt.Errorf("failed to delete like: %w", err)
		}
		removed, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		if removed == 0 {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO likes (photo_id, user_id, created_at) VALUES (?, ?, ?)`,
				photoID, userID, time.Now().UTC()); err != nil {
				return fmt.Errorf("failed to insert like: %w", err)
			}
			liked = true
		}

		var n int64
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM likes WHERE photo_id = ?`, photoID).Scan(&n); err != nil {
			return fmt.Errorf("failed to count likes: %w", err)
		}
		count = max(int(n), 0)

		if _, err := tx.ExecContext(ctx,
			`UPDATE engagements SET likes_count = ? WHERE id = ?`, count, engagementID); err != nil {
			return fmt.Errorf("failed to update likes count: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, 0, err
	}
	return liked, count, nil
}

// LikesCount returns the stored like count, zero when no engagement exists.
func (db *DB) LikesCount(ctx context.Context, photoID int64) (count int, err error) {
	defer track("likes_count")(&err)

	err = db.conn.QueryRowContext(ctx,
		`SELECT likes_count FROM engagements WHERE photo_id = ?`, photoID).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read likes count: %w", err)
	}
	return count, nil
}

// CreateComment inserts a comment. A parent must belong to the same
// engagement, otherwise ErrParentNotFound is returned and nothing is written.
func (db *DB) CreateComment(ctx context.Context, photoID, authorID int64, content string, parentID *int64) (c *models.Comment, err error) {
	defer track("create_comment")(&err)

	err = db.inTx(ctx, func(tx *sql.Tx) error {
		if err := photoExists(ctx, tx, photoID); err != nil {
			return err
		}
		engagementID, err := getOrCreateEngagement(ctx, tx, photoID)
		if err != nil {
			return err
		}

		var parent any
		if parentID != nil {
			var ok bool
			if err := tx.QueryRowContext(ctx,
				`SELECT EXISTS (SELECT 1 FROM comments WHERE id = ? AND engagement_id = ?)`,
				*parentID, engagementID).Scan(&ok); err != nil {
				return fmt.Errorf("failed to check parent comment: %w", err)
			}
			if !ok {
				return ErrParentNotFound
			}
			parent = *parentID
		}

		c = &models.Comment{
			EngagementID: engagementID,
			AuthorID:     authorID,
			Content:      content,
			ParentID:     parentID,
			CreatedAt:    time.Now().UTC(),
		}
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO comments (engagement_id, author_id, content, parent_id, created_at)
			VALUES (?, ?, ?, ?, ?)
			RETURNING id`,
			engagementID, authorID, content, parent, c.CreatedAt).Scan(&c.ID); err != nil {
			return fmt.Errorf("failed to insert comment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListComments returns the photo's comments in creation order.
func (db *DB) ListComments(ctx context.Context, photoID int64) (out []models.Comment, err error) {
	defer track("list_comments")(&err)

	rows, err := db.conn.QueryContext(ctx, `
		SELECT c.id, c.engagement_id, c.author_id, c.content, c.parent_id, c.created_at
		FROM comments c
		JOIN engagements e ON e.id = c.engagement_id
		WHERE e.photo_id = ?
		ORDER BY c.created_at ASC, c.id ASC`, photoID)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	out = []models.Comment{}
	for rows.Next() {
		var (
			c      models.Comment
			parent sql.NullInt64
		)
		if err := rows.Scan(&c.ID, &c.EngagementID, &c.AuthorID, &c.Content, &parent, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		if parent.Valid {
			c.ParentID = &parent.Int64
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}
	return out, nil
}

// TagUser records that userID appears in photoID.
func (db *DB) TagUser(ctx context.Context, photoID, userID int64) (created bool, err error) {
	defer track("tag_user")(&err)

	err = db.inTx(ctx, func(tx *sql.Tx) error {
		if err := photoExists(ctx, tx, photoID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO tagged_in (photo_id, user_id, created_at) VALUES (?, ?, ?)
			ON CONFLICT (photo_id, user_id) DO NOTHING`,
			photoID, userID, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed to tag user: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		created = n > 0
		return nil
	})
	return created, err
}

// TaggedUsers lists users tagged in photoID in tagging order.
func (db *DB) TaggedUsers(ctx context.Context, photoID int64) (ids []int64, err error) {
	defer track("tagged_users")(&err)

	tagged, err := db.taggedUsersFor(ctx, []int64{photoID})
	if err != nil {
		return nil, err
	}
	if ids = tagged[photoID]; ids == nil {
		ids = []int64{}
	}
	return ids, nil
}
