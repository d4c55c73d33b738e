// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

//go:build integration

package engagement

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/eventsnap/internal/database"
	"github.com/tomtom215/eventsnap/internal/models"
)

func setupDuckDBEngine(t *testing.T) (*Engine, *database.DB) {
	t.Helper()
	conn, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory DuckDB: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	db, err := database.NewFromConn(context.Background(), conn)
	if err != nil {
		t.Fatalf("NewFromConn() error = %v", err)
	}
	return NewEngine(db, nil, Config{}), db
}

// TestDuckDB_ConcurrentLikesAndComments drives likes and comments on
// several photos at once so the per-photo lock and the transaction retry
// both get exercised against the real engine.
func TestDuckDB_ConcurrentLikesAndComments(t *testing.T) {
	ctx := context.Background()
	e, db := setupDuckDBEngine(t)

	const photos, users = 4, 16
	ids := make([]int64, photos)
	for i := range ids {
		p, err := db.CreatePhoto(ctx, models.NewPhoto{
			OriginalPath: fmt.Sprintf("originals/%d.jpg", i),
			UploaderID:   1,
		})
		if err != nil {
			t.Fatal(err)
		}
		ids[i] = p.ID
	}

	var wg sync.WaitGroup
	for _, photoID := range ids {
		for u := int64(1); u <= users; u++ {
			wg.Add(2)
			go func(photoID, u int64) {
				defer wg.Done()
				if _, err := e.ToggleLike(ctx, photoID, u); err != nil {
					t.Errorf("ToggleLike(%d, %d) error = %v", photoID, u, err)
				}
			}(photoID, u)
			go func(photoID, u int64) {
				defer wg.Done()
				author := identity(u, fmt.Sprintf("user%d@example.com", u))
				if _, err := e.CreateComment(ctx, photoID, author, "nice shot", nil); err != nil {
					t.Errorf("CreateComment(%d, %d) error = %v", photoID, u, err)
				}
			}(photoID, u)
		}
	}
	wg.Wait()

	for _, photoID := range ids {
		count, err := e.LikesCount(ctx, photoID)
		if err != nil {
			t.Fatal(err)
		}
		if count != users {
			t.Errorf("photo %d likes_count = %d, want %d", photoID, count, users)
		}
		comments, err := e.ListComments(ctx, photoID)
		if err != nil {
			t.Fatal(err)
		}
		if len(comments) != users {
			t.Errorf("photo %d comments = %d, want %d", photoID, len(comments), users)
		}
	}
}
