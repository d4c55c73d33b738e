// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package models

import "time"

// Engagement aggregates likes and comments for one photo.
type Engagement struct {
	ID         int64          `json:"id"`
	PhotoID    int64          `json:"photo_id"`
	LikesCount int            `json:"likes_count"`
	Metadata   map[string]any `json:"extra_metadata,omitempty"`
}

// Like is a single user's active like. Its existence is the only signal.
type Like struct {
	PhotoID   int64     `json:"photo_id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// LikeResult is returned by a like toggle.
type LikeResult struct {
	PhotoID    int64 `json:"photo_id"`
	UserID     int64 `json:"user_id"`
	Liked      bool  `json:"liked"`
	LikesCount int   `json:"likes_count"`
}

// Comment is one node of a photo's comment thread. Replies point at their
// parent through ParentID; the tree is rebuilt by callers.
type Comment struct {
	ID           int64     `json:"id"`
	EngagementID int64     `json:"engagement_id"`
	AuthorID     int64     `json:"author_id"`
	AuthorEmail  string    `json:"author_email,omitempty"`
	Content      string    `json:"content"`
	ParentID     *int64    `json:"parent_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewComment is the input to comment creation.
type NewComment struct {
	EngagementID int64
	AuthorID     int64
	Content      string
	ParentID     *int64
}
