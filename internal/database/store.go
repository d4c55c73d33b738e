// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package database

import (
	"context"

	"github.com/tomtom215/eventsnap/internal/models"
)

// PhotoStore persists photos and their processing status.
type PhotoStore interface {
	CreatePhoto(ctx context.Context, p models.NewPhoto) (*models.Photo, error)
	GetPhoto(ctx context.Context, id int64) (*models.Photo, error)

	// TransitionStatus moves photo id to status to, provided its current
	// status is one of from. A nil derived clears the derived fields;
	// otherwise they are written in the same statement.
	TransitionStatus(ctx context.Context, id int64, from []models.ProcessingStatus, to models.ProcessingStatus, derived *models.DerivedFields) error

	SetManualTags(ctx context.Context, id int64, tags []string) error

	// PhotoDetail returns the photo with engagement counters and
	// viewer-relative flags.
	PhotoDetail(ctx context.Context, photoID, viewerID int64) (*models.PhotoWithEngagement, error)

	// Library returns photos the user liked or is tagged in, newest first.
	Library(ctx context.Context, userID int64, limit, offset int) ([]models.PhotoWithEngagement, error)

	// SearchPhotos returns photos matching filter, newest first, with
	// engagement relative to viewerID.
	SearchPhotos(ctx context.Context, filter PhotoFilter, viewerID int64) ([]models.PhotoWithEngagement, error)
}

// EngagementStore persists likes, comments and photo tags.
type EngagementStore interface {
	// ToggleLike flips the like for (photoID, userID) and returns the new
	// state and the recomputed count.
	ToggleLike(ctx context.Context, photoID, userID int64) (liked bool, count int, err error)
	LikesCount(ctx context.Context, photoID int64) (int, error)

	CreateComment(ctx context.Context, photoID, authorID int64, content string, parentID *int64) (*models.Comment, error)
	ListComments(ctx context.Context, photoID int64) ([]models.Comment, error)

	// TagUser records that userID appears in photoID. created is false when
	// the tag already existed.
	TagUser(ctx context.Context, photoID, userID int64) (created bool, err error)
	TaggedUsers(ctx context.Context, photoID int64) ([]int64, error)
}

// UserStore is the user directory used to display comment authors.
type UserStore interface {
	UpsertUser(ctx context.Context, u models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

// Store is the full persistence surface.
type Store interface {
	PhotoStore
	EngagementStore
	UserStore
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Store = (*DB)(nil)
	_ Store = (*MemoryStore)(nil)
)
