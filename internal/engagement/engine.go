// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package engagement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/eventsnap/internal/cache"
	"github.com/tomtom215/eventsnap/internal/database"
	"github.com/tomtom215/eventsnap/internal/logging"
	"github.com/tomtom215/eventsnap/internal/metrics"
	"github.com/tomtom215/eventsnap/internal/models"
	"github.com/tomtom215/eventsnap/internal/validation"
)

const lockStripes = 64

var (
	// ErrParentNotFound is returned when a reply names a comment that does
	// not exist on the same photo.
	ErrParentNotFound = database.ErrParentNotFound

	// ErrInvalidComment is returned when comment content fails validation.
	ErrInvalidComment = errors.New("invalid comment")
)

// LikeNotifier receives like changes after they commit.
type LikeNotifier interface {
	LikeUpdate(photoID int64, likesCount int, liked bool, userID int64)
}

// Store is the persistence the engine needs.
type Store interface {
	database.EngagementStore
	database.UserStore
	Library(ctx context.Context, userID int64, limit, offset int) ([]models.PhotoWithEngagement, error)
}

// Config tunes the engine.
type Config struct {
	EmailCacheSize int
	EmailCacheTTL  time.Duration
}

// Engine applies likes, comments and photo tags.
type Engine struct {
	store    Store
	notifier LikeNotifier
	emails   *cache.LRU[int64, string]
	stripes  [lockStripes]sync.Mutex
}

// NewEngine creates an Engine. A nil notifier disables like broadcasts.
func NewEngine(store Store, notifier LikeNotifier, cfg Config) *Engine {
	if cfg.EmailCacheSize <= 0 {
		cfg.EmailCacheSize = 4096
	}
	if cfg.EmailCacheTTL <= 0 {
		cfg.EmailCacheTTL = 10 * time.Minute
	}
	return &Engine{
		store:    store,
		notifier: notifier,
		emails:   cache.NewLRU[int64, string](cfg.EmailCacheSize, cfg.EmailCacheTTL),
	}
}

func (e *Engine) photoLock(photoID int64) *sync.Mutex {
	idx := uint64(photoID) % lockStripes
	return &e.stripes[idx]
}

// ToggleLike flips userID's like on photoID. The returned count is
// recomputed from the like rows in the same transaction.
func (e *Engine) ToggleLike(ctx context.Context, photoID, userID int64) (models.LikeResult, error) {
	mu := e.photoLock(photoID)
	mu.Lock()
	liked, count, err := e.store.ToggleLike(ctx, photoID, userID)
	mu.Unlock()
	if err != nil {
		return models.LikeResult{}, fmt.Errorf("toggle like on photo %d: %w", photoID, err)
	}

	metrics.RecordLikeToggle(liked)
	if e.notifier != nil {
		e.notifier.LikeUpdate(photoID, count, liked, userID)
	}

	logging.Ctx(ctx).Debug().
		Int64("photo_id", photoID).
		Int64("user_id", userID).
		Bool("liked", liked).
		Int("likes_count", count).
		Msg("Like toggled")

	return models.LikeResult{PhotoID: photoID, UserID: userID, Liked: liked, LikesCount: count}, nil
}

// LikesCount returns the current like count for photoID.
func (e *Engine) LikesCount(ctx context.Context, photoID int64) (int, error) {
	return e.store.LikesCount(ctx, photoID)
}

type commentInput struct {
	Content string `json:"content" validate:"required,max=2000"`
}

// CreateComment adds a comment by author. Content is trimmed and must be
// 1 to 2000 characters. A parentID must name a comment on the same photo.
func (e *Engine) CreateComment(ctx context.Context, photoID int64, author models.Identity, content string, parentID *int64) (*models.Comment, error) {
	in := commentInput{Content: strings.TrimSpace(content)}
	if verr := validation.ValidateStruct(&in); verr != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidComment, verr.Error())
	}

	if author.Email != "" {
		if err := e.store.UpsertUser(ctx, models.User{ID: author.UserID, Email: author.Email, Role: author.Role}); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Int64("user_id", author.UserID).Msg("Failed to record comment author")
		} else {
			e.emails.Add(author.UserID, author.Email)
		}
	}

	mu := e.photoLock(photoID)
	mu.Lock()
	c, err := e.store.CreateComment(ctx, photoID, author.UserID, in.Content, parentID)
	mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("create comment on photo %d: %w", photoID, err)
	}
	c.AuthorEmail = e.email(ctx, author.UserID)
	if c.AuthorEmail == "" {
		c.AuthorEmail = author.Email
	}

	metrics.RecordCommentCreated()
	return c, nil
}

// ListComments returns the photo's comments oldest first with author
// emails filled in.
func (e *Engine) ListComments(ctx context.Context, photoID int64) ([]models.Comment, error) {
	comments, err := e.store.ListComments(ctx, photoID)
	if err != nil {
		return nil, fmt.Errorf("list comments on photo %d: %w", photoID, err)
	}
	for i := range comments {
		comments[i].AuthorEmail = e.email(ctx, comments[i].AuthorID)
	}
	return comments, nil
}

// email resolves a user's email through the cache. Unknown users resolve
// to the empty string.
func (e *Engine) email(ctx context.Context, userID int64) string {
	if v, ok := e.emails.Get(userID); ok {
		return v
	}
	u, err := e.store.GetUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, database.ErrUserNotFound) {
			logging.Ctx(ctx).Warn().Err(err).Int64("user_id", userID).Msg("Failed to resolve comment author")
		}
		return ""
	}
	e.emails.Add(userID, u.Email)
	return u.Email
}

// TagUser records that userID appears in photoID. It is idempotent.
func (e *Engine) TagUser(ctx context.Context, photoID, userID int64) (bool, error) {
	mu := e.photoLock(photoID)
	mu.Lock()
	created, err := e.store.TagUser(ctx, photoID, userID)
	mu.Unlock()
	if err != nil {
		return false, fmt.Errorf("tag user %d on photo %d: %w", userID, photoID, err)
	}
	return created, nil
}

// TaggedUsers returns the user ids tagged in photoID.
func (e *Engine) TaggedUsers(ctx context.Context, photoID int64) ([]int64, error) {
	return e.store.TaggedUsers(ctx, photoID)
}

// Library returns photos userID liked or is tagged in.
func (e *Engine) Library(ctx context.Context, userID int64, limit, offset int) ([]models.PhotoWithEngagement, error) {
	photos, err := e.store.Library(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("library for user %d: %w", userID, err)
	}
	return photos, nil
}
