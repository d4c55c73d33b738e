// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/eventsnap/internal/auth"
	"github.com/tomtom215/eventsnap/internal/authz"
	"github.com/tomtom215/eventsnap/internal/database"
	"github.com/tomtom215/eventsnap/internal/engagement"
	"github.com/tomtom215/eventsnap/internal/models"
	"github.com/tomtom215/eventsnap/internal/queue"
	"github.com/tomtom215/eventsnap/internal/storage"
	"github.com/tomtom215/eventsnap/internal/websocket"
)

// JobQueue accepts processing jobs.
type JobQueue interface {
	Enqueue(ctx context.Context, photoID int64, sourcePath string) (queue.Job, error)
	Len() int
}

// Dependencies are the collaborators the handlers use.
type Dependencies struct {
	Store      database.Store
	Queue      JobQueue
	Files      storage.FileStore
	Engine     *engagement.Engine
	Authorizer *authz.PhotoAuthorizer
	Registry   *websocket.Registry

	// MaxFileBytes bounds each uploaded file.
	MaxFileBytes int64
	// MaxFiles bounds files per upload request.
	MaxFiles int
	// CORSOrigins also gates WebSocket upgrades.
	CORSOrigins []string
}

// Handler serves the EventSnap HTTP API.
type Handler struct {
	store      database.Store
	queue      JobQueue
	files      storage.FileStore
	engine     *engagement.Engine
	authorizer *authz.PhotoAuthorizer
	registry   *websocket.Registry

	maxFileBytes int64
	maxFiles     int
	origins      []string
	startTime    time.Time
}

// NewHandler creates a Handler.
func NewHandler(deps Dependencies) *Handler {
	if deps.MaxFileBytes <= 0 {
		deps.MaxFileBytes = 32 << 20
	}
	if deps.MaxFiles <= 0 {
		deps.MaxFiles = 50
	}
	return &Handler{
		store:        deps.Store,
		queue:        deps.Queue,
		files:        deps.Files,
		engine:       deps.Engine,
		authorizer:   deps.Authorizer,
		registry:     deps.Registry,
		maxFileBytes: deps.MaxFileBytes,
		maxFiles:     deps.MaxFiles,
		origins:      deps.CORSOrigins,
		startTime:    time.Now(),
	}
}

// identity returns the caller or writes 401. Routes are mounted behind
// auth.Middleware, so a miss means a wiring error.
func (h *Handler) identity(w http.ResponseWriter, r *http.Request) (models.Identity, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, CodeUnauthorized, "Authentication required", nil)
	}
	return id, ok
}

// loadPhoto resolves {id} and writes 400/404/500 on failure.
func (h *Handler) loadPhoto(w http.ResponseWriter, r *http.Request) (*models.Photo, bool) {
	id, err := photoIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeBadRequest, err.Error(), nil)
		return nil, false
	}
	photo, err := h.store.GetPhoto(r.Context(), id)
	if err != nil {
		respondDomainError(w, err, CodeDatabaseError)
		return nil, false
	}
	return photo, true
}

// authorize writes 403 and returns false unless caller may act on photo.
func (h *Handler) authorize(w http.ResponseWriter, caller models.Identity, photo *models.Photo, action string) bool {
	err := h.authorizer.Require(caller, photo.UploaderID, action)
	if err == nil {
		return true
	}
	if errors.Is(err, authz.ErrForbidden) {
		respondError(w, http.StatusForbidden, CodeForbidden, "Not authorized to perform this action on the photo", nil)
	} else {
		respondError(w, http.StatusInternalServerError, CodeInternal, "Authorization check failed", err)
	}
	return false
}
