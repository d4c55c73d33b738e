// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/eventsnap/internal/authz"
	"github.com/tomtom215/eventsnap/internal/models"
)

const (
	defaultLibraryLimit = 100
)

// ToggleLike likes or unlikes the photo for the caller.
func (h *Handler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	caller, ok := h.identity(w, r)
	if !ok {
		return
	}
	photo, ok := h.loadPhoto(w, r)
	if !ok {
		return
	}
	if !h.authorize(w, caller, photo, authz.ActionLike) {
		return
	}

	result, err := h.engine.ToggleLike(r.Context(), photo.ID, caller.UserID)
	if err != nil {
		respondDomainError(w, err, CodeDatabaseError)
		return
	}
	respondData(w, http.StatusOK, result, start)
}

// CreateComment adds a comment or reply on the photo.
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	caller, ok := h.identity(w, r)
	if !ok {
		return
	}
	photo, ok := h.loadPhoto(w, r)
	if !ok {
		return
	}
	if !h.authorize(w, caller, photo, authz.ActionComment) {
		return
	}

	var req CreateCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, CodeBadRequest, err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	comment, err := h.engine.CreateComment(r.Context(), photo.ID, caller, req.Content, req.ParentID)
	if err != nil {
		respondDomainError(w, err, CodeDatabaseError)
		return
	}
	respondData(w, http.StatusCreated, comment, start)
}

// ListComments returns the photo's comments oldest first.
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	caller, ok := h.identity(w, r)
	if !ok {
		return
	}
	photo, ok := h.loadPhoto(w, r)
	if !ok {
		return
	}
	if !h.authorize(w, caller, photo, authz.ActionView) {
		return
	}

	comments, err := h.engine.ListComments(r.Context(), photo.ID)
	if err != nil {
		respondDomainError(w, err, CodeDatabaseError)
		return
	}
	respondData(w, http.StatusOK, comments, start)
}

// MyLibrary returns the photos the caller liked or is tagged in.
func (h *Handler) MyLibrary(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	caller, ok := h.identity(w, r)
	if !ok {
		return
	}

	limit, okLimit := getIntParam(r, "limit", defaultLibraryLimit)
	offset, okOffset := getIntParam(r, "offset", 0)
	if !okLimit || !okOffset {
		respondError(w, http.StatusBadRequest, CodeValidation, "limit and offset must be integers", nil)
		return
	}
	req := LibraryRequest{Limit: limit, Offset: offset}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	photos, err := h.engine.Library(r.Context(), caller.UserID, req.Limit, req.Offset)
	if err != nil {
		respondDomainError(w, err, CodeDatabaseError)
		return
	}
	if photos == nil {
		photos = []models.PhotoWithEngagement{}
	}
	respondData(w, http.StatusOK, photos, start)
}
