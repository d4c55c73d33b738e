// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/eventsnap/internal/authz"
	"github.com/tomtom215/eventsnap/internal/database"
	"github.com/tomtom215/eventsnap/internal/engagement"
	"github.com/tomtom215/eventsnap/internal/storage"
)

// Error codes returned in APIError.Code.
const (
	CodeBadRequest     = "BAD_REQUEST"
	CodeValidation     = "VALIDATION_ERROR"
	CodeNotFound       = "NOT_FOUND"
	CodeParentNotFound = "PARENT_NOT_FOUND"
	CodeForbidden      = "FORBIDDEN"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeNoValidFiles   = "NO_VALID_FILES"
	CodeTooLarge       = "PAYLOAD_TOO_LARGE"
	CodeQueueError     = "QUEUE_ERROR"
	CodeDatabaseError  = "DATABASE_ERROR"
	CodeStorageError   = "STORAGE_ERROR"
	CodeInternal       = "INTERNAL_ERROR"
)

// respondDomainError maps package sentinels to HTTP responses. Anything
// unrecognised is a 500 with fallbackCode.
func respondDomainError(w http.ResponseWriter, err error, fallbackCode string) {
	switch {
	case errors.Is(err, database.ErrPhotoNotFound):
		respondError(w, http.StatusNotFound, CodeNotFound, "Photo not found", nil)
	case errors.Is(err, engagement.ErrParentNotFound):
		respondError(w, http.StatusNotFound, CodeParentNotFound, "Parent comment not found", nil)
	case errors.Is(err, engagement.ErrInvalidComment):
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error(), nil)
	case errors.Is(err, storage.ErrNotFound):
		respondError(w, http.StatusNotFound, CodeNotFound, "Photo file not found", nil)
	case errors.Is(err, authz.ErrForbidden):
		respondError(w, http.StatusForbidden, CodeForbidden, "Not authorized to modify this photo", nil)
	default:
		respondError(w, http.StatusInternalServerError, fallbackCode, "Internal server error", err)
	}
}
