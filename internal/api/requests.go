// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/eventsnap/internal/database"
	"github.com/tomtom215/eventsnap/internal/models"
	"github.com/tomtom215/eventsnap/internal/validation"
)

const maxJSONBody = 64 << 10

// UpdateTagsRequest replaces a photo's manual tags.
type UpdateTagsRequest struct {
	ManualTags []string `json:"manual_tags" validate:"max=50,dive,required,max=64"`
}

// TagUserRequest marks a user as appearing in a photo.
type TagUserRequest struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
}

// CreateCommentRequest is the body of a new comment or reply. Content
// rules are enforced by the engagement engine.
type CreateCommentRequest struct {
	Content  string `json:"content"`
	ParentID *int64 `json:"parent_id" validate:"omitempty,gt=0"`
}

// LibraryRequest pages through the caller's library.
type LibraryRequest struct {
	Limit  int `json:"limit" validate:"min=1,max=1000"`
	Offset int `json:"offset" validate:"min=0"`
}

// SearchPhotosRequest holds the paging and id filters of a photo search.
type SearchPhotosRequest struct {
	EventID        int64 `json:"event_id" validate:"min=0"`
	PhotographerID int64 `json:"photographer_id" validate:"min=0"`
	Limit          int   `json:"limit" validate:"min=1,max=1000"`
	Skip           int   `json:"skip" validate:"min=0"`
}

// parsePhotoFilter reads the photo search query parameters: event_id,
// photographer_id, date_from and date_to (RFC3339), comma-separated tags,
// skip (or offset) and limit.
func parsePhotoFilter(r *http.Request) (database.PhotoFilter, *models.APIError) {
	var filter database.PhotoFilter
	q := r.URL.Query()

	invalid := func(msg string) *models.APIError {
		return &models.APIError{Code: CodeValidation, Message: msg}
	}

	eventID, okEvent := getInt64Param(r, "event_id")
	photographer, okPhotographer := getInt64Param(r, "photographer_id")
	limit, okLimit := getIntParam(r, "limit", defaultSearchLimit)
	skipKey := "skip"
	if q.Get(skipKey) == "" {
		skipKey = "offset"
	}
	skip, okSkip := getIntParam(r, skipKey, 0)
	if !okEvent || !okPhotographer || !okLimit || !okSkip {
		return filter, invalid("event_id, photographer_id, skip and limit must be integers")
	}
	req := SearchPhotosRequest{EventID: eventID, PhotographerID: photographer, Limit: limit, Skip: skip}
	if apiErr := validateRequest(&req); apiErr != nil {
		return filter, apiErr
	}
	if q.Get("event_id") != "" {
		filter.EventID = &req.EventID
	}
	if q.Get("photographer_id") != "" {
		filter.UploaderID = &req.PhotographerID
	}
	filter.Limit = req.Limit
	filter.Offset = req.Skip

	dates := []struct {
		key string
		dst **time.Time
	}{
		{"date_from", &filter.From},
		{"date_to", &filter.To},
	}
	for _, d := range dates {
		raw := q.Get(d.key)
		if raw == "" {
			continue
		}
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, invalid(fmt.Sprintf("Invalid %s format. Use RFC3339 format", d.key))
		}
		*d.dst = &ts
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return filter, invalid("date_to must not be before date_from")
	}

	if raw := q.Get("tags"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				filter.Tags = append(filter.Tags, tag)
			}
		}
	}
	return filter, nil
}

// validateRequest validates a struct using go-playground/validator.
// Returns nil if validation passes.
func validateRequest(v interface{}) *models.APIError {
	validationErr := validation.ValidateStruct(v)
	if validationErr == nil {
		return nil
	}
	apiErr := validationErr.ToAPIError()
	return &models.APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(r *http.Request, v interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxJSONBody+1))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxJSONBody {
		return errors.New("request body too large")
	}
	if len(body) == 0 {
		return errors.New("request body is empty")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// photoIDParam parses the {id} route parameter.
func photoIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid photo id %q", raw)
	}
	return id, nil
}

// getIntParam extracts an integer query parameter with a default value.
// Malformed values return ok=false so callers can reject them.
func getIntParam(r *http.Request, key string, defaultValue int) (int, bool) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue, true
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	return n, true
}

// getInt64Param extracts an optional int64 query parameter. Absent values
// return 0.
func getInt64Param(r *http.Request, key string) (int64, bool) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return 0, true
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
