// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/eventsnap/internal/authz"
	"github.com/tomtom215/eventsnap/internal/logging"
	"github.com/tomtom215/eventsnap/internal/models"
	"github.com/tomtom215/eventsnap/internal/storage"
)

const defaultSearchLimit = 100

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".tiff": true,
	".webp": true,
}

// uploadExtension returns the lower-cased extension for filename,
// defaulting to .jpg, and whether it is accepted.
func uploadExtension(filename string) (string, bool) {
	ext := strings.ToLower(path.Ext(strings.ReplaceAll(filename, "\\", "/")))
	if ext == "" {
		ext = ".jpg"
	}
	return ext, allowedExtensions[ext]
}

type savedUpload struct {
	filename string
	path     string
}

// UploadPhotos accepts multipart files[] (or files) plus an optional
// event_id, stores each accepted file under originals/, creates a pending
// photo and enqueues it. Files with an unsupported extension or above the
// per-file limit are skipped.
func (h *Handler) UploadPhotos(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	caller, ok := h.identity(w, r)
	if !ok {
		return
	}
	if !h.authorize(w, caller, &models.Photo{UploaderID: caller.UserID}, authz.ActionUpload) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileBytes*int64(h.maxFiles)+1<<20)
	reader, err := r.MultipartReader()
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeBadRequest, "Expected multipart/form-data body", nil)
		return
	}

	var (
		saved    []savedUpload
		recorded int
		eventID  *int64
		skipped  int
	)
	// Originals without a photo row are removed on every early return.
	defer func() {
		h.discardUploads(r.Context(), saved[recorded:])
	}()

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if isBodyTooLarge(err) {
				respondBodyTooLarge(w)
				return
			}
			respondError(w, http.StatusBadRequest, CodeBadRequest, "Malformed multipart body", err)
			return
		}

		switch part.FormName() {
		case "event_id":
			id, perr := readEventID(part)
			if isBodyTooLarge(perr) {
				respondBodyTooLarge(w)
				return
			}
			if perr != nil {
				respondError(w, http.StatusBadRequest, CodeValidation, perr.Error(), nil)
				return
			}
			eventID = id
		case "files", "files[]":
			if len(saved)+skipped >= h.maxFiles {
				respondError(w, http.StatusBadRequest, CodeValidation, fmt.Sprintf("At most %d files per upload", h.maxFiles), nil)
				return
			}
			up, accepted, serr := h.saveUpload(r, part)
			if isBodyTooLarge(serr) {
				respondBodyTooLarge(w)
				return
			}
			if serr != nil {
				respondError(w, http.StatusInternalServerError, CodeStorageError, "Failed to store upload", serr)
				return
			}
			if !accepted {
				skipped++
				continue
			}
			saved = append(saved, up)
		}
		_ = part.Close()
	}

	if len(saved) == 0 {
		respondError(w, http.StatusBadRequest, CodeNoValidFiles, "No valid image files provided", nil)
		return
	}

	results := make([]models.UploadResult, 0, len(saved))
	for _, up := range saved {
		photo, err := h.store.CreatePhoto(r.Context(), models.NewPhoto{
			OriginalPath: up.path,
			UploaderID:   caller.UserID,
			EventID:      eventID,
		})
		if err != nil {
			respondError(w, http.StatusInternalServerError, CodeDatabaseError, "Failed to record photo", err)
			return
		}
		recorded++
		if _, err := h.queue.Enqueue(r.Context(), photo.ID, photo.OriginalPath); err != nil {
			respondError(w, http.StatusServiceUnavailable, CodeQueueError, "Failed to queue photo for processing", err)
			return
		}
		results = append(results, models.UploadResult{
			PhotoID:          photo.ID,
			Message:          fmt.Sprintf("Photo %s uploaded successfully", up.filename),
			ProcessingStatus: photo.Status,
		})
	}

	logging.Ctx(r.Context()).Info().
		Int64("uploader_id", caller.UserID).
		Int("accepted", len(results)).
		Int("skipped", skipped).
		Msg("Photos uploaded")
	respondData(w, http.StatusCreated, results, start)
}

// isBodyTooLarge reports whether err came from the request body limit.
func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func respondBodyTooLarge(w http.ResponseWriter) {
	respondError(w, http.StatusRequestEntityTooLarge, CodeTooLarge, "Upload exceeds the request size limit", nil)
}

// discardUploads deletes stored originals that never got a photo row.
func (h *Handler) discardUploads(ctx context.Context, uploads []savedUpload) {
	ctx = context.WithoutCancel(ctx)
	for _, up := range uploads {
		if err := h.files.Delete(ctx, up.path); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("path", up.path).Msg("Failed to remove orphaned upload")
		}
	}
}

// saveUpload stores one file part. accepted is false for parts that are
// skipped by extension or size.
func (h *Handler) saveUpload(r *http.Request, part *multipart.Part) (savedUpload, bool, error) {
	filename := part.FileName()
	ext, ok := uploadExtension(filename)
	if !ok {
		logging.Ctx(r.Context()).Debug().Str("filename", sanitizeLogValue(filename)).Msg("Skipping upload with unsupported extension")
		return savedUpload{}, false, nil
	}

	data, err := io.ReadAll(io.LimitReader(part, h.maxFileBytes+1))
	if err != nil {
		return savedUpload{}, false, fmt.Errorf("read upload %q: %w", filename, err)
	}
	if int64(len(data)) > h.maxFileBytes || len(data) == 0 {
		logging.Ctx(r.Context()).Debug().Str("filename", sanitizeLogValue(filename)).Int("bytes", len(data)).Msg("Skipping upload outside size limits")
		return savedUpload{}, false, nil
	}

	dest := "originals/" + uuid.NewString() + ext
	stored, err := h.files.SaveFile(r.Context(), data, dest)
	if err != nil {
		return savedUpload{}, false, err
	}
	if filename == "" {
		filename = path.Base(stored)
	}
	return savedUpload{filename: filename, path: stored}, true, nil
}

func readEventID(part *multipart.Part) (*int64, error) {
	raw, err := io.ReadAll(io.LimitReader(part, 32))
	if err != nil {
		return nil, err
	}
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("event_id must be a positive integer")
	}
	return &id, nil
}

// GetPhoto returns a photo with its engagement counters.
func (h *Handler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	caller, ok := h.identity(w, r)
	if !ok {
		return
	}
	id, err := photoIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeBadRequest, err.Error(), nil)
		return
	}

	detail, err := h.store.PhotoDetail(r.Context(), id, caller.UserID)
	if err != nil {
		respondDomainError(w, err, CodeDatabaseError)
		return
	}
	respondData(w, http.StatusOK, detail, start)
}

// SearchPhotos lists photos newest first, filtered by event,
// photographer, upload date range and tags.
func (h *Handler) SearchPhotos(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	caller, ok := h.identity(w, r)
	if !ok {
		return
	}
	filter, apiErr := parsePhotoFilter(r)
	if apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	photos, err := h.store.SearchPhotos(r.Context(), filter, caller.UserID)
	if err != nil {
		respondDomainError(w, err, CodeDatabaseError)
		return
	}
	respondData(w, http.StatusOK, photos, start)
}

// UpdateTags replaces the photo's manual tags. Only the uploader or an
// Admin/Coordinator may edit.
func (h *Handler) UpdateTags(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	caller, ok := h.identity(w, r)
	if !ok {
		return
	}
	photo, ok := h.loadPhoto(w, r)
	if !ok {
		return
	}
	if !h.authorize(w, caller, photo, authz.ActionEditTags) {
		return
	}

	var req UpdateTagsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, CodeBadRequest, err.Error(), nil)
		return
	}
	req.ManualTags = normalizeTags(req.ManualTags)
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	if err := h.store.SetManualTags(r.Context(), photo.ID, req.ManualTags); err != nil {
		respondDomainError(w, err, CodeDatabaseError)
		return
	}
	updated, err := h.store.GetPhoto(r.Context(), photo.ID)
	if err != nil {
		respondDomainError(w, err, CodeDatabaseError)
		return
	}
	respondData(w, http.StatusOK, updated, start)
}

// normalizeTags trims tags and drops empties and duplicates, keeping order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// TagUser records that a user appears in the photo.
func (h *Handler) TagUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	caller, ok := h.identity(w, r)
	if !ok {
		return
	}
	photo, ok := h.loadPhoto(w, r)
	if !ok {
		return
	}
	if !h.authorize(w, caller, photo, authz.ActionTagUser) {
		return
	}

	var req TagUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, CodeBadRequest, err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	created, err := h.engine.TagUser(r.Context(), photo.ID, req.UserID)
	if err != nil {
		respondDomainError(w, err, CodeDatabaseError)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondData(w, status, map[string]interface{}{
		"photo_id": photo.ID,
		"user_id":  req.UserID,
		"created":  created,
	}, start)
}

// ReprocessPhoto re-enqueues the photo. The worker moves it back through
// processing whatever its current state.
func (h *Handler) ReprocessPhoto(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	caller, ok := h.identity(w, r)
	if !ok {
		return
	}
	photo, ok := h.loadPhoto(w, r)
	if !ok {
		return
	}
	if !h.authorize(w, caller, photo, authz.ActionReprocess) {
		return
	}

	job, err := h.queue.Enqueue(r.Context(), photo.ID, photo.OriginalPath)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, CodeQueueError, "Failed to queue photo for processing", err)
		return
	}
	logging.Ctx(r.Context()).Info().Int64("photo_id", photo.ID).Str("job_id", job.ID).Msg("Photo queued for reprocessing")
	respondData(w, http.StatusAccepted, models.UploadResult{
		PhotoID:          photo.ID,
		Message:          "Photo queued for reprocessing",
		ProcessingStatus: photo.Status,
	}, start)
}

// DownloadPhoto streams the original from local storage, or redirects to
// a presigned URL for object storage.
func (h *Handler) DownloadPhoto(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.identity(w, r)
	if !ok {
		return
	}
	photo, ok := h.loadPhoto(w, r)
	if !ok {
		return
	}
	if !h.authorize(w, caller, photo, authz.ActionDownload) {
		return
	}

	if _, local := h.files.(*storage.LocalStore); !local {
		url, err := h.files.URL(r.Context(), photo.OriginalPath)
		if err != nil {
			respondDomainError(w, err, CodeStorageError)
			return
		}
		http.Redirect(w, r, url, http.StatusFound)
		return
	}

	data, err := h.files.ReadFile(r.Context(), photo.OriginalPath)
	if err != nil {
		respondDomainError(w, err, CodeStorageError)
		return
	}

	contentType := mime.TypeByExtension(path.Ext(photo.OriginalPath))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": path.Base(photo.OriginalPath),
	}))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Download interrupted")
	}
}
