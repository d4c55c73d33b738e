// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/eventsnap/internal/database"
	"github.com/tomtom215/eventsnap/internal/models"
)

// ErrInvalidTransition is returned when a photo is not in a state that
// allows the requested move.
var ErrInvalidTransition = database.ErrInvalidTransition

// transitions lists the allowed target states for each source state.
// processing -> processing covers a duplicate enqueue of a photo already
// being worked on; completed/failed -> processing is a re-enqueue.
var transitions = map[models.ProcessingStatus][]models.ProcessingStatus{
	models.StatusPending:    {models.StatusProcessing},
	models.StatusProcessing: {models.StatusProcessing, models.StatusCompleted, models.StatusFailed},
	models.StatusCompleted:  {models.StatusProcessing},
	models.StatusFailed:     {models.StatusProcessing},
}

var statusOrder = []models.ProcessingStatus{
	models.StatusPending,
	models.StatusProcessing,
	models.StatusCompleted,
	models.StatusFailed,
}

// CanTransition reports whether a photo may move from one status to another.
func CanTransition(from, to models.ProcessingStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Sources returns every status from which to is reachable.
func Sources(to models.ProcessingStatus) []models.ProcessingStatus {
	var out []models.ProcessingStatus
	for _, from := range statusOrder {
		if CanTransition(from, to) {
			out = append(out, from)
		}
	}
	return out
}

// StateMachine applies guarded status transitions to stored photos.
type StateMachine struct {
	photos database.PhotoStore
}

// NewStateMachine creates a StateMachine over photos.
func NewStateMachine(photos database.PhotoStore) *StateMachine {
	return &StateMachine{photos: photos}
}

// MarkProcessing moves the photo into processing and clears derived fields.
func (m *StateMachine) MarkProcessing(ctx context.Context, id int64) error {
	return m.photos.TransitionStatus(ctx, id, Sources(models.StatusProcessing), models.StatusProcessing, nil)
}

// MarkCompleted records the derived artifacts and completes the photo in
// one update.
func (m *StateMachine) MarkCompleted(ctx context.Context, id int64, derived models.DerivedFields) error {
	if derived.ThumbnailPath == "" || derived.WatermarkedPath == "" {
		return errors.New("completed photo requires thumbnail and watermarked paths")
	}
	if derived.EXIF == nil {
		derived.EXIF = map[string]any{}
	}
	if derived.AITags == nil {
		derived.AITags = []string{}
	}
	if err := m.photos.TransitionStatus(ctx, id, Sources(models.StatusCompleted), models.StatusCompleted, &derived); err != nil {
		return fmt.Errorf("mark photo %d completed: %w", id, err)
	}
	return nil
}

// MarkFailed fails the photo and clears derived fields. The original upload
// is left in place.
func (m *StateMachine) MarkFailed(ctx context.Context, id int64) error {
	if err := m.photos.TransitionStatus(ctx, id, Sources(models.StatusFailed), models.StatusFailed, nil); err != nil {
		return fmt.Errorf("mark photo %d failed: %w", id, err)
	}
	return nil
}
