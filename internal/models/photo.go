// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package models

import "time"

// ProcessingStatus is the lifecycle state of a photo.
type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "pending"
	StatusProcessing ProcessingStatus = "processing"
	StatusCompleted  ProcessingStatus = "completed"
	StatusFailed     ProcessingStatus = "failed"
)

// Valid reports whether s is one of the four known states.
func (s ProcessingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether s is completed or failed.
func (s ProcessingStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Photo is an uploaded image and its derived artifacts.
type Photo struct {
	ID              int64            `json:"id"`
	OriginalPath    string           `json:"original_path"`
	ThumbnailPath   *string          `json:"thumbnail_path"`
	WatermarkedPath *string          `json:"watermarked_path"`
	EXIF            map[string]any   `json:"exif_data,omitempty"`
	AITags          []string         `json:"ai_tags,omitempty"`
	ManualTags      []string         `json:"manual_tags,omitempty"`
	UploaderID      int64            `json:"uploader_id"`
	EventID         *int64           `json:"event_id,omitempty"`
	Status          ProcessingStatus `json:"processing_status"`
	CreatedAt       time.Time        `json:"created_at"`
}

// DerivedFields is everything the worker writes when a photo completes.
// It is persisted together with the completed status in one update.
type DerivedFields struct {
	ThumbnailPath   string
	WatermarkedPath string
	EXIF            map[string]any
	AITags          []string
}

// NewPhoto describes a photo at upload intake.
type NewPhoto struct {
	OriginalPath string
	UploaderID   int64
	EventID      *int64
}

// PhotoWithEngagement is the read model returned by photo and library endpoints.
type PhotoWithEngagement struct {
	Photo
	LikesCount    int     `json:"likes_count"`
	CommentsCount int     `json:"comments_count"`
	TaggedUsers   []int64 `json:"tagged_users"`
	IsLiked       bool    `json:"is_liked"`
	IsTagged      bool    `json:"is_tagged"`
}

// TaggedIn records that a user appears in a photo.
type TaggedIn struct {
	PhotoID   int64     `json:"photo_id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
