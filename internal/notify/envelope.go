// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package notify

import (
	"github.com/tomtom215/eventsnap/internal/websocket"
)

const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"

	processedMessage = "Your photo has been processed successfully"
	failedMessage    = "Photo processing failed"
)

// ProcessedEnvelope reports a terminal processing outcome. ThumbnailURL is
// null for failures.
type ProcessedEnvelope struct {
	Type         string  `json:"type"`
	PhotoID      int64   `json:"photo_id"`
	Status       string  `json:"status"`
	ThumbnailURL *string `json:"thumbnail_url"`
	Message      string  `json:"message"`
}

// LikeEnvelope reports a like toggle.
type LikeEnvelope struct {
	Type       string `json:"type"`
	PhotoID    int64  `json:"photo_id"`
	LikesCount int    `json:"likes_count"`
	Liked      bool   `json:"liked"`
	UserID     int64  `json:"user_id"`
}

func processedEnvelope(photoID int64, thumbnailURL string) ProcessedEnvelope {
	url := thumbnailURL
	return ProcessedEnvelope{
		Type:         websocket.MessageTypePhotoProcessed,
		PhotoID:      photoID,
		Status:       StatusCompleted,
		ThumbnailURL: &url,
		Message:      processedMessage,
	}
}

func failedEnvelope(photoID int64) ProcessedEnvelope {
	return ProcessedEnvelope{
		Type:    websocket.MessageTypePhotoProcessed,
		PhotoID: photoID,
		Status:  StatusFailed,
		Message: failedMessage,
	}
}

func likeEnvelope(photoID int64, likesCount int, liked bool, userID int64) LikeEnvelope {
	return LikeEnvelope{
		Type:       websocket.MessageTypeLikeUpdate,
		PhotoID:    photoID,
		LikesCount: likesCount,
		Liked:      liked,
		UserID:     userID,
	}
}

// recipients merges the uploader with tagged users, dropping duplicates and
// keeping first-seen order.
func recipients(uploaderID int64, tagged []int64) []int64 {
	out := make([]int64, 0, len(tagged)+1)
	seen := make(map[int64]struct{}, len(tagged)+1)
	for _, id := range append([]int64{uploaderID}, tagged...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
