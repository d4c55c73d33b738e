// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package models

import (
	"time"
)

// APIResponse is the envelope for every HTTP response.
//
//	{
//	  "status": "error",
//	  "error": {"code": "PARENT_NOT_FOUND", "message": "Parent comment not found"},
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response timing.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError is the machine-readable error body.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// UploadResult is returned per accepted file by the upload endpoint.
type UploadResult struct {
	PhotoID          int64            `json:"photo_id"`
	Message          string           `json:"message"`
	ProcessingStatus ProcessingStatus `json:"processing_status"`
}
