// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

// Package validation wraps go-playground/validator v10 with a shared
// instance and translation into the VALIDATION_ERROR response format.
//
//	type CommentRequest struct {
//	    Content  string `json:"content" validate:"required,max=2000"`
//	    ParentID *int64 `json:"parent_id" validate:"omitempty,gt=0"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    ...
//	}
//
// Length rules on strings count runes, not bytes.
package validation
