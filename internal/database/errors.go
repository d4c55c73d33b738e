// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package database

import (
	"errors"
	"io"

	"github.com/tomtom215/eventsnap/internal/logging"
)

var (
	// ErrPhotoNotFound is returned when no photo has the requested id.
	ErrPhotoNotFound = errors.New("photo not found")

	// ErrInvalidTransition is returned when a status update's guard did not
	// match the photo's current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrParentNotFound is returned when a reply names a parent comment that
	// does not exist under the same engagement.
	ErrParentNotFound = errors.New("parent comment not found")

	// ErrUserNotFound is returned when the user directory has no entry.
	ErrUserNotFound = errors.New("user not found")
)

// closeQuietly closes a resource, logging but otherwise ignoring errors.
func closeQuietly(closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Debug().Err(err).Msg("close failed")
	}
}
