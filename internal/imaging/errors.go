// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package imaging

import "errors"

var (
	// ErrDecode means the bytes look like a known format but could not be decoded.
	ErrDecode = errors.New("image decode failed")

	// ErrUnsupportedFormat means no registered decoder recognised the bytes.
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrClassifierUnavailable means the classifier or its labels could not be loaded.
	// The generator degrades to an empty tag list when it sees this.
	ErrClassifierUnavailable = errors.New("classifier unavailable")
)
