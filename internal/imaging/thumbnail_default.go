// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

//go:build !vips

package imaging

import "image"

// ThumbnailBackend names the thumbnail implementation compiled in.
const ThumbnailBackend = "resize"

func thumbnailBytes(_ []byte, img image.Image, size, quality int) ([]byte, error) {
	return Thumbnail(img, size, quality)
}
