// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

//go:build vips

package imaging

import (
	"fmt"
	"image"

	"github.com/h2non/bimg"
)

// ThumbnailBackend names the thumbnail implementation compiled in.
const ThumbnailBackend = "vips"

// thumbnailBytes lets libvips decode the original bytes directly. The
// target size is computed here so the aspect ratio matches Thumbnail.
func thumbnailBytes(data []byte, img image.Image, size, quality int) ([]byte, error) {
	w, h := fitWithin(img.Bounds().Dx(), img.Bounds().Dy(), size)
	out, err := bimg.NewImage(data).Process(bimg.Options{
		Width:        w,
		Height:       h,
		Force:        true,
		Flatten:      true,
		Background:   bimg.Color{R: 255, G: 255, B: 255},
		Interpolator: bimg.Bicubic,
		Quality:      quality,
		Type:         bimg.JPEG,
	})
	if err != nil {
		return nil, fmt.Errorf("vips thumbnail: %w", err)
	}
	return out, nil
}
