// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/nfnt/resize"
)

// Thumbnail fits img inside a size x size box with Lanczos resampling,
// flattens alpha and palette modes, and encodes JPEG at quality.
func Thumbnail(img image.Image, size, quality int) ([]byte, error) {
	flat, ok := img.(*image.RGBA)
	if !ok || !flat.Opaque() {
		flat = Flatten(img)
	}

	w, h := fitWithin(flat.Bounds().Dx(), flat.Bounds().Dy(), size)
	var scaled image.Image = flat
	if w != flat.Bounds().Dx() || h != flat.Bounds().Dy() {
		scaled = resize.Resize(uint(w), uint(h), flat, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
