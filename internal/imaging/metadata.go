// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package imaging

import (
	"bytes"
	"math"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// ExtractEXIF reads embedded EXIF tags. Values that do not map cleanly to a
// JSON scalar are coerced to their string form, so the result is always
// JSON-representable. Images without EXIF yield an empty map.
func ExtractEXIF(data []byte) map[string]any {
	out := make(map[string]any)

	x, err := exif.Decode(bytes.NewReader(data))
	if x == nil || (err != nil && exif.IsCriticalError(err)) {
		return out
	}

	_ = x.Walk(exifWalker(out))
	return out
}

type exifWalker map[string]any

func (w exifWalker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	if tag == nil {
		return nil
	}
	w[string(name)] = exifValue(tag)
	return nil
}

func exifValue(tag *tiff.Tag) any {
	if tag.Count == 1 {
		switch tag.Format() {
		case tiff.IntVal:
			if v, err := tag.Int64(0); err == nil {
				return v
			}
		case tiff.RatVal:
			if num, den, err := tag.Rat2(0); err == nil && den != 0 {
				return float64(num) / float64(den)
			}
		case tiff.FloatVal:
			if v, err := tag.Float(0); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
				return v
			}
		}
	}
	if tag.Format() == tiff.StringVal {
		if s, err := tag.StringVal(); err == nil {
			return cleanString(s)
		}
	}
	return cleanString(tag.String())
}

func cleanString(s string) string {
	s = strings.TrimRight(s, "\x00")
	return strings.TrimSpace(strings.ToValidUTF8(s, ""))
}
