// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package imaging

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/tomtom215/eventsnap/internal/logging"
)

// ImageTagger produces descriptive labels for an image. *Tagger is the
// production implementation.
type ImageTagger interface {
	Tag(ctx context.Context, img image.Image) ([]string, error)
}

// Options control artifact generation.
type Options struct {
	ThumbnailSize    int
	ThumbnailQuality int
	WatermarkQuality int
	WatermarkText    string
}

// DefaultOptions returns the standard derivation settings.
func DefaultOptions() Options {
	return Options{
		ThumbnailSize:    400,
		ThumbnailQuality: 85,
		WatermarkQuality: 95,
		WatermarkText:    "IMG Project",
	}
}

// Artifacts is everything derived from one upload.
type Artifacts struct {
	EXIF        map[string]any
	Thumbnail   []byte
	Watermarked []byte
	Tags        []string
	Format      string
	Width       int
	Height      int
}

// Generator derives artifacts from original image bytes. It is safe for
// concurrent use.
type Generator struct {
	opts   Options
	tagger ImageTagger
}

// NewGenerator creates a Generator. A nil tagger disables tagging.
func NewGenerator(opts Options, tagger ImageTagger) *Generator {
	def := DefaultOptions()
	if opts.ThumbnailSize <= 0 {
		opts.ThumbnailSize = def.ThumbnailSize
	}
	if opts.ThumbnailQuality <= 0 {
		opts.ThumbnailQuality = def.ThumbnailQuality
	}
	if opts.WatermarkQuality <= 0 {
		opts.WatermarkQuality = def.WatermarkQuality
	}
	if opts.WatermarkText == "" {
		opts.WatermarkText = def.WatermarkText
	}
	return &Generator{opts: opts, tagger: tagger}
}

// Generate decodes data and produces EXIF, thumbnail, watermark and tags.
// Decode failures return ErrDecode or ErrUnsupportedFormat. Tagging
// failures never fail generation; Tags is then empty.
func (g *Generator) Generate(ctx context.Context, data []byte) (*Artifacts, error) {
	img, format, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := img.Bounds()
	out := &Artifacts{
		EXIF:   ExtractEXIF(data),
		Format: format,
		Width:  b.Dx(),
		Height: b.Dy(),
	}

	out.Thumbnail, err = thumbnailBytes(data, img, g.opts.ThumbnailSize, g.opts.ThumbnailQuality)
	if err != nil {
		return nil, fmt.Errorf("thumbnail: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out.Watermarked, err = Watermark(img, g.opts.WatermarkText, g.opts.WatermarkQuality)
	if err != nil {
		return nil, fmt.Errorf("watermark: %w", err)
	}

	out.Tags = g.tags(ctx, img)
	return out, nil
}

func (g *Generator) tags(ctx context.Context, img image.Image) []string {
	if g.tagger == nil {
		return []string{}
	}
	tags, err := g.tagger.Tag(ctx, img)
	if err != nil {
		if errors.Is(err, ErrClassifierUnavailable) {
			logging.Debug().Err(err).Msg("Tagging skipped")
		} else {
			logging.Warn().Err(err).Msg("Tagging failed")
		}
		return []string{}
	}
	if tags == nil {
		return []string{}
	}
	return tags
}
