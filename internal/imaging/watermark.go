// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	watermarkPadding    = 10
	watermarkMinFont    = 20
	watermarkWidthRatio = 30
)

var watermarkBackdrop = color.NRGBA{R: 0, G: 0, B: 0, A: 128}

// Watermark composites a translucent black box and the caption text onto
// the bottom-right corner of img and encodes the result as JPEG.
//
// Caption height is max(20, width/30) pixels. The text sits padding pixels
// from the right and bottom edges, and the box extends padding pixels
// beyond the text on every side.
func Watermark(img image.Image, text string, quality int) ([]byte, error) {
	dst := Flatten(img)
	if text != "" {
		drawCaption(dst, text)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode watermark: %w", err)
	}
	return buf.Bytes(), nil
}

// captionLayout returns the scaled caption mask size and its anchor point
// for an image of width w and height h.
func captionLayout(w, h, runes int) (textW, textH int, at image.Point) {
	face := basicfont.Face7x13
	textH = w / watermarkWidthRatio
	if textH < watermarkMinFont {
		textH = watermarkMinFont
	}
	scale := float64(textH) / float64(face.Height)
	textW = int(float64(face.Advance*runes)*scale + 0.5)
	at = image.Pt(w-textW-watermarkPadding, h-textH-watermarkPadding)
	return textW, textH, at
}

func drawCaption(dst *image.RGBA, text string) {
	face := basicfont.Face7x13
	runes := len([]rune(text))

	mask := image.NewAlpha(image.Rect(0, 0, face.Advance*runes, face.Height))
	d := font.Drawer{
		Dst:  mask,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString(text)

	b := dst.Bounds()
	textW, textH, at := captionLayout(b.Dx(), b.Dy(), runes)
	scaled := image.NewAlpha(image.Rect(0, 0, textW, textH))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), mask, mask.Bounds(), xdraw.Src, nil)

	box := image.Rect(
		at.X-watermarkPadding, at.Y-watermarkPadding,
		at.X+textW+watermarkPadding, at.Y+textH+watermarkPadding,
	).Intersect(b)
	draw.Draw(dst, box, &image.Uniform{C: watermarkBackdrop}, image.Point{}, draw.Over)

	textRect := image.Rect(at.X, at.Y, at.X+textW, at.Y+textH)
	draw.DrawMask(dst, textRect, image.White, image.Point{}, scaled, image.Point{}, draw.Over)
}
