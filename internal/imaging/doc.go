// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

// Package imaging produces the derived artifacts for an uploaded photo:
// EXIF metadata, a bounded JPEG thumbnail, a watermarked JPEG copy and a
// list of classifier tags.
//
// All functions are pure with respect to their input bytes. The only
// shared state is the Tagger, which loads its classifier and label table
// once and reuses them for every call.
//
// Build tags:
//
//	onnx   ResNet50 inference through onnxruntime (otherwise tagging is unavailable)
//	vips   thumbnails through libvips/bimg instead of nfnt/resize
package imaging
