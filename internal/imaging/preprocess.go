// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package imaging

import (
	"image"
	"math"
	"sort"

	xdraw "golang.org/x/image/draw"
)

// ImageNet preprocessing constants for ResNet-family classifiers.
const (
	resizeShortSide = 256
	cropSize        = 224
)

var (
	imagenetMean = [3]float32{0.485, 0.456, 0.406}
	imagenetStd  = [3]float32{0.229, 0.224, 0.225}
)

// InputShape is the NCHW tensor shape Preprocess produces.
var InputShape = []int64{1, 3, cropSize, cropSize}

// Preprocess resizes the shorter side to 256, center-crops 224x224 and
// returns a normalised CHW float32 tensor.
func Preprocess(img image.Image) []float32 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	var nw, nh int
	if w <= h {
		nw = resizeShortSide
		nh = int(math.Round(float64(h) * resizeShortSide / float64(w)))
	} else {
		nh = resizeShortSide
		nw = int(math.Round(float64(w) * resizeShortSide / float64(h)))
	}

	resized := image.NewRGBA(image.Rect(0, 0, nw, nh))
	xdraw.CatmullRom.Scale(resized, resized.Bounds(), img, b, xdraw.Src, nil)

	left := int(math.Round(float64(nw-cropSize) / 2))
	top := int(math.Round(float64(nh-cropSize) / 2))

	plane := cropSize * cropSize
	out := make([]float32, 3*plane)
	for y := 0; y < cropSize; y++ {
		row := resized.Pix[(top+y)*resized.Stride:]
		for x := 0; x < cropSize; x++ {
			px := row[(left+x)*4:]
			i := y*cropSize + x
			for c := 0; c < 3; c++ {
				v := float32(px[c]) / 255
				out[c*plane+i] = (v - imagenetMean[c]) / imagenetStd[c]
			}
		}
	}
	return out
}

// Softmax converts logits into probabilities.
func Softmax(logits []float32) []float32 {
	if len(logits) == 0 {
		return nil
	}
	max := logits[0]
	for _, v := range logits[1:] {
		if v > max {
			max = v
		}
	}
	out := make([]float32, len(logits))
	var sum float64
	for i, v := range logits {
		e := math.Exp(float64(v - max))
		out[i] = float32(e)
		sum += e
	}
	for i := range out {
		out[i] = float32(float64(out[i]) / sum)
	}
	return out
}

// TopK returns the indices of the k largest values, highest first. Ties
// keep the lower index first.
func TopK(values []float32, k int) []int {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return values[idx[a]] > values[idx[b]]
	})
	if k > len(idx) {
		k = len(idx)
	}
	return idx[:k]
}
