// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

//go:build !onnx

package imaging

// ClassifierBackend names the inference backend compiled into this binary.
const ClassifierBackend = "none"

func defaultClassifierLoader(string) (Classifier, error) {
	return nil, ErrClassifierUnavailable
}
