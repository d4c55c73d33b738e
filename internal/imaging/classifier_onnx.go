// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

//go:build onnx

package imaging

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ClassifierBackend names the inference backend compiled into this binary.
const ClassifierBackend = "onnxruntime"

// OnnxLibraryEnvVar overrides the onnxruntime shared library location.
const OnnxLibraryEnvVar = "ONNXRUNTIME_LIB"

var (
	ortOnce sync.Once
	ortErr  error
)

func initRuntime() error {
	ortOnce.Do(func() {
		if lib := os.Getenv(OnnxLibraryEnvVar); lib != "" {
			ort.SetSharedLibraryPath(lib)
		}
		ortErr = ort.InitializeEnvironment()
	})
	return ortErr
}

type onnxClassifier struct {
	mu      sync.Mutex
	session *ort.DynamicAdvancedSession
	outputs int64
}

func defaultClassifierLoader(modelPath string) (Classifier, error) {
	if modelPath == "" {
		return nil, fmt.Errorf("%w: no model path configured", ErrClassifierUnavailable)
	}
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClassifierUnavailable, err)
	}
	if err := initRuntime(); err != nil {
		return nil, fmt.Errorf("%w: onnxruntime init: %v", ErrClassifierUnavailable, err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("%w: inspect model: %v", ErrClassifierUnavailable, err)
	}
	if len(inputs) != 1 || len(outputs) != 1 {
		return nil, fmt.Errorf("%w: expected one input and one output, got %d/%d",
			ErrClassifierUnavailable, len(inputs), len(outputs))
	}

	dims := outputs[0].Dimensions
	classes := dims[len(dims)-1]
	if classes <= 0 {
		return nil, fmt.Errorf("%w: dynamic output dimension", ErrClassifierUnavailable)
	}

	session, err := ort.NewDynamicAdvancedSession(modelPath,
		[]string{inputs[0].Name}, []string{outputs[0].Name}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create session: %v", ErrClassifierUnavailable, err)
	}
	return &onnxClassifier{session: session, outputs: classes}, nil
}

func (c *onnxClassifier) Classify(ctx context.Context, input []float32) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	in, err := ort.NewTensor(ort.NewShape(InputShape...), input)
	if err != nil {
		return nil, fmt.Errorf("input tensor: %w", err)
	}
	defer in.Destroy()

	out, err := ort.NewEmptyTensor[float32](ort.NewShape(1, c.outputs))
	if err != nil {
		return nil, fmt.Errorf("output tensor: %w", err)
	}
	defer out.Destroy()

	c.mu.Lock()
	err = c.session.Run([]ort.Value{in}, []ort.Value{out})
	c.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("run session: %w", err)
	}

	logits := make([]float32, len(out.GetData()))
	copy(logits, out.GetData())
	return logits, nil
}

func (c *onnxClassifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return errors.New("classifier already closed")
	}
	err := c.session.Destroy()
	c.session = nil
	return err
}
