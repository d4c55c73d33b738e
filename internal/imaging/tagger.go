// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package imaging

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"strings"
	"sync"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tomtom215/eventsnap/internal/logging"
	"github.com/tomtom215/eventsnap/internal/metrics"
)

// Classifier runs one forward pass over a Preprocess tensor and returns
// one logit per class.
type Classifier interface {
	Classify(ctx context.Context, input []float32) ([]float32, error)
	Close() error
}

// ClassifierLoader opens a classifier from a model file.
type ClassifierLoader func(modelPath string) (Classifier, error)

// TaggerConfig configures a Tagger.
type TaggerConfig struct {
	ModelPath  string
	LabelsPath string
	TopK       int

	// Timeout bounds a single inference call.
	Timeout time.Duration

	// RetryAfter is how long a failed load is remembered before the next
	// call tries again.
	RetryAfter time.Duration

	// FailureThreshold consecutive inference failures open the breaker.
	FailureThreshold uint32
	BreakerTimeout   time.Duration

	// Loader defaults to the build's classifier backend.
	Loader ClassifierLoader
}

// DefaultTaggerConfig returns defaults matching the ResNet50 ImageNet setup.
func DefaultTaggerConfig() TaggerConfig {
	return TaggerConfig{
		TopK:             5,
		Timeout:          10 * time.Second,
		RetryAfter:       time.Minute,
		FailureThreshold: 5,
		BreakerTimeout:   30 * time.Second,
	}
}

// Tagger owns the lazily loaded classifier and label table. The first
// caller loads both under mu; concurrent callers wait for that load and
// then share the result.
type Tagger struct {
	cfg     TaggerConfig
	breaker *gobreaker.CircuitBreaker[[]float32]
	now     func() time.Time

	mu          sync.Mutex
	classifier  Classifier
	labels      []string
	loadErr     error
	lastAttempt time.Time
}

// NewTagger creates a Tagger. Nothing is loaded until the first Tag call.
func NewTagger(cfg TaggerConfig) *Tagger {
	def := DefaultTaggerConfig()
	if cfg.TopK <= 0 {
		cfg.TopK = def.TopK
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.RetryAfter <= 0 {
		cfg.RetryAfter = def.RetryAfter
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = def.BreakerTimeout
	}
	if cfg.Loader == nil {
		cfg.Loader = defaultClassifierLoader
	}

	t := &Tagger{
		cfg: cfg,
		now: time.Now,
	}
	t.breaker = gobreaker.NewCircuitBreaker[[]float32](gobreaker.Settings{
		Name:        "classifier",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("Classifier circuit breaker state changed")
			metrics.SetBreakerState(name, int(to))
		},
	})
	return t
}

// Tag classifies img and returns up to TopK formatted labels, most likely
// first. On any failure it returns an empty list and the reason; callers
// treat tagging as best-effort.
func (t *Tagger) Tag(ctx context.Context, img image.Image) ([]string, error) {
	clf, labels, err := t.load()
	if err != nil {
		metrics.RecordTaggerOutcome("unavailable")
		return []string{}, err
	}

	input := Preprocess(img)

	logits, err := t.breaker.Execute(func() ([]float32, error) {
		callCtx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
		defer cancel()
		return classifyWithContext(callCtx, clf, input)
	})
	if err != nil {
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			metrics.RecordTaggerOutcome("breaker_open")
		case errors.Is(err, context.DeadlineExceeded):
			metrics.RecordTaggerOutcome("timeout")
		default:
			metrics.RecordTaggerOutcome("error")
		}
		return []string{}, fmt.Errorf("classify: %w", err)
	}

	probs := Softmax(logits)
	tags := make([]string, 0, t.cfg.TopK)
	for _, i := range TopK(probs, t.cfg.TopK) {
		if i >= len(labels) {
			continue
		}
		tags = append(tags, t.FormatLabel(labels[i]))
	}
	metrics.RecordTaggerOutcome("ok")
	return tags, nil
}

// titleCasers hands each goroutine its own Caser; a Caser keeps
// transform state and must not be shared.
var titleCasers = sync.Pool{
	New: func() any {
		c := cases.Title(language.English)
		return &c
	},
}

// FormatLabel turns "great_white_shark" into "Great White Shark".
func (t *Tagger) FormatLabel(label string) string {
	c := titleCasers.Get().(*cases.Caser)
	defer titleCasers.Put(c)
	return c.String(strings.ReplaceAll(strings.TrimSpace(label), "_", " "))
}

// classifyWithContext returns as soon as ctx ends even if the backend
// ignores cancellation.
func classifyWithContext(ctx context.Context, clf Classifier, input []float32) ([]float32, error) {
	type result struct {
		logits []float32
		err    error
	}
	done := make(chan result, 1)
	go func() {
		logits, err := clf.Classify(ctx, input)
		done <- result{logits, err}
	}()
	select {
	case r := <-done:
		return r.logits, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (t *Tagger) load() (Classifier, []string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.classifier != nil {
		return t.classifier, t.labels, nil
	}
	if t.loadErr != nil && t.now().Sub(t.lastAttempt) < t.cfg.RetryAfter {
		return nil, nil, t.loadErr
	}
	t.lastAttempt = t.now()

	labels, err := LoadLabels(t.cfg.LabelsPath)
	if err != nil {
		t.loadErr = fmt.Errorf("%w: %v", ErrClassifierUnavailable, err)
		logging.Warn().Err(err).Str("labels", t.cfg.LabelsPath).Msg("Label table unavailable, tagging disabled")
		return nil, nil, t.loadErr
	}

	clf, err := t.cfg.Loader(t.cfg.ModelPath)
	if err != nil {
		if !errors.Is(err, ErrClassifierUnavailable) {
			err = fmt.Errorf("%w: %v", ErrClassifierUnavailable, err)
		}
		t.loadErr = err
		logging.Warn().Err(err).Str("model", t.cfg.ModelPath).Msg("Classifier unavailable, tagging disabled")
		return nil, nil, t.loadErr
	}

	t.classifier = clf
	t.labels = labels
	t.loadErr = nil
	logging.Info().Str("model", t.cfg.ModelPath).Int("labels", len(labels)).Msg("Classifier loaded")
	return clf, labels, nil
}

// Close releases the classifier if one was loaded.
func (t *Tagger) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.classifier == nil {
		return nil
	}
	err := t.classifier.Close()
	t.classifier = nil
	return err
}

// LoadLabels reads one class label per line.
func LoadLabels(path string) ([]string, error) {
	if path == "" {
		return nil, errors.New("no labels path configured")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var labels []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			labels = append(labels, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("labels file %s is empty", path)
	}
	return labels, nil
}
