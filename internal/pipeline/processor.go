// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/tomtom215/eventsnap/internal/database"
	"github.com/tomtom215/eventsnap/internal/imaging"
	"github.com/tomtom215/eventsnap/internal/logging"
	"github.com/tomtom215/eventsnap/internal/metrics"
	"github.com/tomtom215/eventsnap/internal/models"
	"github.com/tomtom215/eventsnap/internal/queue"
	"github.com/tomtom215/eventsnap/internal/storage"
)

// Generator derives artifacts from original image bytes.
type Generator interface {
	Generate(ctx context.Context, data []byte) (*imaging.Artifacts, error)
}

// Notifier tells interested users about terminal processing outcomes.
type Notifier interface {
	PhotoProcessed(photoID, uploaderID int64, tagged []int64, thumbnailURL string)
	PhotoFailed(photoID, uploaderID int64, tagged []int64)
}

// TaggedLister returns the users tagged in a photo.
type TaggedLister interface {
	TaggedUsers(ctx context.Context, photoID int64) ([]int64, error)
}

// Processor runs one job through the generator and persists the outcome.
type Processor struct {
	photos     database.PhotoStore
	state      *StateMachine
	tagged     TaggedLister
	files      storage.FileStore
	generator  Generator
	notifier   Notifier
	jobTimeout time.Duration
}

// ProcessorConfig wires a Processor.
type ProcessorConfig struct {
	Photos     database.PhotoStore
	Tagged     TaggedLister
	Files      storage.FileStore
	Generator  Generator
	Notifier   Notifier
	JobTimeout time.Duration
}

// NewProcessor creates a Processor. JobTimeout defaults to two minutes.
func NewProcessor(cfg ProcessorConfig) *Processor {
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 2 * time.Minute
	}
	return &Processor{
		photos:     cfg.Photos,
		state:      NewStateMachine(cfg.Photos),
		tagged:     cfg.Tagged,
		files:      cfg.Files,
		generator:  cfg.Generator,
		notifier:   cfg.Notifier,
		jobTimeout: cfg.JobTimeout,
	}
}

// Outcome labels the result of Process.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
	// OutcomeRejected means the state guard refused the write; nothing was
	// published.
	OutcomeRejected Outcome = "rejected"
	// OutcomeAborted means the worker was shutting down. The job should not
	// be acknowledged so it is redelivered.
	OutcomeAborted Outcome = "aborted"
)

// Process runs job to a terminal state. Panics inside the job are recovered
// and treated as failures.
func (p *Processor) Process(ctx context.Context, job queue.Job) (outcome Outcome) {
	ctx = logging.ContextWithNewCorrelationID(ctx)
	log := logging.Ctx(ctx).With().
		Str("job_id", job.ID).
		Int64("photo_id", job.PhotoID).
		Int("attempt", job.Attempts).
		Logger()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Photo processing panicked")
			outcome = p.fail(ctx, job, fmt.Errorf("panic: %v", r))
		}
		if outcome != OutcomeAborted {
			metrics.RecordJobCompleted(string(outcome), time.Since(start))
		}
	}()

	if err := p.state.MarkProcessing(ctx, job.PhotoID); err != nil {
		if ctx.Err() != nil {
			return OutcomeAborted
		}
		log.Warn().Err(err).Msg("Photo cannot enter processing, dropping job")
		return OutcomeRejected
	}

	derived, err := p.derive(ctx, job)
	if err != nil {
		if ctx.Err() != nil {
			log.Info().Msg("Processing interrupted by shutdown")
			return OutcomeAborted
		}
		log.Warn().Err(err).Msg("Photo processing failed")
		return p.fail(ctx, job, err)
	}

	if err := p.state.MarkCompleted(ctx, job.PhotoID, *derived); err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			log.Warn().Err(err).Msg("Stale completion rejected")
			return OutcomeRejected
		}
		if ctx.Err() != nil {
			return OutcomeAborted
		}
		log.Error().Err(err).Msg("Failed to persist completed photo")
		return p.fail(ctx, job, err)
	}

	photo, tagged := p.audience(ctx, job.PhotoID)
	if photo != nil {
		url, err := p.files.URL(ctx, derived.ThumbnailPath)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to build thumbnail URL")
			url = ""
		}
		p.notifier.PhotoProcessed(photo.ID, photo.UploaderID, tagged, url)
	}

	log.Info().
		Dur("duration", time.Since(start)).
		Int("tags", len(derived.AITags)).
		Msg("Photo processed")
	return OutcomeCompleted
}

// derive reads the original, runs the generator and stores both artifacts.
func (p *Processor) derive(ctx context.Context, job queue.Job) (*models.DerivedFields, error) {
	data, err := p.files.ReadFile(ctx, job.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("read original: %w", err)
	}

	genCtx, cancel := context.WithTimeout(ctx, p.jobTimeout)
	defer cancel()
	art, err := p.generator.Generate(genCtx, data)
	if err != nil {
		return nil, fmt.Errorf("generate artifacts: %w", err)
	}

	thumbPath, err := p.files.SaveFile(ctx, art.Thumbnail, storage.ThumbnailPath(job.SourcePath))
	if err != nil {
		return nil, fmt.Errorf("save thumbnail: %w", err)
	}
	wmPath, err := p.files.SaveFile(ctx, art.Watermarked, storage.WatermarkedPath(job.SourcePath))
	if err != nil {
		return nil, fmt.Errorf("save watermark: %w", err)
	}

	return &models.DerivedFields{
		ThumbnailPath:   thumbPath,
		WatermarkedPath: wmPath,
		EXIF:            art.EXIF,
		AITags:          art.Tags,
	}, nil
}

func (p *Processor) fail(ctx context.Context, job queue.Job, cause error) Outcome {
	log := logging.Ctx(ctx).With().Str("job_id", job.ID).Int64("photo_id", job.PhotoID).Logger()

	if err := p.state.MarkFailed(ctx, job.PhotoID); err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			log.Warn().Err(err).Msg("Stale failure rejected")
		} else {
			log.Error().Err(err).AnErr("cause", cause).Msg("Failed to mark photo failed")
		}
		return OutcomeRejected
	}

	if photo, tagged := p.audience(ctx, job.PhotoID); photo != nil {
		p.notifier.PhotoFailed(photo.ID, photo.UploaderID, tagged)
	}
	return OutcomeFailed
}

// audience loads the uploader and tagged users to notify.
func (p *Processor) audience(ctx context.Context, photoID int64) (*models.Photo, []int64) {
	photo, err := p.photos.GetPhoto(ctx, photoID)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Int64("photo_id", photoID).Msg("Failed to load photo for notification")
		return nil, nil
	}
	tagged, err := p.tagged.TaggedUsers(ctx, photoID)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Int64("photo_id", photoID).Msg("Failed to load tagged users, notifying uploader only")
		tagged = nil
	}
	return photo, tagged
}
