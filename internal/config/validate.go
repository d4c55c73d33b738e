// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package config

import (
	"fmt"
	"net/url"

	"github.com/tomtom215/eventsnap/internal/logging"
)

const minJWTSecretLength = 32

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateImaging(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateWebSocket(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("HTTP_READ_TIMEOUT and HTTP_WRITE_TIMEOUT must be positive")
	}
	if !c.Server.RateLimitDisabled && (c.Server.RateLimitRequests < 1 || c.Server.RateLimitWindow <= 0) {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1 and RATE_LIMIT_WINDOW positive")
	}
	if c.Server.MaxUploadBytes < 1 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.Server.MaxUploadBytes)
	}
	for _, origin := range c.Server.CORSOrigins {
		if origin == "*" {
			continue
		}
		if u, err := url.Parse(origin); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("CORS_ORIGINS entry %q is not an absolute origin", origin)
		}
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 1 {
		return fmt.Errorf("DUCKDB_THREADS must be at least 1, got %d", c.Database.Threads)
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.Workers < 1 {
		return fmt.Errorf("PIPELINE_WORKERS must be at least 1, got %d", c.Pipeline.Workers)
	}
	if c.Pipeline.JobTimeout <= 0 {
		return fmt.Errorf("PIPELINE_JOB_TIMEOUT must be positive")
	}
	if c.Queue.Buffer < 0 {
		return fmt.Errorf("QUEUE_BUFFER must not be negative, got %d", c.Queue.Buffer)
	}
	return nil
}

func (c *Config) validateImaging() error {
	im := c.Imaging
	if im.ThumbnailSize < 16 || im.ThumbnailSize > 4096 {
		return fmt.Errorf("THUMBNAIL_SIZE must be between 16 and 4096, got %d", im.ThumbnailSize)
	}
	if im.ThumbnailQuality < 1 || im.ThumbnailQuality > 100 {
		return fmt.Errorf("THUMBNAIL_QUALITY must be between 1 and 100, got %d", im.ThumbnailQuality)
	}
	if im.WatermarkQuality < 1 || im.WatermarkQuality > 100 {
		return fmt.Errorf("WATERMARK_QUALITY must be between 1 and 100, got %d", im.WatermarkQuality)
	}
	if im.TopK < 1 {
		return fmt.Errorf("CLASSIFIER_TOP_K must be at least 1, got %d", im.TopK)
	}
	if im.ClassifierTimeout <= 0 {
		return fmt.Errorf("CLASSIFIER_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateStorage() error {
	switch c.Storage.Backend {
	case "local":
		if c.Storage.LocalRoot == "" {
			return fmt.Errorf("MEDIA_ROOT is required when STORAGE_BACKEND=local")
		}
	case "s3":
		if c.Storage.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when STORAGE_BACKEND=s3")
		}
		if c.Storage.S3Region == "" {
			return fmt.Errorf("S3_REGION is required when STORAGE_BACKEND=s3")
		}
		if c.Storage.S3Endpoint != "" {
			if u, err := url.Parse(c.Storage.S3Endpoint); err != nil || u.Scheme == "" {
				return fmt.Errorf("S3_ENDPOINT %q is not a valid URL", c.Storage.S3Endpoint)
			}
		}
		if c.Storage.PresignTTL <= 0 {
			return fmt.Errorf("S3_PRESIGN_TTL must be positive")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be local or s3, got %q", c.Storage.Backend)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if len(c.Security.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLength)
	}
	return nil
}

func (c *Config) validateWebSocket() error {
	if c.WebSocket.InboundRate <= 0 || c.WebSocket.InboundBurst < 1 {
		return fmt.Errorf("WS_INBOUND_RATE must be positive and WS_INBOUND_BURST at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL %q is not a recognised level", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
