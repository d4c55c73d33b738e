// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

// Package config loads EventSnap configuration from defaults, an optional
// YAML file and environment variables, in that order of precedence.
package config

import (
	"time"
)

// Config is the root configuration object.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Queue     QueueConfig     `koanf:"queue"`
	Pipeline  PipelineConfig  `koanf:"pipeline"`
	Imaging   ImagingConfig   `koanf:"imaging"`
	Storage   StorageConfig   `koanf:"storage"`
	Security  SecurityConfig  `koanf:"security"`
	WebSocket WebSocketConfig `koanf:"websocket"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port"`
	ReadTimeout       time.Duration `koanf:"read_timeout"`
	WriteTimeout      time.Duration `koanf:"write_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	MaxUploadBytes    int64         `koanf:"max_upload_bytes"`
}

// DatabaseConfig points at the DuckDB file.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	Threads   int    `koanf:"threads"`
	MaxMemory string `koanf:"max_memory"`
}

// QueueConfig configures the durable processing queue. An empty Path runs
// badger in memory.
type QueueConfig struct {
	Path       string `koanf:"path"`
	SyncWrites bool   `koanf:"sync_writes"`
	Buffer     int    `koanf:"buffer"`
}

// PipelineConfig sizes the worker pool.
type PipelineConfig struct {
	Workers    int           `koanf:"workers"`
	JobTimeout time.Duration `koanf:"job_timeout"`
}

// ImagingConfig holds derived-artifact settings.
type ImagingConfig struct {
	ThumbnailSize      int           `koanf:"thumbnail_size"`
	ThumbnailQuality   int           `koanf:"thumbnail_quality"`
	WatermarkQuality   int           `koanf:"watermark_quality"`
	WatermarkText      string        `koanf:"watermark_text"`
	ModelPath          string        `koanf:"model_path"`
	LabelsPath         string        `koanf:"labels_path"`
	TopK               int           `koanf:"top_k"`
	ClassifierTimeout  time.Duration `koanf:"classifier_timeout"`
	ClassifierCooldown time.Duration `koanf:"classifier_cooldown"`
}

// StorageConfig selects where originals and derived files live.
type StorageConfig struct {
	Backend     string        `koanf:"backend"`
	LocalRoot   string        `koanf:"local_root"`
	S3Bucket    string        `koanf:"s3_bucket"`
	S3Region    string        `koanf:"s3_region"`
	S3Endpoint  string        `koanf:"s3_endpoint"`
	S3AccessKey string        `koanf:"s3_access_key"`
	S3SecretKey string        `koanf:"s3_secret_key"`
	PresignTTL  time.Duration `koanf:"presign_ttl"`
}

// SecurityConfig holds the token verification secret.
type SecurityConfig struct {
	JWTSecret string `koanf:"jwt_secret"`
	JWTIssuer string `koanf:"jwt_issuer"`
}

// WebSocketConfig throttles inbound client frames.
type WebSocketConfig struct {
	InboundRate  float64 `koanf:"inbound_rate"`
	InboundBurst int     `koanf:"inbound_burst"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration through koanf. See LoadWithKoanf.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
