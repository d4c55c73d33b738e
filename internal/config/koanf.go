// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists config file locations in priority order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/eventsnap/config.yaml",
	"/etc/eventsnap/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// DotEnvPath is loaded into the process environment before the env layer
// when present. Variables already set are not overwritten.
var DotEnvPath = ".env"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8080,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			CORSOrigins:       []string{},
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
			MaxUploadBytes:    32 << 20,
		},
		Database: DatabaseConfig{
			Path:      "/data/eventsnap.duckdb",
			Threads:   runtime.NumCPU(),
			MaxMemory: "1GB",
		},
		Queue: QueueConfig{
			Path:       "/data/queue",
			SyncWrites: true,
			Buffer:     64,
		},
		Pipeline: PipelineConfig{
			Workers:    runtime.NumCPU(),
			JobTimeout: 2 * time.Minute,
		},
		Imaging: ImagingConfig{
			ThumbnailSize:      400,
			ThumbnailQuality:   85,
			WatermarkQuality:   95,
			WatermarkText:      "IMG Project",
			ModelPath:          "/data/models/resnet50.onnx",
			LabelsPath:         "/data/models/imagenet_classes.txt",
			TopK:               5,
			ClassifierTimeout:  10 * time.Second,
			ClassifierCooldown: time.Minute,
		},
		Storage: StorageConfig{
			Backend:    "local",
			LocalRoot:  "/data/media",
			S3Region:   "us-east-1",
			PresignTTL: 15 * time.Minute,
		},
		Security: SecurityConfig{
			JWTIssuer: "eventsnap",
		},
		WebSocket: WebSocketConfig{
			InboundRate:  5,
			InboundBurst: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf loads configuration in three layers:
//
//  1. Defaults from defaultConfig
//  2. Optional YAML file (CONFIG_PATH or DefaultConfigPaths)
//  3. Environment variables listed in envMappings
//
// The result is validated before it is returned.
func LoadWithKoanf() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func loadDotEnv() error {
	if DotEnvPath == "" {
		return nil
	}
	if _, err := os.Stat(DotEnvPath); err != nil {
		return nil
	}
	if err := godotenv.Load(DotEnvPath); err != nil {
		return fmt.Errorf("failed to load %s: %w", DotEnvPath, err)
	}
	return nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields splits comma-separated env values for slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

var envMappings = map[string]string{
	"http_host":            "server.host",
	"http_port":            "server.port",
	"http_read_timeout":    "server.read_timeout",
	"http_write_timeout":   "server.write_timeout",
	"shutdown_timeout":     "server.shutdown_timeout",
	"cors_origins":         "server.cors_origins",
	"rate_limit_requests":  "server.rate_limit_requests",
	"rate_limit_window":    "server.rate_limit_window",
	"disable_rate_limit":   "server.rate_limit_disabled",
	"max_upload_bytes":     "server.max_upload_bytes",
	"duckdb_path":          "database.path",
	"duckdb_threads":       "database.threads",
	"duckdb_max_memory":    "database.max_memory",
	"queue_path":           "queue.path",
	"queue_sync_writes":    "queue.sync_writes",
	"queue_buffer":         "queue.buffer",
	"pipeline_workers":     "pipeline.workers",
	"pipeline_job_timeout": "pipeline.job_timeout",
	"thumbnail_size":       "imaging.thumbnail_size",
	"thumbnail_quality":    "imaging.thumbnail_quality",
	"watermark_quality":    "imaging.watermark_quality",
	"watermark_text":       "imaging.watermark_text",
	"classifier_model":     "imaging.model_path",
	"classifier_labels":    "imaging.labels_path",
	"classifier_top_k":     "imaging.top_k",
	"classifier_timeout":   "imaging.classifier_timeout",
	"classifier_cooldown":  "imaging.classifier_cooldown",
	"storage_backend":      "storage.backend",
	"media_root":           "storage.local_root",
	"s3_bucket":            "storage.s3_bucket",
	"s3_region":            "storage.s3_region",
	"s3_endpoint":          "storage.s3_endpoint",
	"s3_access_key":        "storage.s3_access_key",
	"s3_secret_key":        "storage.s3_secret_key",
	"s3_presign_ttl":       "storage.presign_ttl",
	"jwt_secret":           "security.jwt_secret",
	"jwt_issuer":           "security.jwt_issuer",
	"ws_inbound_rate":      "websocket.inbound_rate",
	"ws_inbound_burst":     "websocket.inbound_burst",
	"log_level":            "logging.level",
	"log_format":           "logging.format",
	"log_caller":           "logging.caller",
}

// envTransformFunc maps environment variable names to koanf paths.
// Unmapped variables return "" and are ignored.
//
//	HTTP_PORT -> server.port
//	S3_BUCKET -> storage.s3_bucket
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
