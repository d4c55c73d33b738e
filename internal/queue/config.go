// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package queue

import "time"

// Config holds queue configuration.
type Config struct {
	// Path is the BadgerDB directory. Empty runs the queue in memory; jobs
	// then do not survive a restart.
	Path string

	// SyncWrites forces fsync on every enqueue and ack.
	SyncWrites bool

	// Buffer is the capacity of the Jobs channel.
	Buffer int

	// RescanInterval is how often the feeder rescans without a wake-up.
	RescanInterval time.Duration

	// CloseTimeout bounds BadgerDB shutdown.
	CloseTimeout time.Duration
}

// DefaultConfig returns a durable on-disk configuration.
func DefaultConfig() Config {
	return Config{
		Path:           "/data/queue",
		SyncWrites:     true,
		Buffer:         0,
		RescanInterval: 5 * time.Second,
		CloseTimeout:   30 * time.Second,
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Buffer < 0 {
		return &ConfigError{Field: "Buffer", Message: "must not be negative"}
	}
	if c.RescanInterval < 10*time.Millisecond {
		return &ConfigError{Field: "RescanInterval", Message: "must be at least 10ms"}
	}
	if c.CloseTimeout <= 0 {
		return &ConfigError{Field: "CloseTimeout", Message: "must be positive"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "queue config error: " + e.Field + ": " + e.Message
}
