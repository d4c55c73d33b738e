// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

// Package storage persists original uploads and derived artifacts behind
// a small FileStore interface with local-directory and S3 backends.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a stored object does not exist.
	ErrNotFound = errors.New("stored file not found")

	// ErrInvalidPath is returned for empty, absolute or escaping paths.
	ErrInvalidPath = errors.New("invalid storage path")
)

// FileStore persists blobs addressed by slash-separated relative paths.
type FileStore interface {
	// SaveFile writes data to dest and returns the stored path.
	SaveFile(ctx context.Context, data []byte, dest string) (string, error)
	ReadFile(ctx context.Context, path string) ([]byte, error)
	Exists(ctx context.Context, path string) (bool, error)
	// Delete removes path. Deleting a missing file is not an error.
	Delete(ctx context.Context, path string) error
	// URL returns a client-reachable URL for path.
	URL(ctx context.Context, path string) (string, error)
}

// Config selects and configures a backend.
type Config struct {
	Backend    string // "local" or "s3"
	LocalRoot  string
	URLPrefix  string
	S3Bucket   string
	S3Region   string
	S3Endpoint string
	AccessKey  string
	SecretKey  string
	PresignTTL time.Duration
}

// New builds the configured FileStore.
func New(ctx context.Context, cfg Config) (FileStore, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocalStore(cfg.LocalRoot, cfg.URLPrefix)
	case "s3":
		return NewS3Store(ctx, S3Config{
			Bucket:     cfg.S3Bucket,
			Region:     cfg.S3Region,
			Endpoint:   cfg.S3Endpoint,
			AccessKey:  cfg.AccessKey,
			SecretKey:  cfg.SecretKey,
			PresignTTL: cfg.PresignTTL,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// CleanPath normalises p to a relative slash path and rejects anything
// that would escape the store root.
func CleanPath(p string) (string, error) {
	p = strings.ReplaceAll(strings.TrimSpace(p), "\\", "/")
	if p == "" || strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
		}
	}
	clean := path.Clean(p)
	if clean == "." {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	return clean, nil
}

// Stem returns the base name of p without its extension.
func Stem(p string) string {
	base := path.Base(strings.ReplaceAll(p, "\\", "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}

// ThumbnailPath is where the thumbnail for source is stored.
func ThumbnailPath(source string) string {
	return "thumbnails/thumb_" + Stem(source) + ".jpg"
}

// WatermarkedPath is where the watermarked copy of source is stored.
func WatermarkedPath(source string) string {
	return "watermarked/watermarked_" + Stem(source) + ".jpg"
}
