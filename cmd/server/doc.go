// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

// Package main is the entry point for the EventSnap server.
//
// EventSnap accepts photo uploads from event guests, derives thumbnails,
// watermarked copies, EXIF metadata and AI tags on a background worker
// pool, and pushes live notifications (processing results, like counts)
// to connected WebSocket clients.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: defaults, optional YAML file, environment (Koanf v2)
//  2. Database: DuckDB photos, engagement and user directory
//  3. Job queue: BadgerDB-backed durable processing queue
//  4. Storage: local directory or S3-compatible object store
//  5. Imaging: thumbnail/watermark generator with optional ONNX tagger
//  6. Realtime: WebSocket registry and watermill notification dispatcher
//  7. HTTP: chi router with JWT authentication and Casbin authorization
//  8. Supervisor: suture tree running feeder, dispatcher, workers and HTTP
//
// # Configuration
//
// Required:
//   - JWT_SECRET: 32+ character HS256 secret shared with the token issuer
//
// Common:
//   - HTTP_PORT, DUCKDB_PATH, QUEUE_PATH, STORAGE_BACKEND, MEDIA_ROOT
//   - PIPELINE_WORKERS, PIPELINE_JOB_TIMEOUT
//   - CLASSIFIER_MODEL, CLASSIFIER_LABELS (enable AI tagging; build with -tags onnx)
//
// # Build Tags
//
//	go build ./cmd/server                  # pure-Go thumbnails, no tagging
//	go build -tags onnx ./cmd/server       # ONNX Runtime classifier
//	go build -tags vips ./cmd/server       # libvips thumbnails via bimg
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the root context. The HTTP server drains,
// WebSocket clients receive a close frame, and in-flight jobs are left
// unacknowledged so the queue redelivers them on the next start.
package main
