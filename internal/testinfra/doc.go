// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

// Package testinfra starts throwaway containers for integration tests.
//
// Everything here is behind the integration build tag:
//
//	go test -tags integration ./internal/storage/...
//
// # MinIO
//
//	func TestS3Store(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    minio, err := testinfra.NewMinIOContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, minio)
//
//	    store, err := storage.NewS3Store(ctx, storage.S3Config{
//	        Bucket:    "photos",
//	        Endpoint:  minio.Endpoint,
//	        AccessKey: minio.AccessKey,
//	        SecretKey: minio.SecretKey,
//	    })
//	}
package testinfra
