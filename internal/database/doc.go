// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

/*
Package database persists photos, engagements, likes, comments, photo tags
and the user directory.

Two implementations satisfy Store:

  - DB, backed by DuckDB through database/sql (duckdb-go/v2)
  - MemoryStore, a mutex-guarded in-process store used by unit tests

# Status Updates

Photo status is only ever changed through TransitionStatus, a single
compare-and-set UPDATE guarded by the allowed source states:

	UPDATE photos SET processing_status = ?, ... WHERE id = ? AND processing_status IN (...)

Zero affected rows yields ErrPhotoNotFound when the row is missing and
ErrInvalidTransition otherwise. The transition table itself lives in the
pipeline package.

# Likes

ToggleLike runs in one transaction: get-or-create the engagement row, delete
or insert the like, then rewrite likes_count from COUNT(*) over the like
rows. The stored count can therefore never drift from the rows.

# JSON Columns

EXIF and tag lists are stored as JSON text written with goccy/go-json.
*/
package database
