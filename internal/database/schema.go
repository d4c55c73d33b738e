// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package database

const schemaSQL = `
	CREATE SEQUENCE IF NOT EXISTS photos_id_seq START 1;
	CREATE SEQUENCE IF NOT EXISTS engagements_id_seq START 1;
	CREATE SEQUENCE IF NOT EXISTS comments_id_seq START 1;

	CREATE TABLE IF NOT EXISTS users (
		id BIGINT PRIMARY KEY,
		email TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'Member',
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS photos (
		id BIGINT PRIMARY KEY DEFAULT nextval('photos_id_seq'),
		original_path TEXT NOT NULL,
		thumbnail_path TEXT,
		watermarked_path TEXT,
		exif_data TEXT NOT NULL DEFAULT '{}',
		ai_tags TEXT NOT NULL DEFAULT '[]',
		manual_tags TEXT NOT NULL DEFAULT '[]',
		uploader_id BIGINT NOT NULL,
		event_id BIGINT,
		processing_status TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS engagements (
		id BIGINT PRIMARY KEY DEFAULT nextval('engagements_id_seq'),
		photo_id BIGINT NOT NULL UNIQUE,
		likes_count INTEGER NOT NULL DEFAULT 0,
		extra_metadata TEXT NOT NULL DEFAULT '{}'
	);

	CREATE TABLE IF NOT EXISTS likes (
		photo_id BIGINT NOT NULL,
		user_id BIGINT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (photo_id, user_id)
	);

	CREATE TABLE IF NOT EXISTS comments (
		id BIGINT PRIMARY KEY DEFAULT nextval('comments_id_seq'),
		engagement_id BIGINT NOT NULL,
		author_id BIGINT NOT NULL,
		content TEXT NOT NULL,
		parent_id BIGINT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS tagged_in (
		photo_id BIGINT NOT NULL,
		user_id BIGINT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (photo_id, user_id)
	);

	CREATE INDEX IF NOT EXISTS idx_photos_uploader ON photos(uploader_id);
	CREATE INDEX IF NOT EXISTS idx_comments_engagement ON comments(engagement_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_likes_user ON likes(user_id);
	CREATE INDEX IF NOT EXISTS idx_tagged_in_user ON tagged_in(user_id)
`
