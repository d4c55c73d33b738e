// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

// Package cache provides a generic TTL-bounded LRU cache.
//
// The engagement engine keeps resolved comment author emails in an LRU so
// listing a busy thread does not hit the user directory once per comment.
//
//	emails := cache.NewLRU[int64, string](4096, 10*time.Minute)
//	emails.Add(userID, "guest@example.com")
//	if email, ok := emails.Get(userID); ok { ... }
package cache
