// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

// Package engagement implements likes, threaded comments and photo tags.
//
// Like toggles on the same photo are serialised by one of 64 striped locks
// and the count is always recomputed from the stored like rows, so it
// matches the rows after any interleaving and never goes negative. Each
// committed toggle is broadcast as a like_update.
//
// Comment authors are resolved to emails through an LRU in front of the
// user directory.
package engagement
