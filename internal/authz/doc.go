// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

// Package authz decides photo permissions with Casbin RBAC.
//
// The embedded model and policy grant Members view and engagement rights,
// give a photo's uploader the "owner" pseudo-role for edits on that photo,
// and let Coordinators (and, through inheritance, Admins) do anything.
// Either file can be overridden on disk.
package authz
