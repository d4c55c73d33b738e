// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

/*
Package auth resolves the caller of each request from an HS256 JWT.

Tokens are issued elsewhere on the event platform and carry:

	{"user_id": 42, "email": "guest@example.com", "role": "Member", "iss": "eventsnap", "exp": ...}

Middleware.Authenticate validates the token and stores a models.Identity
in the request context, retrievable with IdentityFromContext. Requests
without a valid token get 401; there is no anonymous fallback.
*/
package auth
