// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package auth

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/eventsnap/internal/config"
	"github.com/tomtom215/eventsnap/internal/logging"
	"github.com/tomtom215/eventsnap/internal/models"
)

const testSecret = "this_is_a_very_long_secret_key_with_32_plus_characters"

func init() {
	logging.Init(logging.Config{Level: "error", Output: io.Discard})
}

func newManager(t *testing.T, issuer string) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(&config.SecurityConfig{JWTSecret: testSecret, JWTIssuer: issuer})
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}
	return m
}

func TestNewJWTManager_EmptySecret(t *testing.T) {
	if _, err := NewJWTManager(&config.SecurityConfig{}); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	m := newManager(t, "eventsnap")
	want := models.Identity{UserID: 42, Email: "guest@example.com", Role: models.RoleCoordinator}

	token, err := m.GenerateToken(want, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if got := claims.Identity(); got != want {
		t.Errorf("Identity() = %+v, want %+v", got, want)
	}
}

func TestClaims_DefaultRole(t *testing.T) {
	c := &Claims{UserID: 1}
	if got := c.Identity().Role; got != models.RoleMember {
		t.Errorf("Role = %q, want %q", got, models.RoleMember)
	}
}

func TestValidateToken_Rejections(t *testing.T) {
	m := newManager(t, "eventsnap")
	other := newManager(t, "someone-else")

	expired, _ := m.GenerateToken(models.Identity{UserID: 1}, -time.Minute)
	wrongIssuer, _ := other.GenerateToken(models.Identity{UserID: 1}, time.Hour)
	noUser, _ := m.GenerateToken(models.Identity{}, time.Hour)

	wrongSecret, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID:           1,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "eventsnap"},
	}).SignedString([]byte("a-completely-different-secret-value-here"))

	noneAlg, _ := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		UserID:           1,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "eventsnap"},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.token"},
		{"empty", ""},
		{"expired", expired},
		{"wrong issuer", wrongIssuer},
		{"wrong secret", wrongSecret},
		{"none algorithm", noneAlg},
		{"no user id", noUser},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.ValidateToken(tt.token); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	if _, err := m.ValidateToken(noUser); !errors.Is(err, ErrInvalidIdentity) {
		t.Errorf("no user id error = %v, want ErrInvalidIdentity", err)
	}
}

func TestMiddleware_Authenticate(t *testing.T) {
	m := newManager(t, "eventsnap")
	token, err := m.GenerateToken(models.Identity{UserID: 7, Email: "a@example.com", Role: models.RoleMember}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	var seen models.Identity
	handler := NewMiddleware(m).Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		if !ok {
			t.Error("identity missing from context")
		}
		seen = id
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		target string
		header string
		want   int
	}{
		{"bearer header", "/api/v1/me/library", "Bearer " + token, http.StatusNoContent},
		{"lowercase scheme", "/api/v1/me/library", "bearer " + token, http.StatusNoContent},
		{"query token", "/ws?token=" + token, "", http.StatusNoContent},
		{"missing", "/api/v1/me/library", "", http.StatusUnauthorized},
		{"basic scheme", "/api/v1/me/library", "Basic abc", http.StatusUnauthorized},
		{"empty bearer", "/api/v1/me/library", "Bearer ", http.StatusUnauthorized},
		{"bad token", "/api/v1/me/library", "Bearer nope", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = models.Identity{}
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusUnauthorized {
				if !strings.Contains(rec.Body.String(), `"UNAUTHORIZED"`) {
					t.Errorf("body = %s", rec.Body.String())
				}
				return
			}
			if seen.UserID != 7 {
				t.Errorf("identity = %+v", seen)
			}
		})
	}
}

func TestIdentityFromContext_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := IdentityFromContext(req.Context()); ok {
		t.Error("expected no identity")
	}
}
