// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package authz

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tomtom215/eventsnap/internal/models"
)

func newAuthorizer(t *testing.T) *PhotoAuthorizer {
	t.Helper()
	e, err := NewEnforcer(DefaultEnforcerConfig())
	if err != nil {
		t.Fatalf("NewEnforcer: %v", err)
	}
	return NewPhotoAuthorizer(e)
}

func TestPhotoAuthorizer(t *testing.T) {
	a := newAuthorizer(t)
	const uploader = 10

	member := models.Identity{UserID: 20, Role: models.RoleMember}
	owner := models.Identity{UserID: uploader, Role: models.RoleMember}
	coordinator := models.Identity{UserID: 30, Role: models.RoleCoordinator}
	admin := models.Identity{UserID: 40, Role: models.RoleAdmin}
	unknownRole := models.Identity{UserID: 50}

	tests := []struct {
		name   string
		id     models.Identity
		action string
		want   bool
	}{
		{"member views", member, ActionView, true},
		{"member likes", member, ActionLike, true},
		{"member comments", member, ActionComment, true},
		{"member edits tags", member, ActionEditTags, false},
		{"member tags user", member, ActionTagUser, false},
		{"member reprocesses", member, ActionReprocess, false},
		{"member downloads", member, ActionDownload, true},
		{"owner edits tags", owner, ActionEditTags, true},
		{"owner tags user", owner, ActionTagUser, true},
		{"owner reprocesses", owner, ActionReprocess, true},
		{"coordinator edits tags", coordinator, ActionEditTags, true},
		{"coordinator downloads", coordinator, ActionDownload, true},
		{"admin inherits coordinator", admin, ActionTagUser, true},
		{"admin inherits member", admin, ActionLike, true},
		{"empty role treated as member", unknownRole, ActionView, true},
		{"empty role cannot edit", unknownRole, ActionEditTags, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.Can(tt.id, uploader, tt.action)
			if err != nil {
				t.Fatalf("Can: %v", err)
			}
			if got != tt.want {
				t.Errorf("Can(%s) = %v, want %v", tt.action, got, tt.want)
			}
		})
	}
}

func TestRequire(t *testing.T) {
	a := newAuthorizer(t)
	member := models.Identity{UserID: 2, Role: models.RoleMember}

	if err := a.Require(member, 1, ActionEditTags); !errors.Is(err, ErrForbidden) {
		t.Errorf("Require = %v, want ErrForbidden", err)
	}
	if err := a.Require(member, 2, ActionEditTags); err != nil {
		t.Errorf("owner Require = %v", err)
	}
}

func TestEnforcer_CachesDecisions(t *testing.T) {
	e, err := NewEnforcer(EnforcerConfig{CacheSize: 8})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if ok, _ := e.Enforce("Member", "photo", "view"); !ok {
			t.Fatal("Member should view photos")
		}
	}
	if hits, _, size := e.cache.Stats(); hits != 2 || size != 1 {
		t.Errorf("cache hits=%d size=%d", hits, size)
	}
}

func TestEnforcer_PolicyFileOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.csv")
	if err := os.WriteFile(path, []byte("p, Member, photo, tags:edit\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	e, err := NewEnforcer(EnforcerConfig{PolicyPath: path})
	if err != nil {
		t.Fatal(err)
	}
	if ok, _ := e.Enforce("Member", "photo", "tags:edit"); !ok {
		t.Error("file policy not applied")
	}
	if ok, _ := e.Enforce("Member", "photo", "view"); ok {
		t.Error("embedded policy leaked into file-backed enforcer")
	}
}

func TestLoadEmbeddedPolicy_Malformed(t *testing.T) {
	e, err := NewEnforcer(EnforcerConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if err := loadEmbeddedPolicy(e.enforcer, "p, Member, photo\n"); err == nil {
		t.Error("expected error for short policy line")
	}
}
