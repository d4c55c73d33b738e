// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package authz

import (
	"errors"

	"github.com/tomtom215/eventsnap/internal/metrics"
	"github.com/tomtom215/eventsnap/internal/models"
)

// Photo actions.
const (
	ActionView      = "view"
	ActionLike      = "like"
	ActionComment   = "comment"
	ActionUpload    = "upload"
	ActionEditTags  = "tags:edit"
	ActionTagUser   = "tag:user"
	ActionReprocess = "reprocess"
	ActionDownload  = "download"
)

const (
	objectPhoto = "photo"
	roleOwner   = "owner"
)

// ErrForbidden is returned when an identity lacks permission.
var ErrForbidden = errors.New("forbidden")

// PhotoAuthorizer decides photo actions for identities.
type PhotoAuthorizer struct {
	enforcer *Enforcer
}

// NewPhotoAuthorizer creates a PhotoAuthorizer over enforcer.
func NewPhotoAuthorizer(enforcer *Enforcer) *PhotoAuthorizer {
	return &PhotoAuthorizer{enforcer: enforcer}
}

// Can reports whether id may perform action on a photo uploaded by
// uploaderID. The uploader additionally holds the owner role.
func (a *PhotoAuthorizer) Can(id models.Identity, uploaderID int64, action string) (bool, error) {
	role := id.Role
	if role == "" {
		role = models.RoleMember
	}
	roles := []string{role}
	if id.UserID == uploaderID {
		roles = append(roles, roleOwner)
	}

	allowed, err := a.enforcer.EnforceAny(roles, objectPhoto, action)
	if err != nil {
		return false, err
	}
	metrics.RecordAuthzDecision(action, allowed)
	return allowed, nil
}

// Require returns ErrForbidden unless Can allows the action.
func (a *PhotoAuthorizer) Require(id models.Identity, uploaderID int64, action string) error {
	allowed, err := a.Can(id, uploaderID, action)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrForbidden
	}
	return nil
}
