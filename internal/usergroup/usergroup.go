// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package usergroup manages journal user groups: role-scoped permission units
owned by a context (a journal).

# Core Responsibility

  - Groups: the [UserGroup] record and its localized name/abbrev settings.
  - Membership: many-to-many [Assignment] rows between users and groups.
  - Workflow: [StageAssignment] rows scoping which groups act at which stage.
  - Search: parameterized user listings across the joined user tables.

Storage lives behind [Repository] and [AssignmentRepository]; [Service] adds
validation, the assignment policy, definition installs and event publishing.
*/
package usergroup

import (
	"github.com/taibuivan/folio/internal/platform/apperr"
	"github.com/taibuivan/folio/internal/role"
	"github.com/taibuivan/folio/internal/setting"
	"github.com/taibuivan/folio/internal/workflow"
)

// # Setting Names

const (
	SettingName   = "name"
	SettingAbbrev = "abbrev"

	// Translation keys stored at install time so any locale can be seeded later.
	SettingNameLocaleKey   = "nameLocaleKey"
	SettingAbbrevLocaleKey = "abbrevLocaleKey"
)

// LocalizedFields are the settings written by Insert and UpdateLocaleFields.
var LocalizedFields = []string{SettingName, SettingAbbrev}

var (
	// ErrNotFound is returned when a group does not exist in the requested context.
	ErrNotFound = apperr.NotFound("User group")

	// ErrAssignmentNotFound is returned when removing a user who is not in the group.
	ErrAssignmentNotFound = apperr.NotFound("User group assignment")
)

// # Core Entities

// UserGroup is a role-scoped permission unit within a context.
type UserGroup struct {
	ID        int64       `json:"id"`
	RoleID    role.ID     `json:"role_id"`
	ContextID int64       `json:"context_id"`
	Path      string      `json:"path"`
	IsDefault bool        `json:"is_default"`
	Settings  setting.Map `json:"settings"`
}

// Name returns the group name in locale, or "".
func (g *UserGroup) Name(locale string) string {
	return g.localized(SettingName, locale)
}

// Abbrev returns the group abbreviation in locale, or "".
func (g *UserGroup) Abbrev(locale string) string {
	return g.localized(SettingAbbrev, locale)
}

// SetName stores the group name for locale.
func (g *UserGroup) SetName(locale, name string) {
	g.setLocalized(SettingName, locale, name)
}

// SetAbbrev stores the group abbreviation for locale.
func (g *UserGroup) SetAbbrev(locale, abbrev string) {
	g.setLocalized(SettingAbbrev, locale, abbrev)
}

func (g *UserGroup) localized(name, locale string) string {
	value, ok := g.Settings.Get(name, locale)
	if !ok {
		return ""
	}
	return value.Text()
}

func (g *UserGroup) setLocalized(name, locale, text string) {
	if g.Settings == nil {
		g.Settings = setting.Map{}
	}
	g.Settings.Set(name, locale, setting.String(text))
}

// Assignment links a user to a group. The table carries no uniqueness
// constraint; see [AssignmentPolicy].
type Assignment struct {
	UserID      int64 `json:"user_id"`
	UserGroupID int64 `json:"user_group_id"`
}

// StageAssignment lets a group act at a workflow stage within a context.
type StageAssignment struct {
	ContextID   int64          `json:"context_id"`
	UserGroupID int64          `json:"user_group_id"`
	Stage       workflow.Stage `json:"stage_id"`
}

// # Field Identifiers

const (
	FieldRoleID    = "role_id"
	FieldContextID = "context_id"
	FieldPath      = "path"
	FieldLocale    = "locale"
	FieldStageID   = "stage_id"
	FieldUserID    = "user_id"
)
