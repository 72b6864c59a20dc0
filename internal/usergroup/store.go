// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package usergroup

import (
	"context"

	"github.com/taibuivan/folio/internal/role"
	"github.com/taibuivan/folio/internal/setting"
	"github.com/taibuivan/folio/internal/user"
	"github.com/taibuivan/folio/internal/workflow"
	"github.com/taibuivan/folio/pkg/pagination"
)

// # User Group Data Access

// Repository defines the data access contract for user groups, their settings
// and their stage assignments.
type Repository interface {

	/*
		Insert persists a new group and its localized name/abbrev.

		Parameters:
		  - context: context.Context
		  - group: *UserGroup (ID is assigned on success)

		Returns:
		  - error: Persistence failures
	*/
	Insert(context context.Context, group *UserGroup) error

	// Update rewrites the group row and its localized fields.
	Update(context context.Context, group *UserGroup) error

	// UpdateLocaleFields rewrites only the localized name/abbrev settings.
	UpdateLocaleFields(context context.Context, group *UserGroup) error

	/*
		FindByID retrieves a group, optionally scoped to a context.

		Parameters:
		  - context: context.Context
		  - id: int64
		  - contextID: *int64 (nil matches any context)

		Returns:
		  - *UserGroup: Hydrated entity with settings
		  - error: ErrNotFound if missing
	*/
	FindByID(context context.Context, id int64, contextID *int64) (*UserGroup, error)

	// DefaultByRole returns the first default group carrying roleID in the context.
	DefaultByRole(context context.Context, contextID int64, roleID role.ID) (*UserGroup, error)

	// ListByRole returns the groups of a context carrying roleID.
	ListByRole(context context.Context, contextID int64, roleID role.ID, onlyDefault bool) ([]*UserGroup, error)

	// IDsByRole returns the ids of groups carrying roleID, optionally within a context.
	IDsByRole(context context.Context, roleID role.ID, contextID *int64) ([]int64, error)

	// ListByUser returns the groups a user is assigned to.
	ListByUser(context context.Context, userID int64, contextID *int64) ([]*UserGroup, error)

	// ListByContext returns every group of a context, or of all contexts when nil.
	ListByContext(context context.Context, contextID *int64) ([]*UserGroup, error)

	// List returns the groups matching an arbitrary filter.
	List(context context.Context, filter Filter) ([]*UserGroup, error)

	// ContextHasGroup reports whether groupID belongs to contextID.
	ContextHasGroup(context context.Context, contextID, groupID int64) (bool, error)

	/*
		ContextUsersCount counts the distinct users assigned to groups of a context.

		Parameters:
		  - context: context.Context
		  - contextID: int64
		  - groupID: *int64 (optional narrowing)
		  - roleID: *role.ID (optional narrowing)

		Returns:
		  - int: Distinct user count
		  - error: Retrieval failures
	*/
	ContextUsersCount(context context.Context, contextID int64, groupID *int64, roleID *role.ID) (int, error)

	// ListByStage returns the groups assigned to a stage, ordered by role.
	ListByStage(context context.Context, contextID int64, stage workflow.Stage, filter StageFilter) ([]*UserGroup, error)

	/*
		DeleteByID removes a group with everything keyed by it.

		User assignments, settings, the group row and stage assignments are
		deleted in one transaction.

		Returns:
		  - error: ErrNotFound if the group is not in the context
	*/
	DeleteByID(context context.Context, contextID, id int64) error

	// DeleteByContextID removes every group of a context and reports how many were removed.
	DeleteByContextID(context context.Context, contextID int64) (int64, error)

	// # Membership

	// UserInGroup reports whether an assignment row exists for exactly (user, group).
	UserInGroup(context context.Context, userID, groupID int64) (bool, error)

	// UserInAnyGroup reports whether the user holds any group, optionally within a context.
	UserInAnyGroup(context context.Context, userID int64, contextID *int64) (bool, error)

	/*
		UsersByGroup searches the users assigned to a group and/or context.

		When both groupID and contextID are nil the result is empty and no query
		is issued.

		Returns:
		  - []*user.User: Matching users ordered by last name, first name
		  - int: Total matches before paging
		  - error: Retrieval failures
	*/
	UsersByGroup(context context.Context, groupID, contextID *int64, search Search, page pagination.Params) ([]*user.User, int, error)

	// UsersNotInRole returns users holding some group whose role differs from roleID.
	UsersNotInRole(context context.Context, roleID role.ID, contextID *int64, text string) ([]*user.User, error)

	// UsersWithoutGroups searches users with no group assignment in any context.
	UsersWithoutGroups(context context.Context, search Search, allowDisabled bool, page pagination.Params) ([]*user.User, int, error)

	// # Stages

	AssignStage(context context.Context, contextID, groupID int64, stage workflow.Stage) error
	RemoveStage(context context.Context, contextID, groupID int64, stage workflow.Stage) error
	RemoveAllStages(context context.Context, contextID, groupID int64) error

	// AssignedStages maps each stage assigned to the group to its translation key.
	AssignedStages(context context.Context, contextID, groupID int64) (map[workflow.Stage]string, error)

	GroupAssignedToStage(context context.Context, groupID int64, stage workflow.Stage) (bool, error)

	// UserAssignedToStage reports whether any of the user's groups acts at stage.
	UserAssignedToStage(context context.Context, contextID, userID int64, stage workflow.Stage) (bool, error)

	// # Settings

	// UpdateSetting upserts a non-localized setting.
	UpdateSetting(context context.Context, groupID int64, name string, value setting.Value) error

	// UpdateLocalizedSetting rewrites the given locales of a setting; empty values delete.
	UpdateLocalizedSetting(context context.Context, groupID int64, name string, values map[string]setting.Value) error

	// Setting returns a setting keyed by locale. An empty locale returns all locales.
	Setting(context context.Context, groupID int64, name, locale string) (map[string]setting.Value, error)

	// DeleteSettingsByLocale removes every group setting stored for locale.
	DeleteSettingsByLocale(context context.Context, locale string) (int64, error)

	// WithTx runs fn against a repository bound to one transaction.
	WithTx(context context.Context, fn func(Repository) error) error
}

// # Assignment Data Access

// AssignmentRepository defines the data access contract for user_user_groups.
type AssignmentRepository interface {
	Insert(context context.Context, assignment Assignment) error

	// ListByUser returns the user's assignments, optionally within a context.
	ListByUser(context context.Context, userID int64, contextID *int64) ([]Assignment, error)

	// Delete removes every row for the (user, group) pair.
	Delete(context context.Context, assignment Assignment) error

	// DeleteByUser removes the user's assignments, optionally only to one group.
	DeleteByUser(context context.Context, userID int64, groupID *int64) error

	DeleteByUserGroup(context context.Context, groupID int64) error

	// DeleteByContext removes assignments to the context's groups, optionally for one user.
	DeleteByContext(context context.Context, contextID int64, userID *int64) error

	WithTx(context context.Context, fn func(AssignmentRepository) error) error
}
