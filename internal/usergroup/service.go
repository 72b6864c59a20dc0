// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package usergroup

import (
	"context"
	"log/slog"

	"github.com/taibuivan/folio/internal/platform/events"
	"github.com/taibuivan/folio/internal/platform/validate"
	"github.com/taibuivan/folio/internal/role"
	"github.com/taibuivan/folio/internal/setting"
	"github.com/taibuivan/folio/internal/user"
	"github.com/taibuivan/folio/internal/workflow"
	"github.com/taibuivan/folio/pkg/pagination"
	"github.com/taibuivan/folio/pkg/slice"
	"github.com/taibuivan/folio/pkg/slug"
)

// # Service Layer

// Translator resolves an i18n key for a locale.
type Translator interface {
	Translate(key, locale string) string
}

// AssignmentPolicy decides what assigning an already-assigned user does.
type AssignmentPolicy int

const (
	// AllowDuplicates inserts another (user, group) row.
	AllowDuplicates AssignmentPolicy = iota
	// SkipDuplicates leaves the existing row and reports no change.
	SkipDuplicates
)

const (
	maxPathLength    = 64
	maxSettingLength = 255
)

// Service orchestrates business rules for user groups and their assignments.
type Service struct {
	groups        Repository
	assignments   AssignmentRepository
	translator    Translator
	publisher     events.Publisher
	stages        *workflow.Registry
	policy        AssignmentPolicy
	defaultLocale string
	logger        *slog.Logger
}

// ServiceOption configures a [Service].
type ServiceOption func(*Service)

// WithPublisher sends mutation events to publisher after they commit.
func WithPublisher(publisher events.Publisher) ServiceOption {
	return func(service *Service) { service.publisher = publisher }
}

// WithStages restricts stage operations to the supported stages.
func WithStages(stages *workflow.Registry) ServiceOption {
	return func(service *Service) { service.stages = stages }
}

// WithAssignmentPolicy selects how duplicate assignments are handled.
func WithAssignmentPolicy(policy AssignmentPolicy) ServiceOption {
	return func(service *Service) { service.policy = policy }
}

// WithDefaultLocale sets the locale seeded by definition installs.
func WithDefaultLocale(locale string) ServiceOption {
	return func(service *Service) { service.defaultLocale = locale }
}

// NewService constructs a new user group [Service].
func NewService(groups Repository, assignments AssignmentRepository, translator Translator, logger *slog.Logger, options ...ServiceOption) *Service {
	service := &Service{
		groups:        groups,
		assignments:   assignments,
		translator:    translator,
		publisher:     events.Nop{},
		stages:        workflow.NewRegistry([]int{1, 2, 3, 4, 5}),
		policy:        AllowDuplicates,
		defaultLocale: "en_US",
		logger:        logger,
	}
	for _, option := range options {
		option(service)
	}
	return service
}

// DefaultLocale is the locale seeded by installs and used when a request names none.
func (service *Service) DefaultLocale() string {
	return service.defaultLocale
}

// # Group Management

/*
CreateUserGroup validates and persists a new group.

A group without a path gets one derived from its default-locale name, falling
back to the role path.

Parameters:
  - context: context.Context
  - group: *UserGroup

Returns:
  - error: Validation or persistence failures
*/
func (service *Service) CreateUserGroup(context context.Context, group *UserGroup) error {
	if group.Path == "" {
		group.Path = slug.FromWithMax(group.Name(service.defaultLocale), maxPathLength)
	}
	if group.Path == "" {
		group.Path = group.RoleID.Path()
	}

	if err := service.validateGroup(group); err != nil {
		return err
	}

	if err := service.groups.Insert(context, group); err != nil {
		return err
	}

	service.logger.Info("user_group_created",
		slog.Int64("user_group_id", group.ID),
		slog.Int64("context_id", group.ContextID),
		slog.String("role", group.RoleID.String()),
	)
	service.publish(context, events.Event{Type: events.UserGroupCreated, ContextID: &group.ContextID, UserGroupID: group.ID})

	return nil
}

// UpdateUserGroup rewrites an existing group of the same context.
func (service *Service) UpdateUserGroup(context context.Context, group *UserGroup) error {
	if err := service.validateGroup(group); err != nil {
		return err
	}
	if err := service.requireGroup(context, group.ContextID, group.ID); err != nil {
		return err
	}

	if err := service.groups.Update(context, group); err != nil {
		return err
	}

	service.publish(context, events.Event{Type: events.UserGroupUpdated, ContextID: &group.ContextID, UserGroupID: group.ID})
	return nil
}

/*
RenameUserGroup rewrites the localized names and abbreviations of a group.

Locales absent from names and abbrevs keep their stored text; an empty string
removes that locale's entry. The group row itself is not touched.

Returns:
  - *UserGroup: The group with its new locale fields
  - error: ErrNotFound if the group is not in the context, or validation failures
*/
func (service *Service) RenameUserGroup(context context.Context, contextID, groupID int64, names, abbrevs map[string]string) (*UserGroup, error) {
	group, err := service.groups.FindByID(context, groupID, &contextID)
	if err != nil {
		return nil, err
	}

	for locale, name := range names {
		group.SetName(locale, name)
	}
	for locale, abbrev := range abbrevs {
		group.SetAbbrev(locale, abbrev)
	}

	if err := service.validateGroup(group); err != nil {
		return nil, err
	}
	if err := service.groups.UpdateLocaleFields(context, group); err != nil {
		return nil, err
	}

	service.publish(context, events.Event{Type: events.UserGroupUpdated, ContextID: &contextID, UserGroupID: groupID})
	return group, nil
}

// GetUserGroup returns a group of the context.
func (service *Service) GetUserGroup(context context.Context, contextID, id int64) (*UserGroup, error) {
	return service.groups.FindByID(context, id, &contextID)
}

// ListUserGroups returns the groups matching filter.
func (service *Service) ListUserGroups(context context.Context, filter Filter) ([]*UserGroup, error) {
	return service.groups.List(context, filter)
}

// DefaultGroupForRole returns the context's default group for a role.
func (service *Service) DefaultGroupForRole(context context.Context, contextID int64, roleID role.ID) (*UserGroup, error) {
	return service.groups.DefaultByRole(context, contextID, roleID)
}

// GroupIDsForRole returns the ids of groups carrying a role.
func (service *Service) GroupIDsForRole(context context.Context, roleID role.ID, contextID *int64) ([]int64, error) {
	return service.groups.IDsByRole(context, roleID, contextID)
}

// GroupsForUser returns the groups a user holds.
func (service *Service) GroupsForUser(context context.Context, userID int64, contextID *int64) ([]*UserGroup, error) {
	return service.groups.ListByUser(context, userID, contextID)
}

/*
DeleteUserGroup removes a group and everything keyed by it.

User assignments, settings, the group row and stage assignments are deleted
in one transaction: either all of them go or none do.

Returns:
  - error: ErrNotFound if the group is not in the context
*/
func (service *Service) DeleteUserGroup(context context.Context, contextID, id int64) error {
	if err := service.groups.DeleteByID(context, contextID, id); err != nil {
		return err
	}

	service.logger.Info("user_group_deleted",
		slog.Int64("user_group_id", id),
		slog.Int64("context_id", contextID),
	)
	service.publish(context, events.Event{Type: events.UserGroupDeleted, ContextID: &contextID, UserGroupID: id})

	return nil
}

// DeleteContextGroups removes every group of a context in one transaction.
func (service *Service) DeleteContextGroups(context context.Context, contextID int64) (int64, error) {
	removed, err := service.groups.DeleteByContextID(context, contextID)
	if err != nil {
		return 0, err
	}

	service.logger.Info("context_user_groups_deleted",
		slog.Int64("context_id", contextID),
		slog.Int64("removed", removed),
	)
	service.publish(context, events.Event{Type: events.ContextGroupsDeleted, ContextID: &contextID})

	return removed, nil
}

// # Settings

// UpdateSetting stores a non-localized setting of a group in the context.
func (service *Service) UpdateSetting(context context.Context, contextID, groupID int64, name string, value setting.Value) error {
	validator := &validate.Validator{}
	validator.Required("name", name).MaxLen("name", name, maxSettingLength)
	validator.Custom("value", value.Type() == "", "A value is required")
	if err := validator.Err(); err != nil {
		return err
	}

	if err := service.requireGroup(context, contextID, groupID); err != nil {
		return err
	}
	if err := service.groups.UpdateSetting(context, groupID, name, value); err != nil {
		return err
	}

	service.publish(context, events.Event{Type: events.UserGroupUpdated, ContextID: &contextID, UserGroupID: groupID})
	return nil
}

// UpdateLocalizedSetting rewrites the given locales of a setting. Empty values remove a locale.
func (service *Service) UpdateLocalizedSetting(context context.Context, contextID, groupID int64, name string, values map[string]setting.Value) error {
	validator := &validate.Validator{}
	validator.Required("name", name).MaxLen("name", name, maxSettingLength)
	validator.Custom("values", len(values) == 0, "At least one locale is required")
	for locale := range values {
		validator.Locale(FieldLocale, locale)
	}
	if err := validator.Err(); err != nil {
		return err
	}

	if err := service.requireGroup(context, contextID, groupID); err != nil {
		return err
	}
	if err := service.groups.UpdateLocalizedSetting(context, groupID, name, values); err != nil {
		return err
	}

	service.publish(context, events.Event{Type: events.UserGroupUpdated, ContextID: &contextID, UserGroupID: groupID})
	return nil
}

// Setting returns one setting of a group keyed by locale.
func (service *Service) Setting(context context.Context, contextID, groupID int64, name, locale string) (map[string]setting.Value, error) {
	if err := service.requireGroup(context, contextID, groupID); err != nil {
		return nil, err
	}
	return service.groups.Setting(context, groupID, name, locale)
}

// DeleteSettingsByLocale removes every group setting stored for locale.
func (service *Service) DeleteSettingsByLocale(context context.Context, locale string) (int64, error) {
	if err := (&validate.Validator{}).Locale(FieldLocale, locale).Err(); err != nil {
		return 0, err
	}
	return service.groups.DeleteSettingsByLocale(context, locale)
}

// # Membership

// ListUsers searches the users of a group and/or context.
func (service *Service) ListUsers(context context.Context, groupID, contextID *int64, search Search, page pagination.Params) ([]*user.User, int, error) {
	return service.groups.UsersByGroup(context, groupID, contextID, search, page)
}

// UsersNotInRole returns users holding a group with a different role.
func (service *Service) UsersNotInRole(context context.Context, roleID role.ID, contextID *int64, text string) ([]*user.User, error) {
	return service.groups.UsersNotInRole(context, roleID, contextID, text)
}

// UsersWithoutGroups searches users with no assignment in any context.
func (service *Service) UsersWithoutGroups(context context.Context, search Search, allowDisabled bool, page pagination.Params) ([]*user.User, int, error) {
	return service.groups.UsersWithoutGroups(context, search, allowDisabled, page)
}

// ContextUsersCount counts the distinct users of a context.
func (service *Service) ContextUsersCount(context context.Context, contextID int64, groupID *int64, roleID *role.ID) (int, error) {
	return service.groups.ContextUsersCount(context, contextID, groupID, roleID)
}

// UserInGroup reports whether the user holds the group.
func (service *Service) UserInGroup(context context.Context, userID, groupID int64) (bool, error) {
	return service.groups.UserInGroup(context, userID, groupID)
}

// UserInAnyGroup reports whether the user holds any group.
func (service *Service) UserInAnyGroup(context context.Context, userID int64, contextID *int64) (bool, error) {
	return service.groups.UserInAnyGroup(context, userID, contextID)
}

/*
AssignUser adds a user to a group of the context.

Under [SkipDuplicates] an existing assignment is left alone and assigned is
false; under [AllowDuplicates] another row is always inserted.

Returns:
  - bool: Whether a row was inserted
  - error: ErrNotFound if the group is not in the context
*/
func (service *Service) AssignUser(context context.Context, contextID, groupID, userID int64) (bool, error) {
	if err := (&validate.Validator{}).Positive(FieldUserID, userID).Err(); err != nil {
		return false, err
	}
	if err := service.requireGroup(context, contextID, groupID); err != nil {
		return false, err
	}

	if service.policy == SkipDuplicates {
		exists, err := service.groups.UserInGroup(context, userID, groupID)
		if err != nil {
			return false, err
		}
		if exists {
			return false, nil
		}
	}

	if err := service.assignments.Insert(context, Assignment{UserID: userID, UserGroupID: groupID}); err != nil {
		return false, err
	}

	service.logger.Info("user_assigned",
		slog.Int64("user_id", userID),
		slog.Int64("user_group_id", groupID),
	)
	service.publish(context, events.Event{Type: events.UserAssigned, ContextID: &contextID, UserGroupID: groupID, UserID: userID})

	return true, nil
}

// RemoveUser deletes the user's assignments to groupID among their assignments in the context.
func (service *Service) RemoveUser(context context.Context, contextID, groupID, userID int64) error {
	assignments, err := service.assignments.ListByUser(context, userID, &contextID)
	if err != nil {
		return err
	}

	matching := slice.Unique(slice.Filter(assignments, func(assignment Assignment) bool {
		return assignment.UserGroupID == groupID
	}))
	if len(matching) == 0 {
		return ErrAssignmentNotFound
	}

	for _, assignment := range matching {
		if err := service.assignments.Delete(context, assignment); err != nil {
			return err
		}
	}

	service.logger.Info("user_removed",
		slog.Int64("user_id", userID),
		slog.Int64("user_group_id", groupID),
	)
	service.publish(context, events.Event{Type: events.UserRemoved, ContextID: &contextID, UserGroupID: groupID, UserID: userID})

	return nil
}

// RemoveUserFromAllGroups deletes every assignment of the user across all contexts.
func (service *Service) RemoveUserFromAllGroups(context context.Context, userID int64) error {
	if err := (&validate.Validator{}).Positive(FieldUserID, userID).Err(); err != nil {
		return err
	}

	if err := service.assignments.DeleteByUser(context, userID, nil); err != nil {
		return err
	}

	service.logger.Info("user_removed_from_all_groups", slog.Int64("user_id", userID))
	service.publish(context, events.Event{Type: events.UserRemoved, UserID: userID})

	return nil
}

// # Workflow Stages

// WorkflowStages describes the stages this deployment supports.
func (service *Service) WorkflowStages() []workflow.Descriptor {
	return service.stages.KeysAndPaths()
}

// AssignStage lets a group act at a supported stage. Assigning twice is a no-op.
func (service *Service) AssignStage(context context.Context, contextID, groupID int64, stage workflow.Stage) error {
	if !service.stages.Supports(stage) {
		return validate.FieldError(FieldStageID, "Unsupported workflow stage")
	}
	if err := service.requireGroup(context, contextID, groupID); err != nil {
		return err
	}

	assigned, err := service.groups.GroupAssignedToStage(context, groupID, stage)
	if err != nil {
		return err
	}
	if assigned {
		return nil
	}

	if err := service.groups.AssignStage(context, contextID, groupID, stage); err != nil {
		return err
	}

	service.publish(context, events.Event{Type: events.StageAssigned, ContextID: &contextID, UserGroupID: groupID, StageID: int(stage)})
	return nil
}

// GroupAssignedToStage reports whether a group of the context acts at stage.
func (service *Service) GroupAssignedToStage(context context.Context, contextID, groupID int64, stage workflow.Stage) (bool, error) {
	if !stage.Valid() {
		return false, validate.FieldError(FieldStageID, "Unknown workflow stage")
	}
	if err := service.requireGroup(context, contextID, groupID); err != nil {
		return false, err
	}
	return service.groups.GroupAssignedToStage(context, groupID, stage)
}

// RemoveStage removes a group from a stage.
func (service *Service) RemoveStage(context context.Context, contextID, groupID int64, stage workflow.Stage) error {
	if !stage.Valid() {
		return validate.FieldError(FieldStageID, "Unknown workflow stage")
	}
	if err := service.requireGroup(context, contextID, groupID); err != nil {
		return err
	}

	if err := service.groups.RemoveStage(context, contextID, groupID, stage); err != nil {
		return err
	}

	service.publish(context, events.Event{Type: events.StageRemoved, ContextID: &contextID, UserGroupID: groupID, StageID: int(stage)})
	return nil
}

// AssignedStages describes the stages a group is assigned to, in stage order.
func (service *Service) AssignedStages(context context.Context, contextID, groupID int64) ([]workflow.Descriptor, error) {
	if err := service.requireGroup(context, contextID, groupID); err != nil {
		return nil, err
	}

	assigned, err := service.groups.AssignedStages(context, contextID, groupID)
	if err != nil {
		return nil, err
	}

	descriptors := []workflow.Descriptor{}
	for _, stage := range workflow.All() {
		if key, ok := assigned[stage]; ok {
			descriptors = append(descriptors, workflow.Descriptor{ID: stage, TranslationKey: key, Path: stage.Path()})
		}
	}
	return descriptors, nil
}

// GroupsForStage returns the groups acting at a stage.
func (service *Service) GroupsForStage(context context.Context, contextID int64, stage workflow.Stage, filter StageFilter) ([]*UserGroup, error) {
	if !stage.Valid() {
		return nil, validate.FieldError(FieldStageID, "Unknown workflow stage")
	}
	return service.groups.ListByStage(context, contextID, stage, filter)
}

// UserAssignedToStage reports whether any of the user's groups acts at stage.
func (service *Service) UserAssignedToStage(context context.Context, contextID, userID int64, stage workflow.Stage) (bool, error) {
	return service.groups.UserAssignedToStage(context, contextID, userID, stage)
}

// # Helpers

func (service *Service) validateGroup(group *UserGroup) error {
	validator := &validate.Validator{}
	validator.Custom(FieldRoleID, !group.RoleID.Valid(), "Unknown role")
	validator.NonNegative(FieldContextID, group.ContextID)
	validator.Path(FieldPath, group.Path).MaxLen(FieldPath, group.Path, maxPathLength)

	for _, field := range LocalizedFields {
		for locale, value := range group.Settings[field] {
			validator.Locale(FieldLocale, locale)
			validator.MaxLen(field, value.Text(), maxSettingLength)
		}
	}

	return validator.Err()
}

func (service *Service) requireGroup(context context.Context, contextID, groupID int64) error {
	exists, err := service.groups.ContextHasGroup(context, contextID, groupID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}

// publish hands an event to the bus. Failures are logged; the mutation has already committed.
func (service *Service) publish(context context.Context, event events.Event) {
	if err := service.publisher.Publish(context, event); err != nil {
		service.logger.Warn("event_publish_failed",
			slog.String("type", string(event.Type)),
			slog.Int64("user_group_id", event.UserGroupID),
			slog.Any("error", err),
		)
	}
}
