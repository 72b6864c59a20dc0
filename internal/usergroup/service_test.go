// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package usergroup_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/folio/internal/platform/apperr"
	"github.com/taibuivan/folio/internal/platform/events"
	"github.com/taibuivan/folio/internal/platform/i18n"
	"github.com/taibuivan/folio/internal/role"
	"github.com/taibuivan/folio/internal/setting"
	"github.com/taibuivan/folio/internal/user"
	"github.com/taibuivan/folio/internal/usergroup"
	"github.com/taibuivan/folio/internal/workflow"
	"github.com/taibuivan/folio/pkg/pagination"
)

var catalogs = map[string]map[string]string{
	"en_US": {
		"default.groups.name.manager":   "Journal manager",
		"default.groups.abbrev.manager": "JM",
		"default.groups.name.author":    "Author",
		"default.groups.abbrev.author":  "AU",
	},
	"fr_CA": {
		"default.groups.name.manager":   "Directeur de la revue",
		"default.groups.abbrev.manager": "DR",
		"default.groups.name.author":    "Auteur",
		"default.groups.abbrev.author":  "AU",
	},
}

type fixture struct {
	service   *usergroup.Service
	store     *memoryStore
	publisher *recordingPublisher
}

func newFixture(t *testing.T, options ...usergroup.ServiceOption) fixture {
	t.Helper()

	store := newMemoryStore()
	publisher := &recordingPublisher{}
	options = append([]usergroup.ServiceOption{usergroup.WithPublisher(publisher)}, options...)

	service := usergroup.NewService(store, memoryAssignments{store: store}, i18n.New(catalogs), discardLogger(), options...)
	return fixture{service: service, store: store, publisher: publisher}
}

func (f fixture) createGroup(t *testing.T, contextID int64, roleID role.ID, name string) *usergroup.UserGroup {
	t.Helper()

	group := &usergroup.UserGroup{RoleID: roleID, ContextID: contextID, IsDefault: true}
	group.SetName("en_US", name)
	require.NoError(t, f.service.CreateUserGroup(context.Background(), group))
	return group
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, code), "expected %s, got %v", code, err)
}

// # Groups

/*
TestService_CreateUserGroup covers path derivation and validation.
*/
func TestService_CreateUserGroup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("derives path from default-locale name", func(t *testing.T) {
		group := f.createGroup(t, 1, role.Manager, "Rédacteur en chef")

		assert.NotZero(t, group.ID)
		assert.Equal(t, "redacteur-en-chef", group.Path)
		assert.Contains(t, f.publisher.types(), events.UserGroupCreated)
	})

	t.Run("falls back to role path", func(t *testing.T) {
		group := &usergroup.UserGroup{RoleID: role.Reviewer, ContextID: 1}
		require.NoError(t, f.service.CreateUserGroup(ctx, group))
		assert.Equal(t, "reviewer", group.Path)
	})

	t.Run("rejects unknown role and bad locale", func(t *testing.T) {
		group := &usergroup.UserGroup{RoleID: role.ID(3), ContextID: 1, Path: "x"}
		group.SetName("english", "Nobody")

		err := f.service.CreateUserGroup(ctx, group)
		assertCode(t, err, "VALIDATION_ERROR")

		details := apperr.As(err).Details
		fields := make([]string, len(details))
		for i, detail := range details {
			fields[i] = detail.Field
		}
		assert.Contains(t, fields, usergroup.FieldRoleID)
		assert.Contains(t, fields, usergroup.FieldLocale)
	})
}

/*
TestService_UpdateUserGroup verifies updates are confined to the group's context.
*/
func TestService_UpdateUserGroup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	group := f.createGroup(t, 1, role.Manager, "Manager")

	group.SetName("fr_CA", "Gestionnaire")
	require.NoError(t, f.service.UpdateUserGroup(ctx, group))

	stored, err := f.service.GetUserGroup(ctx, 1, group.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gestionnaire", stored.Name("fr_CA"))
	assert.Equal(t, "Manager", stored.Name("en_US"))

	moved := *group
	moved.ContextID = 2
	assert.ErrorIs(t, f.service.UpdateUserGroup(ctx, &moved), usergroup.ErrNotFound)
}

/*
TestService_RenameUserGroup verifies only the given locales change and the group
row is left alone.
*/
func TestService_RenameUserGroup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	group := f.createGroup(t, 1, role.Manager, "Manager")

	renamed, err := f.service.RenameUserGroup(ctx, 1, group.ID,
		map[string]string{"fr_CA": "Gestionnaire"},
		map[string]string{"en_US": "MGR"})
	require.NoError(t, err)
	assert.Equal(t, "Gestionnaire", renamed.Name("fr_CA"))

	stored, err := f.service.GetUserGroup(ctx, 1, group.ID)
	require.NoError(t, err)
	assert.Equal(t, "Manager", stored.Name("en_US"))
	assert.Equal(t, "Gestionnaire", stored.Name("fr_CA"))
	assert.Equal(t, "MGR", stored.Abbrev("en_US"))
	assert.Equal(t, group.Path, stored.Path)
	assert.Contains(t, f.publisher.types(), events.UserGroupUpdated)

	_, err = f.service.RenameUserGroup(ctx, 2, group.ID, map[string]string{"en_US": "x"}, nil)
	assert.ErrorIs(t, err, usergroup.ErrNotFound)

	_, err = f.service.RenameUserGroup(ctx, 1, group.ID, map[string]string{"english": "x"}, nil)
	assertCode(t, err, "VALIDATION_ERROR")
}

/*
TestService_DeleteUserGroup verifies the cascade and the wrong-context guard.
*/
func TestService_DeleteUserGroup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	group := f.createGroup(t, 1, role.Manager, "Manager")

	_, err := f.service.AssignUser(ctx, 1, group.ID, 7)
	require.NoError(t, err)
	require.NoError(t, f.service.AssignStage(ctx, 1, group.ID, workflow.Editing))

	assert.ErrorIs(t, f.service.DeleteUserGroup(ctx, 2, group.ID), usergroup.ErrNotFound)
	require.NoError(t, f.service.DeleteUserGroup(ctx, 1, group.ID))

	_, err = f.service.GetUserGroup(ctx, 1, group.ID)
	assert.ErrorIs(t, err, usergroup.ErrNotFound)

	member, err := f.service.UserInGroup(ctx, 7, group.ID)
	require.NoError(t, err)
	assert.False(t, member)

	assigned, err := f.service.UserAssignedToStage(ctx, 1, 7, workflow.Editing)
	require.NoError(t, err)
	assert.False(t, assigned)

	assert.Contains(t, f.publisher.types(), events.UserGroupDeleted)
}

/*
TestService_DeleteContextGroups verifies only the target context is emptied.
*/
func TestService_DeleteContextGroups(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createGroup(t, 1, role.Manager, "Manager")
	f.createGroup(t, 1, role.Author, "Author")
	kept := f.createGroup(t, 2, role.Manager, "Manager")

	removed, err := f.service.DeleteContextGroups(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	_, err = f.service.GetUserGroup(ctx, 2, kept.ID)
	assert.NoError(t, err)
}

/*
TestService_ListUserGroups verifies role-then-id ordering and the default filter.
*/
func TestService_ListUserGroups(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.createGroup(t, 1, role.Author, "Author")
	manager := f.createGroup(t, 1, role.Manager, "Manager")
	extra := &usergroup.UserGroup{RoleID: role.Manager, ContextID: 1, Path: "guest-manager"}
	require.NoError(t, f.service.CreateUserGroup(ctx, extra))

	contextID := int64(1)
	groups, err := f.service.ListUserGroups(ctx, usergroup.Filter{ContextID: &contextID})
	require.NoError(t, err)
	require.Len(t, groups, 3)
	assert.Equal(t, []int64{manager.ID, extra.ID, author.ID}, []int64{groups[0].ID, groups[1].ID, groups[2].ID})

	byDefault, err := f.service.DefaultGroupForRole(ctx, 1, role.Manager)
	require.NoError(t, err)
	assert.Equal(t, manager.ID, byDefault.ID)

	ids, err := f.service.GroupIDsForRole(ctx, role.Manager, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{manager.ID, extra.ID}, ids)
}

// # Settings

/*
TestService_Settings covers plain and localized writes, reads and locale deletion.
*/
func TestService_Settings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	group := f.createGroup(t, 1, role.Manager, "Manager")

	require.NoError(t, f.service.UpdateSetting(ctx, 1, group.ID, "showTitle", setting.Bool(false)))
	values, err := f.service.Setting(ctx, 1, group.ID, "showTitle", "")
	require.NoError(t, err)
	flag, isBool := values[""].AsBool()
	assert.True(t, isBool)
	assert.False(t, flag)

	require.NoError(t, f.service.UpdateLocalizedSetting(ctx, 1, group.ID, usergroup.SettingName, map[string]setting.Value{
		"fr_CA": setting.String("Gestionnaire"),
		"en_US": setting.String(""),
	}))
	names, err := f.service.Setting(ctx, 1, group.ID, usergroup.SettingName, "")
	require.NoError(t, err)
	assert.Len(t, names, 1)
	assert.Equal(t, "Gestionnaire", names["fr_CA"].Text())

	removed, err := f.service.DeleteSettingsByLocale(ctx, "fr_CA")
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	assertCode(t, f.service.UpdateSetting(ctx, 1, group.ID, "", setting.Int(1)), "VALIDATION_ERROR")
	assertCode(t, f.service.UpdateLocalizedSetting(ctx, 1, group.ID, "name", nil), "VALIDATION_ERROR")
	assert.ErrorIs(t, f.service.UpdateSetting(ctx, 9, group.ID, "showTitle", setting.Bool(true)), usergroup.ErrNotFound)

	_, err = f.service.DeleteSettingsByLocale(ctx, "not a locale")
	assertCode(t, err, "VALIDATION_ERROR")
}

// # Assignments

/*
TestService_AssignUser covers both duplicate policies.
*/
func TestService_AssignUser(t *testing.T) {
	ctx := context.Background()

	t.Run("allow duplicates", func(t *testing.T) {
		f := newFixture(t)
		group := f.createGroup(t, 1, role.Author, "Author")

		for range 2 {
			assigned, err := f.service.AssignUser(ctx, 1, group.ID, 7)
			require.NoError(t, err)
			assert.True(t, assigned)
		}
		assert.Len(t, f.store.state.assignments, 2)
	})

	t.Run("skip duplicates", func(t *testing.T) {
		f := newFixture(t, usergroup.WithAssignmentPolicy(usergroup.SkipDuplicates))
		group := f.createGroup(t, 1, role.Author, "Author")

		assigned, err := f.service.AssignUser(ctx, 1, group.ID, 7)
		require.NoError(t, err)
		assert.True(t, assigned)

		assigned, err = f.service.AssignUser(ctx, 1, group.ID, 7)
		require.NoError(t, err)
		assert.False(t, assigned)
		assert.Len(t, f.store.state.assignments, 1)
	})

	t.Run("rejects foreign group and bad user", func(t *testing.T) {
		f := newFixture(t)
		group := f.createGroup(t, 1, role.Author, "Author")

		_, err := f.service.AssignUser(ctx, 2, group.ID, 7)
		assert.ErrorIs(t, err, usergroup.ErrNotFound)

		_, err = f.service.AssignUser(ctx, 1, group.ID, 0)
		assertCode(t, err, "VALIDATION_ERROR")
	})
}

/*
TestService_RemoveUser verifies duplicates go together and other groups stay.
*/
func TestService_RemoveUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.createGroup(t, 1, role.Author, "Author")
	reader := f.createGroup(t, 1, role.Reader, "Reader")

	for _, groupID := range []int64{author.ID, author.ID, reader.ID} {
		_, err := f.service.AssignUser(ctx, 1, groupID, 7)
		require.NoError(t, err)
	}

	require.NoError(t, f.service.RemoveUser(ctx, 1, author.ID, 7))

	member, err := f.service.UserInGroup(ctx, 7, author.ID)
	require.NoError(t, err)
	assert.False(t, member)

	member, err = f.service.UserInGroup(ctx, 7, reader.ID)
	require.NoError(t, err)
	assert.True(t, member)

	assert.ErrorIs(t, f.service.RemoveUser(ctx, 1, author.ID, 7), usergroup.ErrAssignmentNotFound)
	assert.ErrorIs(t, f.service.RemoveUser(ctx, 2, reader.ID, 7), usergroup.ErrAssignmentNotFound)
	assert.Contains(t, f.publisher.types(), events.UserRemoved)
}

/*
TestService_RemoveUserFromAllGroups verifies memberships in every context go and
other users keep theirs.
*/
func TestService_RemoveUserFromAllGroups(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.createGroup(t, 1, role.Author, "Author")
	second := f.createGroup(t, 2, role.Reader, "Reader")

	for _, pair := range [][3]int64{{1, first.ID, 7}, {2, second.ID, 7}, {1, first.ID, 8}} {
		_, err := f.service.AssignUser(ctx, pair[0], pair[1], pair[2])
		require.NoError(t, err)
	}

	require.NoError(t, f.service.RemoveUserFromAllGroups(ctx, 7))

	inAny, err := f.service.UserInAnyGroup(ctx, 7, nil)
	require.NoError(t, err)
	assert.False(t, inAny)

	inAny, err = f.service.UserInAnyGroup(ctx, 8, nil)
	require.NoError(t, err)
	assert.True(t, inAny)

	last := f.publisher.events[len(f.publisher.events)-1]
	assert.Equal(t, events.UserRemoved, last.Type)
	assert.Equal(t, int64(7), last.UserID)
	assert.Nil(t, last.ContextID)

	assertCode(t, f.service.RemoveUserFromAllGroups(ctx, 0), "VALIDATION_ERROR")
}

/*
TestService_Membership covers counts and the user listings.
*/
func TestService_Membership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.users[7] = &user.User{ID: 7, Username: "ann", LastName: "Smith"}
	f.store.users[8] = &user.User{ID: 8, Username: "bob", LastName: "Jones"}
	f.store.users[9] = &user.User{ID: 9, Username: "eve", LastName: "Adams", Disabled: true}

	author := f.createGroup(t, 1, role.Author, "Author")
	manager := f.createGroup(t, 1, role.Manager, "Manager")
	for _, pair := range [][2]int64{{7, author.ID}, {7, manager.ID}, {8, author.ID}} {
		_, err := f.service.AssignUser(ctx, 1, pair[1], pair[0])
		require.NoError(t, err)
	}

	count, err := f.service.ContextUsersCount(ctx, 1, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	managerRole := role.Manager
	count, err = f.service.ContextUsersCount(ctx, 1, nil, &managerRole)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	users, total, err := f.service.ListUsers(ctx, &author.ID, nil, usergroup.Search{}, pagination.All())
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, users, 2)

	notAuthors, err := f.service.UsersNotInRole(ctx, role.Author, nil, "")
	require.NoError(t, err)
	require.Len(t, notAuthors, 1)
	assert.Equal(t, int64(7), notAuthors[0].ID)

	unassigned, _, err := f.service.UsersWithoutGroups(ctx, usergroup.Search{}, false, pagination.All())
	require.NoError(t, err)
	assert.Empty(t, unassigned)

	unassigned, _, err = f.service.UsersWithoutGroups(ctx, usergroup.Search{}, true, pagination.All())
	require.NoError(t, err)
	require.Len(t, unassigned, 1)
	assert.Equal(t, int64(9), unassigned[0].ID)

	inAny, err := f.service.UserInAnyGroup(ctx, 8, nil)
	require.NoError(t, err)
	assert.True(t, inAny)

	groups, err := f.service.GroupsForUser(ctx, 7, nil)
	require.NoError(t, err)
	assert.Len(t, groups, 2)
}

// # Stages

/*
TestService_Stages covers idempotent assignment, the group stage read, unsupported
stages and ordering.
*/
func TestService_Stages(t *testing.T) {
	f := newFixture(t, usergroup.WithStages(workflow.NewRegistry([]int{1, 3, 4})))
	ctx := context.Background()
	group := f.createGroup(t, 1, role.Manager, "Manager")

	require.NoError(t, f.service.AssignStage(ctx, 1, group.ID, workflow.Editing))
	require.NoError(t, f.service.AssignStage(ctx, 1, group.ID, workflow.Submission))
	require.NoError(t, f.service.AssignStage(ctx, 1, group.ID, workflow.Editing))
	assert.Equal(t, 2, f.store.stageInserts)

	assigned, err := f.service.GroupAssignedToStage(ctx, 1, group.ID, workflow.Editing)
	require.NoError(t, err)
	assert.True(t, assigned)

	assigned, err = f.service.GroupAssignedToStage(ctx, 1, group.ID, workflow.Production)
	require.NoError(t, err)
	assert.False(t, assigned)

	_, err = f.service.GroupAssignedToStage(ctx, 2, group.ID, workflow.Editing)
	assert.ErrorIs(t, err, usergroup.ErrNotFound)

	assertCode(t, f.service.AssignStage(ctx, 1, group.ID, workflow.InternalReview), "VALIDATION_ERROR")
	assert.ErrorIs(t, f.service.AssignStage(ctx, 2, group.ID, workflow.Editing), usergroup.ErrNotFound)

	stages, err := f.service.AssignedStages(ctx, 1, group.ID)
	require.NoError(t, err)
	require.Len(t, stages, 2)
	assert.Equal(t, workflow.Submission, stages[0].ID)
	assert.Equal(t, "editorial", stages[1].Path)

	groups, err := f.service.GroupsForStage(ctx, 1, workflow.Editing, usergroup.StageFilter{})
	require.NoError(t, err)
	assert.Len(t, groups, 1)

	groups, err = f.service.GroupsForStage(ctx, 1, workflow.Editing, usergroup.StageFilter{RoleID: func() *role.ID { r := role.Author; return &r }()})
	require.NoError(t, err)
	assert.Empty(t, groups)

	require.NoError(t, f.service.RemoveStage(ctx, 1, group.ID, workflow.Editing))
	stages, err = f.service.AssignedStages(ctx, 1, group.ID)
	require.NoError(t, err)
	assert.Len(t, stages, 1)

	assertCode(t, f.service.RemoveStage(ctx, 1, group.ID, workflow.Stage(9)), "VALIDATION_ERROR")
	assert.Len(t, f.service.WorkflowStages(), 3)
}

/*
TestService_PublishFailureIsNotReturned verifies a committed mutation succeeds
even when the event bus is down.
*/
func TestService_PublishFailureIsNotReturned(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("bus down")

	group := f.createGroup(t, 1, role.Manager, "Manager")
	assert.NotZero(t, group.ID)
	assert.Equal(t, []events.Type{events.UserGroupCreated}, f.publisher.types())
}
