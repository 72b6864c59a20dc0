// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package usergroup_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/taibuivan/folio/internal/platform/events"
	"github.com/taibuivan/folio/internal/role"
	"github.com/taibuivan/folio/internal/setting"
	"github.com/taibuivan/folio/internal/user"
	"github.com/taibuivan/folio/internal/usergroup"
	"github.com/taibuivan/folio/internal/workflow"
	"github.com/taibuivan/folio/pkg/pagination"
)

// # In-Memory Store

type stageKey struct {
	contextID int64
	groupID   int64
}

type memoryState struct {
	nextID      int64
	groups      map[int64]*usergroup.UserGroup
	assignments []usergroup.Assignment
	stages      map[stageKey]map[workflow.Stage]bool
}

func (state memoryState) clone() memoryState {
	out := memoryState{
		nextID:      state.nextID,
		groups:      make(map[int64]*usergroup.UserGroup, len(state.groups)),
		assignments: append([]usergroup.Assignment(nil), state.assignments...),
		stages:      make(map[stageKey]map[workflow.Stage]bool, len(state.stages)),
	}
	for id, group := range state.groups {
		out.groups[id] = cloneGroup(group)
	}
	for key, set := range state.stages {
		copied := make(map[workflow.Stage]bool, len(set))
		for stage := range set {
			copied[stage] = true
		}
		out.stages[key] = copied
	}
	return out
}

// memoryStore implements both repositories over maps. WithTx restores a
// snapshot when fn fails.
type memoryStore struct {
	mu    sync.Mutex
	state memoryState
	users map[int64]*user.User

	stageInserts int
	failInsertID int64
}

var errInsertFailed = errors.New("insert failed")

func newMemoryStore() *memoryStore {
	return &memoryStore{
		state: memoryState{
			groups: map[int64]*usergroup.UserGroup{},
			stages: map[stageKey]map[workflow.Stage]bool{},
		},
		users: map[int64]*user.User{},
	}
}

func cloneGroup(group *usergroup.UserGroup) *usergroup.UserGroup {
	copied := *group
	copied.Settings = setting.Map{}
	for name, values := range group.Settings {
		for locale, value := range values {
			copied.Settings.Set(name, locale, value)
		}
	}
	return &copied
}

func (store *memoryStore) WithTx(_ context.Context, fn func(usergroup.Repository) error) error {
	store.mu.Lock()
	snapshot := store.state.clone()
	store.mu.Unlock()

	if err := fn(store); err != nil {
		store.mu.Lock()
		store.state = snapshot
		store.mu.Unlock()
		return err
	}
	return nil
}

func (store *memoryStore) Insert(_ context.Context, group *usergroup.UserGroup) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.failInsertID != 0 && store.state.nextID+1 == store.failInsertID {
		return errInsertFailed
	}

	store.state.nextID++
	group.ID = store.state.nextID
	stored := cloneGroup(group)
	stored.Settings = localizedOnly(group.Settings)
	store.state.groups[group.ID] = stored
	return nil
}

func localizedOnly(m setting.Map) setting.Map {
	out := setting.Map{}
	for _, name := range usergroup.LocalizedFields {
		for locale, value := range m[name] {
			if !value.Empty() {
				out.Set(name, locale, value)
			}
		}
	}
	return out
}

func (store *memoryStore) Update(_ context.Context, group *usergroup.UserGroup) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	stored, ok := store.state.groups[group.ID]
	if !ok {
		return usergroup.ErrNotFound
	}
	stored.RoleID, stored.ContextID, stored.Path, stored.IsDefault = group.RoleID, group.ContextID, group.Path, group.IsDefault
	store.replaceLocalized(stored, group.Settings)
	return nil
}

func (store *memoryStore) UpdateLocaleFields(_ context.Context, group *usergroup.UserGroup) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	stored, ok := store.state.groups[group.ID]
	if !ok {
		return usergroup.ErrNotFound
	}
	store.replaceLocalized(stored, group.Settings)
	return nil
}

func (store *memoryStore) replaceLocalized(stored *usergroup.UserGroup, m setting.Map) {
	for _, name := range usergroup.LocalizedFields {
		for locale, value := range m[name] {
			delete(stored.Settings[name], locale)
			if !value.Empty() {
				stored.Settings.Set(name, locale, value)
			}
		}
	}
}

func (store *memoryStore) FindByID(_ context.Context, id int64, contextID *int64) (*usergroup.UserGroup, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	group, ok := store.state.groups[id]
	if !ok || (contextID != nil && group.ContextID != *contextID) {
		return nil, usergroup.ErrNotFound
	}
	return cloneGroup(group), nil
}

func (store *memoryStore) DefaultByRole(ctx context.Context, contextID int64, roleID role.ID) (*usergroup.UserGroup, error) {
	groups, _ := store.ListByRole(ctx, contextID, roleID, true)
	if len(groups) == 0 {
		return nil, usergroup.ErrNotFound
	}
	return groups[0], nil
}

func (store *memoryStore) ListByRole(ctx context.Context, contextID int64, roleID role.ID, onlyDefault bool) ([]*usergroup.UserGroup, error) {
	filter := usergroup.Filter{ContextID: &contextID, RoleID: &roleID}
	if onlyDefault {
		yes := true
		filter.IsDefault = &yes
	}
	return store.List(ctx, filter)
}

func (store *memoryStore) IDsByRole(ctx context.Context, roleID role.ID, contextID *int64) ([]int64, error) {
	groups, _ := store.List(ctx, usergroup.Filter{ContextID: contextID, RoleID: &roleID})
	ids := []int64{}
	for _, group := range groups {
		ids = append(ids, group.ID)
	}
	return ids, nil
}

func (store *memoryStore) ListByUser(ctx context.Context, userID int64, contextID *int64) ([]*usergroup.UserGroup, error) {
	return store.List(ctx, usergroup.Filter{UserID: &userID, ContextID: contextID})
}

func (store *memoryStore) ListByContext(ctx context.Context, contextID *int64) ([]*usergroup.UserGroup, error) {
	return store.List(ctx, usergroup.Filter{ContextID: contextID})
}

func (store *memoryStore) ListByStage(ctx context.Context, contextID int64, stage workflow.Stage, filter usergroup.StageFilter) ([]*usergroup.UserGroup, error) {
	return store.List(ctx, usergroup.Filter{
		ContextID:     &contextID,
		Stage:         &stage,
		RoleID:        filter.RoleID,
		OmitAuthors:   filter.OmitAuthors,
		OmitReviewers: filter.OmitReviewers,
	})
}

func (store *memoryStore) List(_ context.Context, filter usergroup.Filter) ([]*usergroup.UserGroup, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	groups := []*usergroup.UserGroup{}
	for _, group := range store.state.groups {
		if store.matches(group, filter) {
			groups = append(groups, cloneGroup(group))
		}
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].RoleID != groups[j].RoleID {
			return groups[i].RoleID < groups[j].RoleID
		}
		return groups[i].ID < groups[j].ID
	})
	return groups, nil
}

func (store *memoryStore) matches(group *usergroup.UserGroup, filter usergroup.Filter) bool {
	switch {
	case filter.ContextID != nil && group.ContextID != *filter.ContextID:
		return false
	case filter.RoleID != nil && group.RoleID != *filter.RoleID:
		return false
	case filter.IsDefault != nil && group.IsDefault != *filter.IsDefault:
		return false
	case filter.OmitAuthors && group.RoleID == role.Author:
		return false
	case filter.OmitReviewers && group.RoleID == role.Reviewer:
		return false
	case filter.Stage != nil && !store.state.stages[stageKey{group.ContextID, group.ID}][*filter.Stage]:
		return false
	}
	if filter.UserID != nil {
		for _, assignment := range store.state.assignments {
			if assignment.UserID == *filter.UserID && assignment.UserGroupID == group.ID {
				return true
			}
		}
		return false
	}
	return true
}

func (store *memoryStore) ContextHasGroup(_ context.Context, contextID, groupID int64) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	group, ok := store.state.groups[groupID]
	return ok && group.ContextID == contextID, nil
}

func (store *memoryStore) ContextUsersCount(_ context.Context, contextID int64, groupID *int64, roleID *role.ID) (int, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	seen := map[int64]bool{}
	for _, assignment := range store.state.assignments {
		group, ok := store.state.groups[assignment.UserGroupID]
		if !ok || group.ContextID != contextID {
			continue
		}
		if (groupID != nil && group.ID != *groupID) || (roleID != nil && group.RoleID != *roleID) {
			continue
		}
		seen[assignment.UserID] = true
	}
	return len(seen), nil
}

func (store *memoryStore) DeleteByID(_ context.Context, contextID, id int64) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	group, ok := store.state.groups[id]
	if !ok || group.ContextID != contextID {
		return usergroup.ErrNotFound
	}
	delete(store.state.groups, id)
	delete(store.state.stages, stageKey{contextID, id})
	store.state.assignments = withoutAssignments(store.state.assignments, func(a usergroup.Assignment) bool {
		return a.UserGroupID == id
	})
	return nil
}

func (store *memoryStore) DeleteByContextID(_ context.Context, contextID int64) (int64, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	var removed int64
	for id, group := range store.state.groups {
		if group.ContextID != contextID {
			continue
		}
		delete(store.state.groups, id)
		delete(store.state.stages, stageKey{contextID, id})
		store.state.assignments = withoutAssignments(store.state.assignments, func(a usergroup.Assignment) bool {
			return a.UserGroupID == id
		})
		removed++
	}
	return removed, nil
}

func withoutAssignments(assignments []usergroup.Assignment, drop func(usergroup.Assignment) bool) []usergroup.Assignment {
	kept := assignments[:0]
	for _, assignment := range assignments {
		if !drop(assignment) {
			kept = append(kept, assignment)
		}
	}
	return kept
}

func (store *memoryStore) UserInGroup(_ context.Context, userID, groupID int64) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	for _, assignment := range store.state.assignments {
		if assignment.UserID == userID && assignment.UserGroupID == groupID {
			return true, nil
		}
	}
	return false, nil
}

func (store *memoryStore) UserInAnyGroup(ctx context.Context, userID int64, contextID *int64) (bool, error) {
	groups, _ := store.ListByUser(ctx, userID, contextID)
	return len(groups) > 0, nil
}

func (store *memoryStore) UsersByGroup(_ context.Context, groupID, contextID *int64, _ usergroup.Search, _ pagination.Params) ([]*user.User, int, error) {
	if groupID == nil && contextID == nil {
		return []*user.User{}, 0, nil
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	seen := map[int64]bool{}
	users := []*user.User{}
	for _, assignment := range store.state.assignments {
		group := store.state.groups[assignment.UserGroupID]
		if group == nil || seen[assignment.UserID] {
			continue
		}
		if (groupID != nil && group.ID != *groupID) || (contextID != nil && group.ContextID != *contextID) {
			continue
		}
		if u, ok := store.users[assignment.UserID]; ok {
			seen[u.ID] = true
			users = append(users, u)
		}
	}
	return users, len(users), nil
}

func (store *memoryStore) UsersNotInRole(_ context.Context, roleID role.ID, contextID *int64, _ string) ([]*user.User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	seen := map[int64]bool{}
	users := []*user.User{}
	for _, assignment := range store.state.assignments {
		group := store.state.groups[assignment.UserGroupID]
		if group == nil || group.RoleID == roleID || seen[assignment.UserID] {
			continue
		}
		if contextID != nil && group.ContextID != *contextID {
			continue
		}
		if u, ok := store.users[assignment.UserID]; ok {
			seen[u.ID] = true
			users = append(users, u)
		}
	}
	return users, nil
}

func (store *memoryStore) UsersWithoutGroups(_ context.Context, _ usergroup.Search, allowDisabled bool, _ pagination.Params) ([]*user.User, int, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	assigned := map[int64]bool{}
	for _, assignment := range store.state.assignments {
		assigned[assignment.UserID] = true
	}

	users := []*user.User{}
	for _, u := range store.users {
		if !assigned[u.ID] && (allowDisabled || !u.Disabled) {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, len(users), nil
}

func (store *memoryStore) AssignStage(_ context.Context, contextID, groupID int64, stage workflow.Stage) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	key := stageKey{contextID, groupID}
	if store.state.stages[key] == nil {
		store.state.stages[key] = map[workflow.Stage]bool{}
	}
	store.state.stages[key][stage] = true
	store.stageInserts++
	return nil
}

func (store *memoryStore) RemoveStage(_ context.Context, contextID, groupID int64, stage workflow.Stage) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	delete(store.state.stages[stageKey{contextID, groupID}], stage)
	return nil
}

func (store *memoryStore) RemoveAllStages(_ context.Context, contextID, groupID int64) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	delete(store.state.stages, stageKey{contextID, groupID})
	return nil
}

func (store *memoryStore) AssignedStages(_ context.Context, contextID, groupID int64) (map[workflow.Stage]string, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	assigned := map[workflow.Stage]string{}
	for stage := range store.state.stages[stageKey{contextID, groupID}] {
		assigned[stage] = stage.TranslationKey()
	}
	return assigned, nil
}

func (store *memoryStore) GroupAssignedToStage(_ context.Context, groupID int64, stage workflow.Stage) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	for key, set := range store.state.stages {
		if key.groupID == groupID && set[stage] {
			return true, nil
		}
	}
	return false, nil
}

func (store *memoryStore) UserAssignedToStage(_ context.Context, contextID, userID int64, stage workflow.Stage) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	for _, assignment := range store.state.assignments {
		if assignment.UserID == userID && store.state.stages[stageKey{contextID, assignment.UserGroupID}][stage] {
			return true, nil
		}
	}
	return false, nil
}

func (store *memoryStore) UpdateSetting(_ context.Context, groupID int64, name string, value setting.Value) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	group, ok := store.state.groups[groupID]
	if !ok {
		return usergroup.ErrNotFound
	}
	group.Settings.Set(name, "", value)
	return nil
}

func (store *memoryStore) UpdateLocalizedSetting(_ context.Context, groupID int64, name string, values map[string]setting.Value) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	group, ok := store.state.groups[groupID]
	if !ok {
		return usergroup.ErrNotFound
	}
	for locale, value := range values {
		delete(group.Settings[name], locale)
		if !value.Empty() {
			group.Settings.Set(name, locale, value)
		}
	}
	return nil
}

func (store *memoryStore) Setting(_ context.Context, groupID int64, name, locale string) (map[string]setting.Value, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	values := map[string]setting.Value{}
	group, ok := store.state.groups[groupID]
	if !ok {
		return values, nil
	}
	for loc, value := range group.Settings[name] {
		if locale == "" || loc == locale {
			values[loc] = value
		}
	}
	return values, nil
}

func (store *memoryStore) DeleteSettingsByLocale(_ context.Context, locale string) (int64, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	var removed int64
	for _, group := range store.state.groups {
		for _, values := range group.Settings {
			if _, ok := values[locale]; ok {
				delete(values, locale)
				removed++
			}
		}
	}
	return removed, nil
}

// # In-Memory Assignments

// memoryAssignments adapts memoryStore to [usergroup.AssignmentRepository].
type memoryAssignments struct {
	store *memoryStore
}

func (repo memoryAssignments) WithTx(ctx context.Context, fn func(usergroup.AssignmentRepository) error) error {
	return repo.store.WithTx(ctx, func(usergroup.Repository) error { return fn(repo) })
}

func (repo memoryAssignments) Insert(_ context.Context, assignment usergroup.Assignment) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	repo.store.state.assignments = append(repo.store.state.assignments, assignment)
	return nil
}

func (repo memoryAssignments) ListByUser(_ context.Context, userID int64, contextID *int64) ([]usergroup.Assignment, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	out := []usergroup.Assignment{}
	for _, assignment := range repo.store.state.assignments {
		group := repo.store.state.groups[assignment.UserGroupID]
		if assignment.UserID != userID || group == nil {
			continue
		}
		if contextID != nil && group.ContextID != *contextID {
			continue
		}
		out = append(out, assignment)
	}
	return out, nil
}

func (repo memoryAssignments) Delete(_ context.Context, target usergroup.Assignment) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	repo.store.state.assignments = withoutAssignments(repo.store.state.assignments, func(a usergroup.Assignment) bool {
		return a == target
	})
	return nil
}

func (repo memoryAssignments) DeleteByUser(_ context.Context, userID int64, groupID *int64) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	repo.store.state.assignments = withoutAssignments(repo.store.state.assignments, func(a usergroup.Assignment) bool {
		return a.UserID == userID && (groupID == nil || a.UserGroupID == *groupID)
	})
	return nil
}

func (repo memoryAssignments) DeleteByUserGroup(_ context.Context, groupID int64) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	repo.store.state.assignments = withoutAssignments(repo.store.state.assignments, func(a usergroup.Assignment) bool {
		return a.UserGroupID == groupID
	})
	return nil
}

func (repo memoryAssignments) DeleteByContext(_ context.Context, contextID int64, userID *int64) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	repo.store.state.assignments = withoutAssignments(repo.store.state.assignments, func(a usergroup.Assignment) bool {
		group := repo.store.state.groups[a.UserGroupID]
		return group != nil && group.ContextID == contextID && (userID == nil || a.UserID == *userID)
	})
	return nil
}

// # Publisher

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (publisher *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	publisher.mu.Lock()
	defer publisher.mu.Unlock()

	publisher.events = append(publisher.events, event)
	return publisher.err
}

func (publisher *recordingPublisher) types() []events.Type {
	publisher.mu.Lock()
	defer publisher.mu.Unlock()

	out := make([]events.Type, len(publisher.events))
	for i, event := range publisher.events {
		out[i] = event.Type
	}
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
