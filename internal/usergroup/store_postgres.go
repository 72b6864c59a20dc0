// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package usergroup

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/folio/internal/platform/database/schema"
	"github.com/taibuivan/folio/internal/platform/dberr"
	"github.com/taibuivan/folio/internal/platform/postgres"
	"github.com/taibuivan/folio/internal/role"
	"github.com/taibuivan/folio/internal/setting"
	"github.com/taibuivan/folio/internal/user"
	"github.com/taibuivan/folio/internal/workflow"
	"github.com/taibuivan/folio/pkg/pagination"
	"github.com/taibuivan/folio/pkg/pointer"
)

// RowHook runs on every group mapped from a row, after its settings are attached.
// An error aborts the read.
type RowHook func(context context.Context, group *UserGroup) error

// QueryObserver receives the latency and outcome of repository operations.
type QueryObserver interface {
	ObserveQuery(operation string, elapsed time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveQuery(string, time.Duration, error) {}

// Option configures a [PostgresRepository].
type Option func(*PostgresRepository)

// WithRowHooks registers hooks run on each mapped group.
func WithRowHooks(hooks ...RowHook) Option {
	return func(repository *PostgresRepository) {
		repository.hooks = append(repository.hooks, hooks...)
	}
}

// WithQueryObserver reports operation timings to observer.
func WithQueryObserver(observer QueryObserver) Option {
	return func(repository *PostgresRepository) {
		if observer != nil {
			repository.observer = observer
		}
	}
}

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db       postgres.DBTX
	settings *setting.Store
	hooks    []RowHook
	observer QueryObserver
}

// NewPostgresRepository constructs a PostgreSQL backed user group store.
func NewPostgresRepository(db postgres.DBTX, options ...Option) *PostgresRepository {
	repository := &PostgresRepository{
		db:       db,
		settings: setting.NewStore(schema.UserGroupSetting),
		observer: nopObserver{},
	}
	for _, option := range options {
		option(repository)
	}
	return repository
}

// withDB returns a copy bound to db, sharing hooks and observer.
func (repository *PostgresRepository) withDB(db postgres.DBTX) *PostgresRepository {
	clone := *repository
	clone.db = db
	return &clone
}

func (repository *PostgresRepository) observe(operation string, start time.Time, err *error) {
	repository.observer.ObserveQuery(operation, time.Since(start), *err)
}

// WithTx implements [Repository].
func (repository *PostgresRepository) WithTx(context context.Context, fn func(Repository) error) error {
	return postgres.WithTx(context, repository.db, func(tx pgx.Tx) error {
		return fn(repository.withDB(tx))
	})
}

// # Group Writes

/*
Insert persists a new group and its localized fields in one transaction.

Parameters:
  - context: context.Context
  - group: *UserGroup

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) Insert(context context.Context, group *UserGroup) (err error) {
	defer repository.observe("insert_user_group", time.Now(), &err)

	t := schema.UserGroup
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
		RETURNING %s`,
		t.Table, t.RoleID, t.ContextID, t.Path, t.IsDefault,
		t.ID,
	)

	return postgres.WithTx(context, repository.db, func(tx pgx.Tx) error {
		var id int64
		if err := tx.QueryRow(context, query, int64(group.RoleID), group.ContextID, group.Path, group.IsDefault).Scan(&id); err != nil {
			return dberr.Wrap(err, "insert_user_group")
		}
		if err := repository.settings.ReplaceAll(context, tx, id, group.Settings, LocalizedFields...); err != nil {
			return err
		}
		group.ID = id
		return nil
	})
}

// Update rewrites the group row and its localized fields in one transaction.
func (repository *PostgresRepository) Update(context context.Context, group *UserGroup) (err error) {
	defer repository.observe("update_user_group", time.Now(), &err)

	t := schema.UserGroup
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $1, %s = $2, %s = $3, %s = $4
		WHERE %s = $5`,
		t.Table,
		t.RoleID, t.ContextID, t.Path, t.IsDefault,
		t.ID,
	)

	return postgres.WithTx(context, repository.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(context, query, int64(group.RoleID), group.ContextID, group.Path, group.IsDefault, group.ID)
		if err != nil {
			return dberr.Wrap(err, "update_user_group")
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return repository.settings.ReplaceAll(context, tx, group.ID, group.Settings, LocalizedFields...)
	})
}

// UpdateLocaleFields implements [Repository]. Only the localized name and
// abbreviation are rewritten; the group row is left alone.
func (repository *PostgresRepository) UpdateLocaleFields(context context.Context, group *UserGroup) (err error) {
	defer repository.observe("update_user_group_locale_fields", time.Now(), &err)

	return postgres.WithTx(context, repository.db, func(tx pgx.Tx) error {
		return repository.settings.ReplaceAll(context, tx, group.ID, group.Settings, LocalizedFields...)
	})
}

// # Group Retrieval

// FindByID implements [Repository].
func (repository *PostgresRepository) FindByID(context context.Context, id int64, contextID *int64) (group *UserGroup, err error) {
	defer repository.observe("find_user_group", time.Now(), &err)

	s := &statement{}
	selectGroups(s)
	s.where("ug."+schema.UserGroup.ID+" = ?", id)
	if contextID != nil {
		s.where("ug."+schema.UserGroup.ContextID+" = ?", *contextID)
	}

	groups, err := repository.query(context, s)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, ErrNotFound
	}
	return groups[0], nil
}

// DefaultByRole implements [Repository].
func (repository *PostgresRepository) DefaultByRole(context context.Context, contextID int64, roleID role.ID) (*UserGroup, error) {
	groups, err := repository.ListByRole(context, contextID, roleID, true)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, ErrNotFound
	}
	return groups[0], nil
}

// ListByRole implements [Repository].
func (repository *PostgresRepository) ListByRole(context context.Context, contextID int64, roleID role.ID, onlyDefault bool) ([]*UserGroup, error) {
	filter := Filter{ContextID: &contextID, RoleID: &roleID}
	if onlyDefault {
		filter.IsDefault = pointer.To(true)
	}
	return repository.List(context, filter)
}

// ListByUser implements [Repository].
func (repository *PostgresRepository) ListByUser(context context.Context, userID int64, contextID *int64) ([]*UserGroup, error) {
	return repository.List(context, Filter{UserID: &userID, ContextID: contextID})
}

// ListByContext implements [Repository].
func (repository *PostgresRepository) ListByContext(context context.Context, contextID *int64) ([]*UserGroup, error) {
	return repository.List(context, Filter{ContextID: contextID})
}

// ListByStage implements [Repository].
func (repository *PostgresRepository) ListByStage(context context.Context, contextID int64, stage workflow.Stage, filter StageFilter) ([]*UserGroup, error) {
	return repository.List(context, Filter{
		ContextID:     &contextID,
		Stage:         &stage,
		RoleID:        filter.RoleID,
		OmitAuthors:   filter.OmitAuthors,
		OmitReviewers: filter.OmitReviewers,
	})
}

/*
List returns the groups matching filter, ordered by role then id.

Parameters:
  - context: context.Context
  - filter: Filter

Returns:
  - []*UserGroup: Hydrated groups with settings
  - error: Retrieval failures
*/
func (repository *PostgresRepository) List(context context.Context, filter Filter) (groups []*UserGroup, err error) {
	defer repository.observe("list_user_groups", time.Now(), &err)

	s := &statement{}
	selectGroups(s)
	filter.apply(s)
	s.write(groupOrder)

	return repository.query(context, s)
}

// IDsByRole implements [Repository].
func (repository *PostgresRepository) IDsByRole(context context.Context, roleID role.ID, contextID *int64) ([]int64, error) {
	t := schema.UserGroup
	s := &statement{}
	s.write(fmt.Sprintf("SELECT ug.%s FROM %s ug", t.ID, t.Table))
	s.where("ug."+t.RoleID+" = ?", int64(roleID))
	if contextID != nil {
		s.where("ug."+t.ContextID+" = ?", *contextID)
	}
	s.write(" ORDER BY ug." + t.ID)

	rows, err := repository.db.Query(context, s.String(), s.Args()...)
	if err != nil {
		return nil, dberr.Wrap(err, "list_user_group_ids")
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, dberr.Wrap(err, "scan_user_group_id")
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "iterate_user_group_ids")
	}
	return ids, nil
}

// ContextHasGroup implements [Repository].
func (repository *PostgresRepository) ContextHasGroup(context context.Context, contextID, groupID int64) (bool, error) {
	t := schema.UserGroup
	s := &statement{}
	s.write("SELECT COUNT(*) FROM " + t.Table + " ug")
	s.where("ug."+t.ID+" = ?", groupID)
	s.where("ug."+t.ContextID+" = ?", contextID)

	count, err := repository.count(context, s, "context_has_group")
	return count > 0, err
}

// ContextUsersCount implements [Repository].
func (repository *PostgresRepository) ContextUsersCount(context context.Context, contextID int64, groupID *int64, roleID *role.ID) (total int, err error) {
	defer repository.observe("context_users_count", time.Now(), &err)

	ug := schema.UserGroup
	uug := schema.UserUserGroup
	s := &statement{}
	s.write(fmt.Sprintf("SELECT COUNT(DISTINCT uug.%s) FROM %s ug JOIN %s uug ON (uug.%s = ug.%s)",
		uug.UserID, ug.Table, uug.Table, uug.UserGroupID, ug.ID))
	s.where("ug."+ug.ContextID+" = ?", contextID)
	if groupID != nil {
		s.where("ug."+ug.ID+" = ?", *groupID)
	}
	if roleID != nil {
		s.where("ug."+ug.RoleID+" = ?", int64(*roleID))
	}

	count, err := repository.count(context, s, "context_users_count")
	return int(count), err
}

// # Deletion

// DeleteByID implements [Repository].
func (repository *PostgresRepository) DeleteByID(context context.Context, contextID, id int64) (err error) {
	defer repository.observe("delete_user_group", time.Now(), &err)

	t := schema.UserGroup
	deleteGroup := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`, t.Table, t.ID, t.ContextID)

	return postgres.WithTx(context, repository.db, func(tx pgx.Tx) error {
		if err := NewPostgresAssignmentRepository(tx).DeleteByUserGroup(context, id); err != nil {
			return err
		}
		if err := repository.settings.DeleteAll(context, tx, id); err != nil {
			return err
		}

		tag, err := tx.Exec(context, deleteGroup, id, contextID)
		if err != nil {
			return dberr.Wrap(err, "delete_user_group")
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}

		return repository.withDB(tx).RemoveAllStages(context, contextID, id)
	})
}

/*
DeleteByContextID removes every group of a context in one transaction.

Stage assignments, user assignments and settings of those groups go first, then
the group rows.

Returns:
  - int64: Number of groups removed
  - error: Persistence failures
*/
func (repository *PostgresRepository) DeleteByContextID(context context.Context, contextID int64) (removed int64, err error) {
	defer repository.observe("delete_context_user_groups", time.Now(), &err)

	ug := schema.UserGroup
	ugs := schema.UserGroupStage
	ugSettings := schema.UserGroupSetting

	owned := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1", ug.ID, ug.Table, ug.ContextID)
	stages := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", ugs.Table, ugs.ContextID)
	settings := fmt.Sprintf("DELETE FROM %s WHERE %s IN (%s)", ugSettings.Table, ugSettings.OwnerID, owned)

	err = postgres.WithTx(context, repository.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(context, stages, contextID); err != nil {
			return dberr.Wrap(err, "delete_context_stages")
		}
		if err := NewPostgresAssignmentRepository(tx).DeleteByContext(context, contextID, nil); err != nil {
			return err
		}
		if _, err := tx.Exec(context, settings, contextID); err != nil {
			return dberr.Wrap(err, "delete_context_settings")
		}

		tag, err := tx.Exec(context, fmt.Sprintf("DELETE FROM %s WHERE %s = $1", ug.Table, ug.ContextID), contextID)
		if err != nil {
			return dberr.Wrap(err, "delete_context_user_groups")
		}
		removed = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// # Membership

// UserInGroup implements [Repository].
func (repository *PostgresRepository) UserInGroup(context context.Context, userID, groupID int64) (bool, error) {
	s := repository.membershipCount()
	s.where("uug."+schema.UserUserGroup.UserID+" = ?", userID)
	s.where("ug."+schema.UserGroup.ID+" = ?", groupID)

	count, err := repository.count(context, s, "user_in_group")
	return count > 0, err
}

// UserInAnyGroup implements [Repository].
func (repository *PostgresRepository) UserInAnyGroup(context context.Context, userID int64, contextID *int64) (bool, error) {
	s := repository.membershipCount()
	s.where("uug."+schema.UserUserGroup.UserID+" = ?", userID)
	if contextID != nil {
		s.where("ug."+schema.UserGroup.ContextID+" = ?", *contextID)
	}

	count, err := repository.count(context, s, "user_in_any_group")
	return count > 0, err
}

func (repository *PostgresRepository) membershipCount() *statement {
	ug := schema.UserGroup
	uug := schema.UserUserGroup
	s := &statement{}
	s.write(fmt.Sprintf("SELECT COUNT(*) FROM %s ug JOIN %s uug ON (uug.%s = ug.%s)",
		ug.Table, uug.Table, uug.UserGroupID, ug.ID))
	return s
}

// UsersByGroup implements [Repository].
func (repository *PostgresRepository) UsersByGroup(context context.Context, groupID, contextID *int64, search Search, page pagination.Params) (users []*user.User, total int, err error) {

	// Listing every user of every context is never allowed.
	if groupID == nil && contextID == nil {
		return []*user.User{}, 0, nil
	}

	defer repository.observe("users_by_group", time.Now(), &err)

	build := func(page pagination.Params) *statement {
		s := &statement{}
		selectUsers(s, true)
		if groupID != nil {
			s.where("ug."+schema.UserGroup.ID+" = ?", *groupID)
		}
		if contextID != nil {
			s.where("ug."+schema.UserGroup.ContextID+" = ?", *contextID)
		}
		search.apply(s)
		groupUsers(s, page)
		return s
	}
	return repository.pageUsers(context, build, page, "users_by_group")
}

// UsersNotInRole implements [Repository].
func (repository *PostgresRepository) UsersNotInRole(context context.Context, roleID role.ID, contextID *int64, text string) (users []*user.User, err error) {
	defer repository.observe("users_not_in_role", time.Now(), &err)

	s := &statement{}
	selectUsers(s, true)
	s.where("ug."+schema.UserGroup.RoleID+" <> ?", int64(roleID))
	if contextID != nil {
		s.where("ug."+schema.UserGroup.ContextID+" = ?", *contextID)
	}
	if text != "" {
		term := "%" + text + "%"
		s.where(`(LOWER(u.first_name) LIKE LOWER(?) OR LOWER(COALESCE(u.middle_name, '')) LIKE LOWER(?)
			OR LOWER(u.last_name) LIKE LOWER(?) OR LOWER(u.email) LIKE LOWER(?) OR LOWER(u.username) LIKE LOWER(?))`,
			term, term, term, term, term)
	}
	groupUsers(s, pagination.All())

	users, _, err = repository.queryUsers(context, s, "users_not_in_role")
	return users, err
}

// UsersWithoutGroups implements [Repository].
func (repository *PostgresRepository) UsersWithoutGroups(context context.Context, search Search, allowDisabled bool, page pagination.Params) (users []*user.User, total int, err error) {
	defer repository.observe("users_without_groups", time.Now(), &err)

	build := func(page pagination.Params) *statement {
		s := &statement{}
		selectUsers(s, false)
		s.where("uug." + schema.UserUserGroup.UserGroupID + " IS NULL")
		if !allowDisabled {
			s.where("u." + schema.User.Disabled + " = FALSE")
		}
		search.apply(s)
		groupUsers(s, page)
		return s
	}
	return repository.pageUsers(context, build, page, "users_without_groups")
}

// # Stages

// AssignStage implements [Repository].
func (repository *PostgresRepository) AssignStage(context context.Context, contextID, groupID int64, stage workflow.Stage) error {
	t := schema.UserGroupStage
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, $3)`,
		t.Table, t.ContextID, t.UserGroupID, t.StageID)

	_, err := repository.db.Exec(context, query, contextID, groupID, int(stage))
	return dberr.Wrap(err, "assign_stage")
}

// RemoveStage implements [Repository].
func (repository *PostgresRepository) RemoveStage(context context.Context, contextID, groupID int64, stage workflow.Stage) error {
	t := schema.UserGroupStage
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2 AND %s = $3`,
		t.Table, t.ContextID, t.UserGroupID, t.StageID)

	_, err := repository.db.Exec(context, query, contextID, groupID, int(stage))
	return dberr.Wrap(err, "remove_stage")
}

// RemoveAllStages implements [Repository].
func (repository *PostgresRepository) RemoveAllStages(context context.Context, contextID, groupID int64) error {
	t := schema.UserGroupStage
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`, t.Table, t.ContextID, t.UserGroupID)

	_, err := repository.db.Exec(context, query, contextID, groupID)
	return dberr.Wrap(err, "remove_all_stages")
}

// AssignedStages implements [Repository].
func (repository *PostgresRepository) AssignedStages(context context.Context, contextID, groupID int64) (map[workflow.Stage]string, error) {
	t := schema.UserGroupStage
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2 ORDER BY %s`,
		t.StageID, t.Table, t.ContextID, t.UserGroupID, t.StageID)

	rows, err := repository.db.Query(context, query, contextID, groupID)
	if err != nil {
		return nil, dberr.Wrap(err, "assigned_stages")
	}
	defer rows.Close()

	assigned := make(map[workflow.Stage]string)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, dberr.Wrap(err, "scan_stage")
		}
		stage := workflow.Stage(id)
		assigned[stage] = stage.TranslationKey()
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "iterate_stages")
	}
	return assigned, nil
}

// GroupAssignedToStage implements [Repository].
func (repository *PostgresRepository) GroupAssignedToStage(context context.Context, groupID int64, stage workflow.Stage) (bool, error) {
	t := schema.UserGroupStage
	s := &statement{}
	s.write("SELECT COUNT(*) FROM " + t.Table)
	s.where(t.UserGroupID+" = ?", groupID)
	s.where(t.StageID+" = ?", int(stage))

	count, err := repository.count(context, s, "group_assigned_to_stage")
	return count > 0, err
}

// UserAssignedToStage implements [Repository].
func (repository *PostgresRepository) UserAssignedToStage(context context.Context, contextID, userID int64, stage workflow.Stage) (bool, error) {
	ugs := schema.UserGroupStage
	uug := schema.UserUserGroup
	s := &statement{}
	s.write(fmt.Sprintf("SELECT COUNT(*) FROM %s ugs JOIN %s uug ON (uug.%s = ugs.%s)",
		ugs.Table, uug.Table, uug.UserGroupID, ugs.UserGroupID))
	s.where("ugs."+ugs.ContextID+" = ?", contextID)
	s.where("uug."+uug.UserID+" = ?", userID)
	s.where("ugs."+ugs.StageID+" = ?", int(stage))

	count, err := repository.count(context, s, "user_assigned_to_stage")
	return count > 0, err
}

// # Settings

// UpdateSetting implements [Repository].
func (repository *PostgresRepository) UpdateSetting(context context.Context, groupID int64, name string, value setting.Value) error {
	return repository.settings.Replace(context, repository.db, groupID, name, "", value)
}

// UpdateLocalizedSetting implements [Repository].
func (repository *PostgresRepository) UpdateLocalizedSetting(context context.Context, groupID int64, name string, values map[string]setting.Value) error {
	return repository.settings.ReplaceLocalized(context, repository.db, groupID, name, values)
}

// Setting implements [Repository].
func (repository *PostgresRepository) Setting(context context.Context, groupID int64, name, locale string) (map[string]setting.Value, error) {
	return repository.settings.Get(context, repository.db, groupID, name, locale)
}

// DeleteSettingsByLocale implements [Repository].
func (repository *PostgresRepository) DeleteSettingsByLocale(context context.Context, locale string) (int64, error) {
	return repository.settings.DeleteByLocale(context, repository.db, locale)
}

// # Row Mapping

// query runs a group SELECT, maps every row, then attaches settings and runs hooks.
// Settings are loaded only after the group cursor is closed.
func (repository *PostgresRepository) query(context context.Context, s *statement) ([]*UserGroup, error) {
	rows, err := repository.db.Query(context, s.String(), s.Args()...)
	if err != nil {
		return nil, dberr.Wrap(err, "query_user_groups")
	}

	groups := []*UserGroup{}
	for rows.Next() {
		group, err := scanUserGroup(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		groups = append(groups, group)
	}
	rows.Close()

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "iterate_user_groups")
	}

	if err := repository.attachSettings(context, groups); err != nil {
		return nil, err
	}

	for _, group := range groups {
		for _, hook := range repository.hooks {
			if err := hook(context, group); err != nil {
				return nil, err
			}
		}
	}
	return groups, nil
}

func scanUserGroup(row pgx.Row) (*UserGroup, error) {
	var (
		id, roleID, contextID int64
		path                  string
		isDefault             bool
	)
	if err := row.Scan(&id, &roleID, &contextID, &path, &isDefault); err != nil {
		return nil, dberr.Wrap(err, "scan_user_group")
	}

	return &UserGroup{
		ID:        id,
		RoleID:    role.ID(roleID),
		ContextID: contextID,
		Path:      path,
		IsDefault: isDefault,
	}, nil
}

func (repository *PostgresRepository) attachSettings(context context.Context, groups []*UserGroup) error {
	if len(groups) == 0 {
		return nil
	}

	ids := make([]int64, len(groups))
	for i, group := range groups {
		ids[i] = group.ID
	}

	settings, err := repository.settings.Load(context, repository.db, ids...)
	if err != nil {
		return err
	}
	for _, group := range groups {
		group.Settings = settings[group.ID]
	}
	return nil
}

func (repository *PostgresRepository) queryUsers(context context.Context, s *statement, action string) ([]*user.User, int, error) {
	rows, err := repository.db.Query(context, s.String(), s.Args()...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, action)
	}
	defer rows.Close()

	var (
		users = []*user.User{}
		total int64
	)
	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.Username, &u.FirstName, &u.MiddleName, &u.LastName, &u.Email, &u.Disabled, &u.Affiliation, &total); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_user")
		}
		users = append(users, &u)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "iterate_users")
	}
	return users, int(total), nil
}

/*
pageUsers runs the listing built for page and reports the total match count.

The total normally rides on every row as a window count. A bounded page past
the last row has no row to carry it, so the unpaged listing is counted instead.
*/
func (repository *PostgresRepository) pageUsers(context context.Context, build func(pagination.Params) *statement, page pagination.Params, action string) ([]*user.User, int, error) {
	users, total, err := repository.queryUsers(context, build(page), action)
	if err != nil || len(users) > 0 || !page.Bounded() || page.Offset() == 0 {
		return users, total, err
	}

	count, err := repository.count(context, build(pagination.All()).counted(), action+"_count")
	if err != nil {
		return nil, 0, err
	}
	return users, int(count), nil
}

func (repository *PostgresRepository) count(context context.Context, s *statement, action string) (int64, error) {
	var count int64
	if err := repository.db.QueryRow(context, s.String(), s.Args()...).Scan(&count); err != nil {
		return 0, dberr.Wrap(err, action)
	}
	return count, nil
}
