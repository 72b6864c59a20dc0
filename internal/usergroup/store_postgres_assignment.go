// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package usergroup

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/folio/internal/platform/database/schema"
	"github.com/taibuivan/folio/internal/platform/dberr"
	"github.com/taibuivan/folio/internal/platform/postgres"
)

// PostgresAssignmentRepository implements [AssignmentRepository] using pgx.
type PostgresAssignmentRepository struct {
	db postgres.DBTX
}

// NewPostgresAssignmentRepository constructs a PostgreSQL backed assignment store.
func NewPostgresAssignmentRepository(db postgres.DBTX) *PostgresAssignmentRepository {
	return &PostgresAssignmentRepository{db: db}
}

// WithTx implements [AssignmentRepository].
func (repository *PostgresAssignmentRepository) WithTx(context context.Context, fn func(AssignmentRepository) error) error {
	return postgres.WithTx(context, repository.db, func(tx pgx.Tx) error {
		return fn(NewPostgresAssignmentRepository(tx))
	})
}

// Insert implements [AssignmentRepository].
func (repository *PostgresAssignmentRepository) Insert(context context.Context, assignment Assignment) error {
	t := schema.UserUserGroup
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES ($1, $2)`, t.Table, t.UserID, t.UserGroupID)

	_, err := repository.db.Exec(context, query, assignment.UserID, assignment.UserGroupID)
	return dberr.Wrap(err, "insert_assignment")
}

/*
ListByUser returns the user's assignments, optionally restricted to groups of
one context. Duplicate rows are returned as stored.

Parameters:
  - context: context.Context
  - userID: int64
  - contextID: *int64

Returns:
  - []Assignment: Assignment rows
  - error: Retrieval failures
*/
func (repository *PostgresAssignmentRepository) ListByUser(context context.Context, userID int64, contextID *int64) ([]Assignment, error) {
	uug := schema.UserUserGroup
	ug := schema.UserGroup

	s := &statement{}
	s.write(fmt.Sprintf("SELECT uug.%s, uug.%s FROM %s uug JOIN %s ug ON (ug.%s = uug.%s)",
		uug.UserID, uug.UserGroupID, uug.Table, ug.Table, ug.ID, uug.UserGroupID))
	s.where("uug."+uug.UserID+" = ?", userID)
	if contextID != nil {
		s.where("ug."+ug.ContextID+" = ?", *contextID)
	}
	s.write(" ORDER BY uug." + uug.UserGroupID)

	rows, err := repository.db.Query(context, s.String(), s.Args()...)
	if err != nil {
		return nil, dberr.Wrap(err, "list_assignments")
	}
	defer rows.Close()

	assignments := []Assignment{}
	for rows.Next() {
		var assignment Assignment
		if err := rows.Scan(&assignment.UserID, &assignment.UserGroupID); err != nil {
			return nil, dberr.Wrap(err, "scan_assignment")
		}
		assignments = append(assignments, assignment)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "iterate_assignments")
	}
	return assignments, nil
}

// Delete implements [AssignmentRepository].
func (repository *PostgresAssignmentRepository) Delete(context context.Context, assignment Assignment) error {
	t := schema.UserUserGroup
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`, t.Table, t.UserID, t.UserGroupID)

	_, err := repository.db.Exec(context, query, assignment.UserID, assignment.UserGroupID)
	return dberr.Wrap(err, "delete_assignment")
}

// DeleteByUser implements [AssignmentRepository].
func (repository *PostgresAssignmentRepository) DeleteByUser(context context.Context, userID int64, groupID *int64) error {
	t := schema.UserUserGroup
	s := &statement{}
	s.write("DELETE FROM " + t.Table)
	s.where(t.UserID+" = ?", userID)
	if groupID != nil {
		s.where(t.UserGroupID+" = ?", *groupID)
	}

	_, err := repository.db.Exec(context, s.String(), s.Args()...)
	return dberr.Wrap(err, "delete_user_assignments")
}

// DeleteByUserGroup implements [AssignmentRepository].
func (repository *PostgresAssignmentRepository) DeleteByUserGroup(context context.Context, groupID int64) error {
	t := schema.UserUserGroup
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, t.Table, t.UserGroupID)

	_, err := repository.db.Exec(context, query, groupID)
	return dberr.Wrap(err, "delete_group_assignments")
}

// DeleteByContext implements [AssignmentRepository].
func (repository *PostgresAssignmentRepository) DeleteByContext(context context.Context, contextID int64, userID *int64) error {
	uug := schema.UserUserGroup
	ug := schema.UserGroup

	s := &statement{}
	s.write(fmt.Sprintf("DELETE FROM %s uug USING %s ug", uug.Table, ug.Table))
	s.where("ug." + ug.ID + " = uug." + uug.UserGroupID)
	s.where("ug."+ug.ContextID+" = ?", contextID)
	if userID != nil {
		s.where("uug."+uug.UserID+" = ?", *userID)
	}

	_, err := repository.db.Exec(context, s.String(), s.Args()...)
	return dberr.Wrap(err, "delete_context_assignments")
}
