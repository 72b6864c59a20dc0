// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package usergroup

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/folio/internal/role"
	"github.com/taibuivan/folio/internal/user"
	"github.com/taibuivan/folio/internal/workflow"
	"github.com/taibuivan/folio/pkg/pagination"
	"github.com/taibuivan/folio/pkg/pointer"
)

/*
TestStatement_BindOrder verifies markers are numbered in text order across fragments.
*/
func TestStatement_BindOrder(t *testing.T) {
	s := &statement{}
	s.write("SELECT 1 FROM t")
	s.where("a = ?", 1)
	s.where("b BETWEEN ? AND ?", "x", "y")
	s.write(" LIMIT ?", 10)

	assert.Equal(t, "SELECT 1 FROM t WHERE a = $1 AND b BETWEEN $2 AND $3 LIMIT $4", s.String())
	assert.Equal(t, []any{1, "x", "y", 10}, s.Args())
}

/*
TestStatement_MarkerMismatch verifies a fragment with the wrong value count panics.
*/
func TestStatement_MarkerMismatch(t *testing.T) {
	assert.Panics(t, func() { (&statement{}).write("a = ? AND b = ?", 1) })
	assert.Panics(t, func() { (&statement{}).where("a = 1", 1) })
}

/*
TestFilter_Apply verifies joins precede predicates and every optional field binds in order.
*/
func TestFilter_Apply(t *testing.T) {
	stage := workflow.ExternalReview
	filter := Filter{
		ContextID:   pointer.To(int64(3)),
		UserID:      pointer.To(int64(7)),
		Stage:       &stage,
		OmitAuthors: true,
		RoleID:      pointer.To(role.Reviewer),
		IsDefault:   pointer.To(true),
	}

	s := &statement{}
	selectGroups(s)
	filter.apply(s)

	assert.Equal(t,
		"SELECT DISTINCT ug.user_group_id, ug.role_id, ug.context_id, ug.path, ug.is_default FROM user_groups ug"+
			" JOIN user_user_groups uug ON (uug.user_group_id = ug.user_group_id)"+
			" JOIN user_group_stage ugs ON (ugs.user_group_id = ug.user_group_id AND ugs.context_id = ug.context_id)"+
			" WHERE ug.context_id = $1 AND uug.user_id = $2 AND ugs.stage_id = $3"+
			" AND ug.role_id <> $4 AND ug.role_id = $5 AND ug.is_default = $6",
		s.String())
	assert.Equal(t, []any{int64(3), int64(7), 3, int64(role.Author), int64(role.Reviewer), true}, s.Args())
}

/*
TestFilter_Empty verifies the zero filter adds nothing.
*/
func TestFilter_Empty(t *testing.T) {
	s := &statement{}
	Filter{}.apply(s)

	assert.Empty(t, s.String())
	assert.Empty(t, s.Args())
}

/*
TestSearch_Apply covers each match mode and the text-less selectors.
*/
func TestSearch_Apply(t *testing.T) {
	tests := []struct {
		name   string
		search Search
		sql    string
		args   []any
	}{
		{
			name:   "is",
			search: Search{Field: user.FieldEmail, Text: "Ann@x.org", Match: MatchIs},
			sql:    " WHERE LOWER(u.email) = LOWER($1)",
			args:   []any{"Ann@x.org"},
		},
		{
			name:   "contains",
			search: Search{Field: user.FieldLastName, Text: "smi", Match: MatchContains},
			sql:    " WHERE LOWER(u.last_name) LIKE LOWER($1)",
			args:   []any{"%smi%"},
		},
		{
			name:   "starts with",
			search: Search{Field: user.FieldAffiliation, Text: "Univ", Match: MatchStartsWith},
			sql:    " WHERE LOWER(us.setting_value) LIKE LOWER($1)",
			args:   []any{"Univ%"},
		},
		{
			name:   "unknown match adds nothing",
			search: Search{Field: user.FieldUsername, Text: "ann", Match: "fuzzy"},
			sql:    "",
		},
		{
			name:   "user id",
			search: Search{Field: user.FieldUserID, UserID: pointer.To(int64(42))},
			sql:    " WHERE u.user_id = $1",
			args:   []any{int64(42)},
		},
		{
			name:   "initial",
			search: Search{Field: user.FieldInitial, Initial: "S"},
			sql:    " WHERE LOWER(u.last_name) LIKE LOWER($1)",
			args:   []any{"S%"},
		},
		{
			name:   "zero search",
			search: Search{},
			sql:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &statement{}
			tt.search.apply(s)

			assert.Equal(t, tt.sql, s.String())
			assert.Equal(t, tt.args, s.Args())
		})
	}
}

/*
TestSearch_FreeText verifies every word becomes its own predicate over names, email,
affiliation and interests.
*/
func TestSearch_FreeText(t *testing.T) {
	s := &statement{}
	Search{Text: "Ann  Smith"}.apply(s)

	predicate := "(LOWER(CONCAT(u.first_name, u.last_name, u.email, us.setting_value)) LIKE $%d OR LOWER(cves.setting_value) LIKE $%d)"
	assert.Equal(t, " WHERE "+fmt.Sprintf(predicate, 1, 2)+" AND "+fmt.Sprintf(predicate, 3, 4), s.String())
	assert.Equal(t, []any{"%ann%", "%ann%", "%smith%", "%smith%"}, s.Args())
}

/*
TestSearch_FreeTextSpansFields verifies the name fields are concatenated
without a separator, so one word may cover the end of one field and the start
of the next.
*/
func TestSearch_FreeTextSpansFields(t *testing.T) {
	s := &statement{}
	Search{Text: "annsmith"}.apply(s)

	assert.Contains(t, s.String(), "CONCAT(u.first_name, u.last_name, u.email, us.setting_value)")
	assert.NotContains(t, s.String(), "CONCAT_WS")
	assert.Equal(t, []any{"%annsmith%", "%annsmith%"}, s.Args())
}

/*
TestGroupUsers verifies the page is bound only when bounded.
*/
func TestGroupUsers(t *testing.T) {
	s := &statement{}
	groupUsers(s, pagination.All())
	assert.Equal(t, " GROUP BY u.user_id ORDER BY u.last_name, u.first_name, u.user_id", s.String())
	assert.Empty(t, s.Args())

	s = &statement{}
	groupUsers(s, pagination.Page(3, 20))
	assert.Contains(t, s.String(), " LIMIT $1 OFFSET $2")
	assert.Equal(t, []any{20, 40}, s.Args())
}
