// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package usergroup

import (
	"fmt"
	"strings"

	"github.com/taibuivan/folio/internal/platform/database/schema"
	"github.com/taibuivan/folio/internal/role"
	"github.com/taibuivan/folio/internal/user"
	"github.com/taibuivan/folio/internal/workflow"
	"github.com/taibuivan/folio/pkg/pagination"
)

// # Statement Builder

// statement accumulates SQL text and its bind values in lockstep.
//
// Fragments are written with "?" markers; each marker is rewritten to the next
// "$n" placeholder as its value is appended, so the bind order always matches
// the text order.
type statement struct {
	sql        strings.Builder
	args       []any
	conditions int
}

// write appends fragment, binding one value per "?" marker.
// A marker/value count mismatch is a programming error and panics.
func (s *statement) write(fragment string, values ...any) *statement {
	if markers := strings.Count(fragment, "?"); markers != len(values) {
		panic(fmt.Sprintf("usergroup: fragment %q has %d markers but %d values", fragment, markers, len(values)))
	}

	next := 0
	for _, r := range fragment {
		if r != '?' {
			s.sql.WriteRune(r)
			continue
		}
		s.args = append(s.args, values[next])
		next++
		fmt.Fprintf(&s.sql, "$%d", len(s.args))
	}
	return s
}

// where appends a predicate, opening the WHERE clause on first use.
func (s *statement) where(predicate string, values ...any) *statement {
	if s.conditions == 0 {
		s.sql.WriteString(" WHERE ")
	} else {
		s.sql.WriteString(" AND ")
	}
	s.conditions++
	return s.write(predicate, values...)
}

// counted wraps the statement in a row count, keeping its bind values.
func (s *statement) counted() *statement {
	wrapped := &statement{args: s.args}
	wrapped.sql.WriteString("SELECT COUNT(*) FROM (" + s.String() + ") matched")
	return wrapped
}

func (s *statement) String() string { return s.sql.String() }

func (s *statement) Args() []any { return s.args }

// # Group Filter

// Filter narrows group listings. Nil fields contribute no predicate.
type Filter struct {
	ContextID *int64
	RoleID    *role.ID
	IsDefault *bool
	UserID    *int64

	// Stage joins user_group_stage scoped by the group's own context.
	Stage *workflow.Stage

	OmitAuthors   bool
	OmitReviewers bool
}

// StageFilter holds the optional narrowing of a by-stage listing.
type StageFilter struct {
	OmitAuthors   bool
	OmitReviewers bool
	RoleID        *role.ID
}

const groupOrder = " ORDER BY ug.role_id, ug.user_group_id"

// selectGroups writes the group projection and FROM clause.
func selectGroups(s *statement) {
	t := schema.UserGroup
	s.write(fmt.Sprintf("SELECT DISTINCT ug.%s, ug.%s, ug.%s, ug.%s, ug.%s FROM %s ug",
		t.ID, t.RoleID, t.ContextID, t.Path, t.IsDefault, t.Table))
}

// apply writes the joins and predicates for f.
func (f Filter) apply(s *statement) {
	ug := schema.UserGroup

	if f.UserID != nil {
		uug := schema.UserUserGroup
		s.write(fmt.Sprintf(" JOIN %s uug ON (uug.%s = ug.%s)", uug.Table, uug.UserGroupID, ug.ID))
	}
	if f.Stage != nil {
		ugs := schema.UserGroupStage
		s.write(fmt.Sprintf(" JOIN %s ugs ON (ugs.%s = ug.%s AND ugs.%s = ug.%s)",
			ugs.Table, ugs.UserGroupID, ug.ID, ugs.ContextID, ug.ContextID))
	}

	if f.ContextID != nil {
		s.where("ug."+ug.ContextID+" = ?", *f.ContextID)
	}
	if f.UserID != nil {
		s.where("uug."+schema.UserUserGroup.UserID+" = ?", *f.UserID)
	}
	if f.Stage != nil {
		s.where("ugs."+schema.UserGroupStage.StageID+" = ?", int(*f.Stage))
	}
	if f.OmitAuthors {
		s.where("ug."+ug.RoleID+" <> ?", int64(role.Author))
	}
	if f.OmitReviewers {
		s.where("ug."+ug.RoleID+" <> ?", int64(role.Reviewer))
	}
	if f.RoleID != nil {
		s.where("ug."+ug.RoleID+" = ?", int64(*f.RoleID))
	}
	if f.IsDefault != nil {
		s.where("ug."+ug.IsDefault+" = ?", *f.IsDefault)
	}
}

// # User Search

// MatchMode selects how a field search compares text.
type MatchMode string

const (
	MatchIs         MatchMode = "is"
	MatchContains   MatchMode = "contains"
	MatchStartsWith MatchMode = "startsWith"
)

// Search describes a user search. The zero Search matches everyone.
type Search struct {
	// Field is the column targeted by Text. An unknown or empty field with
	// Text searches names, email, affiliation and interests word by word.
	Field user.Field
	Text  string
	Match MatchMode

	// UserID and Initial apply only when Text is empty and Field selects them.
	UserID  *int64
	Initial string
}

var searchColumns = map[user.Field]string{
	user.FieldFirstName:   "u.first_name",
	user.FieldLastName:    "u.last_name",
	user.FieldUsername:    "u.username",
	user.FieldEmail:       "u.email",
	user.FieldAffiliation: "us.setting_value",
}

const userOrder = " ORDER BY u.last_name, u.first_name, u.user_id"

// freeText matches one search word against the name, email and affiliation run
// together without separators, or against an interest keyword.
const freeText = "(LOWER(CONCAT(u.first_name, u.last_name, u.email, us.setting_value)) LIKE ? OR LOWER(cves.setting_value) LIKE ?)"

// apply writes the predicates for the search. The caller writes the ORDER BY.
func (search Search) apply(s *statement) {
	if search.Text == "" {
		switch search.Field {
		case user.FieldUserID:
			if search.UserID != nil {
				s.where("u.user_id = ?", *search.UserID)
			}
		case user.FieldInitial:
			if search.Initial != "" {
				s.where("LOWER(u.last_name) LIKE LOWER(?)", search.Initial+"%")
			}
		}
		return
	}

	column, known := searchColumns[search.Field]
	if !known {
		for _, word := range strings.Fields(strings.ToLower(search.Text)) {
			term := "%" + word + "%"
			s.where(freeText, term, term)
		}
		return
	}

	switch search.Match {
	case MatchIs:
		s.where("LOWER("+column+") = LOWER(?)", search.Text)
	case MatchContains:
		s.where("LOWER("+column+") LIKE LOWER(?)", "%"+search.Text+"%")
	case MatchStartsWith:
		s.where("LOWER("+column+") LIKE LOWER(?)", search.Text+"%")
	}
}

// selectUsers writes the user projection and the joins the search predicates
// reference. When withGroups is set, user_groups is joined as ug.
//
// Rows are grouped per user so that multiple interests or affiliation locales
// do not duplicate a user; the window count is the total before LIMIT.
func selectUsers(s *statement, withGroups bool) {
	u := schema.User
	us := schema.UserSetting
	ui := schema.UserInterest
	cves := schema.ControlledVocabEntrySetting
	uug := schema.UserUserGroup

	s.write(fmt.Sprintf(`SELECT u.%s, u.%s, u.%s, COALESCE(u.%s, ''), u.%s, u.%s, u.%s, COALESCE(MIN(us.%s), ''), COUNT(*) OVER()
		FROM %s u
		LEFT JOIN %s us ON (us.%s = u.%s AND us.%s = 'affiliation')
		LEFT JOIN %s ui ON (ui.%s = u.%s)
		LEFT JOIN %s cves ON (cves.%s = ui.%s)
		LEFT JOIN %s uug ON (uug.%s = u.%s)`,
		u.ID, u.Username, u.FirstName, u.MiddleName, u.LastName, u.Email, u.Disabled, us.Value,
		u.Table,
		us.Table, us.OwnerID, u.ID, us.Name,
		ui.Table, ui.UserID, u.ID,
		cves.Table, cves.OwnerID, ui.ControlledVocabEntryID,
		uug.Table, uug.UserID, u.ID,
	))

	if withGroups {
		ug := schema.UserGroup
		s.write(fmt.Sprintf(" LEFT JOIN %s ug ON (ug.%s = uug.%s)", ug.Table, ug.ID, uug.UserGroupID))
	}
}

// groupUsers closes a user search: grouping, ordering and the optional page.
func groupUsers(s *statement, page pagination.Params) {
	s.write(" GROUP BY u." + schema.User.ID)
	s.write(userOrder)
	if page.Bounded() {
		s.write(" LIMIT ? OFFSET ?", page.Limit, page.Offset())
	}
}
