// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// UserGroupTable represents the 'user_groups' table
type UserGroupTable struct {
	Table     string
	ID        string
	RoleID    string
	ContextID string
	Path      string
	IsDefault string
}

// UserGroup is the schema definition for user_groups
var UserGroup = UserGroupTable{
	Table:     "user_groups",
	ID:        "user_group_id",
	RoleID:    "role_id",
	ContextID: "context_id",
	Path:      "path",
	IsDefault: "is_default",
}

// Columns returns the columns in the order scanUserGroup reads them.
func (t UserGroupTable) Columns() []string {
	return []string{t.ID, t.RoleID, t.ContextID, t.Path, t.IsDefault}
}
