// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// UserUserGroupTable represents the 'user_user_groups' table
type UserUserGroupTable struct {
	Table       string
	UserID      string
	UserGroupID string
}

// UserUserGroup is the schema definition for user_user_groups
var UserUserGroup = UserUserGroupTable{
	Table:       "user_user_groups",
	UserID:      "user_id",
	UserGroupID: "user_group_id",
}

// UserGroupStageTable represents the 'user_group_stage' table
type UserGroupStageTable struct {
	Table       string
	ContextID   string
	UserGroupID string
	StageID     string
}

// UserGroupStage is the schema definition for user_group_stage
var UserGroupStage = UserGroupStageTable{
	Table:       "user_group_stage",
	ContextID:   "context_id",
	UserGroupID: "user_group_id",
	StageID:     "stage_id",
}
