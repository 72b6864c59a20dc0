// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// UserTable represents the 'users' table
type UserTable struct {
	Table      string
	ID         string
	Username   string
	FirstName  string
	MiddleName string
	LastName   string
	Email      string
	Disabled   string
}

// User is the schema definition for users
var User = UserTable{
	Table:      "users",
	ID:         "user_id",
	Username:   "username",
	FirstName:  "first_name",
	MiddleName: "middle_name",
	LastName:   "last_name",
	Email:      "email",
	Disabled:   "disabled",
}

func (t UserTable) Columns() []string {
	return []string{t.ID, t.Username, t.FirstName, t.MiddleName, t.LastName, t.Email, t.Disabled}
}

// UserInterestTable represents the 'user_interests' table
type UserInterestTable struct {
	Table                  string
	UserID                 string
	ControlledVocabEntryID string
}

// UserInterest is the schema definition for user_interests
var UserInterest = UserInterestTable{
	Table:                  "user_interests",
	UserID:                 "user_id",
	ControlledVocabEntryID: "controlled_vocab_entry_id",
}
