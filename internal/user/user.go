// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package user holds the user record returned by user-group membership searches
// and the searchable user fields.
package user

import "strings"

// User is the subset of a user account exposed by membership listings.
type User struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	FirstName   string `json:"first_name"`
	MiddleName  string `json:"middle_name,omitempty"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Disabled    bool   `json:"disabled"`
	Affiliation string `json:"affiliation,omitempty"`
}

// FullName joins the non-empty name parts with single spaces.
func (u *User) FullName() string {
	parts := make([]string, 0, 3)
	for _, part := range []string{u.FirstName, u.MiddleName, u.LastName} {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, " ")
}

// # Search Fields

// Field names a searchable user attribute, as sent by clients in "searchType".
type Field string

const (
	FieldFirstName   Field = "firstName"
	FieldLastName    Field = "lastName"
	FieldUsername    Field = "username"
	FieldEmail       Field = "email"
	FieldAffiliation Field = "affiliation"

	// FieldUserID and FieldInitial apply only when no search text is given.
	FieldUserID  Field = "userId"
	FieldInitial Field = "initial"
)

// TextFields are the fields a free-text search can target.
var TextFields = []Field{FieldFirstName, FieldLastName, FieldUsername, FieldEmail, FieldAffiliation}

// IsTextField reports whether f is one of [TextFields].
func (f Field) IsTextField() bool {
	for _, candidate := range TextFields {
		if candidate == f {
			return true
		}
	}
	return false
}
