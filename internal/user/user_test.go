// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package user_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/folio/internal/user"
)

func TestUser_FullName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", (&user.User{FirstName: "Ada", LastName: "Lovelace"}).FullName())
	assert.Equal(t, "Ada K. Lovelace", (&user.User{FirstName: "Ada", MiddleName: " K. ", LastName: "Lovelace"}).FullName())
	assert.Equal(t, "", (&user.User{}).FullName())
}

func TestField_IsTextField(t *testing.T) {
	assert.True(t, user.FieldEmail.IsTextField())
	assert.True(t, user.FieldAffiliation.IsTextField())
	assert.False(t, user.FieldUserID.IsTextField())
	assert.False(t, user.Field("nickname").IsTextField())
}
