// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/folio/internal/platform/apperr"
	"github.com/taibuivan/folio/internal/platform/validate"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		hasError bool
	}{
		{"valid_string", "Journal Manager", false},
		{"empty_string", "", true},
		{"whitespace_only", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required("name", tt.value)

			if tt.hasError {
				ae := apperr.As(v.Err())
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
				assert.Equal(t, "name", ae.Details[0].Field)
			} else {
				assert.NoError(t, v.Err())
			}
		})
	}
}

/*
TestValidator_Locale checks the locale rule against stored locale formats.
*/
func TestValidator_Locale(t *testing.T) {
	tests := []struct {
		value   string
		isValid bool
	}{
		{"en_US", true},
		{"fr_CA", true},
		{"de", true},
		{"sr_RS@latin", true},
		{"", false},
		{"en-US", false},
		{"EN_us", false},
		{"english", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			v := &validate.Validator{}
			v.Locale("locale", tt.value)
			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

/*
TestValidator_Path checks group and role path identifiers.
*/
func TestValidator_Path(t *testing.T) {
	valid := []string{"manager", "subEditor", "section-editor", "reviewer_2"}
	invalid := []string{"", "-lead", "trail-", "with space", "a--b"}

	for _, value := range valid {
		v := &validate.Validator{}
		assert.False(t, v.Path("path", value).HasErrors(), value)
	}
	for _, value := range invalid {
		v := &validate.Validator{}
		assert.True(t, v.Path("path", value).HasErrors(), value)
	}
}

/*
TestValidator_Chaining verifies that errors accumulate across rules.
*/
func TestValidator_Chaining(t *testing.T) {
	v := &validate.Validator{}
	v.Required("name", "").
		Positive("role_id", 0).
		NonNegative("context_id", -1).
		OneOf("match", "near", "is", "contains", "startsWith").
		Range("stage", 9, 1, 5).
		Custom("extra", false, "never")

	ae := apperr.As(v.Err())
	require.NotNil(t, ae)
	require.Len(t, ae.Details, 5)
	assert.Equal(t, "name", ae.Details[0].Field)
	assert.Equal(t, "stage", ae.Details[4].Field)
}

/*
TestFieldError verifies the single-field shortcut.
*/
func TestFieldError(t *testing.T) {
	err := validate.FieldError("group_id", "Unknown group")
	assert.Equal(t, 400, err.HTTPStatus)
	assert.Equal(t, "group_id", err.Details[0].Field)
}
