// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package role_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/folio/internal/role"
)

/*
TestParse verifies hex and decimal role ids from definition files.
*/
func TestParse(t *testing.T) {
	tests := []struct {
		raw     string
		want    role.ID
		wantErr bool
	}{
		{"0x10", role.Manager, false},
		{"0x00010000", role.Author, false},
		{"16", role.Manager, false},
		{" 0x1000 ", role.Reviewer, false},
		{"0x9999", 0, true},
		{"manager", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := role.Parse(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

/*
TestParseHex verifies definition-file role ids are base 16 with or without a prefix.
*/
func TestParseHex(t *testing.T) {
	tests := []struct {
		raw     string
		want    role.ID
		wantErr bool
	}{
		{"0x10", role.Manager, false},
		{"10", role.Manager, false},
		{"10000", role.Author, false},
		{"0X1000", role.Reviewer, false},
		{" 100000 ", role.Reader, false},
		{"16", 0, true},
		{"zz", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := role.ParseHex(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

/*
TestPathRoundTrip verifies every role maps to a unique path and back.
*/
func TestPathRoundTrip(t *testing.T) {
	seen := map[string]bool{}
	for _, id := range role.All() {
		path := id.Path()
		require.NotEmpty(t, path)
		assert.False(t, seen[path], "duplicate path %s", path)
		seen[path] = true

		back, ok := role.FromPath(path)
		assert.True(t, ok)
		assert.Equal(t, id, back)
	}

	_, ok := role.FromPath("nobody")
	assert.False(t, ok)
	assert.Equal(t, "role(0x2)", role.ID(2).String())
}
