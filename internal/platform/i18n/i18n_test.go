// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package i18n_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/folio/internal/platform/i18n"
)

const enCatalog = `
default:
  groups:
    name:
      manager: Journal manager
    abbrev:
      manager: JM
submission:
  submission: Submission
`

/*
TestLoad verifies catalogs are read from disk and keys flattened.
*/
func TestLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en_US.yaml"), []byte(enCatalog), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fr_CA.yml"), []byte("default:\n  groups:\n    name:\n      manager: Directeur de la revue\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0o600))

	translator, err := i18n.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"en_US", "fr_CA"}, translator.Locales())
	assert.Equal(t, "Journal manager", translator.Translate("default.groups.name.manager", "en_US"))
	assert.Equal(t, "JM", translator.Translate("default.groups.abbrev.manager", "en_US"))
	assert.Equal(t, "Directeur de la revue", translator.Translate("default.groups.name.manager", "fr_CA"))
}

/*
TestTranslate_Missing verifies missing keys and locales are marked.
*/
func TestTranslate_Missing(t *testing.T) {
	translator := i18n.New(map[string]map[string]string{
		"en_US": {"default.groups.name.author": "Author"},
	})

	assert.Equal(t, "##default.groups.name.author##", translator.Translate("default.groups.name.author", "de_DE"))
	assert.Equal(t, "##nope##", translator.Translate("nope", "en_US"))
	assert.False(t, translator.HasLocale("de_DE"))
	assert.True(t, translator.HasLocale("en_US"))
}

func TestLoad_Errors(t *testing.T) {
	_, err := i18n.Load(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en_US.yaml"), []byte("a: [unclosed"), 0o600))
	_, err = i18n.Load(dir)
	assert.Error(t, err)
}

/*
TestAddCatalog_NonStringKeys verifies a mapping keyed by numbers is rejected
instead of being stringified into a key.
*/
func TestAddCatalog_NonStringKeys(t *testing.T) {
	translator := i18n.New(nil)

	err := translator.AddCatalog("en_US", []byte("workflow:\n  stages:\n    1: Submission\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workflow.stages")
	assert.False(t, translator.HasLocale("en_US"))

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en_US.yaml"), []byte("stages:\n  true: yes\n"), 0o600))
	_, err = i18n.Load(dir)
	assert.Error(t, err)
}
