// Where: internal/config/inifile_test.go
// What: Tests for the ini loader.
// Why: The ini dialect (multiline values, factor sections) is easy to break.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleINI = `[tox]
envlist = py{38,39}, lint
skipsdist = true

[testenv]
deps =
    pytest
commands =
    pytest {posargs}

[testenv:lint]
description = static analysis
skip_install = true
deps =
    flake8
whitelist_externals =
    make
commands =
    flake8 src

[testenv:py39]
setenv =
    COVERAGE = yes
`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadINI(t *testing.T) {
	file, err := LoadINI(writeConfig(t, "toxa.ini", sampleINI))
	require.NoError(t, err)

	assert.Equal(t, []string{"py38", "py39", "lint"}, file.EnvList)
	assert.True(t, file.SkipSDist)
	assert.Equal(t, "pytest", file.Base["deps"])
	assert.Contains(t, file.Sections, "lint")
	assert.Contains(t, file.Sections, "py39")
}

func TestLoadINIFoldsLegacyAllowlist(t *testing.T) {
	file, err := LoadINI(writeConfig(t, "toxa.ini", sampleINI))
	require.NoError(t, err)

	lint := file.Sections["lint"]
	assert.Equal(t, "make", lint["allowlist_externals"])
	_, hasLegacy := lint["whitelist_externals"]
	assert.False(t, hasLegacy)

	found := false
	for _, warning := range file.Warnings {
		if strings.Contains(warning, "legacy") {
			found = true
		}
	}
	assert.True(t, found, "expected a legacy-spelling warning, got %v", file.Warnings)
}

func TestLoadINIWarnsUnknownKey(t *testing.T) {
	content := "[testenv]\nbogus_key = 1\n"
	file, err := LoadINI(writeConfig(t, "toxa.ini", content))
	require.NoError(t, err)

	require.Len(t, file.Warnings, 1)
	assert.Contains(t, file.Warnings[0], "bogus_key")
}

func TestDeclaredEnvs(t *testing.T) {
	file, err := LoadINI(writeConfig(t, "toxa.ini", sampleINI))
	require.NoError(t, err)

	assert.Equal(t, []string{"py38", "py39", "lint"}, file.DeclaredEnvs())
	assert.True(t, file.HasEnv("lint"))
	assert.False(t, file.HasEnv("missing"))
}

func TestDiscoverPrefersINI(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tox.ini"), []byte(sampleINI), 0o644))

	file, err := Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "tox.ini"), file.Path)
}

func TestDiscoverFailsCleanly(t *testing.T) {
	_, err := Discover(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no configuration file")
}
