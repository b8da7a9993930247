// Where: internal/config/yamlfile_test.go
// What: Tests for the yaml loader and schema validation.
// Why: The yaml flavor must land in the same model as the ini one.
package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `envlist:
  - py{38,39}
  - lint
skipsdist: true
testenv:
  deps:
    - pytest
  commands:
    - pytest {posargs}
environments:
  lint:
    description: static analysis
    skip_install: true
    deps:
      - flake8
    commands:
      - flake8 src
    setenv:
      CHECK: strict
`

func TestLoadYAML(t *testing.T) {
	file, err := LoadYAML(writeConfig(t, "toxa.yml", sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"py38", "py39", "lint"}, file.EnvList)
	assert.True(t, file.SkipSDist)
	assert.Equal(t, "pytest", file.Base["deps"])

	lint := file.Sections["lint"]
	assert.Equal(t, "static analysis", lint["description"])
	assert.Equal(t, "CHECK=strict", lint["setenv"])
}

func TestLoadYAMLResolvesLikeINI(t *testing.T) {
	file, err := LoadYAML(writeConfig(t, "toxa.yml", sampleYAML))
	require.NoError(t, err)

	env, err := file.Resolve("lint", nil)
	require.NoError(t, err)
	assert.True(t, env.SkipInstall)
	assert.Equal(t, "strict", env.SetEnv["CHECK"])
	require.Len(t, env.Commands, 1)
	assert.Equal(t, []string{"flake8", "src"}, env.Commands[0])
}

func TestLoadYAMLRejectsBadShape(t *testing.T) {
	bad := "environments:\n  lint:\n    commands: {not: a-list}\n"
	_, err := LoadYAML(writeConfig(t, "toxa.yml", bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid")
}

func TestLoadYAMLRejectsEmptyDocument(t *testing.T) {
	_, err := LoadYAML(writeConfig(t, "toxa.yml", ""))
	require.Error(t, err)
}

func TestValidateEnvDocumentRunnerEnum(t *testing.T) {
	err := ValidateEnvDocument("bad", map[string]string{"runner": "podman"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
}
