// Where: internal/config/resolve_test.go
// What: Tests for per-environment resolution.
// Why: Inheritance plus substitution is where configs go subtly wrong.
package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resolveINI = `[toxa]
envlist = py38, lint, docs

[testenv]
deps =
    pytest
setenv =
    PYTHONHASHSEED = 0
commands =
    pytest {posargs}

[testenv:lint]
description = static analysis
skip_install = true
deps =
    flake8
    pylint-fail-under
allowlist_externals =
    make
commands =
    flake8 src
    -pylint-fail-under --fail_under 8.0 src
depends = py38

[testenv:docs]
platform = linux
changedir = docs
commands =
    make html
`

func loadResolveFile(t *testing.T) *File {
	t.Helper()
	file, err := LoadINI(writeConfig(t, "toxa.ini", resolveINI))
	require.NoError(t, err)
	return file
}

func TestResolveInheritsBase(t *testing.T) {
	file := loadResolveFile(t)

	env, err := file.Resolve("py38", []string{"-k", "fast"})
	require.NoError(t, err)

	assert.Equal(t, []string{"pytest"}, env.Deps)
	assert.Equal(t, "0", env.SetEnv["PYTHONHASHSEED"])
	require.Len(t, env.Commands, 1)
	assert.Equal(t, []string{"pytest", "-k", "fast"}, env.Commands[0])
	assert.False(t, env.SkipInstall)
	assert.Equal(t, RunnerLocal, env.Runner)
}

func TestResolveOverrides(t *testing.T) {
	file := loadResolveFile(t)

	env, err := file.Resolve("lint", nil)
	require.NoError(t, err)

	assert.Equal(t, "static analysis", env.Description)
	assert.True(t, env.SkipInstall)
	assert.Equal(t, []string{"flake8", "pylint-fail-under"}, env.Deps)
	assert.Equal(t, []string{"py38"}, env.Depends)
	assert.Equal(t, []string{"make"}, env.AllowlistExternals)

	require.Len(t, env.Commands, 2)
	assert.Equal(t, []string{"flake8", "src"}, env.Commands[0])
	assert.True(t, env.IgnoredCommands[1], "leading '-' must tolerate failure")
}

func TestResolveChangedirAndPlatform(t *testing.T) {
	file := loadResolveFile(t)

	env, err := file.Resolve("docs", nil)
	require.NoError(t, err)

	assert.Equal(t, "docs", env.ChangeDir)
	assert.Equal(t, "linux", env.Platform)
}

func TestResolveDefaultInstallCommand(t *testing.T) {
	file := loadResolveFile(t)

	env, err := file.Resolve("py38", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"python", "-m", "pip", "install", "{opts}", "{packages}"}, env.InstallCommand)
}

func TestResolveDockerRunnerNeedsImage(t *testing.T) {
	content := "[testenv:container]\nrunner = docker\ncommands =\n    pytest\n"
	file, err := LoadINI(writeConfig(t, "toxa.ini", content))
	require.NoError(t, err)

	_, err = file.Resolve("container", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "container_image")
}

func TestResolveDockerRunner(t *testing.T) {
	content := "[testenv:container]\nrunner = docker\ncontainer_image = tester:latest\ncommands =\n    pytest\n"
	file, err := LoadINI(writeConfig(t, "toxa.ini", content))
	require.NoError(t, err)

	env, err := file.Resolve("container", nil)
	require.NoError(t, err)
	assert.Equal(t, RunnerDocker, env.Runner)
	assert.Equal(t, "tester:latest", env.ContainerImage)
}

func TestResolveDepsKeepVersionRanges(t *testing.T) {
	content := "[testenv:pinned]\ndeps =\n    pytest>=6.0,<7.0\n    coverage\ncommands =\n    pytest\n"
	file, err := LoadINI(writeConfig(t, "toxa.ini", content))
	require.NoError(t, err)

	env, err := file.Resolve("pinned", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"pytest>=6.0,<7.0", "coverage"}, env.Deps)
}

func TestResolveScalarValuesKeepColons(t *testing.T) {
	content := "[testenv:meta]\ndescription = checks: all of them\ncommands =\n    pytest\n"
	file, err := LoadINI(writeConfig(t, "toxa.ini", content))
	require.NoError(t, err)

	env, err := file.Resolve("meta", nil)
	require.NoError(t, err)
	assert.Equal(t, "checks: all of them", env.Description)
}

func TestResolvePassenvSplitsOnWhitespace(t *testing.T) {
	content := "[testenv:ci]\npassenv = HOME CI_*\ncommands =\n    pytest\n"
	file, err := LoadINI(writeConfig(t, "toxa.ini", content))
	require.NoError(t, err)

	env, err := file.Resolve("ci", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"HOME", "CI_*"}, env.PassEnv)
}

func TestResolveUnknownRunnerFails(t *testing.T) {
	content := "[testenv:bad]\nrunner = podman\n"
	file, err := LoadINI(writeConfig(t, "toxa.ini", content))
	require.NoError(t, err)

	_, err = file.Resolve("bad", nil)
	require.Error(t, err)
}

func TestSplitCommand(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{`pytest -k "slow tests"`, []string{"pytest", "-k", "slow tests"}},
		{`echo 'a b' c`, []string{"echo", "a b", "c"}},
		{`echo a\ b`, []string{"echo", "a b"}},
		{`pytest`, []string{"pytest"}},
		{`echo ""`, []string{"echo", ""}},
	}
	for _, tc := range cases {
		got, err := SplitCommand(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestSplitCommandUnterminatedQuote(t *testing.T) {
	_, err := SplitCommand(`echo "oops`)
	require.Error(t, err)
}
