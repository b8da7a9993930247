// Where: internal/config/subst_test.go
// What: Tests for curly-brace substitution.
// Why: Substitution errors must name what went wrong, not leak braces.
package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSubstContext() *SubstContext {
	return &SubstContext{
		EnvName:   "py38",
		ToxaDir:   "/project",
		EnvDir:    "/project/.toxa/py38",
		EnvTmpDir: "/project/.toxa/py38/tmp",
		LookupEnv: func(key string) (string, bool) {
			if key == "CI" {
				return "true", true
			}
			return "", false
		},
	}
}

func TestSubstituteBuiltins(t *testing.T) {
	ctx := newSubstContext()

	got, err := ctx.Substitute("pytest --basetemp={envtmpdir} --rootdir={toxinidir} -k {envname}")
	require.NoError(t, err)
	assert.Equal(t, "pytest --basetemp=/project/.toxa/py38/tmp --rootdir=/project -k py38", got)
}

func TestSubstitutePosargs(t *testing.T) {
	ctx := newSubstContext()

	got, err := ctx.Substitute("pytest {posargs:tests/unit}")
	require.NoError(t, err)
	assert.Equal(t, "pytest tests/unit", got)

	ctx.PosArgs = []string{"-k", "smoke"}
	got, err = ctx.Substitute("pytest {posargs:tests/unit}")
	require.NoError(t, err)
	assert.Equal(t, "pytest -k smoke", got)
}

func TestSubstituteEnvVar(t *testing.T) {
	ctx := newSubstContext()

	got, err := ctx.Substitute("{env:CI}")
	require.NoError(t, err)
	assert.Equal(t, "true", got)

	got, err = ctx.Substitute("{env:MISSING:fallback}")
	require.NoError(t, err)
	assert.Equal(t, "fallback", got)

	_, err = ctx.Substitute("{env:MISSING}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MISSING")
}

func TestSubstituteEscapedBraces(t *testing.T) {
	ctx := newSubstContext()

	got, err := ctx.Substitute(`echo \{literal\}`)
	require.NoError(t, err)
	assert.Equal(t, "echo {literal}", got)
}

func TestSubstituteUnknownNameFails(t *testing.T) {
	ctx := newSubstContext()

	_, err := ctx.Substitute("{nonsense}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nonsense")
}

func TestSubstituteSectionReference(t *testing.T) {
	ctx := newSubstContext()
	ctx.File = &File{
		Base:  map[string]string{"deps": "pytest"},
		Extra: map[string]map[string]string{"vars": {"target": "src/"}},
	}

	got, err := ctx.Substitute("flake8 {[vars]target}")
	require.NoError(t, err)
	assert.Equal(t, "flake8 src/", got)

	got, err = ctx.Substitute("{[testenv]deps}")
	require.NoError(t, err)
	assert.Equal(t, "pytest", got)
}

func TestSubstituteSectionCycleFails(t *testing.T) {
	ctx := newSubstContext()
	ctx.File = &File{
		Extra: map[string]map[string]string{
			"a": {"x": "{[b]y}"},
			"b": {"y": "{[a]x}"},
		},
	}

	_, err := ctx.Substitute("{[a]x}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestSubstituteListDropsEmpties(t *testing.T) {
	ctx := newSubstContext()

	got, err := ctx.SubstituteList([]string{"{posargs}", "pytest"})
	require.NoError(t, err)
	assert.Equal(t, []string{"pytest"}, got)
}
