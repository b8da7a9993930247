// Where: internal/config/model.go
// What: Resolved configuration model.
// Why: Give every loader (ini, yaml) one common shape to produce.
package config

import (
	"fmt"
	"sort"
	"strings"
)

// Default file names probed in order during discovery.
var ConfigFileNames = []string{"toxa.ini", "tox.ini", "toxa.yml", "toxa.yaml"}

// File is a fully loaded configuration file before per-environment
// resolution. Raw section values keep their multi-line form; expansion,
// factor filtering, and substitution happen in Resolve.
type File struct {
	// Dir is the directory containing the config file ({toxinidir}).
	Dir string
	// Path is the absolute path of the loaded file.
	Path string

	EnvList       []string
	SkipSDist     bool
	IsolatedBuild bool
	Requires      []string

	// Base holds the [testenv] section; Sections holds [testenv:NAME]
	// overrides keyed by NAME (pre brace expansion).
	Base     map[string]string
	Sections map[string]map[string]string

	// Extra holds non-testenv sections addressable via {[section]key}.
	Extra map[string]map[string]string

	// Warnings collects non-fatal findings (unknown keys, legacy
	// spellings) surfaced by the CLI.
	Warnings []string
}

// Env is one resolved environment: inheritance applied, factors filtered,
// substitutions performed, values typed.
type Env struct {
	Name        string
	Description string
	BasePython  string
	Platform    string
	ChangeDir   string

	Commands     [][]string
	CommandsPre  [][]string
	CommandsPost [][]string

	Deps           []string
	InstallCommand []string
	SetEnv         map[string]string
	PassEnv        []string

	SkipInstall   bool
	IgnoreErrors  bool
	IgnoreOutcome bool

	Depends            []string
	AllowlistExternals []string

	// Runner selects the execution backend: "local" (default) or
	// "docker". ContainerImage is required when Runner is "docker".
	Runner         string
	ContainerImage string

	// IgnoredCommands marks indexes in Commands whose failure is
	// tolerated (a leading "-" in the config).
	IgnoredCommands map[int]bool
}

// Recognized environment keys. Anything else becomes a warning.
var knownEnvKeys = map[string]bool{
	"description":         true,
	"commands":            true,
	"commands_pre":        true,
	"commands_post":       true,
	"deps":                true,
	"setenv":              true,
	"passenv":             true,
	"skip_install":        true,
	"ignore_errors":       true,
	"ignore_outcome":      true,
	"changedir":           true,
	"depends":             true,
	"allowlist_externals": true,
	"whitelist_externals": true,
	"basepython":          true,
	"platform":            true,
	"install_command":     true,
	"runner":              true,
	"container_image":     true,
}

// DeclaredEnvs returns every environment name the file declares, i.e. the
// expanded envlist plus explicit [testenv:NAME] sections, in stable order.
func (f *File) DeclaredEnvs() []string {
	seen := map[string]bool{}
	var names []string
	for _, name := range f.EnvList {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	var extras []string
	for name := range f.Sections {
		for _, expanded := range ExpandBraces(name) {
			if !seen[expanded] {
				seen[expanded] = true
				extras = append(extras, expanded)
			}
		}
	}
	sort.Strings(extras)
	return append(names, extras...)
}

// HasEnv reports whether name is declared by the file.
func (f *File) HasEnv(name string) bool {
	for _, declared := range f.DeclaredEnvs() {
		if declared == name {
			return true
		}
	}
	return false
}

// rawFor merges the base [testenv] section with the best-matching
// [testenv:NAME] override for name. Section headers may themselves use
// generative braces, so a section matches when any expansion equals name.
func (f *File) rawFor(name string) map[string]string {
	merged := map[string]string{}
	for key, value := range f.Base {
		merged[key] = value
	}
	for header, section := range f.Sections {
		for _, expanded := range ExpandBraces(header) {
			if expanded != name {
				continue
			}
			for key, value := range section {
				merged[key] = value
			}
		}
	}
	return merged
}

func (f *File) warnf(format string, args ...any) {
	f.Warnings = append(f.Warnings, fmt.Sprintf(format, args...))
}

// factorsOf splits an environment name into its hyphen factors.
func factorsOf(name string) []string {
	return strings.Split(name, "-")
}
