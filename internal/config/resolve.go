// Where: internal/config/resolve.go
// What: Per-environment resolution.
// Why: Turn raw sections into typed Env values ready for execution.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultInstallCommand is used when install_command is not configured.
const DefaultInstallCommand = "python -m pip install {opts} {packages}"

// RunnerLocal and RunnerDocker are the accepted runner values.
const (
	RunnerLocal  = "local"
	RunnerDocker = "docker"
)

// Discover probes dir for a configuration file, preferring the ini names
// over the yaml ones, and loads the first match.
func Discover(dir string) (*File, error) {
	for _, name := range ConfigFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return nil, fmt.Errorf("no configuration file found in %s (looked for %s)",
		dir, strings.Join(ConfigFileNames, ", "))
}

// Load reads a configuration file, choosing the loader by extension.
func Load(path string) (*File, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return LoadYAML(path)
	default:
		return LoadINI(path)
	}
}

// Resolve produces the typed environment for name: inheritance merged,
// factor-conditional lines filtered, substitutions applied, booleans and
// command lines parsed. posArgs feeds {posargs}.
func (f *File) Resolve(name string, posArgs []string) (*Env, error) {
	raw := f.rawFor(name)
	if err := ValidateEnvDocument(name, raw); err != nil {
		return nil, err
	}
	envDir := filepath.Join(f.Dir, ".toxa", name)
	subst := &SubstContext{
		EnvName:   name,
		ToxaDir:   f.Dir,
		EnvDir:    envDir,
		EnvTmpDir: filepath.Join(envDir, "tmp"),
		PosArgs:   posArgs,
		File:      f,
	}

	env := &Env{
		Name:            name,
		Runner:          RunnerLocal,
		SetEnv:          map[string]string{},
		IgnoredCommands: map[int]bool{},
	}

	// Factor-conditional "factor: line" prefixes are a line-oriented
	// feature: only block settings get filtered. Scalar values keep
	// colons intact, so container_image = tester:latest stays whole.
	block := func(key string) string {
		return FilterFactors(raw[key], name)
	}
	stringKey := func(key string) (string, error) {
		resolved, err := subst.Substitute(raw[key])
		if err != nil {
			return "", fmt.Errorf("environment %q key %q: %w", name, key, err)
		}
		return strings.TrimSpace(resolved), nil
	}

	var err error
	if env.Description, err = stringKey("description"); err != nil {
		return nil, err
	}
	if env.BasePython, err = stringKey("basepython"); err != nil {
		return nil, err
	}
	if env.Platform, err = stringKey("platform"); err != nil {
		return nil, err
	}
	if env.ChangeDir, err = stringKey("changedir"); err != nil {
		return nil, err
	}
	if env.ContainerImage, err = stringKey("container_image"); err != nil {
		return nil, err
	}

	runner, err := stringKey("runner")
	if err != nil {
		return nil, err
	}
	switch runner {
	case "", RunnerLocal:
	case RunnerDocker:
		env.Runner = RunnerDocker
		if env.ContainerImage == "" {
			return nil, fmt.Errorf("environment %q uses the docker runner but sets no container_image", name)
		}
	default:
		return nil, fmt.Errorf("environment %q: unknown runner %q", name, runner)
	}

	env.SkipInstall = parseBool(raw["skip_install"])
	env.IgnoreErrors = parseBool(raw["ignore_errors"])
	env.IgnoreOutcome = parseBool(raw["ignore_outcome"])

	// deps and allowlist entries may contain commas (version specifier
	// ranges), so both split on newlines only.
	if env.Deps, err = subst.SubstituteList(SplitLines(block("deps"))); err != nil {
		return nil, fmt.Errorf("environment %q key \"deps\": %w", name, err)
	}
	env.Depends = ExpandList(block("depends"))
	if env.AllowlistExternals, err = subst.SubstituteList(SplitLines(block("allowlist_externals"))); err != nil {
		return nil, fmt.Errorf("environment %q key \"allowlist_externals\": %w", name, err)
	}
	var passenv []string
	for _, line := range SplitLines(block("passenv")) {
		passenv = append(passenv, strings.Fields(line)...)
	}
	if env.PassEnv, err = subst.SubstituteList(passenv); err != nil {
		return nil, fmt.Errorf("environment %q key \"passenv\": %w", name, err)
	}

	if err := resolveSetEnv(env, subst, block("setenv")); err != nil {
		return nil, err
	}

	install := raw["install_command"]
	if strings.TrimSpace(install) == "" {
		install = DefaultInstallCommand
	}
	if env.InstallCommand, err = resolveInstallCommand(subst, install); err != nil {
		return nil, fmt.Errorf("environment %q key \"install_command\": %w", name, err)
	}

	if env.CommandsPre, err = resolveCommands(env, subst, block("commands_pre"), nil); err != nil {
		return nil, fmt.Errorf("environment %q key \"commands_pre\": %w", name, err)
	}
	if env.Commands, err = resolveCommands(env, subst, block("commands"), env.IgnoredCommands); err != nil {
		return nil, fmt.Errorf("environment %q key \"commands\": %w", name, err)
	}
	if env.CommandsPost, err = resolveCommands(env, subst, block("commands_post"), nil); err != nil {
		return nil, fmt.Errorf("environment %q key \"commands_post\": %w", name, err)
	}

	return env, nil
}

// resolveSetEnv parses KEY=value lines. Substitution runs on the value
// part only; keys stay literal.
func resolveSetEnv(env *Env, subst *SubstContext, block string) error {
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, rawValue, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("environment %q: setenv line %q is not KEY=value", env.Name, line)
		}
		value, err := subst.Substitute(strings.TrimSpace(rawValue))
		if err != nil {
			return fmt.Errorf("environment %q setenv %q: %w", env.Name, key, err)
		}
		env.SetEnv[strings.TrimSpace(key)] = value
	}
	return nil
}

// resolveCommands splits a commands block into argv lines. A line ending
// in "\" continues on the next line. A leading "-" tolerates failure of
// that command; ignored collects those indexes when non-nil.
func resolveCommands(env *Env, subst *SubstContext, block string, ignored map[int]bool) ([][]string, error) {
	var lines []string
	continuation := ""
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasSuffix(line, "\\") {
			continuation += strings.TrimSuffix(line, "\\") + " "
			continue
		}
		lines = append(lines, continuation+line)
		continuation = ""
	}
	if continuation != "" {
		lines = append(lines, strings.TrimSpace(continuation))
	}

	var commands [][]string
	for _, line := range lines {
		tolerated := false
		if rest, ok := strings.CutPrefix(line, "-"); ok && !strings.HasPrefix(rest, "-") {
			tolerated = true
			line = strings.TrimSpace(rest)
		}
		resolved, err := subst.Substitute(line)
		if err != nil {
			return nil, err
		}
		argv, err := SplitCommand(resolved)
		if err != nil {
			return nil, err
		}
		if len(argv) == 0 {
			continue
		}
		if tolerated && ignored != nil {
			ignored[len(commands)] = true
		}
		commands = append(commands, argv)
	}
	return commands, nil
}

// resolveInstallCommand substitutes the install command template. The
// {opts} and {packages} placeholders survive as markers the runner fills
// per dependency batch.
func resolveInstallCommand(subst *SubstContext, command string) ([]string, error) {
	masked := strings.NewReplacer("{opts}", "\x00opts\x00", "{packages}", "\x00packages\x00").Replace(command)
	resolved, err := subst.Substitute(masked)
	if err != nil {
		return nil, err
	}
	restored := strings.NewReplacer("\x00opts\x00", "{opts}", "\x00packages\x00", "{packages}").Replace(resolved)
	return SplitCommand(restored)
}

// SplitCommand splits a command line into argv honoring single and double
// quotes and backslash escapes outside quotes.
func SplitCommand(line string) ([]string, error) {
	var argv []string
	var current strings.Builder
	inField := false
	quote := byte(0)

	flush := func() {
		if inField {
			argv = append(argv, current.String())
			current.Reset()
			inField = false
		}
	}

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			} else {
				current.WriteByte(ch)
			}
		case ch == '\'' || ch == '"':
			quote = ch
			inField = true
		case ch == '\\' && i+1 < len(line):
			current.WriteByte(line[i+1])
			inField = true
			i++
		case ch == ' ' || ch == '\t':
			flush()
		default:
			current.WriteByte(ch)
			inField = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated quote in command %q", line)
	}
	flush()
	return argv, nil
}
