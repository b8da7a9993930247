// Where: internal/run/runner.go
// What: Environment lifecycle execution.
// Why: Drive install and command phases, propagating subprocess status.
package run

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/toxa-dev/toxa/internal/config"
)

// ContainerExecutor runs environment commands inside a container. It is
// implemented by the docker package and faked in tests. ignored marks
// indexes in commands whose failure is tolerated.
type ContainerExecutor interface {
	ExecEnv(ctx context.Context, env *config.Env, commands [][]string, ignored map[int]bool, environ []string, projectDir string, out io.Writer) (int, error)
}

// Options tunes a run without touching the configuration.
type Options struct {
	NoTest  bool
	PosArgs []string
	// Environ is the host environment, os.Environ()-shaped.
	Environ []string
}

// Runner executes resolved environments.
type Runner struct {
	File      *config.File
	Exec      CommandRunner
	Container ContainerExecutor
	Out       io.Writer
	Log       zerolog.Logger
	// Quiet suppresses command echo lines; command output and the
	// summary still print.
	Quiet bool
}

// RunEnv executes one environment through its full lifecycle and returns
// its result. The context cancels in-flight subprocesses.
func (r *Runner) RunEnv(ctx context.Context, env *config.Env, opts Options) Result {
	started := time.Now()
	result := Result{Env: env.Name, Status: StatusOK}

	if reason, skip := platformMismatch(env); skip {
		result.Status = StatusSkipped
		result.Reason = reason
		return result
	}

	envDir := filepath.Join(r.File.Dir, ".toxa", env.Name)
	if err := os.MkdirAll(filepath.Join(envDir, "tmp"), 0o755); err != nil {
		return r.fail(result, started, fmt.Sprintf("create %s: %v", envDir, err))
	}

	environ := BuildEnviron(env, opts.Environ, envDir, r.File.Dir)
	workDir := r.File.Dir
	if env.ChangeDir != "" {
		workDir = env.ChangeDir
		if !filepath.IsAbs(workDir) {
			workDir = filepath.Join(r.File.Dir, env.ChangeDir)
		}
	}

	if env.Runner == config.RunnerDocker {
		return r.runInContainer(ctx, env, environ, opts, started)
	}

	if code, err := r.install(ctx, env, environ, workDir); err != nil {
		return r.fail(result, started, err.Error())
	} else if code != 0 {
		result.Status = StatusFailed
		result.ExitCode = code
		result.Reason = "dependency install failed"
		result.Duration = time.Since(started)
		return result
	}

	if opts.NoTest {
		r.printf("%s: --notest, skipping commands\n", env.Name)
		result.Duration = time.Since(started)
		return result
	}

	phases := []struct {
		label    string
		commands [][]string
		ignored  map[int]bool
	}{
		{"commands_pre", env.CommandsPre, nil},
		{"commands", env.Commands, env.IgnoredCommands},
		{"commands_post", env.CommandsPost, nil},
	}
	for _, phase := range phases {
		status, code, reason := r.runPhase(ctx, env, phase.label, phase.commands, phase.ignored, environ, workDir)
		if status == StatusOK {
			continue
		}
		result.Status = status
		result.ExitCode = code
		result.Reason = reason
		break
	}

	if result.Status == StatusFailed && env.IgnoreOutcome {
		result.Status = StatusIgnoredFailure
	}
	result.Duration = time.Since(started)
	return result
}

// runPhase executes one command list; the first non-tolerated failure
// stops the phase.
func (r *Runner) runPhase(ctx context.Context, env *config.Env, label string, commands [][]string, ignored map[int]bool, environ []string, workDir string) (Status, int, string) {
	for i, argv := range commands {
		if err := r.checkExternal(env, argv[0]); err != nil {
			return StatusFailed, 0, err.Error()
		}

		r.printf("%s %s[%d]> %s\n", env.Name, label, i, strings.Join(argv, " "))
		r.Log.Debug().Str("env", env.Name).Strs("argv", argv).Msg("exec")

		code, err := r.Exec.Exec(ctx, Command{
			Argv:   argv,
			Dir:    workDir,
			Env:    environ,
			Stdout: r.Out,
			Stderr: r.Out,
		})
		if ctx.Err() != nil {
			return StatusInterrupted, code, "interrupted"
		}
		if err != nil {
			return StatusFailed, code, fmt.Sprintf("%s: %v", argv[0], err)
		}
		if code != 0 {
			if env.IgnoreErrors || (ignored != nil && ignored[i]) {
				r.printf("%s %s[%d]> exit %d (ignored)\n", env.Name, label, i, code)
				continue
			}
			return StatusFailed, code, fmt.Sprintf("exit code %d from %s", code, argv[0])
		}
	}
	return StatusOK, 0, ""
}

// install runs the dependency install step and, unless the file or the
// environment opts out, the project install.
func (r *Runner) install(ctx context.Context, env *config.Env, environ []string, workDir string) (int, error) {
	batches := [][]string{}
	if len(env.Deps) > 0 {
		batches = append(batches, env.Deps)
	}
	if !env.SkipInstall && !r.File.SkipSDist {
		batches = append(batches, []string{"-e", "."})
	}

	for _, packages := range batches {
		argv := expandInstallCommand(env.InstallCommand, packages)
		r.printf("%s install> %s\n", env.Name, strings.Join(argv, " "))
		code, err := r.Exec.Exec(ctx, Command{
			Argv:   argv,
			Dir:    workDir,
			Env:    environ,
			Stdout: r.Out,
			Stderr: r.Out,
		})
		if err != nil || code != 0 {
			return code, err
		}
	}
	return 0, nil
}

func (r *Runner) runInContainer(ctx context.Context, env *config.Env, environ []string, opts Options, started time.Time) Result {
	result := Result{Env: env.Name, Status: StatusOK}
	if r.Container == nil {
		return r.fail(result, started, "docker runner is not available")
	}
	if opts.NoTest {
		r.printf("%s: --notest, skipping commands\n", env.Name)
		result.Duration = time.Since(started)
		return result
	}

	commands := append(append([][]string{}, env.CommandsPre...), env.Commands...)
	commands = append(commands, env.CommandsPost...)
	// IgnoredCommands indexes are relative to Commands; shift them past
	// the pre-commands.
	ignored := map[int]bool{}
	for i := range env.IgnoredCommands {
		ignored[i+len(env.CommandsPre)] = true
	}

	r.printf("%s docker> image %s\n", env.Name, env.ContainerImage)
	code, err := r.Container.ExecEnv(ctx, env, commands, ignored, environ, r.File.Dir, r.Out)
	if ctx.Err() != nil {
		result.Status = StatusInterrupted
		result.Duration = time.Since(started)
		return result
	}
	if err != nil {
		return r.fail(result, started, err.Error())
	}
	if code != 0 {
		result.Status = StatusFailed
		result.ExitCode = code
		result.Reason = fmt.Sprintf("exit code %d", code)
		if env.IgnoreOutcome {
			result.Status = StatusIgnoredFailure
		}
	}
	result.Duration = time.Since(started)
	return result
}

// checkExternal enforces allowlist_externals. With no allowlist declared
// everything is permitted; once declared, a command's program must match
// one of its entries (exact, basename, or glob) or be "*".
func (r *Runner) checkExternal(env *config.Env, program string) error {
	if len(env.AllowlistExternals) == 0 {
		return nil
	}
	base := filepath.Base(program)
	for _, allowed := range env.AllowlistExternals {
		if allowed == "*" || allowed == program || allowed == base {
			return nil
		}
		if ok, err := path.Match(allowed, base); err == nil && ok {
			return nil
		}
	}
	return fmt.Errorf("%s is not allowlisted in environment %q (allowlist_externals: %s)",
		program, env.Name, strings.Join(env.AllowlistExternals, ", "))
}

func (r *Runner) fail(result Result, started time.Time, reason string) Result {
	result.Status = StatusFailed
	result.Reason = reason
	result.Duration = time.Since(started)
	return result
}

func (r *Runner) printf(format string, args ...any) {
	if r.Quiet {
		return
	}
	fmt.Fprintf(r.Out, format, args...)
}

// expandInstallCommand substitutes the {opts} and {packages} markers left
// by config resolution. {opts} has nothing to contribute here and is
// dropped.
func expandInstallCommand(template []string, packages []string) []string {
	var argv []string
	for _, token := range template {
		switch token {
		case "{opts}":
		case "{packages}":
			argv = append(argv, packages...)
		default:
			argv = append(argv, token)
		}
	}
	return argv
}

// platformMismatch evaluates the platform key as a regular expression
// against the host OS; environments for other platforms are skipped, not
// failed.
func platformMismatch(env *config.Env) (string, bool) {
	if env.Platform == "" {
		return "", false
	}
	re, err := regexp.Compile(env.Platform)
	if err != nil {
		return fmt.Sprintf("invalid platform pattern %q", env.Platform), true
	}
	if !re.MatchString(runtime.GOOS) {
		return fmt.Sprintf("platform %s does not match %q", runtime.GOOS, env.Platform), true
	}
	return "", false
}
