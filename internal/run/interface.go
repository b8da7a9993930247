// Where: internal/run/interface.go
// What: Subprocess execution contract.
// Why: Keep the runner testable without spawning real processes.
package run

import (
	"context"
	"errors"
	"io"
	"os/exec"
)

// Command describes one subprocess invocation.
type Command struct {
	Argv   []string
	Dir    string
	Env    []string
	Stdout io.Writer
	Stderr io.Writer
}

// CommandRunner executes commands. Exec returns the process exit code;
// err is non-nil only when the process could not be run at all (not
// found, permission, context canceled before start).
type CommandRunner interface {
	Exec(ctx context.Context, cmd Command) (int, error)
}

// ExecRunner is the os/exec-backed CommandRunner.
type ExecRunner struct{}

func (ExecRunner) Exec(ctx context.Context, cmd Command) (int, error) {
	proc := exec.CommandContext(ctx, cmd.Argv[0], cmd.Argv[1:]...)
	proc.Dir = cmd.Dir
	proc.Env = cmd.Env
	proc.Stdout = cmd.Stdout
	proc.Stderr = cmd.Stderr

	err := proc.Run()
	if err == nil {
		return 0, nil
	}
	var exit *exec.ExitError
	if errors.As(err, &exit) {
		return exit.ExitCode(), nil
	}
	return -1, err
}
