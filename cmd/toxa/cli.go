// Where: cmd/toxa/cli.go
// What: CLI dependency wiring helpers.
// Why: Centralize construction for testability.
package main

import (
	"os"

	"github.com/toxa-dev/toxa/internal/app"
	"github.com/toxa-dev/toxa/internal/docker"
	"github.com/toxa-dev/toxa/internal/logging"
	"github.com/toxa-dev/toxa/internal/run"
)

var (
	getwd           = os.Getwd
	newDockerClient = docker.NewClient
)

// buildDependencies constructs all runtime dependencies required by the
// CLI. The Docker client is deferred behind a factory so purely local
// runs never touch the daemon socket.
func buildDependencies(args []string) (app.Dependencies, error) {
	workDir, err := getwd()
	if err != nil {
		return app.Dependencies{}, err
	}

	deps := app.Dependencies{
		WorkDir:  workDir,
		Out:      os.Stdout,
		Environ:  os.Environ(),
		Exec:     run.ExecRunner{},
		Prompter: app.HuhPrompter{},
		Log:      logging.New(os.Stderr, hasVerboseFlag(args)),
		Container: func() (run.ContainerExecutor, error) {
			client, err := newDockerClient()
			if err != nil {
				return nil, err
			}
			return docker.NewExecutor(client), nil
		},
	}
	return deps, nil
}

// hasVerboseFlag peeks at the raw arguments before kong parses them; the
// logger must exist before parsing starts.
func hasVerboseFlag(args []string) bool {
	for _, arg := range args {
		if arg == "--" {
			return false
		}
		if arg == "-v" || arg == "--verbose" {
			return true
		}
	}
	return false
}
