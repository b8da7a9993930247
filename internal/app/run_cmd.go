// Where: internal/app/run_cmd.go
// What: run command orchestration.
// Why: Wire selection, planning, and execution into one workflow.
package app

import (
	"context"
	"io"
	"os/signal"
	"syscall"

	"github.com/toxa-dev/toxa/internal/config"
	"github.com/toxa-dev/toxa/internal/run"
)

// runRun executes the 'run' command: discover config, select and order
// environments, run them, and summarize. The process exit code is 0 only
// when every selected environment passed.
func runRun(cli CLI, deps Dependencies, out io.Writer) int {
	file, err := loadFile(cli, deps)
	if err != nil {
		return exitWithError(out, err)
	}

	// Remembered defaults apply when the corresponding flag is absent.
	global, globalErr := loadGlobalOrDefault()
	quiet := cli.Quiet
	if globalErr == nil && global.Quiet {
		quiet = true
	}
	printWarnings(file, quiet, out)

	names, err := run.Select(file, cli.EnvFlag, environValue(deps.Environ, run.EnvSelectionVar))
	if err != nil {
		return exitWithSuggestion(out, err.Error(), []string{"toxa list --all"})
	}

	// kong's passthrough keeps the "--" separator in the collected args.
	posArgs := cli.Run.PosArgs
	if len(posArgs) > 0 && posArgs[0] == "--" {
		posArgs = posArgs[1:]
	}

	plan, err := run.BuildPlan(file, names, posArgs)
	if err != nil {
		return exitWithError(out, err)
	}

	runner := &run.Runner{
		File:  file,
		Exec:  deps.Exec,
		Out:   out,
		Log:   deps.Log,
		Quiet: quiet,
	}
	if planNeedsDocker(plan) {
		if deps.Container == nil {
			return exitWithSuggestion(out,
				"a selected environment uses the docker runner but no Docker client is available",
				[]string{"check that the Docker daemon is running"})
		}
		container, err := deps.Container()
		if err != nil {
			return exitWithError(out, err)
		}
		runner.Container = container
	}

	parallel := cli.Run.Parallel
	if parallel == 0 && globalErr == nil {
		parallel = global.DefaultParallel
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report := runner.Execute(ctx, plan, parallel, run.Options{
		NoTest:  cli.Run.NoTest,
		PosArgs: posArgs,
		Environ: deps.Environ,
	})
	report.Summary(out)

	rememberProject(file.Dir)

	if report.Failed() {
		return 1
	}
	return 0
}

func planNeedsDocker(plan *run.Plan) bool {
	for _, env := range plan.Envs {
		if env.Runner == config.RunnerDocker {
			return true
		}
	}
	return false
}

func loadGlobalOrDefault() (config.GlobalConfig, error) {
	path, err := config.GlobalConfigPath()
	if err != nil {
		return config.DefaultGlobalConfig(), err
	}
	cfg, err := config.LoadGlobalConfig(path)
	if err != nil {
		return config.DefaultGlobalConfig(), err
	}
	return cfg, nil
}

// rememberProject records the project directory in the global config.
// Failure is invisible: remembering is a convenience, never a blocker.
func rememberProject(dir string) {
	path, err := config.GlobalConfigPath()
	if err != nil {
		return
	}
	cfg, err := config.LoadGlobalConfig(path)
	if err != nil {
		cfg = config.DefaultGlobalConfig()
	}
	cfg.RememberProject(dir)
	_ = config.SaveGlobalConfig(path, cfg)
}
