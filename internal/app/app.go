// Where: internal/app/app.go
// What: CLI entrypoint logic.
// Why: Provide a testable command dispatcher.
package app

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/toxa-dev/toxa/internal/config"
	"github.com/toxa-dev/toxa/internal/run"
	"github.com/toxa-dev/toxa/internal/version"
)

// Dependencies holds all injected dependencies required for CLI command
// execution. It enables swapping subsystems in tests.
type Dependencies struct {
	WorkDir string
	Out     io.Writer
	Environ []string
	Exec    run.CommandRunner
	// Container is constructed lazily so a Docker daemon is only
	// required when a docker-runner environment is selected.
	Container func() (run.ContainerExecutor, error)
	Prompter  Prompter
	Log       zerolog.Logger
}

// CLI defines the command-line interface structure parsed by Kong.
type CLI struct {
	Config  string `short:"c" help:"Path to configuration file (default: discovered)"`
	EnvFlag string `short:"e" name:"env" help:"Environments to run, comma separated (ALL for every declared env)"`
	EnvFile string `name:"env-file" help:"Path to .env file"`
	Quiet   bool   `short:"q" help:"Suppress command echo and warnings"`
	Verbose bool   `short:"v" help:"Enable diagnostic logging"`

	Run     RunCmd     `cmd:"" help:"Run test environments"`
	List    ListCmd    `cmd:"" help:"List environments"`
	Conf    ConfigCmd  `cmd:"" name:"config" help:"Show resolved configuration"`
	Init    InitCmd    `cmd:"" help:"Scaffold a starter configuration file"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

type VersionCmd struct{}

type (
	RunCmd struct {
		Parallel int      `short:"p" help:"Run up to N environments in parallel"`
		NoTest   bool     `name:"notest" help:"Prepare environments but skip commands"`
		PosArgs  []string `arg:"" optional:"" passthrough:"" help:"Arguments substituted for {posargs}"`
	}
	ListCmd struct {
		All bool `short:"a" help:"Include environments outside envlist"`
	}
	ConfigCmd struct {
		Envs []string `arg:"" optional:"" help:"Environments to show (default: envlist)"`
	}
	InitCmd struct {
		Force bool `help:"Overwrite an existing configuration file"`
	}
)

// Run is the main entry point for CLI command execution. It parses the
// arguments and dispatches to the matching handler. Returns the process
// exit code.
func Run(args []string, deps Dependencies) int {
	out := deps.Out
	if out == nil {
		out = os.Stdout
	}
	deps.Out = out
	if deps.Exec == nil {
		deps.Exec = run.ExecRunner{}
	}
	if deps.Environ == nil {
		deps.Environ = os.Environ()
	}

	if err := config.EnsureGlobalConfig(); err != nil {
		return exitWithError(out, err)
	}

	if len(args) == 0 {
		return runInfo(CLI{}, deps, out)
	}

	cli := CLI{}
	parser, err := kong.New(&cli)
	if err != nil {
		return exitWithError(out, err)
	}

	ctx, err := parser.Parse(args)
	if err != nil {
		return handleParseError(err, out)
	}

	if cli.EnvFile != "" {
		if err := godotenv.Load(cli.EnvFile); err != nil {
			fmt.Fprintf(out, "Warning: failed to load env file %s: %v\n", cli.EnvFile, err)
		}
	} else if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			fmt.Fprintf(out, "Warning: failed to load .env: %v\n", err)
		}
	}

	command := ctx.Command()
	if exitCode, handled := dispatchCommand(command, cli, deps, out); handled {
		return exitCode
	}

	fmt.Fprintln(out, "unknown command")
	return 1
}

type commandHandler func(CLI, Dependencies, io.Writer) int

func dispatchCommand(command string, cli CLI, deps Dependencies, out io.Writer) (int, bool) {
	exactHandlers := map[string]commandHandler{
		"run":     runRun,
		"list":    runList,
		"config":  runConfigShow,
		"init":    runInit,
		"version": func(_ CLI, _ Dependencies, out io.Writer) int { return runVersion(out) },
	}

	if handler, ok := exactHandlers[command]; ok {
		return handler(cli, deps, out), true
	}

	prefixHandlers := []struct {
		prefix  string
		handler commandHandler
	}{
		{prefix: "run", handler: runRun},
		{prefix: "config", handler: runConfigShow},
	}
	for _, entry := range prefixHandlers {
		if strings.HasPrefix(command, entry.prefix) {
			return entry.handler(cli, deps, out), true
		}
	}

	return 1, false
}

// runVersion prints the version information of the CLI.
func runVersion(out io.Writer) int {
	fmt.Fprintln(out, version.GetVersion())
	return 0
}

// handleParseError keeps kong's message but routes it through the usual
// error path.
func handleParseError(err error, out io.Writer) int {
	return exitWithError(out, err)
}

// loadFile loads the configuration named by -c, or discovers one in the
// working directory.
func loadFile(cli CLI, deps Dependencies) (*config.File, error) {
	if cli.Config != "" {
		return config.Load(cli.Config)
	}
	dir := deps.WorkDir
	if dir == "" {
		dir = "."
	}
	return config.Discover(dir)
}

func printWarnings(file *config.File, quiet bool, out io.Writer) {
	if quiet {
		return
	}
	for _, warning := range file.Warnings {
		fmt.Fprintf(out, "Warning: %s\n", warning)
	}
}

// environValue looks a key up in the injected environment.
func environValue(environ []string, key string) string {
	for _, entry := range environ {
		if value, ok := strings.CutPrefix(entry, key+"="); ok {
			return value
		}
	}
	return ""
}
