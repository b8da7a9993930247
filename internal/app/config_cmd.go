// Where: internal/app/config_cmd.go
// What: config command.
// Why: Show per-environment resolved values for debugging a setup.
package app

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/toxa-dev/toxa/internal/config"
)

func runConfigShow(cli CLI, deps Dependencies, out io.Writer) int {
	file, err := loadFile(cli, deps)
	if err != nil {
		return exitWithError(out, err)
	}
	printWarnings(file, cli.Quiet, out)

	names := cli.Conf.Envs
	if len(names) == 0 {
		names = file.EnvList
	}
	if len(names) == 0 {
		names = file.DeclaredEnvs()
	}

	for i, name := range names {
		if !file.HasEnv(name) {
			return exitWithSuggestion(out,
				fmt.Sprintf("unknown environment %q", name),
				[]string{"toxa list --all"})
		}
		env, err := file.Resolve(name, nil)
		if err != nil {
			return exitWithError(out, err)
		}
		if i > 0 {
			fmt.Fprintln(out)
		}
		printEnv(out, env)
	}
	return 0
}

func printEnv(out io.Writer, env *config.Env) {
	fmt.Fprintf(out, "[%s]\n", env.Name)
	printValue(out, "description", env.Description)
	printValue(out, "basepython", env.BasePython)
	printValue(out, "platform", env.Platform)
	printValue(out, "changedir", env.ChangeDir)
	printValue(out, "runner", env.Runner)
	printValue(out, "container_image", env.ContainerImage)
	printValue(out, "skip_install", fmt.Sprintf("%t", env.SkipInstall))
	printValue(out, "ignore_errors", fmt.Sprintf("%t", env.IgnoreErrors))
	printValue(out, "ignore_outcome", fmt.Sprintf("%t", env.IgnoreOutcome))
	printList(out, "deps", env.Deps)
	printList(out, "depends", env.Depends)
	printList(out, "passenv", env.PassEnv)
	printList(out, "allowlist_externals", env.AllowlistExternals)
	printValue(out, "install_command", strings.Join(env.InstallCommand, " "))

	if len(env.SetEnv) > 0 {
		keys := make([]string, 0, len(env.SetEnv))
		for key := range env.SetEnv {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		fmt.Fprintln(out, "  setenv =")
		for _, key := range keys {
			fmt.Fprintf(out, "    %s=%s\n", key, env.SetEnv[key])
		}
	}

	printCommands(out, "commands_pre", env.CommandsPre)
	printCommands(out, "commands", env.Commands)
	printCommands(out, "commands_post", env.CommandsPost)
}

func printValue(out io.Writer, key, value string) {
	if value != "" {
		fmt.Fprintf(out, "  %s = %s\n", key, value)
	}
}

func printList(out io.Writer, key string, values []string) {
	if len(values) > 0 {
		fmt.Fprintf(out, "  %s = %s\n", key, strings.Join(values, ", "))
	}
}

func printCommands(out io.Writer, key string, commands [][]string) {
	if len(commands) == 0 {
		return
	}
	fmt.Fprintf(out, "  %s =\n", key)
	for _, argv := range commands {
		fmt.Fprintf(out, "    %s\n", strings.Join(argv, " "))
	}
}
