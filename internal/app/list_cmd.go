// Where: internal/app/list_cmd.go
// What: list command.
// Why: Show declared environments with their descriptions.
package app

import (
	"fmt"
	"io"

	"github.com/toxa-dev/toxa/internal/config"
)

func runList(cli CLI, deps Dependencies, out io.Writer) int {
	file, err := loadFile(cli, deps)
	if err != nil {
		return exitWithError(out, err)
	}
	printWarnings(file, cli.Quiet, out)

	names := file.EnvList
	if cli.List.All {
		names = file.DeclaredEnvs()
	}
	if len(names) == 0 {
		fmt.Fprintln(out, "no environments declared")
		return 0
	}

	inList := map[string]bool{}
	for _, name := range file.EnvList {
		inList[name] = true
	}

	for _, name := range names {
		marker := " "
		if !inList[name] {
			marker = "!"
		}
		fmt.Fprintf(out, "%s %-20s %s\n", marker, name, describe(file, name))
	}
	if cli.List.All && !cli.Quiet {
		fmt.Fprintln(out, "\n! = not in envlist; run explicitly with -e")
	}
	return 0
}

// describe resolves just enough of an environment to show its
// description; resolution errors degrade to an empty description.
func describe(file *config.File, name string) string {
	env, err := file.Resolve(name, nil)
	if err != nil {
		return ""
	}
	return env.Description
}
