// Where: internal/app/info.go
// What: No-argument invocation output.
// Why: Orient the user — which config file, which environments.
package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/toxa-dev/toxa/internal/version"
)

// runInfo handles invocation without arguments: show where configuration
// was found and what it declares, then the command menu.
func runInfo(cli CLI, deps Dependencies, out io.Writer) int {
	fmt.Fprintf(out, "toxa %s\n\n", version.GetVersion())

	file, err := loadFile(cli, deps)
	if err != nil {
		fmt.Fprintf(out, "No configuration found: %v\n", err)
		fmt.Fprintln(out, "\nRun 'toxa init' to scaffold one.")
		return 1
	}

	fmt.Fprintf(out, "config:  %s\n", file.Path)
	fmt.Fprintf(out, "envlist: %s\n", strings.Join(file.EnvList, ", "))
	if extra := len(file.DeclaredEnvs()) - len(file.EnvList); extra > 0 {
		fmt.Fprintf(out, "         (+%d more, see 'toxa list --all')\n", extra)
	}
	printWarnings(file, cli.Quiet, out)

	fmt.Fprintln(out, `
Commands:
  toxa run [-e env1,env2] [-p N] [-- args]   run environments
  toxa list [--all]                          list environments
  toxa config [env...]                       show resolved configuration
  toxa init                                  scaffold a configuration file
  toxa version                               show version`)
	return 0
}
