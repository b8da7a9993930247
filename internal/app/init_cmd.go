// Where: internal/app/init_cmd.go
// What: init command.
// Why: Scaffold a starter configuration into the project directory.
package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/toxa-dev/toxa/internal/scaffold"
)

func runInit(cli CLI, deps Dependencies, out io.Writer) int {
	dir := deps.WorkDir
	if dir == "" {
		dir = "."
	}
	target := filepath.Join(dir, "toxa.ini")
	if cli.Config != "" {
		target = cli.Config
	}

	if _, err := os.Stat(target); err == nil {
		if !cli.Init.Force {
			return exitWithSuggestion(out,
				fmt.Sprintf("%s already exists", target),
				[]string{"toxa init --force"})
		}
		if deps.Prompter != nil {
			confirmed, err := deps.Prompter.Confirm(fmt.Sprintf("Overwrite %s?", target))
			if err != nil {
				return exitWithError(out, err)
			}
			if !confirmed {
				fmt.Fprintln(out, "aborted")
				return 1
			}
		}
	}

	content, err := scaffold.Render(scaffold.DefaultData())
	if err != nil {
		return exitWithError(out, err)
	}
	if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
		return exitWithError(out, err)
	}

	fmt.Fprintf(out, "wrote %s\n", target)
	return 0
}
