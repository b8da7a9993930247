// Where: cmd/toxa/main.go
// What: CLI entrypoint.
// Why: Execute toxa commands with configured dependencies.
package main

import (
	"fmt"
	"os"

	"github.com/toxa-dev/toxa/internal/app"
)

func main() {
	deps, err := buildDependencies(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	os.Exit(app.Run(os.Args[1:], deps))
}
