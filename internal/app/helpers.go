// Where: internal/app/helpers.go
// What: Shared command helpers.
// Why: Keep error exits and suggestion output consistent.
package app

import (
	"fmt"
	"io"
)

func exitWithError(out io.Writer, err error) int {
	fmt.Fprintf(out, "✗ %v\n", err)
	return 1
}

func exitWithSuggestion(out io.Writer, message string, suggestions []string) int {
	fmt.Fprintf(out, "✗ %s\n", message)
	for _, suggestion := range suggestions {
		fmt.Fprintf(out, "  try: %s\n", suggestion)
	}
	return 1
}
