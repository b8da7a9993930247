// Where: internal/logging/logging.go
// What: Diagnostic logger construction.
// Why: One place decides level and format for -v output.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// EnvLogLevel overrides the level chosen by flags.
const EnvLogLevel = "TOXA_LOG_LEVEL"

// New builds the diagnostic logger. Verbose enables debug level; the
// TOXA_LOG_LEVEL variable wins over both.
func New(out io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	if raw := strings.TrimSpace(os.Getenv(EnvLogLevel)); raw != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(raw)); err == nil {
			level = parsed
		}
	}

	writer := zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}
