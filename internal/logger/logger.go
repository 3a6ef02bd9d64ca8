// Package logger provides leveled logging for the vitae CLI.
// Debug and info messages are printed only in verbose mode (--verbose);
// warnings and errors are always printed. Output goes to stderr unless
// redirected with SetOutput.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu      sync.RWMutex
	verbose bool
	jsonOut bool
	output  io.Writer = os.Stderr
	log               = build()
)

// build constructs the logger from the current settings. Callers hold mu.
func build() zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	if jsonOut {
		return zerolog.New(output).Level(level).With().Timestamp().Logger()
	}

	cw := zerolog.ConsoleWriter{
		Out:        output,
		NoColor:    true,
		PartsOrder: []string{zerolog.LevelFieldName, zerolog.MessageFieldName},
		FormatLevel: func(i any) string {
			if s, ok := i.(string); ok {
				return "[" + strings.ToUpper(s) + "]"
			}
			return "[?]"
		},
	}
	return zerolog.New(cw).Level(level)
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	log = build()
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetJSON switches between console output and JSON lines.
// The HTTP server uses JSON so logs can be shipped as-is.
func SetJSON(v bool) {
	mu.Lock()
	defer mu.Unlock()
	jsonOut = v
	log = build()
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	log = build()
}

// Logger returns the underlying structured logger, for callers that
// attach fields (request ids, operation names).
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	log.Debug().Msgf(format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose && !jsonOut {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	log.Info().Msgf(format, args...)
}

// Warn prints a warning message.
func Warn(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	log.Warn().Msgf(format, args...)
}

// Error prints an error message.
func Error(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	log.Error().Msgf(format, args...)
}
