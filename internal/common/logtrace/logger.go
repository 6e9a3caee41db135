// Package logtrace builds the zerolog loggers used by the client and the CLI.
package logtrace

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultLevel is the level used when none is configured. Only errors are
// reported unless the caller asks for more.
const DefaultLevel = zerolog.ErrorLevel

// Options configures a logger.
type Options struct {
	Level   string    // zerolog level name, or http, verbose, silly
	Silent  bool      // discard everything
	Console bool      // human readable output instead of JSON lines
	Writer  io.Writer // defaults to stderr
}

// ParseLevel maps a level name to a zerolog level. The names http and verbose
// map to debug and silly maps to trace. Unknown or empty names yield DefaultLevel.
func ParseLevel(name string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return DefaultLevel
	case "http", "verbose":
		return zerolog.DebugLevel
	case "silly":
		return zerolog.TraceLevel
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(name))
	if err != nil || lvl == zerolog.NoLevel {
		return DefaultLevel
	}
	return lvl
}

// New returns a logger for the given options.
func New(opts Options) zerolog.Logger {
	if opts.Silent {
		return zerolog.Nop()
	}
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	if opts.Console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	return zerolog.New(w).Level(ParseLevel(opts.Level)).With().Timestamp().Logger()
}

// InitLogger installs a logger built from opts as the global zerolog logger.
func InitLogger(opts Options) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = New(opts)
}
