package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const serviceName = "virtual-wallet"

// New builds the process-wide logger writing to stdout. level accepts
// the zerolog level names; anything unparseable falls back to info.
// pretty switches to a console writer for local development.
func New(level string, pretty bool) zerolog.Logger {
	var w io.Writer = os.Stdout
	if pretty {
		w = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}
	return base(level, w).With().
		Caller().
		Str("service", serviceName).
		Logger()
}

// NewWithWriter builds a logger over an arbitrary writer. Tests use it
// to capture output.
func NewWithWriter(level string, w io.Writer) zerolog.Logger {
	return base(level, w)
}

func base(level string, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
