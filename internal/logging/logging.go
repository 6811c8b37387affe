// Package logging configures the zerolog loggers the scanner and CLI use.
// Output is human-readable on a terminal and structured JSON everywhere
// else.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// New builds a logger writing to w. When w is a terminal and forceJSON is
// false, output goes through the console writer; NO_COLOR disables color.
func New(w io.Writer, level string, forceJSON bool) zerolog.Logger {
	writer := w
	if !forceJSON {
		if f, ok := w.(*os.File); ok && isTerminal(f) {
			writer = zerolog.ConsoleWriter{
				Out:        f,
				TimeFormat: time.Kitchen,
				NoColor:    os.Getenv("NO_COLOR") != "",
			}
		}
	}

	return zerolog.New(writer).Level(ParseLevel(level)).With().Timestamp().Logger()
}

// ParseLevel maps a level name onto a zerolog level. Unknown or empty names
// fall back to info.
func ParseLevel(s string) zerolog.Level {
	if s == "" {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
