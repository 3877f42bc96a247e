// Package logging builds the slog handler shared by every binary.
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

type fdWriter interface {
	io.Writer
	Fd() uintptr
}

// NewHandler returns a tint handler writing to w. Colors are used only when w is a terminal.
func NewHandler(w io.Writer, level slog.Leveler) slog.Handler {
	noColor := true
	if f, ok := w.(fdWriter); ok {
		noColor = !isatty.IsTerminal(f.Fd())
	}

	return tint.NewHandler(w, &tint.Options{
		NoColor:    noColor,
		TimeFormat: time.Kitchen,
		Level:      level,
	})
}

// Setup installs the default logger. An empty path logs to stdout; otherwise logs
// are appended to the file, which the caller must close.
func Setup(level slog.Level, path string) (io.Closer, error) {
	var w io.Writer = os.Stdout
	var closer io.Closer = io.NopCloser(nil)

	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		w = f
		closer = f
	}

	slog.SetDefault(slog.New(NewHandler(w, level)))
	return closer, nil
}

// Discard installs a logger that drops everything
func Discard() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
