// Package logging wires slog for the CLI: a colored console handler plus a
// plain, line-numbered log file.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/openmined/docsync/internal/utils"
)

const consoleTimeFormat = "15:04:05.000"

type Options struct {
	Console io.Writer // usually os.Stderr
	Verbose bool      // debug level on the console
	LogFile string    // empty disables the file handler
}

// New builds the logger described by opts. The returned close func flushes
// and closes the log file.
func New(opts Options) (*slog.Logger, func() error, error) {
	consoleLevel := slog.LevelInfo
	if opts.Verbose {
		consoleLevel = slog.LevelDebug
	}
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	consoleHandler := tint.NewHandler(console, &tint.Options{
		Level:      consoleLevel,
		TimeFormat: consoleTimeFormat,
		NoColor:    !colorEnabled(console),
	})

	if opts.LogFile == "" {
		return slog.New(consoleHandler), func() error { return nil }, nil
	}

	if err := utils.EnsureParent(opts.LogFile); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	file, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	lineWriter := NewLineWriter(file)
	fileHandler := slog.NewTextHandler(lineWriter, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		// the line writer stamps the time
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		},
	})

	closeFn := func() error {
		flushErr := lineWriter.Close()
		closeErr := file.Close()
		if flushErr != nil {
			return flushErr
		}
		return closeErr
	}
	return slog.New(NewMultiHandler(consoleHandler, fileHandler)), closeFn, nil
}

func colorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
