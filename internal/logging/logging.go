// Package logging builds the zerolog loggers used across notechat and
// redacts secrets before they are written.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

const logFileName = "notechat.log"

type FileLogger struct {
	Logger  zerolog.Logger
	Close   func() error
	Path    string
	Enabled bool

	out io.Writer
}

func Nop() zerolog.Logger {
	return zerolog.Nop()
}

func disabled() FileLogger {
	return FileLogger{Logger: Nop(), Close: func() error { return nil }}
}

// NewFileLogger appends JSON lines to <dataDir>/logs/notechat.log when debug
// is on. With debug off it returns a disabled logger and no file is touched.
func NewFileLogger(dataDir string, debug bool) (FileLogger, error) {
	if !debug {
		return disabled(), nil
	}
	logDir := filepath.Join(dataDir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return disabled(), err
	}
	path := filepath.Join(logDir, logFileName)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return disabled(), err
	}
	return FileLogger{
		Logger:  newLogger(file),
		Close:   file.Close,
		Path:    path,
		Enabled: true,
		out:     file,
	}, nil
}

// WithConsole also writes every event to w. Terminals get the human-readable
// console format, anything else gets JSON lines.
func (f FileLogger) WithConsole(w *os.File) FileLogger {
	var console io.Writer = w
	if isTerminal(w) {
		console = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	writers := []io.Writer{console}
	if f.out != nil {
		writers = append(writers, f.out)
	}
	f.out = zerolog.MultiLevelWriter(writers...)
	f.Logger = newLogger(f.out)
	f.Enabled = true
	return f
}

func newLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).Level(zerolog.DebugLevel).With().Timestamp().Logger()
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
