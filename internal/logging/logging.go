package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Options controls logger construction
type Options struct {
	// File receives a copy of every line; empty disables the file sink
	File    string
	Level   string
	Verbose bool
	Console io.Writer
}

// New builds a logger writing timestamped lines to the console and to the log
// file. The returned closer releases the file.
func New(opts Options) (*logrus.Logger, io.Closer, error) {
	logger := logrus.New()

	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	switch {
	case opts.Level != "":
		level, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		logger.SetLevel(level)
	case opts.Verbose:
		logger.SetLevel(logrus.DebugLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	if opts.File == "" {
		logger.SetOutput(console)
		return logger, io.NopCloser(nil), nil
	}

	f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %s: %w", opts.File, err)
	}
	logger.SetOutput(io.MultiWriter(console, f))

	return logger, f, nil
}
