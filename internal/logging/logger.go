package logging

import (
	"io"

	"github.com/sirupsen/logrus"
)

// New creates a logger configured for CLI use. Verbose mode enables
// debug output, which includes every compiled statement.
func New(verbose bool) *logrus.Logger {
	logger := logrus.New()
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
	return logger
}

// NewWithOutput creates a logger writing to the given sink. Tests use
// this to capture or discard output.
func NewWithOutput(verbose bool, out io.Writer) *logrus.Logger {
	logger := New(verbose)
	logger.SetOutput(out)
	return logger
}
