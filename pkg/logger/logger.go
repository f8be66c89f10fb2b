// Package logger configures the process-wide logrus logger and hands out
// component-scoped entries.
package logger

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	logger *logrus.Logger
	once   sync.Once
)

// Init initializes the global logger at the given level ("debug", "info",
// "warn", ...). Unknown levels fall back to info. Only the first call
// configures the logger.
func Init(level string) *logrus.Logger {
	once.Do(func() {
		logger = New(os.Stdout, level)
	})
	return logger
}

// Get returns the global logger, initializing it at info level if Init
// was never called.
func Get() *logrus.Logger {
	once.Do(func() {
		logger = New(os.Stdout, "info")
	})
	return logger
}

// New builds a standalone logger writing to out.
func New(out io.Writer, level string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}

// For returns an entry tagged with the component name.
func For(component string) *logrus.Entry {
	return Get().WithField("component", component)
}

// Discard returns an entry that drops everything. Useful in tests.
func Discard() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}
