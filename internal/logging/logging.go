// Package logging builds the application logger and adapts it to the
// printf-style Logger interfaces consumed by the core packages.
package logging

import (
	"github.com/sirupsen/logrus"
)

// New constructs a logrus logger from the configured level and format.
func New(level, format string) *logrus.Logger {
	logger := logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}

// Adapter exposes a logrus entry through the printf-style interface the
// core packages depend on.
type Adapter struct {
	entry *logrus.Entry
}

// NewAdapter scopes the logger to a component name.
func NewAdapter(logger *logrus.Logger, component string) *Adapter {
	return &Adapter{entry: logger.WithField("component", component)}
}

func (a *Adapter) Debug(format string, args ...any) { a.entry.Debugf(format, args...) }
func (a *Adapter) Info(format string, args ...any)  { a.entry.Infof(format, args...) }
func (a *Adapter) Warn(format string, args ...any)  { a.entry.Warnf(format, args...) }
func (a *Adapter) Error(format string, args ...any) { a.entry.Errorf(format, args...) }
