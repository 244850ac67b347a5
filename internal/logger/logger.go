// Package logger wires zerolog behind the logr interface the rest of the estimator logs through,
// so call sites never depend on zerolog directly.
package logger

import (
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zerologr"
	"github.com/rs/zerolog"
)

func init() {
	zerologr.NameFieldName = "logger"
	zerologr.NameSeparator = "/"
}

// New builds a logr.Logger backed by a zerolog console writer, honoring debugMode for verbosity.
func New(debugMode bool) logr.Logger {
	level := zerolog.InfoLevel
	if debugMode {
		level = zerolog.DebugLevel
	}
	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Logger()
	return zerologr.New(&zl)
}
