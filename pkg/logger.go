package decoder

import (
	log "github.com/sirupsen/logrus"
)

var logger *log.Logger = log.StandardLogger()

// SetLogger replaces the package logger. The default is the logrus
// standard logger.
func SetLogger(l *log.Logger) {
	logger = l
}

// SetVerbosity maps the configuration verbosity level to a log level.
// 0 is warnings and errors only, 1 adds per-event info, 2 and above
// enables full decoder debugging.
func SetVerbosity(verbosity int) {
	switch {
	case verbosity <= 0:
		logger.SetLevel(log.WarnLevel)
	case verbosity == 1:
		logger.SetLevel(log.InfoLevel)
	default:
		logger.SetLevel(log.DebugLevel)
	}
}
