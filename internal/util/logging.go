package util

import (
	stdlog "log"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var (
	defaultLogFormatter = &log.TextFormatter{}

	// verbosity levels selectable with -v
	verboseLevels = []log.Level{log.ErrorLevel, log.InfoLevel, log.DebugLevel, log.TraceLevel}
)

// infoFormatter prints Info() events as bare lines and everything else
// with the default text formatter
type infoFormatter struct {
}

func (f *infoFormatter) Format(entry *log.Entry) ([]byte, error) {
	if entry.Level == log.InfoLevel {
		return append([]byte(entry.Message), '\n'), nil
	}
	return defaultLogFormatter.Format(entry)
}

// SetupLogging once the flags have been parsed, setup the logging.
// Libraries logging through the standard logger, go-fuse among them, are
// routed to logrus at debug level.
func SetupLogging(quiet bool, verbose int, verboseSet bool) error {
	log.SetFormatter(new(infoFormatter))
	log.SetLevel(log.InfoLevel)
	if quiet && verboseSet && verbose > 0 {
		return errors.New("can't set quiet and verbose flag at the same time")
	}
	if verbose < 0 || verbose >= len(verboseLevels) {
		return errors.Errorf("verbose flag can only be set to 0 to %d", len(verboseLevels)-1)
	}
	level := verboseLevels[verbose]
	if quiet {
		level = log.ErrorLevel
	}
	// structured lines whenever verbosity was asked for explicitly
	if verboseSet || level > log.InfoLevel {
		log.SetFormatter(defaultLogFormatter)
	}
	log.SetLevel(level)

	stdlog.SetFlags(0)
	stdlog.SetOutput(log.StandardLogger().WriterLevel(log.DebugLevel))
	return nil
}
