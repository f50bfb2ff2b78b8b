package logger

import (
	"time"

	"github.com/btcsuite/btclog"
)

// LogClosure is a closure that can be printed with %s to be used to
// generate expensive-to-create data for a detailed log level and avoid doing
// the work if the data isn't printed.
type LogClosure func() string

func (c LogClosure) String() string {
	return c()
}

// NewLogClosure casts a function to a LogClosure.
// See LogClosure for details.
func NewLogClosure(c func() string) LogClosure {
	return LogClosure(c)
}

// LogAndMeasureExecutionTime logs the start of functionName at debug level and
// returns a func that logs its end together with the elapsed time.
func LogAndMeasureExecutionTime(log btclog.Logger, functionName string) (onEnd func()) {
	start := time.Now()
	log.Debugf("%s start", functionName)
	return func() {
		log.Debugf("%s end. Took: %s", functionName, time.Since(start))
	}
}
