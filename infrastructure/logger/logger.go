package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate/rotator"
	"github.com/pkg/errors"
)

const (
	defaultThresholdKB = 10 * 1000 // 10 MB logs by default.
	defaultMaxRolls    = 3         // keep 3 last logs by default.
)

// logWriter implements an io.Writer that outputs to both standard output and
// the write-end pipe of an initialized log rotator.
type logWriter struct{}

func (logWriter) Write(p []byte) (n int, err error) {
	_, _ = os.Stdout.Write(p)

	rotatorLock.Lock()
	defer rotatorLock.Unlock()
	if logRotator != nil {
		_, _ = logRotator.Write(p)
	}
	return len(p), nil
}

var (
	// BackendLog is the logging backend used to create all subsystem loggers.
	BackendLog = btclog.NewBackend(logWriter{})

	logRotator  *rotator.Rotator
	rotatorLock sync.Mutex

	subsystemLoggers     = make(map[string]btclog.Logger)
	subsystemLoggersLock sync.Mutex
)

// RegisterSubSystem returns the logger for the given subsystem tag, creating
// it on first use. Loggers start at the info level.
func RegisterSubSystem(subsystem string) btclog.Logger {
	subsystemLoggersLock.Lock()
	defer subsystemLoggersLock.Unlock()

	logger, exists := subsystemLoggers[subsystem]
	if !exists {
		logger = BackendLog.Logger(subsystem)
		subsystemLoggers[subsystem] = logger
	}
	return logger
}

// InitLog attaches a rotating log file to the backend log. It is safe to
// call InitLog again to switch to another file.
func InitLog(logFile string) error {
	logDir, _ := filepath.Split(logFile)
	// if the logDir is empty then `logFile` is in the cwd and there's no need to create any directory.
	if logDir != "" {
		err := os.MkdirAll(logDir, 0700)
		if err != nil {
			return errors.Errorf("failed to create log directory: %+v", err)
		}
	}
	r, err := rotator.New(logFile, defaultThresholdKB, false, defaultMaxRolls)
	if err != nil {
		return errors.Errorf("failed to create file rotator: %s", err)
	}

	rotatorLock.Lock()
	defer rotatorLock.Unlock()
	if logRotator != nil {
		_ = logRotator.Close()
	}
	logRotator = r
	return nil
}

// Close finalizes the log rotator, if any.
func Close() {
	rotatorLock.Lock()
	defer rotatorLock.Unlock()
	if logRotator != nil {
		_ = logRotator.Close()
		logRotator = nil
	}
}

// SupportedSubsystems returns a sorted slice of the registered subsystems.
func SupportedSubsystems() []string {
	subsystemLoggersLock.Lock()
	defer subsystemLoggersLock.Unlock()

	subsystems := make([]string, 0, len(subsystemLoggers))
	for subsystem := range subsystemLoggers {
		subsystems = append(subsystems, subsystem)
	}
	sort.Strings(subsystems)
	return subsystems
}

// SetLogLevel sets the logging level for the provided subsystem.
func SetLogLevel(subsystem string, logLevel string) error {
	level, ok := btclog.LevelFromString(logLevel)
	if !ok {
		return errors.Errorf("invalid log level %s", logLevel)
	}

	subsystemLoggersLock.Lock()
	defer subsystemLoggersLock.Unlock()

	logger, exists := subsystemLoggers[subsystem]
	if !exists {
		return errors.Errorf("the specified subsystem [%s] is invalid", subsystem)
	}
	logger.SetLevel(level)
	return nil
}

// SetLogLevels sets the log level for all subsystem loggers to the passed
// level.
func SetLogLevels(logLevel string) error {
	level, ok := btclog.LevelFromString(logLevel)
	if !ok {
		return errors.Errorf("invalid log level %s", logLevel)
	}

	subsystemLoggersLock.Lock()
	defer subsystemLoggersLock.Unlock()

	for _, logger := range subsystemLoggers {
		logger.SetLevel(level)
	}
	return nil
}

// ParseAndSetDebugLevels attempts to parse the specified debug level and set
// the levels accordingly. An appropriate error is returned if anything is
// invalid.
//
// The level is either a single level applied to every subsystem, or a comma
// separated list of <subsystem>=<level> pairs, optionally led by a plain level
// for the rest, e.g. "info,BLCK=trace".
func ParseAndSetDebugLevels(debugLevel string) error {
	if !strings.Contains(debugLevel, "=") {
		if _, ok := btclog.LevelFromString(debugLevel); !ok {
			return errors.Errorf("the specified debug level [%s] is invalid", debugLevel)
		}
		return SetLogLevels(debugLevel)
	}

	for _, pair := range strings.Split(debugLevel, ",") {
		if !strings.Contains(pair, "=") {
			if err := SetLogLevels(pair); err != nil {
				return errors.Wrapf(err, "the specified debug level [%s] is invalid", pair)
			}
			continue
		}

		fields := strings.Split(pair, "=")
		if len(fields) != 2 {
			str := "the specified debug level has an invalid format [%s] -- use format <subsystem>=<level>,<subsystem2>=<level2>,..."
			return errors.Errorf(str, pair)
		}
		if err := SetLogLevel(fields[0], fields[1]); err != nil {
			return errors.Wrapf(err, "supported subsystems %v", SupportedSubsystems())
		}
	}
	return nil
}

// LevelString returns the current level of a subsystem logger, for display.
func LevelString(subsystem string) string {
	subsystemLoggersLock.Lock()
	defer subsystemLoggersLock.Unlock()

	logger, exists := subsystemLoggers[subsystem]
	if !exists {
		return fmt.Sprintf("unknown subsystem %s", subsystem)
	}
	return logger.Level().String()
}
