package main

import (
	"path/filepath"

	"github.com/contractchain/contractd/infrastructure/logger"
)

var log = logger.RegisterSubSystem("BINS")

// initLog starts writing the log to a rotated file in logDir, in addition to
// stdout. An empty logDir leaves the log on stdout only.
func initLog(logDir string) error {
	if logDir == "" {
		return nil
	}
	return logger.InitLog(filepath.Join(logDir, defaultLogFilename))
}
