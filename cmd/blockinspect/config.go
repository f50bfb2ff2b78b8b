package main

import (
	"path/filepath"

	"github.com/btcsuite/btcutil"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"

	"github.com/contractchain/contractd/domain/block"
	"github.com/contractchain/contractd/infrastructure/logger"
)

const (
	defaultLogFilename = "blockinspect.log"
	defaultDebugLevel  = "info"
)

var (
	defaultHomeDir = btcutil.AppDataDir("blockinspect", false)
	defaultLogDir  = filepath.Join(defaultHomeDir, "logs")
)

type configFlags struct {
	File         string `short:"f" long:"file" description:"File holding the block, as hex text or, with --binary, as raw bytes"`
	Hex          string `long:"hex" description:"The block as a hex string"`
	Binary       bool   `short:"b" long:"binary" description:"The file given with --file holds raw bytes rather than hex text"`
	Raw          bool   `long:"raw" description:"The input uses the raw block file layout, with an 8 byte prefix before the block"`
	Dump         bool   `long:"dump" description:"Print a structure dump of the decoded block"`
	LogDir       string `long:"logdir" description:"Directory to log output. Logging to a file is disabled if empty"`
	DebugLevel   string `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems"`
	MaxBlockSize int    `long:"maxblocksize" description:"Warn when the block encoding is larger than this number of bytes"`
	ShowVersion  bool   `short:"V" long:"version" description:"Display version information and exit"`
}

func parseConfig(args []string) (*configFlags, error) {
	cfg := &configFlags{
		LogDir:       defaultLogDir,
		DebugLevel:   defaultDebugLevel,
		MaxBlockSize: block.MaxBlockSize,
	}
	parser := flags.NewParser(cfg, flags.HelpFlag)
	parser.Usage = "blockinspect [OPTIONS]\n\nExactly one of --file or --hex must be specified."
	_, err := parser.ParseArgs(args)
	if err != nil {
		return nil, err
	}

	if cfg.ShowVersion {
		return cfg, nil
	}

	if (cfg.File == "") == (cfg.Hex == "") {
		return nil, errors.New("Exactly one of --file or --hex must be specified")
	}
	if cfg.Binary && cfg.File == "" {
		return nil, errors.New("--binary can only be used together with --file")
	}
	if cfg.MaxBlockSize <= 0 {
		return nil, errors.Errorf("--maxblocksize must be positive, got %d", cfg.MaxBlockSize)
	}

	err = logger.ParseAndSetDebugLevels(cfg.DebugLevel)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
