package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"

	"github.com/contractchain/contractd/infrastructure/logger"
	"github.com/contractchain/contractd/version"
)

func main() {
	if err := blockinspectMain(os.Args[1:]); err != nil {
		printErrorAndExit(err.Error())
	}
}

func blockinspectMain(args []string) error {
	cfg, err := parseConfig(args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, err)
			return nil
		}
		return errors.Wrap(err, "error parsing command-line arguments")
	}

	if cfg.ShowVersion {
		fmt.Println("blockinspect version", version.Version())
		return nil
	}

	err = initLog(cfg.LogDir)
	if err != nil {
		return errors.Wrap(err, "error initializing the log")
	}
	defer logger.Close()

	return inspect(cfg, os.Stdout)
}

func printErrorAndExit(message string) {
	fmt.Fprintln(os.Stderr, message)
	os.Exit(1)
}
