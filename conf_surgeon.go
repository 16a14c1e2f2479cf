package main

import (
	"fmt"
	"os"

	"conf_surgeon/cfg"
	"conf_surgeon/cli"
	"conf_surgeon/edit"
	"conf_surgeon/util/logger"
	"conf_surgeon/util/tw"

	goFlags "github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"
)

func main() {
	// Init logger
	log := logger.New(logrus.InfoLevel)

	// Parse command line arguments
	log.Debug("Parsing command line arguments\n")
	flags, err := cli.Parse()
	if flags.Version {
		fmt.Println("v1.2.0")
		os.Exit(0)
	}
	if cli.IsErrOfType(err, goFlags.ErrHelp) {
		// Help message will be printed by go-flags
		os.Exit(0)
	}
	if err != nil {
		log.Panic(err)
	}
	log.SetLevel(flags.LogLevel)

	if len(flags.Inputs) == 0 {
		log.Info("No documents given, nothing to do. Use -f to name a file or URL to edit")
		os.Exit(0)
	}

	// Init table writer and read program config
	tw := tw.New()
	cfg, isNewCfg, err := cfg.Init(log, flags.ProgramCfgPath)
	if err != nil {
		log.Panic(err)
	}
	if isNewCfg {
		log.Infof("New config is written to %v, please verify it and start this program again", flags.ProgramCfgPath)
		os.Exit(0)
	}

	// Edit documents
	editRepo := edit.NewRepo(log, tw, cfg)
	if err = editRepo.ProcessAll(flags); err != nil {
		log.Panic(err)
	}
}
