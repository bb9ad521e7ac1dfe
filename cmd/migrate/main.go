package main

import (
	"marketplace/config"
	"marketplace/helper"
	"marketplace/shared/logger"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

func main() {
	logger.InitLogger()

	flags := pflag.NewFlagSet("migrate", pflag.ExitOnError)
	flags.Usage = func() {
		log.Info().Msg("usage: migrate [up|down|step-up|drop|version]")
	}

	_ = flags.Parse(os.Args[1:])

	if flags.NArg() != 1 {
		flags.Usage()
		os.Exit(2) //nolint:mnd
	}

	cfg := config.Get()
	logger.SetLogLevel(cfg)

	action := helper.Action(flags.Arg(0))

	if err := helper.Run(cfg, action); err != nil {
		log.Fatal().Err(err).Str("action", string(action)).Msg("Migration failed")
	}
}
