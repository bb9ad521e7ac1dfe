package logger

import (
	"marketplace/config"
	"marketplace/shared/constant"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const defaultLevel = zerolog.TraceLevel

// InitLogger installs a human-readable console logger at trace level. SetLogLevel narrows it
// once the configuration is known.
func InitLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(defaultLevel)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	log.Trace().Msg("Zerolog initialized.")
}

func ErrorWithStack(err error) {
	log.Error().Msgf("%+v", errors.WithStack(err))
}

// SetLogLevel applies SERVER_LOG_LEVEL. Production switches to plain JSON lines on stdout.
// Empty or unknown levels keep the trace default.
func SetLogLevel(cfg *config.Config) {
	if cfg.Server.Env == constant.ServerEnvProduction {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	level, err := zerolog.ParseLevel(cfg.Server.LogLevel)
	if err != nil || cfg.Server.LogLevel == "" {
		level = defaultLevel
	}

	zerolog.SetGlobalLevel(level)

	log.Trace().Str("loglevel", level.String()).Bool("configured", err == nil && cfg.Server.LogLevel != "").Msg("Log level applied")
}

// Component returns the global logger tagged with a component name, used by background workers.
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
