package cmd

import (
	"os"
	"strings"

	"cardswap/config"

	log "github.com/sirupsen/logrus"
)

// ConfigureLogging applies the configured level and format to the standard logrus logger
func ConfigureLogging(cfg *config.Config) {
	log.SetOutput(os.Stdout)

	if strings.EqualFold(cfg.LogFormat, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
		log.Warnf("Unknown log level %q, using info", cfg.LogLevel)
	}
	if cfg.IsDebug() && level < log.DebugLevel {
		level = log.DebugLevel
	}
	log.SetLevel(level)
}
