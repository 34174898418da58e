package cmd

import (
	"os"

	"fundledger/config"

	log "github.com/sirupsen/logrus"
)

// loadConfig loads configuration and applies its logging settings
func loadConfig() *config.Config {
	cfg := config.Get()
	configureLogging(cfg)
	return cfg
}

// configureLogging sets the logrus level and formatter from configuration
func configureLogging(cfg *config.Config) {
	log.SetOutput(os.Stdout)

	if cfg.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
