package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
)

// ConfigureLogging sets the global logrus level and switches to JSON output in production
func ConfigureLogging(level, environment string) error {
	log.SetOutput(os.Stdout)

	if environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	if level == "" {
		level = "info"
	}
	parsed, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	log.SetLevel(parsed)
	return nil
}
