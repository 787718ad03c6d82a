package logging

import (
	"strings"

	"github.com/sirupsen/logrus"

	"contact-relay-go/internal/config"
)

// Setup configures the standard logrus logger from config.
// Unknown levels fall back to info; format "text" switches off JSON output.
func Setup(cfg config.LogConfig) {
	if strings.EqualFold(cfg.Format, "text") {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(strings.TrimSpace(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}
