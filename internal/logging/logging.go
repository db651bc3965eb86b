package logging

import (
	"github.com/sirupsen/logrus"

	"github.com/adforge/igpub/internal/config"
)

// Logger represents a logger instance
type Logger = *logrus.Logger

// Fields represents structured logging fields
type Fields = logrus.Fields

// NewLogger creates a new configured logger instance
func NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetLevel(config.GetLogLevel())
	return logger
}

// NewJSONLogger creates a logger with JSON output for non-interactive use
func NewJSONLogger() *logrus.Logger {
	logger := NewLogger()
	logger.SetFormatter(&logrus.JSONFormatter{})
	return logger
}
