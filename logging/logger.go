package logging

import "go.uber.org/zap"

// New builds a zap logger for the given environment name. "local" gets a
// debug-level development logger, "development" an info-level development
// logger and everything else the production JSON logger.
func New(env string) (*zap.Logger, error) {
	switch env {
	case "local":
		c := zap.NewDevelopmentConfig()
		c.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		return c.Build()
	case "development":
		c := zap.NewDevelopmentConfig()
		c.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		return c.Build()
	default:
		return zap.NewProduction()
	}
}
