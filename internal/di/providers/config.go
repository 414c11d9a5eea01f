// Package providers contains dependency injection providers for the FastLog server.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/fastlogapp/fastlog-server/internal/config"
	"github.com/fastlogapp/fastlog-server/internal/logger"
	"github.com/fastlogapp/fastlog-server/internal/validation"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	})

	log.Info("Starting FastLog Server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"metadata_path", cfg.Metadata.BasePath,
		"timezone", cfg.Tracking.Location.String(),
		"default_goal_hours", cfg.Tracking.DefaultGoalHours,
	)

	return log, nil
}

// ProvideValidator provides the shared request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}
