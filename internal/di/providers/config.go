// Package providers contains dependency injection providers for the server.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/vorojar/Qwen3-TTS/internal/config"
	"github.com/vorojar/Qwen3-TTS/internal/logger"
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
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting Qwen3-TTS editor server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Data.BasePath,
		"synth_endpoint", cfg.Synthesis.Endpoint,
	)

	return log, nil
}
