package logging

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/perola/clusterd/internal/config"
)

// NewLogger creates a structured zerolog.Logger with observability context
// fields from the config. Unknown levels fall back to info.
func NewLogger(cfg *config.Config) zerolog.Logger {
	ctx := zerolog.New(os.Stdout).With().Timestamp()

	if cfg.ServiceName != "" {
		ctx = ctx.Str("service", cfg.ServiceName)
	}

	logger := ctx.Logger()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	return logger.Level(level)
}
