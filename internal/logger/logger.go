// Package logger builds the process zap logger.
package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Environment selects the encoder preset.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

// ParseEnvironment maps a config string to an Environment; anything but "production" is Development.
func ParseEnvironment(mode string) Environment {
	if mode == string(Production) {
		return Production
	}
	return Development
}

// New returns a logger writing to stderr at level.
func New(level string, env Environment) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}

	var cfg zap.Config
	if env == Production {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build(zap.WithCaller(env == Development))
}

// Must is New that falls back to a no-op logger and reports the problem on stderr.
func Must(level string, env Environment) *zap.Logger {
	l, err := New(level, env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		return zap.NewNop()
	}
	return l
}
