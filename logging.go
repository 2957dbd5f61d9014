package parlex

import (
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggingConfig selects where diagnostics go and how much of them.
type LoggingConfig struct {
	Logfile string `yaml:"logfile"`
	Level   string `yaml:"level"`
}

// NewLoggingConfig returns the default logging configuration.
func NewLoggingConfig() *LoggingConfig {
	return &LoggingConfig{
		Logfile: "stderr",
		Level:   "info",
	}
}

// NewLogger builds a console-encoded zap logger per cfg, suitable for
// passing to Build via WithLogger.
func NewLogger(cfg *LoggingConfig) (*zap.SugaredLogger, error) {
	lvl := zap.NewAtomicLevel()
	if err := lvl.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, errors.Wrap(err, "can not set logging level")
	}

	var f *os.File
	switch cfg.Logfile {
	case "stdout":
		f = os.Stdout
	case "stderr":
		f = os.Stderr
	default:
		var err error
		f, err = os.OpenFile(cfg.Logfile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, errors.Wrap(err, "can not open logfile")
		}
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder

	ws := zapcore.Lock(zapcore.AddSync(f))
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), ws, lvl)
	return zap.New(core).Sugar(), nil
}
