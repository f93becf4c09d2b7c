// Package logger builds zap loggers with optional rotating file output.
package logger

import (
	"os"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	defaultMaxSize    = 100 // Megabytes
	defaultMaxBackups = 3
	defaultMaxAge     = 28 // Days
)

// Config is the configuration for the logger.
type Config struct {
	LogLevel    string `mapstructure:"log_level"`
	FileLogName string `mapstructure:"file_log_name"`
	MaxBackups  int    `mapstructure:"max_backups"`
	MaxAge      int    `mapstructure:"max_age"`
	MaxSize     int    `mapstructure:"max_size"`
	Compress    bool   `mapstructure:"compress"`
}

// New builds a JSON-encoded zap logger writing to stdout. When FileLogName
// is set, output is duplicated to that file and rotated by lumberjack.
func New(cfg Config) *zap.Logger {
	sink := zapcore.AddSync(os.Stdout)
	if cfg.FileLogName != "" {
		if cfg.MaxSize == 0 {
			cfg.MaxSize = defaultMaxSize
		}
		if cfg.MaxBackups == 0 {
			cfg.MaxBackups = defaultMaxBackups
		}
		if cfg.MaxAge == 0 {
			cfg.MaxAge = defaultMaxAge
		}
		rotator := &lumberjack.Logger{
			Filename:   cfg.FileLogName,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
		sink = zapcore.NewMultiWriteSyncer(sink, zapcore.AddSync(rotator))
	}

	core := zapcore.NewCore(newEncoder(), sink, parseLevel(cfg.LogLevel))
	return zap.New(core, zap.AddCaller())
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func newEncoder() zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	return zapcore.NewJSONEncoder(cfg)
}
