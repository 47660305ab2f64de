package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation limits for file plugins, in megabytes and files.
const (
	MaxFileSize    = 100
	MaxFileBackups = 5
)

func encoderConfig(console bool) zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	if console {
		// Console lines carry no caller.
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.EncodeCaller = nil
	}
	return cfg
}

func DefaultEncoder() zapcore.Encoder {
	return zapcore.NewJSONEncoder(encoderConfig(false))
}

func ConsoleEncoder() zapcore.Encoder {
	return zapcore.NewConsoleEncoder(encoderConfig(true))
}

// DefaultOption adds the caller and keeps stack traces for DPanic and above.
func DefaultOption() []zap.Option {
	return []zap.Option{
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.DPanicLevel),
	}
}

func rotatingFile(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    MaxFileSize,
		MaxBackups: MaxFileBackups,
		LocalTime:  true,
		Compress:   true,
	}
}
