package log

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Plugin is a zap core that a logger writes through. Several plugins can be
// combined with Tee.
type Plugin = zapcore.Core

func NewLogger(plugin Plugin, options ...zap.Option) *zap.Logger {
	return zap.New(plugin, append(DefaultOption(), options...)...)
}

func NewPlugin(writer zapcore.WriteSyncer, enabler zapcore.LevelEnabler) Plugin {
	return zapcore.NewCore(DefaultEncoder(), writer, enabler)
}

// NewConsolePlugin writes human readable lines instead of JSON.
func NewConsolePlugin(writer zapcore.WriteSyncer, enabler zapcore.LevelEnabler) Plugin {
	return zapcore.NewCore(ConsoleEncoder(), writer, enabler)
}

func NewStderrPlugin(enabler zapcore.LevelEnabler) Plugin {
	return NewConsolePlugin(zapcore.Lock(zapcore.AddSync(os.Stderr)), enabler)
}

// NewFilePlugin logs JSON lines to a rotated file. The returned closer must
// be closed when the logger is no longer used.
func NewFilePlugin(filePath string, enabler zapcore.LevelEnabler) (Plugin, io.Closer) {
	writer := rotatingFile(filePath)
	return NewPlugin(zapcore.AddSync(writer), enabler), writer
}

func Tee(plugins ...Plugin) Plugin {
	return zapcore.NewTee(plugins...)
}

// ParseLevel accepts the usual names (debug, info, warn, error) in any case
// and falls back to info for an empty string.
func ParseLevel(text string) (zapcore.Level, error) {
	if text == "" {
		return zapcore.InfoLevel, nil
	}
	return zapcore.ParseLevel(text)
}
