package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// key-value structured logger shared by all commands
type Logger struct {
	*zap.SugaredLogger
	core  zapcore.Core
	files []*os.File
}

// console logger; debug level when verbose
func NewLogger(verbose bool) *Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		level,
	)

	return &Logger{
		SugaredLogger: zap.New(core).Sugar(),
		core:          core,
	}
}

// logger that discards everything, for tests
func Nop() *Logger {
	core := zapcore.NewNopCore()
	return &Logger{
		SugaredLogger: zap.New(core).Sugar(),
		core:          core,
	}
}

// WithFile returns a logger that also writes JSON records to path.
// The file is appended to and closed by Close.
func (l *Logger) WithFile(path string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.AddSync(f),
		zapcore.DebugLevel,
	)
	core := zapcore.NewTee(l.core, fileCore)

	files := append(append([]*os.File(nil), l.files...), f)
	return &Logger{
		SugaredLogger: zap.New(core).Sugar(),
		core:          core,
		files:         files,
	}, nil
}

// With adds fields to every record of the returned logger
func (l *Logger) With(args ...interface{}) *Logger {
	return &Logger{
		SugaredLogger: l.SugaredLogger.With(args...),
		core:          l.core,
		files:         l.files,
	}
}

// flushes buffered records and closes any log files
func (l *Logger) Close() error {
	// stderr sync fails on some terminals; ignore it
	_ = l.SugaredLogger.Sync()

	var lastErr error
	for _, f := range l.files {
		if err := f.Close(); err != nil {
			lastErr = err
		}
	}
	l.files = nil
	return lastErr
}
