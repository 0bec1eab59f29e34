// Package logger provides structured logging setup.
//
// Loggers are registered by name: the first Setup call for a name builds a
// logger writing to the console and to an append-only file, later calls with
// the same name return that logger unchanged.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// DefaultName is the logger identity used when Options.Name is empty.
	DefaultName = "baro_api"

	// DefaultFile is the log file used when Options.FilePath is empty.
	DefaultFile = "logs/app.log"

	timeLayout = "2006-01-02 15:04:05"
)

// Options configures a logger.
type Options struct {
	// Name identifies the logger; Setup is idempotent per name.
	Name string

	// FilePath is the append-only log file. Its directory is created if missing.
	FilePath string

	// Level is debug, info, warn/warning or error. Defaults to info
	// (debug in development).
	Level string

	// Development lowers the default level to debug.
	Development bool

	// Console receives the mirrored stream. Defaults to os.Stdout.
	Console io.Writer
}

var (
	mu       sync.Mutex
	registry = make(map[string]*zap.Logger)
)

// Setup returns the logger registered under opts.Name, building it on first use.
func Setup(opts Options) (*zap.Logger, error) {
	if opts.Name == "" {
		opts.Name = DefaultName
	}

	mu.Lock()
	defer mu.Unlock()

	if l, ok := registry[opts.Name]; ok {
		return l, nil
	}

	l, err := build(opts)
	if err != nil {
		return nil, err
	}
	registry[opts.Name] = l
	return l, nil
}

func build(opts Options) (*zap.Logger, error) {
	level, err := parseLevel(opts.Level, opts.Development)
	if err != nil {
		return nil, err
	}

	path := opts.FilePath
	if path == "" {
		path = DefaultFile
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	console := opts.Console
	if console == nil {
		console = os.Stdout
	}

	encoder := zapcore.NewConsoleEncoder(encoderConfig())
	core := zapcore.NewTee(
		zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(console)), level),
		zapcore.NewCore(encoder.Clone(), zapcore.Lock(zapcore.AddSync(file)), level),
	)

	return zap.New(core), nil
}

// encoderConfig renders "timestamp | LEVEL    | message".
func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "timestamp",
		LevelKey:         "level",
		MessageKey:       "message",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      paddedLevelEncoder,
		EncodeTime:       zapcore.TimeEncoderOfLayout(timeLayout),
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " | ",
	}
}

func paddedLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(fmt.Sprintf("%-8s", levelName(l)))
}

func levelName(l zapcore.Level) string {
	switch l {
	case zapcore.DebugLevel:
		return "DEBUG"
	case zapcore.InfoLevel:
		return "INFO"
	case zapcore.WarnLevel:
		return "WARNING"
	case zapcore.ErrorLevel:
		return "ERROR"
	default:
		return "CRITICAL"
	}
}

func parseLevel(s string, development bool) (zapcore.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		if development {
			return zapcore.DebugLevel, nil
		}
		return zapcore.InfoLevel, nil
	case "warning":
		s = "warn"
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}
