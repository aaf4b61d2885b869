// Package cli provides the command-line interface for pulse.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/qntmpulse/pulse/internal/config"
	"github.com/qntmpulse/pulse/internal/constants"
	"github.com/qntmpulse/pulse/internal/logging"
)

// logFileWriter holds the log file writer for cleanup during shutdown.
var logFileWriter io.WriteCloser //nolint:gochecknoglobals // Needed for cleanup

// zerologGlobalMu protects concurrent writes to the zerolog global logger.
var zerologGlobalMu sync.Mutex //nolint:gochecknoglobals // Protects zerolog global

// InitLogger creates and configures a zerolog.Logger from the verbosity
// flags and the logging section of the effective configuration.
//
// Log levels:
//   - verbose=true: Debug level
//   - quiet=true: Warn level
//   - otherwise: the configured level (info when unset or unparseable)
//
// Output format follows the terminal: console writer on a TTY without
// NO_COLOR, JSON to stderr otherwise. The logger also writes to
// ~/.pulse/logs/pulse.log, rotated per the configured size and backup
// count; if the log file cannot be created, console-only output is used.
func InitLogger(verbose, quiet bool, cfg config.LoggingConfig) zerolog.Logger {
	level := selectLevel(verbose, quiet, cfg.Level)
	console := selectOutput()
	hook := logging.NewSensitiveDataHook()

	var writer io.Writer = console
	if fileWriter, err := createLogFileWriter(cfg); err == nil {
		logFileWriter = fileWriter
		writer = zerolog.MultiLevelWriter(console, fileWriter)
	}

	logger := zerolog.New(writer).Level(level).Hook(hook).With().Timestamp().Logger()
	setGlobalLogger(logger)
	return logger
}

// InitLoggerWithWriter creates a logger with a custom writer, for tests.
func InitLoggerWithWriter(verbose, quiet bool, w io.Writer) zerolog.Logger {
	level := selectLevel(verbose, quiet, "")
	logger := zerolog.New(w).Level(level).Hook(logging.NewSensitiveDataHook()).With().Timestamp().Logger()
	setGlobalLogger(logger)
	return logger
}

// setGlobalLogger configures the global zerolog logger to match the CLI
// logger so code using the zerolog/log package gets the same formatting.
func setGlobalLogger(cliLogger zerolog.Logger) {
	zerologGlobalMu.Lock()
	defer zerologGlobalMu.Unlock()
	log.Logger = cliLogger
}

// CloseLogFile closes the global log file writer if it was opened.
// Called during application shutdown.
func CloseLogFile() {
	if logFileWriter != nil {
		_ = logFileWriter.Close()
		logFileWriter = nil
	}
}

// selectLevel determines the log level. Verbosity flags win over the
// configured level; an unset or unparseable configured level means info.
func selectLevel(verbose, quiet bool, configured string) zerolog.Level {
	switch {
	case verbose:
		return zerolog.DebugLevel
	case quiet:
		return zerolog.WarnLevel
	}
	if level, err := zerolog.ParseLevel(configured); err == nil && level != zerolog.NoLevel {
		return level
	}
	return zerolog.InfoLevel
}

// selectOutput determines the output writer based on terminal
// capabilities and environment settings.
func selectOutput() io.Writer {
	if term.IsTerminal(int(os.Stderr.Fd())) && os.Getenv("NO_COLOR") == "" {
		return zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.Kitchen,
		}
	}
	return os.Stderr
}

// filteringWriteCloser wraps a WriteCloser with sensitive data filtering.
type filteringWriteCloser struct {
	filter *logging.FilteringWriter
	closer io.Closer
}

func (fwc *filteringWriteCloser) Write(p []byte) (n int, err error) {
	return fwc.filter.Write(p)
}

func (fwc *filteringWriteCloser) Close() error {
	return fwc.closer.Close()
}

// createLogFileWriter creates a rotating file writer for the global log,
// wrapped with a filtering writer so credentials never reach disk.
func createLogFileWriter(cfg config.LoggingConfig) (io.WriteCloser, error) {
	logDir, err := config.LogsDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(logDir, 0o750); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	lj := newRotationLogger(filepath.Join(logDir, constants.LogFileName), cfg)
	return &filteringWriteCloser{
		filter: logging.NewFilteringWriter(lj),
		closer: lj,
	}, nil
}

// newRotationLogger builds the rotating file sink. Non-positive size or
// backup values fall back to the built-in defaults so a zero-value config
// never produces lumberjack's unbounded behavior.
func newRotationLogger(path string, cfg config.LoggingConfig) *lumberjack.Logger {
	def := config.DefaultConfig().Logging
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = def.MaxSizeMB
	}
	if cfg.MaxBackups <= 0 {
		cfg.MaxBackups = def.MaxBackups
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     30,
		Compress:   true,
	}
}

// LogFilePath returns the path to the global log file, for display.
func LogFilePath() (string, error) {
	logDir, err := config.LogsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(logDir, constants.LogFileName), nil
}
