// Package logging provides structured logging functionality.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"sensex-strangle/internal/models"
)

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string
	Console    bool
	File       bool
	FilePath   string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
}

// DefaultLogConfig returns the default logging configuration.
func DefaultLogConfig() LogConfig {
	home, _ := os.UserHomeDir()
	return LogConfig{
		Level:      "info",
		Console:    true,
		File:       false,
		FilePath:   filepath.Join(home, ".config", "sensex-strangle", "logs", "backtest.log"),
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     30,
	}
}

// NewLogger creates a new logger with default configuration.
func NewLogger() zerolog.Logger {
	return NewLoggerWithConfig(DefaultLogConfig())
}

// NewLoggerWithConfig creates a new logger with the specified configuration.
func NewLoggerWithConfig(cfg LogConfig) zerolog.Logger {
	var writers []io.Writer

	// Console goes to stderr so stdout stays clean for tables and JSON
	if cfg.Console {
		consoleWriter := zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
			FormatLevel: func(i interface{}) string {
				if ll, ok := i.(string); ok {
					switch ll {
					case "debug":
						return "\033[36mDBG\033[0m"
					case "info":
						return "\033[32mINF\033[0m"
					case "warn":
						return "\033[33mWRN\033[0m"
					case "error":
						return "\033[31mERR\033[0m"
					default:
						return ll
					}
				}
				return "???"
			},
		}
		writers = append(writers, consoleWriter)
	}

	// File writer with rotation
	if cfg.File {
		logDir := filepath.Dir(cfg.FilePath)
		if err := os.MkdirAll(logDir, 0755); err == nil {
			fileWriter := &lumberjack.Logger{
				Filename:   cfg.FilePath,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   true,
			}
			writers = append(writers, fileWriter)
		}
	}

	var writer io.Writer
	if len(writers) == 0 {
		writer = io.Discard
	} else if len(writers) == 1 {
		writer = writers[0]
	} else {
		writer = zerolog.MultiLevelWriter(writers...)
	}

	level := ParseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	return zerolog.New(writer).
		With().
		Timestamp().
		Logger()
}

// ParseLevel maps a config string to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// SetDebugLevel sets the global log level to debug.
func SetDebugLevel() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
}

// WithDay adds the DDMMYYYY day key to the logger context.
func WithDay(logger zerolog.Logger, key string) zerolog.Logger {
	return logger.With().Str("day", key).Logger()
}

// WithRun adds a run ID to the logger context.
func WithRun(logger zerolog.Logger, runID string) zerolog.Logger {
	return logger.With().Str("run_id", runID).Logger()
}

// LogSkip logs a day that produced no events.
func LogSkip(logger zerolog.Logger, key string, reason error) {
	logger.Warn().
		Str("event", "skip").
		Str("day", key).
		Err(reason).
		Msg("Day skipped")
}

// LogTradeEvent logs one order-book entry.
func LogTradeEvent(logger zerolog.Logger, e models.TradeEvent) {
	ev := logger.Debug().
		Str("event", "order").
		Str("time", e.Time.String()).
		Str("action", string(e.Action))
	if e.OptionType != "" {
		ev = ev.Str("type", string(e.OptionType))
	}
	if e.Strike != nil {
		ev = ev.Int("strike", *e.Strike)
	}
	if e.Price != nil {
		ev = ev.Float64("price", *e.Price)
	}
	if e.NewSL != nil {
		ev = ev.Float64("new_sl", *e.NewSL)
	}
	if e.Target != nil {
		ev = ev.Float64("target", *e.Target)
	}
	ev.Msg(e.Note)
}

// LogRunSummary logs the aggregate counts of a backtest run.
func LogRunSummary(logger zerolog.Logger, requested, simulated, skipped, triggers, reentries int, duration time.Duration) {
	logger.Info().
		Str("event", "run_summary").
		Int("days_requested", requested).
		Int("days_simulated", simulated).
		Int("days_skipped", skipped).
		Int("stop_loss_triggers", triggers).
		Int("reentries", reentries).
		Dur("duration", duration).
		Msg("Backtest finished")
}
