// Package logger builds the zerolog logger used by the CLI.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config selects the log level and, optionally, a rotating log file.
type Config struct {
	Level     string
	File      string // when set, log here with rotation instead of stderr
	MaxSizeMB int
	MaxFiles  int
}

// New creates a zerolog.Logger from cfg. An unknown level string falls
// back to info. File output rotates via lumberjack, with old files
// compressed.
func New(cfg Config) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	var w io.Writer = os.Stderr
	if cfg.File != "" {
		w = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxFiles,
			Compress:   true,
		}
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
