package logger

import (
	"github.com/aleister1102/certwatch/internal/config"

	"github.com/rs/zerolog"
)

// LoggerConfig is the resolved logger setup: console output is always on, and a
// rotating file writer is added when FilePath is set.
type LoggerConfig struct {
	Level         zerolog.Level
	Format        LogFormat
	EnableConsole bool
	EnableFile    bool
	FilePath      string
	MaxSizeMB     int
	MaxBackups    int
}

// LogFormat selects the console writer.
type LogFormat int

const (
	FormatJSON LogFormat = iota
	FormatConsole
	FormatText // console layout without colors
)

func (lf LogFormat) String() string {
	switch lf {
	case FormatJSON:
		return "json"
	case FormatText:
		return "text"
	default:
		return "console"
	}
}

// DefaultLoggerConfig mirrors config.NewDefaultLogConfig: info level, console
// output, no file.
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Level:         zerolog.InfoLevel,
		Format:        ParseFormat(config.DefaultLogFormat),
		EnableConsole: true,
		MaxSizeMB:     config.DefaultMaxLogSizeMB,
		MaxBackups:    config.DefaultMaxLogBackups,
	}
}
