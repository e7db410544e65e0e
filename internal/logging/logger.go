package logging

import (
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const defaultLogFileMaxSizeMB = 10

var (
	writerMu  sync.Mutex
	logWriter *lumberjack.Logger
)

// Init initializes the global logger with configuration from environment variables.
//
//	GEMINI_LOG_LEVEL        debug, info, warn, error (default: info)
//	GEMINI_LOG_FILE         optional path; JSON lines are also written there with rotation
//	GEMINI_LOG_MAX_SIZE_MB  rotation threshold for GEMINI_LOG_FILE (default: 10)
func Init() {
	zerolog.SetGlobalLevel(ParseLevel(os.Getenv("GEMINI_LOG_LEVEL")))

	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}

	writerMu.Lock()
	defer writerMu.Unlock()
	if logWriter != nil {
		_ = logWriter.Close()
		logWriter = nil
	}
	if path := os.Getenv("GEMINI_LOG_FILE"); path != "" {
		maxSize := defaultLogFileMaxSizeMB
		if v, err := strconv.Atoi(os.Getenv("GEMINI_LOG_MAX_SIZE_MB")); err == nil && v > 0 {
			maxSize = v
		}
		logWriter = &lumberjack.Logger{
			Filename: path,
			MaxSize:  maxSize,
		}
		out = zerolog.MultiLevelWriter(out, logWriter)
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	// Request-scoped loggers fall back to the global logger.
	zerolog.DefaultContextLogger = &log.Logger
}

// ParseLevel maps a GEMINI_LOG_LEVEL value to a zerolog level. Unknown values
// fall back to info.
func ParseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Close flushes and closes the rotating log file, if one was opened.
func Close() {
	writerMu.Lock()
	defer writerMu.Unlock()
	if logWriter != nil {
		_ = logWriter.Close()
		logWriter = nil
	}
}
