package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Namespaces attached to log lines as the "ns" field
const (
	APP        = "APP"
	ASSISTANT  = "ASSISTANT"
	CONFIG     = "CONFIG"
	DISPATCH   = "DISPATCH"
	HANDLER    = "HANDLER"
	MIDDLEWARE = "MIDDLEWARE"
	NOTIFY     = "NOTIFY"
	REDIS      = "REDIS"
	SERVICE    = "SERVICE"
)

// getLogLevel reads LOG_LEVEL, defaulting to info
func getLogLevel() zerolog.Level {
	switch strings.ToUpper(os.Getenv("LOG_LEVEL")) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// newWriter builds the log sink from LOG_FORMAT and LOG_FILE
func newWriter() io.Writer {
	var out io.Writer = os.Stderr
	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "console" {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	path := os.Getenv("LOG_FILE")
	if path == "" {
		return out
	}

	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    50, // megabytes
		MaxBackups: 5,
		MaxAge:     14, // days
		Compress:   true,
	}
	return zerolog.MultiLevelWriter(out, rotator)
}

// Init configures the global zerolog logger. Call once from main.
func Init() {
	zerolog.SetGlobalLevel(getLogLevel())
	log.Logger = zerolog.New(newWriter()).With().Timestamp().Logger()
}

// For returns a child of the global logger tagged with a namespace
func For(namespace string) zerolog.Logger {
	return log.With().Str("ns", namespace).Logger()
}
