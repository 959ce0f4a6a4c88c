package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestGetLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		envLevel string
		want     zerolog.Level
	}{
		{"Trace level", "TRACE", zerolog.TraceLevel},
		{"Debug level", "DEBUG", zerolog.DebugLevel},
		{"Info level", "INFO", zerolog.InfoLevel},
		{"Warn level", "WARN", zerolog.WarnLevel},
		{"Error level", "ERROR", zerolog.ErrorLevel},
		{"Empty defaults to Info", "", zerolog.InfoLevel},
		{"Invalid defaults to Info", "INVALID", zerolog.InfoLevel},
		{"Case insensitive", "debug", zerolog.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.envLevel)

			if got := getLogLevel(); got != tt.want {
				t.Errorf("getLogLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestForAddsNamespace(t *testing.T) {
	var buf bytes.Buffer
	previous := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = previous }()

	l := For(DISPATCH)
	l.Info().Msg("hello")

	output := buf.String()
	if !strings.Contains(output, `"ns":"DISPATCH"`) {
		t.Errorf("Expected namespace field in %q", output)
	}
	if !strings.Contains(output, `"message":"hello"`) {
		t.Errorf("Expected message field in %q", output)
	}
}

func TestInitWritesToLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nawader.log")
	t.Setenv("LOG_FILE", path)
	t.Setenv("LOG_LEVEL", "INFO")

	previous := log.Logger
	defer func() { log.Logger = previous }()

	Init()
	log.Info().Msg("rotated line")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "rotated line") {
		t.Errorf("Expected log file to contain message, got %q", string(data))
	}
}
