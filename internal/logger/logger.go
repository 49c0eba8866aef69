package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const serviceName = "examprep-backend"

// Setup builds the process logger from LOG_LEVEL and LOG_FORMAT. "pretty"
// (or "console") writes colored lines for local runs; anything else is JSON.
// Unknown levels fall back to info.
func Setup(level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	return zerolog.New(output(format)).
		With().
		Timestamp().
		Str("service", serviceName).
		Caller().
		Logger()
}

func output(format string) io.Writer {
	switch strings.ToLower(format) {
	case "pretty", "console":
		return zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	default:
		return os.Stdout
	}
}
