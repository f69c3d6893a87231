package observability

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger installs a console logger tagged with the app name as the
// global zerolog logger and returns it.
func InitLogger(app string, debug bool) zerolog.Logger {
	return InitLoggerTo(os.Stderr, app, debug)
}

// InitLoggerTo is InitLogger writing to out.
func InitLoggerTo(out io.Writer, app string, debug bool) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	logger := zerolog.New(output).With().Timestamp().Str("app", app).Logger()
	if debug {
		logger = logger.With().Caller().Logger()
	}
	log.Logger = logger
	return logger
}
