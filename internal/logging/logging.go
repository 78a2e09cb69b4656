package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New builds the process logger and installs it as the zerolog global. DEV
// gets a human readable console writer, every other environment gets JSON.
func New(level, env string) zerolog.Logger {
	return NewWithWriter(os.Stderr, level, env)
}

func NewWithWriter(w io.Writer, level, env string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	out := w
	if env == "DEV" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	logger := zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}
