package notify

import (
	"context"

	"github.com/rs/zerolog"
)

var (
	_ Notifier  = Log{}
	_ Navigator = Log{}
)

// Log forwards notifications to a zerolog logger, for headless callers.
type Log struct {
	Logger zerolog.Logger
}

func (l Log) ShowSuccess(message string) {
	l.Logger.Info().Str("toast", string(LevelSuccess)).Msg(message)
}
func (l Log) ShowError(message string) {
	l.Logger.Error().Str("toast", string(LevelError)).Msg(message)
}
func (l Log) ShowWarning(message string) {
	l.Logger.Warn().Str("toast", string(LevelWarning)).Msg(message)
}
func (l Log) ShowInfo(message string) { l.Logger.Info().Str("toast", string(LevelInfo)).Msg(message) }

func (l Log) Navigate(_ context.Context, path string) {
	l.Logger.Info().Str("path", path).Msg("navigate")
}
