package logging_test

import (
	"bytes"
	"testing"

	"github.com/jrsteele09/go-lms-client/internal/logging"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter(t *testing.T) {
	t.Run("json outside dev", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.NewWithWriter(&buf, "warn", "PROD")
		require.Equal(t, zerolog.WarnLevel, logger.GetLevel())

		logger.Info().Msg("dropped")
		logger.Warn().Str("path", "teacher/profile").Msg("kept")
		require.NotContains(t, buf.String(), "dropped")
		require.Contains(t, buf.String(), `"path":"teacher/profile"`)
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.NewWithWriter(&buf, "loud", "DEV")
		require.Equal(t, zerolog.InfoLevel, logger.GetLevel())
	})
}
