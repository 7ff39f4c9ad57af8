// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Init sets up the global logger with a console sink on stderr and an
// optional rotating file sink. It loads .env first so FLOWMETRICS_LOG_DIR
// and the tracker tokens are available before config is read.
func Init(verbose bool) {
	_ = godotenv.Load()

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	isTerminal := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !isTerminal,
	}

	writers := []io.Writer{consoleWriter}
	if logDir := os.Getenv("FLOWMETRICS_LOG_DIR"); logDir != "" {
		if err := os.MkdirAll(logDir, 0o755); err == nil {
			writers = append(writers, &lumberjack.Logger{
				Filename:   filepath.Join(logDir, "flowmetrics.log"),
				MaxSize:    16, // megabytes
				MaxBackups: 8,
				MaxAge:     90, // days
				Compress:   true,
			})
		} else {
			log.Warn().Err(err).Str("dir", logDir).Msg("Log directory unavailable, console only")
		}
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		With().
		Timestamp().
		Logger()
}
