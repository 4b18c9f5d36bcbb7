package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogging sets the global zerolog level and points the global logger
// at out.
func (c Config) InitLogging(out io.Writer) {
	if lvl, err := zerolog.ParseLevel(c.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

// OpenLogFile opens LogFile for appending. The terminal binary logs there
// so log lines never interleave with the board.
func (c Config) OpenLogFile() (*os.File, error) {
	if dir := filepath.Dir(c.LogFile); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, nil
}
