package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/studiowebux/ytsum/internal/config"
	"github.com/studiowebux/ytsum/internal/history"
)

// GlobalOptions holds the persistent flags shared by every command
type GlobalOptions struct {
	APIBase   string
	Timeout   time.Duration
	EnvFile   string
	Verbose   bool
	NoHistory bool
}

// ResolveSettings builds the effective settings.
// Precedence: flags > environment > .env > settings file > defaults.
func ResolveSettings(opts GlobalOptions) (*config.Settings, error) {
	settings, err := config.LoadSettings(config.GetSettingsFilePath())
	if err != nil {
		return nil, err
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	dotenv, err := config.ReadDotEnv(envFile)
	if err != nil {
		return nil, err
	}
	if err := settings.ApplyEnv(dotenv); err != nil {
		return nil, err
	}

	if opts.APIBase != "" {
		settings.APIBase = opts.APIBase
	}
	if opts.Timeout > 0 {
		settings.RequestTimeout = config.Duration(opts.Timeout)
	}
	if opts.NoHistory {
		disabled := false
		settings.HistoryEnabled = &disabled
	}

	return settings, nil
}

// NewLogger returns a text logger at WARN, or DEBUG when verbose
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// OpenLogFile opens path for appending. The TUI logs there since it owns the terminal.
func OpenLogFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, config.FilePermissions)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// OpenHistory opens the history database when history is enabled.
// It returns nil, nil when history is disabled.
func OpenHistory(settings *config.Settings) (*history.Manager, error) {
	if !settings.HistoryOn() {
		return nil, nil
	}
	return history.NewManager(config.DatabasePath)
}
