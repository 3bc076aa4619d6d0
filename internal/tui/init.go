package tui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/ytsum/internal/history"
	"github.com/studiowebux/ytsum/internal/lifecycle"
)

// Options wires the TUI to its collaborators
type Options struct {
	Summarizer lifecycle.Summarizer
	Health     HealthChecker   // optional
	History    *history.Manager // optional; nil disables history
	Timeout    time.Duration
	APIBase    string
	Version    string
	Logger     *slog.Logger
}

// New creates a new TUI model
func New(ctx context.Context, opts Options) (Model, error) {
	if opts.Summarizer == nil {
		return Model{}, errors.New("summarizer is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	machine := lifecycle.NewMachine(opts.Summarizer,
		lifecycle.WithTimeout(opts.Timeout),
		lifecycle.WithLogger(logger),
	)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styleTitle

	m := Model{
		ctx:            ctx,
		machine:        machine,
		health:         opts.Health,
		historyManager: opts.History,
		logger:         logger,
		mode:           ModeNormal,
		version:        opts.Version,
		apiBase:        opts.APIBase,
		state:          machine.Snapshot(),
		input:          NewInputState(),
		spinner:        sp,
		resultView:     viewport.New(80, 20),
		help:           help.New(),
		keys:           defaultKeyMap(),
		requestState:   &RequestState{},
		historyState:   NewHistoryState(),
	}

	return m, nil
}

// Run starts the TUI and blocks until it exits
func Run(ctx context.Context, opts Options) error {
	m, err := New(ctx, opts)
	if err != nil {
		return err
	}
	defer m.Cleanup()

	// Start TUI (pass pointer since Update uses pointer receiver)
	p := tea.NewProgram(&m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}

	return nil
}
