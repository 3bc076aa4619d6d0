package tui

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/ytsum/internal/api"
	"github.com/studiowebux/ytsum/internal/history"
	"github.com/studiowebux/ytsum/internal/lifecycle"
	"github.com/studiowebux/ytsum/internal/types"
)

// Mode represents the current TUI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeHistory
	ModeHistoryClearConfirm
)

// HealthChecker probes the backend. *api.Client implements it.
type HealthChecker interface {
	Health(ctx context.Context) (*api.HealthResult, error)
}

// Model represents the TUI state
type Model struct {
	// Core state
	ctx            context.Context
	machine        *lifecycle.Machine
	health         HealthChecker
	historyManager *history.Manager
	logger         *slog.Logger
	mode           Mode
	version        string
	apiBase        string

	// Last snapshot of the machine; View renders only from this
	state lifecycle.State

	// Widgets
	input      *InputState
	spinner    spinner.Model
	resultView viewport.Model
	help       help.Model
	keys       keyMap

	requestState *RequestState
	historyState *HistoryState

	// Backend probe
	healthResult *api.HealthResult
	healthErr    string

	// UI state
	width     int
	height    int
	statusMsg string
	errorMsg  string // App errors (clipboard, history); submission errors live in state
	quitting  bool
}

// Init starts the cursor blink and the backend probe
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.input.Focus(), m.probeHealth())
}

// Cleanup cancels the in-flight submission and closes the history database
func (m *Model) Cleanup() {
	if ticket, ok := m.requestState.Cancel(); ok {
		m.machine.Abandon(ticket)
	}
	if m.historyManager != nil {
		if err := m.historyManager.Close(); err != nil {
			m.logger.Error("error closing history database", "error", err)
		}
		m.historyManager = nil
	}
}

// Update handles messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd = m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateViewport()

	case spinner.TickMsg:
		// Ticks stop once the submission settles
		if m.state.Loading() {
			m.spinner, cmd = m.spinner.Update(msg)
		}

	case submissionSettledMsg:
		m.requestState.Finish(msg.ticket)
		if !m.machine.Settle(msg.ticket, msg.outcome) {
			// Abandoned or superseded
			return m, nil
		}
		m.syncState()
		cmd = m.saveHistory(m.state)

	case healthCheckMsg:
		if msg.err != nil {
			m.healthResult = nil
			m.healthErr = msg.err.Error()
			m.logger.Warn("backend health probe failed", "error", msg.err)
		} else {
			m.healthResult = msg.result
			m.healthErr = ""
		}

	case historyLoadedMsg:
		m.historyState.Load(msg.entries)
		if len(msg.entries) > 0 {
			m.statusMsg = fmt.Sprintf("Loaded %d history entries", len(msg.entries))
		} else {
			m.statusMsg = "No history yet"
		}
		m.updateHistoryView()

	case historySavedMsg:
		if msg.err != nil {
			m.logger.Error("failed to save history", "error", msg.err)
			cmd = m.setErrorMessage(fmt.Sprintf("Failed to save history: %v", msg.err))
		}

	case historyDeletedMsg:
		if msg.all {
			m.historyState.Load(nil)
			m.statusMsg = "History cleared"
		} else {
			m.historyState.Remove(msg.id)
			m.statusMsg = "History entry deleted"
		}
		m.updateHistoryView()

	case clearStatusMsg:
		m.statusMsg = ""

	case clearErrorMsg:
		m.errorMsg = ""

	case errorMsg:
		cmd = m.setErrorMessage(string(msg))

	default:
		// Cursor blink and other widget messages
		if m.mode == ModeNormal {
			cmd = m.input.Update(msg)
		}
	}

	return m, cmd
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "Initializing..."
	}

	switch m.mode {
	case ModeHistory:
		return m.renderHistory()
	case ModeHistoryClearConfirm:
		return m.renderHistoryClearConfirmation()
	default:
		return m.renderMain()
	}
}

// syncState copies the machine snapshot and refreshes the result pane
func (m *Model) syncState() {
	m.state = m.machine.Snapshot()
	m.updateResultView()
}

// Custom message types
type submissionSettledMsg struct {
	ticket  lifecycle.Ticket
	outcome lifecycle.Outcome
}

type healthCheckMsg struct {
	result *api.HealthResult
	err    error
}

type historyLoadedMsg struct {
	entries []types.HistoryEntry
}

type historySavedMsg struct {
	id  int64
	err error
}

type historyDeletedMsg struct {
	id  int64
	all bool
}

type clearStatusMsg struct{}
type clearErrorMsg struct{}

type errorMsg string
