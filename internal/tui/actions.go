package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/ytsum/internal/lifecycle"
)

// submit starts a submission for the current input, keeping the spinner alive while it runs
func (m *Model) submit() tea.Cmd {
	cmd := m.startSubmission()
	if cmd == nil || !m.state.Loading() {
		return cmd
	}
	return tea.Batch(m.spinner.Tick, cmd)
}

// startSubmission begins a submission and returns the command performing the call.
// An empty input is a no-op; a second submit while in flight is refused.
func (m *Model) startSubmission() tea.Cmd {
	if !m.input.Submittable() {
		return nil
	}

	ticket, err := m.machine.Begin(m.input.Value())
	if err != nil {
		if errors.Is(err, lifecycle.ErrInFlight) {
			return m.setStatusMessage("A summary is already in progress")
		}
		return m.setErrorMessage(err.Error())
	}

	m.errorMsg = ""
	m.statusMsg = ""
	m.syncState()

	ctx, cancel := context.WithCancel(m.ctx)
	m.requestState.Start(ticket, cancel)

	machine := m.machine
	return func() tea.Msg {
		return submissionSettledMsg{ticket: ticket, outcome: machine.Execute(ctx, ticket)}
	}
}

// cancelSubmission abandons the in-flight submission; its late result is dropped
func (m *Model) cancelSubmission() tea.Cmd {
	ticket, ok := m.requestState.Cancel()
	if !ok {
		return nil
	}
	if m.machine.Abandon(ticket) {
		m.syncState()
		return tea.Batch(m.setStatusMessage("Request cancelled by user"), m.saveHistory(m.state))
	}
	return nil
}

// copySummary copies the FULL summary to clipboard
func (m *Model) copySummary() tea.Cmd {
	if m.state.Phase != lifecycle.Succeeded {
		return m.setStatusMessage("No summary to copy")
	}
	if err := clipboard.WriteAll(m.state.Summary); err != nil {
		return m.setErrorMessage(fmt.Sprintf("Failed to copy to clipboard: %v", err))
	}
	return m.setStatusMessage("Summary copied to clipboard")
}

func (m *Model) probeHealth() tea.Cmd {
	if m.health == nil {
		return nil
	}
	checker, ctx := m.health, m.ctx
	return func() tea.Msg {
		result, err := checker.Health(ctx)
		return healthCheckMsg{result: result, err: err}
	}
}

// saveHistory records a settled submission when history is enabled
func (m *Model) saveHistory(s lifecycle.State) tea.Cmd {
	if m.historyManager == nil || !s.Phase.Done() {
		return nil
	}
	mgr := m.historyManager
	return func() tea.Msg {
		id, err := mgr.SaveState(s)
		return historySavedMsg{id: id, err: err}
	}
}

func (m *Model) loadHistory() tea.Cmd {
	mgr := m.historyManager
	return func() tea.Msg {
		if mgr == nil {
			return historyLoadedMsg{}
		}
		entries, err := mgr.Load(historyLimit)
		if err != nil {
			return errorMsg(fmt.Sprintf("Failed to load history: %v", err))
		}
		return historyLoadedMsg{entries: entries}
	}
}

func (m *Model) deleteHistoryEntry(id int64) tea.Cmd {
	mgr := m.historyManager
	return func() tea.Msg {
		if err := mgr.Delete(id); err != nil {
			return errorMsg(fmt.Sprintf("Failed to delete history entry: %v", err))
		}
		return historyDeletedMsg{id: id}
	}
}

func (m *Model) clearHistory() tea.Cmd {
	mgr := m.historyManager
	return func() tea.Msg {
		if err := mgr.Clear(); err != nil {
			return errorMsg(fmt.Sprintf("Failed to clear history: %v", err))
		}
		return historyDeletedMsg{all: true}
	}
}

// Helper methods for setting messages with timeout
func (m *Model) setStatusMessage(msg string) tea.Cmd {
	m.statusMsg = truncate(msg, StatusMaxLength)
	return tea.Tick(MessageTimeout, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

func (m *Model) setErrorMessage(msg string) tea.Cmd {
	m.errorMsg = truncate(msg, StatusMaxLength)
	return tea.Tick(MessageTimeout, func(time.Time) tea.Msg {
		return clearErrorMsg{}
	})
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
