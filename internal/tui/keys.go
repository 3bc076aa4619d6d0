package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/ytsum/internal/lifecycle"
)

// keyMap holds the bindings of the main view and the history modal
type keyMap struct {
	Submit   key.Binding
	Cancel   key.Binding
	Copy     key.Binding
	Clear    key.Binding
	History  key.Binding
	ScrollUp key.Binding
	ScrollDn key.Binding
	Help     key.Binding
	Quit     key.Binding

	// History modal
	Up     key.Binding
	Down   key.Binding
	Use    key.Binding
	Search key.Binding
	Delete key.Binding
	Wipe   key.Binding
	Toggle key.Binding
	Close  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Submit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "summarize")),
		Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Copy:     key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy summary")),
		Clear:    key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear")),
		History:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "history")),
		ScrollUp: key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "scroll up")),
		ScrollDn: key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "scroll down")),
		Help:     key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "help")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),

		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Use:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "use url")),
		Search: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Delete: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Wipe:   key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "clear all")),
		Toggle: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "preview")),
		Close:  key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc/q", "close")),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Copy, k.History, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.Cancel, k.Clear},
		{k.Copy, k.ScrollUp, k.ScrollDn},
		{k.History, k.Help, k.Quit},
	}
}

// historyHelp is the help.KeyMap shown inside the history modal
type historyHelp struct{ k keyMap }

func (h historyHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.k.Up, h.k.Down, h.k.Use, h.k.Search, h.k.Delete, h.k.Wipe, h.k.Toggle, h.k.Close}
}

func (h historyHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{h.ShortHelp()}
}

// handleKeyPress routes a key by mode
func (m *Model) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		m.Cleanup()
		return tea.Quit
	}

	switch m.mode {
	case ModeHistory:
		return m.handleHistoryKeys(msg)
	case ModeHistoryClearConfirm:
		return m.handleHistoryClearConfirmKeys(msg)
	default:
		return m.handleNormalKeys(msg)
	}
}

func (m *Model) handleNormalKeys(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.Cancel):
		if !m.requestState.IsActive() {
			return nil
		}
		return m.cancelSubmission()

	case key.Matches(msg, m.keys.Copy):
		return m.copySummary()

	case key.Matches(msg, m.keys.Clear):
		if err := m.machine.Reset(); err != nil {
			if errors.Is(err, lifecycle.ErrInFlight) {
				return m.setStatusMessage("Wait for the summary or press esc to cancel")
			}
			return m.setErrorMessage(err.Error())
		}
		m.syncState()
		m.input.SetValue("")
		return nil

	case key.Matches(msg, m.keys.History):
		if m.historyManager == nil {
			return m.setStatusMessage("History is disabled")
		}
		m.mode = ModeHistory
		m.input.Blur()
		return m.loadHistory()

	case key.Matches(msg, m.keys.ScrollUp):
		m.resultView.HalfViewUp()
		return nil

	case key.Matches(msg, m.keys.ScrollDn):
		m.resultView.HalfViewDown()
		return nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.updateViewport()
		return nil
	}

	// Everything else is typing
	return m.input.Update(msg)
}

func (m *Model) handleHistoryKeys(msg tea.KeyMsg) tea.Cmd {
	hs := m.historyState

	if hs.GetSearchActive() {
		switch msg.Type {
		case tea.KeyEsc:
			hs.ClearSearch()
		case tea.KeyEnter:
			hs.DeactivateSearch()
		case tea.KeyBackspace:
			query := []rune(hs.GetSearchQuery())
			if len(query) > 0 {
				hs.SetSearchQuery(string(query[:len(query)-1]))
			}
		case tea.KeyRunes, tea.KeySpace:
			hs.SetSearchQuery(hs.GetSearchQuery() + string(msg.Runes))
		}
		m.updateHistoryView()
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Close):
		m.closeHistory()
		return nil

	case key.Matches(msg, m.keys.Up):
		hs.Navigate(-1)
		m.updateHistoryView()

	case key.Matches(msg, m.keys.Down):
		hs.Navigate(1)
		m.updateHistoryView()

	case key.Matches(msg, m.keys.Search):
		hs.ActivateSearch()

	case key.Matches(msg, m.keys.Toggle):
		hs.TogglePreview()
		m.updateHistoryView()

	case key.Matches(msg, m.keys.Use):
		entry := hs.GetCurrentEntry()
		if entry == nil {
			return nil
		}
		m.input.SetValue(entry.URL)
		m.closeHistory()
		return m.setStatusMessage(fmt.Sprintf("Loaded %s from history, press enter to summarize", entry.VideoID))

	case key.Matches(msg, m.keys.Delete):
		entry := hs.GetCurrentEntry()
		if entry == nil {
			return nil
		}
		return m.deleteHistoryEntry(entry.ID)

	case key.Matches(msg, m.keys.Wipe):
		if len(hs.GetAllEntries()) > 0 {
			m.mode = ModeHistoryClearConfirm
		}
	}

	return nil
}

func (m *Model) handleHistoryClearConfirmKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		m.mode = ModeHistory
		return m.clearHistory()
	case "n", "N", "esc":
		m.mode = ModeHistory
	}
	return nil
}

func (m *Model) closeHistory() {
	m.mode = ModeNormal
	m.historyState.ClearSearch()
	m.input.Focus()
}
