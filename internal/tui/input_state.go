package tui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// InputState owns the raw URL text. It is the input controller: every
// keystroke updates it synchronously and the only validation is non-empty.
type InputState struct {
	mu    sync.RWMutex
	input textinput.Model
}

// NewInputState creates a focused, empty URL input
func NewInputState() *InputState {
	ti := textinput.New()
	ti.Placeholder = "Paste a YouTube URL"
	ti.Prompt = "URL › "
	ti.CharLimit = 2048
	ti.Width = 60
	ti.Focus()

	return &InputState{input: ti}
}

// Update applies a message (keystrokes, paste, blink) to the input
func (s *InputState) Update(msg tea.Msg) tea.Cmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return cmd
}

// Value returns the current text
func (s *InputState) Value() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.input.Value()
}

// SetValue replaces the text and moves the cursor to the end
func (s *InputState) SetValue(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input.SetValue(v)
	s.input.CursorEnd()
}

// Submittable reports whether the value is non-empty once trimmed
func (s *InputState) Submittable() bool {
	return strings.TrimSpace(s.Value()) != ""
}

// SetWidth sets the visible width of the field
func (s *InputState) SetWidth(w int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w < 10 {
		w = 10
	}
	s.input.Width = w
}

// Focus gives the field keyboard focus
func (s *InputState) Focus() tea.Cmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input.Focus()
}

// Blur removes keyboard focus
func (s *InputState) Blur() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input.Blur()
}

// View renders the field
func (s *InputState) View() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.input.View()
}
