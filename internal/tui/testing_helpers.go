package tui

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/ytsum/internal/api"
	"github.com/studiowebux/ytsum/internal/history"
)

// stubSummarizer returns a fixed result, optionally blocking until released
type stubSummarizer struct {
	mu      sync.Mutex
	calls   []string
	summary *api.Summary
	err     error
	release chan struct{}
}

func (s *stubSummarizer) Summarize(ctx context.Context, videoURL string) (*api.Summary, error) {
	s.mu.Lock()
	s.calls = append(s.calls, videoURL)
	release := s.release
	s.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, &api.Error{Kind: api.KindNetwork, Message: api.GenericMessage, Err: ctx.Err()}
		}
	}
	return s.summary, s.err
}

func (s *stubSummarizer) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// CreateTestModel creates a Model instance for testing with a stub summarizer and no history
func CreateTestModel(t *testing.T) (*Model, *stubSummarizer) {
	t.Helper()

	stub := &stubSummarizer{summary: &api.Summary{Text: "## Summary\n\n- point"}}
	m, err := New(context.Background(), Options{
		Summarizer: stub,
		APIBase:    "http://backend.test",
		Version:    "test-version",
	})
	if err != nil {
		t.Fatalf("Failed to create test model: %v", err)
	}

	// Give the view a size
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return &m, stub
}

// CreateTestModelWithHistory creates a Model backed by a temporary history database
func CreateTestModelWithHistory(t *testing.T) (*Model, *stubSummarizer, *history.Manager) {
	t.Helper()

	mgr, err := history.NewManager(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open history: %v", err)
	}

	stub := &stubSummarizer{summary: &api.Summary{Text: "summary"}}
	m, err := New(context.Background(), Options{
		Summarizer: stub,
		History:    mgr,
		Version:    "test-version",
	})
	if err != nil {
		t.Fatalf("Failed to create test model with history: %v", err)
	}
	t.Cleanup(m.Cleanup)

	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return &m, stub, mgr
}

// typeText feeds text to the model as runes
func typeText(m *Model, text string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

// deliver runs a command that performs I/O (summarize call, history store)
// and feeds its message back into the model, returning the follow-up command.
// Never pass tick or batch commands: they block or fan out.
func deliver(t *testing.T, m *Model, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command, got nil")
	}
	_, next := m.Update(cmd())
	return next
}

// AssertModelField is a generic helper for checking model field values
func AssertModelField[T comparable](t *testing.T, fieldName string, got, want T) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", fieldName, got, want)
	}
}

// AssertNoError verifies that an error is nil
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}

// AssertError verifies that an error occurred
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Error("Expected error but got nil")
	}
}
