package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/ytsum/internal/api"
	"github.com/studiowebux/ytsum/internal/lifecycle"
)

const testURL = "https://www.youtube.com/watch?v=abc123"

func TestNew_InitializesStateCorrectly(t *testing.T) {
	m, _ := CreateTestModel(t)

	if m.requestState == nil {
		t.Error("requestState should be initialized")
	}
	if m.historyState == nil {
		t.Error("historyState should be initialized")
	}

	AssertModelField(t, "mode", m.mode, ModeNormal)
	AssertModelField(t, "state.Phase", m.state.Phase, lifecycle.Idle)
	AssertModelField(t, "requestState.IsActive()", m.requestState.IsActive(), false)
	AssertModelField(t, "input.Value()", m.input.Value(), "")
}

func TestNew_RequiresSummarizer(t *testing.T) {
	_, err := New(context.Background(), Options{})
	AssertError(t, err)
}

func TestView_BeforeWindowSize(t *testing.T) {
	m, err := New(context.Background(), Options{Summarizer: &stubSummarizer{}})
	AssertNoError(t, err)
	AssertModelField(t, "View()", m.View(), "Initializing...")
}

func TestSubmit_EmptyInputIsNoop(t *testing.T) {
	m, stub := CreateTestModel(t)

	typeText(m, "   ")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if cmd != nil {
		t.Error("expected no command for blank input")
	}
	AssertModelField(t, "state.Phase", m.state.Phase, lifecycle.Idle)
	AssertModelField(t, "calls", len(stub.Calls()), 0)
}

func TestSubmit_ShowsLoadingImmediately(t *testing.T) {
	m, _ := CreateTestModel(t)

	typeText(m, testURL)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if cmd == nil {
		t.Fatal("expected a command")
	}
	AssertModelField(t, "state.Phase", m.state.Phase, lifecycle.InFlight)
	AssertModelField(t, "state.URL", m.state.URL, testURL)
	AssertModelField(t, "requestState.IsActive()", m.requestState.IsActive(), true)

	view := m.View()
	if !strings.Contains(view, LabelSubmitting) {
		t.Errorf("View() should show %q while in flight", LabelSubmitting)
	}
	if strings.Contains(view, LabelSubmit) {
		t.Errorf("View() should not show %q while in flight", LabelSubmit)
	}
}

func TestSubmit_Success(t *testing.T) {
	m, stub := CreateTestModel(t)
	stub.summary = &api.Summary{Text: "## Summary\n\n- first point", Source: "transcript"}

	typeText(m, testURL)
	deliver(t, m, m.startSubmission())

	AssertModelField(t, "state.Phase", m.state.Phase, lifecycle.Succeeded)
	AssertModelField(t, "state.Summary", m.state.Summary, "## Summary\n\n- first point")
	AssertModelField(t, "state.ErrorMessage", m.state.ErrorMessage, "")
	AssertModelField(t, "requestState.IsActive()", m.requestState.IsActive(), false)

	view := m.View()
	if !strings.Contains(view, "point") {
		t.Error("View() should contain the summary")
	}
	if !strings.Contains(view, LabelSubmit) {
		t.Errorf("View() should show %q once settled", LabelSubmit)
	}
	if calls := stub.Calls(); len(calls) != 1 || calls[0] != testURL {
		t.Errorf("calls = %v", calls)
	}
}

func TestSubmit_FailureShowsErrorPanel(t *testing.T) {
	m, stub := CreateTestModel(t)
	stub.summary = nil
	stub.err = &api.Error{Kind: api.KindServer, Status: 400, Message: "Invalid YouTube URL"}

	typeText(m, "https://example.com/x")
	deliver(t, m, m.startSubmission())

	AssertModelField(t, "state.Phase", m.state.Phase, lifecycle.Failed)
	AssertModelField(t, "state.ErrorMessage", m.state.ErrorMessage, "Invalid YouTube URL")
	AssertModelField(t, "state.Summary", m.state.Summary, "")

	if !strings.Contains(m.View(), "Invalid YouTube URL") {
		t.Error("View() should show the error message")
	}
}

func TestSubmit_WarningShownWithSummary(t *testing.T) {
	m, stub := CreateTestModel(t)
	stub.summary = &api.Summary{Text: "short summary", Warning: "Transcript unavailable"}

	typeText(m, testURL)
	deliver(t, m, m.startSubmission())

	AssertModelField(t, "state.Warning", m.state.Warning, "Transcript unavailable")
	if !strings.Contains(m.View(), "Transcript unavailable") {
		t.Error("View() should show the warning")
	}
}

func TestSubmit_RefusedWhileInFlight(t *testing.T) {
	m, stub := CreateTestModel(t)
	stub.release = make(chan struct{})

	typeText(m, testURL)
	first := m.startSubmission()
	if first == nil {
		t.Fatal("expected a command")
	}

	// The status tick is not executed; only the refusal matters
	m.startSubmission()
	AssertModelField(t, "statusMsg", m.statusMsg, "A summary is already in progress")
	AssertModelField(t, "state.Phase", m.state.Phase, lifecycle.InFlight)

	close(stub.release)
	deliver(t, m, first)

	AssertModelField(t, "state.Phase", m.state.Phase, lifecycle.Succeeded)
	AssertModelField(t, "calls", len(stub.Calls()), 1)
}

func TestCancel_DropsLateSettlement(t *testing.T) {
	m, stub := CreateTestModel(t)
	stub.release = make(chan struct{})

	typeText(m, testURL)
	cmd := m.startSubmission()

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	AssertModelField(t, "state.Phase", m.state.Phase, lifecycle.Failed)
	AssertModelField(t, "state.ErrorMessage", m.state.ErrorMessage, "Request cancelled")
	AssertModelField(t, "requestState.IsActive()", m.requestState.IsActive(), false)

	// The call sees a cancelled context and settles late; it must be ignored
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	select {
	case msg := <-done:
		m.Update(msg)
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled call did not return")
	}

	AssertModelField(t, "state.Phase", m.state.Phase, lifecycle.Failed)
	AssertModelField(t, "state.ErrorMessage", m.state.ErrorMessage, "Request cancelled")
}

func TestCancel_NothingInFlight(t *testing.T) {
	m, _ := CreateTestModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd != nil {
		t.Error("expected no command")
	}
	AssertModelField(t, "state.Phase", m.state.Phase, lifecycle.Idle)
}

func TestResubmit_ClearsPreviousResult(t *testing.T) {
	m, stub := CreateTestModel(t)
	stub.summary = nil
	stub.err = &api.Error{Kind: api.KindServer, Message: "boom"}

	typeText(m, testURL)
	deliver(t, m, m.startSubmission())
	AssertModelField(t, "state.ErrorMessage", m.state.ErrorMessage, "boom")

	stub.release = make(chan struct{})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	AssertModelField(t, "state.Phase", m.state.Phase, lifecycle.InFlight)
	AssertModelField(t, "state.ErrorMessage", m.state.ErrorMessage, "")
	if strings.Contains(m.View(), "boom") {
		t.Error("previous error should not be visible while in flight")
	}

	close(stub.release)
}

func TestClear_ResetsToIdle(t *testing.T) {
	m, _ := CreateTestModel(t)

	typeText(m, testURL)
	deliver(t, m, m.startSubmission())
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})

	AssertModelField(t, "state.Phase", m.state.Phase, lifecycle.Idle)
	AssertModelField(t, "state.Summary", m.state.Summary, "")
	AssertModelField(t, "input.Value()", m.input.Value(), "")
}

func TestHistoryKey_Disabled(t *testing.T) {
	m, _ := CreateTestModel(t)

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})

	AssertModelField(t, "mode", m.mode, ModeNormal)
	AssertModelField(t, "statusMsg", m.statusMsg, "History is disabled")
}

func TestHistory_SaveLoadAndUse(t *testing.T) {
	m, _, mgr := CreateTestModelWithHistory(t)

	typeText(m, testURL)
	save := deliver(t, m, m.startSubmission())
	if next := deliver(t, m, save); next != nil {
		t.Errorf("unexpected follow-up after save: errorMsg = %q", m.errorMsg)
	}

	count, err := mgr.GetCount()
	AssertNoError(t, err)
	AssertModelField(t, "history count", count, 1)

	m.input.SetValue("")
	_, load := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	AssertModelField(t, "mode", m.mode, ModeHistory)
	deliver(t, m, load)

	AssertModelField(t, "history entries", len(m.historyState.GetEntries()), 1)
	if !strings.Contains(m.View(), "abc123") {
		t.Error("history view should list the video id")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	AssertModelField(t, "mode", m.mode, ModeNormal)
	AssertModelField(t, "input.Value()", m.input.Value(), testURL)
	// Using an entry only fills the input
	AssertModelField(t, "state.Phase", m.state.Phase, lifecycle.Succeeded)
}

func TestHistory_ClearConfirmation(t *testing.T) {
	m, _, mgr := CreateTestModelWithHistory(t)

	typeText(m, testURL)
	deliver(t, m, deliver(t, m, m.startSubmission()))

	_, load := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	deliver(t, m, load)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("C")})
	AssertModelField(t, "mode", m.mode, ModeHistoryClearConfirm)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	AssertModelField(t, "mode", m.mode, ModeHistory)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("C")})
	_, clear := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	deliver(t, m, clear)

	count, err := mgr.GetCount()
	AssertNoError(t, err)
	AssertModelField(t, "history count", count, 0)
	AssertModelField(t, "history entries", len(m.historyState.GetAllEntries()), 0)
}

func TestHealthCheckMsg(t *testing.T) {
	m, _ := CreateTestModel(t)

	m.Update(healthCheckMsg{result: &api.HealthResult{OK: true, Status: "ok", Latency: 12 * time.Millisecond}})
	if !strings.Contains(m.View(), "backend ok 12ms") {
		t.Error("status bar should show a healthy backend")
	}

	m.Update(healthCheckMsg{err: &api.Error{Kind: api.KindNetwork, Message: "connection refused"}})
	if !strings.Contains(m.View(), "backend unreachable") {
		t.Error("status bar should show an unreachable backend")
	}
}

func TestSubmitLabel(t *testing.T) {
	tests := []struct {
		phase lifecycle.Phase
		want  string
	}{
		{lifecycle.Idle, LabelSubmit},
		{lifecycle.InFlight, LabelSubmitting},
		{lifecycle.Succeeded, LabelSubmit},
		{lifecycle.Failed, LabelSubmit},
	}

	for _, tt := range tests {
		t.Run(tt.phase.String(), func(t *testing.T) {
			AssertModelField(t, "submitLabel", submitLabel(lifecycle.State{Phase: tt.phase}), tt.want)
		})
	}
}

func TestRenderPanels(t *testing.T) {
	tests := []struct {
		name  string
		state lifecycle.State
		want  []string
	}{
		{"idle", lifecycle.State{Phase: lifecycle.Idle}, nil},
		{"success", lifecycle.State{Phase: lifecycle.Succeeded, Summary: "s"}, nil},
		{"success with warning", lifecycle.State{Phase: lifecycle.Succeeded, Summary: "s", Warning: "careful"}, []string{"careful"}},
		{"failure", lifecycle.State{Phase: lifecycle.Failed, ErrorMessage: "bad"}, []string{"bad"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			panels := renderPanels(tt.state, 80)
			if len(panels) != len(tt.want) {
				t.Fatalf("len(panels) = %d, want %d", len(panels), len(tt.want))
			}
			for i, want := range tt.want {
				if !strings.Contains(panels[i], want) {
					t.Errorf("panel %d = %q, want it to contain %q", i, panels[i], want)
				}
			}
		})
	}
}

func TestQuit_CancelsInFlight(t *testing.T) {
	m, stub := CreateTestModel(t)
	stub.release = make(chan struct{})

	typeText(m, testURL)
	m.startSubmission()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	AssertModelField(t, "quitting", m.quitting, true)
	AssertModelField(t, "requestState.IsActive()", m.requestState.IsActive(), false)
	AssertModelField(t, "View()", m.View(), "")
}
