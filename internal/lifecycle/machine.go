package lifecycle

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/studiowebux/ytsum/internal/api"
)

var (
	// ErrInFlight is returned when a submission is started while another is in flight
	ErrInFlight = errors.New("a summary is already in progress")
	// ErrEmptyURL is returned when the submitted URL is blank
	ErrEmptyURL = errors.New("url is required")
)

// DefaultTimeout bounds a single summarize call when none is configured
const DefaultTimeout = 120 * time.Second

// Summarizer issues the summarize call. *api.Client implements it.
type Summarizer interface {
	Summarize(ctx context.Context, videoURL string) (*api.Summary, error)
}

// Ticket identifies one submission between Begin and Settle
type Ticket struct {
	Seq uint64
	URL string
}

// Machine owns the Submission State. All transitions happen under one lock,
// so observers and Snapshot callers never see a partial update.
// Observers receive snapshots in transition order, even across goroutines.
type Machine struct {
	mu        sync.Mutex
	notifyMu  sync.Mutex
	state     State
	seq       uint64
	observers []func(State)

	summarizer Summarizer
	timeout    time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

// MachineOption configures a Machine
type MachineOption func(*Machine)

// WithTimeout bounds each call. Zero or negative disables the bound.
func WithTimeout(d time.Duration) MachineOption {
	return func(m *Machine) {
		m.timeout = d
	}
}

// WithLogger sets the logger for transitions
func WithLogger(l *slog.Logger) MachineOption {
	return func(m *Machine) {
		m.logger = l
	}
}

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) MachineOption {
	return func(m *Machine) {
		m.now = now
	}
}

// NewMachine creates a machine in the Idle phase
func NewMachine(s Summarizer, opts ...MachineOption) *Machine {
	m := &Machine{
		state:      State{Phase: Idle},
		summarizer: s,
		timeout:    DefaultTimeout,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Snapshot returns a copy of the current state
func (m *Machine) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe registers fn to receive the state after every transition.
// fn runs on the goroutine that caused the transition and must not call back into the machine;
// the next transition waits until every observer has returned.
func (m *Machine) Subscribe(fn func(State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

// Begin starts a submission: results are cleared and the phase becomes InFlight.
func (m *Machine) Begin(url string) (Ticket, error) {
	if strings.TrimSpace(url) == "" {
		return Ticket{}, ErrEmptyURL
	}

	m.mu.Lock()
	if m.state.Phase == InFlight {
		m.mu.Unlock()
		return Ticket{}, ErrInFlight
	}
	m.seq++
	m.state = State{
		URL:       url,
		Phase:     InFlight,
		Seq:       m.seq,
		StartedAt: m.now(),
	}
	snapshot := m.unlockAndNotify()

	m.logger.Info("submission started", "seq", snapshot.Seq, "url", url)
	return Ticket{Seq: snapshot.Seq, URL: url}, nil
}

// Execute performs the call for t and returns its outcome without touching the state.
func (m *Machine) Execute(ctx context.Context, t Ticket) Outcome {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}
	return OutcomeOf(m.summarizer.Summarize(ctx, t.URL))
}

// Settle applies o if t is the current in-flight submission.
// It returns false for stale or unknown tickets, which are dropped.
func (m *Machine) Settle(t Ticket, o Outcome) bool {
	m.mu.Lock()
	if t.Seq != m.seq || m.state.Phase != InFlight {
		current := m.seq
		m.mu.Unlock()
		m.logger.Debug("stale settlement dropped", "seq", t.Seq, "current", current)
		return false
	}
	next := Apply(m.state, o)
	next.Duration = m.now().Sub(next.StartedAt)
	m.state = next
	snapshot := m.unlockAndNotify()

	if snapshot.Phase == Failed {
		m.logger.Info("submission failed", "seq", snapshot.Seq, "kind", snapshot.ErrorKind.String(), "error", snapshot.ErrorMessage, "duration_ms", snapshot.Duration.Milliseconds())
	} else {
		m.logger.Info("submission succeeded", "seq", snapshot.Seq, "warning", snapshot.Warning != "", "duration_ms", snapshot.Duration.Milliseconds())
	}
	return true
}

// Submit runs a whole submission and returns the settled state
func (m *Machine) Submit(ctx context.Context, url string) (State, error) {
	t, err := m.Begin(url)
	if err != nil {
		return m.Snapshot(), err
	}
	m.Settle(t, m.Execute(ctx, t))
	return m.Snapshot(), nil
}

// Reset returns to Idle, keeping the last URL. It fails while a submission is in flight.
func (m *Machine) Reset() error {
	m.mu.Lock()
	if m.state.Phase == InFlight {
		m.mu.Unlock()
		return ErrInFlight
	}
	m.state = State{URL: m.state.URL, Phase: Idle, Seq: m.seq}
	m.unlockAndNotify()
	return nil
}

// Abandon fails the in-flight submission t with a cancellation message.
// Used when the caller gives up waiting, e.g. the user cancels from the UI.
func (m *Machine) Abandon(t Ticket) bool {
	return m.Settle(t, Failure(api.KindNetwork, "Request cancelled"))
}

// unlockAndNotify releases mu and delivers the current state to observers.
// notifyMu is taken before mu is released so deliveries follow transition order.
// Must be called with mu held.
func (m *Machine) unlockAndNotify() State {
	snapshot, observers := m.state, m.observers
	m.notifyMu.Lock()
	m.mu.Unlock()
	defer m.notifyMu.Unlock()

	for _, fn := range observers {
		fn(snapshot)
	}
	return snapshot
}
