package lifecycle

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/studiowebux/ytsum/internal/api"
)

// Phase is the lifecycle stage of a submission
type Phase int

const (
	Idle Phase = iota
	InFlight
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case InFlight:
		return "in-flight"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Done reports whether the phase is terminal for the current submission
func (p Phase) Done() bool {
	return p == Succeeded || p == Failed
}

// State is a snapshot of the Submission State.
// Empty strings mean absent.
type State struct {
	URL          string
	Phase        Phase
	Summary      string
	Warning      string
	ErrorMessage string

	// Bookkeeping, not shown to the user
	Seq       uint64
	Source    string
	ErrorKind api.ErrorKind
	RequestID string
	StartedAt time.Time
	Duration  time.Duration
}

// Loading reports whether the in-flight indicator should be shown
func (s State) Loading() bool {
	return s.Phase == InFlight
}

// OutcomeKind discriminates an Outcome
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota + 1
	OutcomeFailure
)

// Outcome is the settled result of one summarize call
type Outcome struct {
	Kind OutcomeKind

	// Success
	Summary   string
	Warning   string
	Source    string
	RequestID string

	// Failure
	Message   string
	ErrorKind api.ErrorKind
}

// Success builds a success outcome
func Success(summary, warning string) Outcome {
	return Outcome{Kind: OutcomeSuccess, Summary: summary, Warning: warning}
}

// Failure builds a failure outcome
func Failure(kind api.ErrorKind, message string) Outcome {
	return Outcome{Kind: OutcomeFailure, Message: message, ErrorKind: kind}
}

// OutcomeOf converts the return values of a summarize call into an Outcome
func OutcomeOf(summary *api.Summary, err error) Outcome {
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			return Failure(apiErr.Kind, apiErr.Message)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return Failure(api.KindTimeout, api.TimeoutMessage)
		}
		return Failure(api.KindNetwork, err.Error())
	}
	if summary == nil {
		return Failure(api.KindMalformed, api.GenericMessage)
	}
	return Outcome{
		Kind:      OutcomeSuccess,
		Summary:   summary.Text,
		Warning:   summary.Warning,
		Source:    summary.Source,
		RequestID: summary.RequestID,
	}
}

// Apply returns the state that results from settling s with o.
// Result fields are rebuilt from scratch so nothing from a previous submission survives.
func Apply(s State, o Outcome) State {
	next := State{
		URL:       s.URL,
		Seq:       s.Seq,
		StartedAt: s.StartedAt,
	}

	switch o.Kind {
	case OutcomeSuccess:
		if strings.TrimSpace(o.Summary) == "" {
			return Apply(s, Failure(api.KindMalformed, api.EmptySummaryMessage))
		}
		next.Phase = Succeeded
		next.Summary = o.Summary
		next.Warning = o.Warning
		next.Source = o.Source
		next.RequestID = o.RequestID
	default:
		next.Phase = Failed
		next.ErrorKind = o.ErrorKind
		next.ErrorMessage = o.Message
		if strings.TrimSpace(next.ErrorMessage) == "" {
			next.ErrorMessage = api.GenericMessage
		}
	}

	return next
}
