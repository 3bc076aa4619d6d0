package lifecycle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/studiowebux/ytsum/internal/api"
)

func TestApply(t *testing.T) {
	inFlight := State{URL: "https://youtu.be/abc", Phase: InFlight, Seq: 7}

	tests := []struct {
		name        string
		outcome     Outcome
		wantPhase   Phase
		wantSummary string
		wantWarning string
		wantError   string
	}{
		{
			name:        "success",
			outcome:     Success("Short summary", ""),
			wantPhase:   Succeeded,
			wantSummary: "Short summary",
		},
		{
			name:        "success with warning",
			outcome:     Success("Short summary", "Audio fallback used"),
			wantPhase:   Succeeded,
			wantSummary: "Short summary",
			wantWarning: "Audio fallback used",
		},
		{
			name:      "blank success becomes malformed",
			outcome:   Success("  ", "ignored"),
			wantPhase: Failed,
			wantError: api.EmptySummaryMessage,
		},
		{
			name:      "failure",
			outcome:   Failure(api.KindServer, "Invalid YouTube URL"),
			wantPhase: Failed,
			wantError: "Invalid YouTube URL",
		},
		{
			name:      "failure without message",
			outcome:   Failure(api.KindServer, ""),
			wantPhase: Failed,
			wantError: api.GenericMessage,
		},
		{
			name:      "zero outcome is a failure",
			outcome:   Outcome{},
			wantPhase: Failed,
			wantError: api.GenericMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(inFlight, tt.outcome)
			assertInvariants(t, got)

			if got.Phase != tt.wantPhase {
				t.Errorf("Phase = %s, want %s", got.Phase, tt.wantPhase)
			}
			if got.Summary != tt.wantSummary {
				t.Errorf("Summary = %q, want %q", got.Summary, tt.wantSummary)
			}
			if got.Warning != tt.wantWarning {
				t.Errorf("Warning = %q, want %q", got.Warning, tt.wantWarning)
			}
			if got.ErrorMessage != tt.wantError {
				t.Errorf("ErrorMessage = %q, want %q", got.ErrorMessage, tt.wantError)
			}
			if got.URL != inFlight.URL || got.Seq != inFlight.Seq {
				t.Errorf("URL/Seq not carried over: %+v", got)
			}
		})
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	s := State{URL: "u", Phase: InFlight, Seq: 1}
	before := s

	Apply(s, Success("x", "y"))

	if s != before {
		t.Errorf("input changed: %+v", s)
	}
}

func TestApply_DropsStaleFields(t *testing.T) {
	// A state carrying leftovers must not leak them into the next result
	dirty := State{URL: "u", Phase: InFlight, Summary: "old", Warning: "old", ErrorMessage: "old"}

	failed := Apply(dirty, Failure(api.KindNetwork, "new error"))
	if failed.Summary != "" || failed.Warning != "" {
		t.Errorf("failure kept old result fields: %+v", failed)
	}

	ok := Apply(dirty, Success("new", ""))
	if ok.ErrorMessage != "" || ok.Warning != "" {
		t.Errorf("success kept old fields: %+v", ok)
	}
}

func TestPhase_String(t *testing.T) {
	tests := map[Phase]string{
		Idle:      "idle",
		InFlight:  "in-flight",
		Succeeded: "succeeded",
		Failed:    "failed",
		Phase(99): "unknown",
	}
	for p, want := range tests {
		if got := p.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", p, got, want)
		}
	}
}

// End-to-end scenarios against a stub backend through the real HTTP client
func TestScenarios(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantPhase   Phase
		wantSummary string
		wantWarning string
		wantError   string
	}{
		{
			name:        "A: success without warning",
			status:      http.StatusOK,
			body:        `{"summary":"The video explains Go interfaces."}`,
			wantPhase:   Succeeded,
			wantSummary: "The video explains Go interfaces.",
		},
		{
			name:        "B: success with warning",
			status:      http.StatusOK,
			body:        `{"summary":"Summary text","warning":"Transcript unavailable, used audio"}`,
			wantPhase:   Succeeded,
			wantSummary: "Summary text",
			wantWarning: "Transcript unavailable, used audio",
		},
		{
			name:      "C: server error with detail",
			status:    http.StatusBadRequest,
			body:      `{"detail":"Invalid YouTube URL"}`,
			wantPhase: Failed,
			wantError: "Invalid YouTube URL",
		},
		{
			name:      "D: server error without parsable body",
			status:    http.StatusInternalServerError,
			body:      `<html>Internal Server Error</html>`,
			wantPhase: Failed,
			wantError: api.GenericMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, err := api.New(server.URL)
			if err != nil {
				t.Fatalf("api.New() error = %v", err)
			}
			m := NewMachine(client)

			s, err := m.Submit(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
			if err != nil {
				t.Fatalf("Submit() error = %v", err)
			}
			assertInvariants(t, s)

			if s.Phase != tt.wantPhase {
				t.Errorf("Phase = %s, want %s", s.Phase, tt.wantPhase)
			}
			if s.Summary != tt.wantSummary {
				t.Errorf("Summary = %q, want %q", s.Summary, tt.wantSummary)
			}
			if s.Warning != tt.wantWarning {
				t.Errorf("Warning = %q, want %q", s.Warning, tt.wantWarning)
			}
			if s.ErrorMessage != tt.wantError {
				t.Errorf("ErrorMessage = %q, want %q", s.ErrorMessage, tt.wantError)
			}
		})
	}
}

func TestScenario_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	base := server.URL
	server.Close()

	client, _ := api.New(base)
	m := NewMachine(client)

	s, _ := m.Submit(context.Background(), "https://youtu.be/abc")
	assertInvariants(t, s)

	if s.Phase != Failed || s.ErrorKind != api.KindNetwork {
		t.Errorf("state = %+v, want network failure", s)
	}
	if s.Loading() {
		t.Error("loading indicator still on after failure")
	}
}

func TestScenario_SlowBackendTimesOut(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client, _ := api.New(server.URL)
	m := NewMachine(client, WithTimeout(50*time.Millisecond))

	s, _ := m.Submit(context.Background(), "https://youtu.be/abc")
	assertInvariants(t, s)

	if s.Phase != Failed || s.ErrorKind != api.KindTimeout {
		t.Errorf("state = %+v, want timeout", s)
	}
}
