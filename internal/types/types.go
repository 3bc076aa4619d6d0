package types

import (
	"encoding/json"
	"time"
)

// SummarizeRequest is the body of POST /summarize
type SummarizeRequest struct {
	URL string `json:"url"`
}

// SummaryResponse is the body of a 2xx response from POST /summarize.
// Summary is a pointer so a missing key can be told apart from an empty one.
type SummaryResponse struct {
	Summary *string `json:"summary"`
	Warning string  `json:"warning,omitempty"`
	Source  string  `json:"source,omitempty"` // "transcript" or "audio"
}

// ErrorResponse is the body of a non-2xx response.
// Detail is either a string or, for validation errors, a list of objects with a "msg" field.
type ErrorResponse struct {
	Detail json.RawMessage `json:"detail,omitempty"`
}

// HealthResponse is the body of GET /
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HistoryEntry is one settled submission recorded in the history database
type HistoryEntry struct {
	ID           int64     `json:"id" yaml:"id"`
	RequestID    string    `json:"requestId,omitempty" yaml:"requestId,omitempty"`
	Timestamp    time.Time `json:"timestamp" yaml:"timestamp"`
	URL          string    `json:"url" yaml:"url"`
	VideoID      string    `json:"videoId,omitempty" yaml:"videoId,omitempty"`
	Phase        string    `json:"phase" yaml:"phase"`
	Summary      string    `json:"summary,omitempty" yaml:"summary,omitempty"`
	Warning      string    `json:"warning,omitempty" yaml:"warning,omitempty"`
	Source       string    `json:"source,omitempty" yaml:"source,omitempty"`
	ErrorMessage string    `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorKind    string    `json:"errorKind,omitempty" yaml:"errorKind,omitempty"`
	DurationMs   int64     `json:"durationMs" yaml:"durationMs"`
}

// Succeeded reports whether the entry holds a summary
func (e HistoryEntry) Succeeded() bool {
	return e.Phase == "succeeded"
}
