/*
Package types defines the data structures shared across ytsum.

# Wire Types

SummarizeRequest, SummaryResponse, ErrorResponse and HealthResponse mirror
the JSON bodies exchanged with the summarization backend. They are used by
the api client and by the mock backend, so both sides of the contract stay in
one place.

SummaryResponse.Summary is a pointer: a 2xx body without a summary key is
rejected as malformed.

# Stored Types

HistoryEntry is one settled submission as stored in the history database and
printed by the history command (json and yaml tags).
*/
package types
