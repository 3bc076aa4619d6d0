package api

import (
	"context"
	"errors"
	"net"
	"strings"
)

// Messages shown to the user when the server gives nothing better
const (
	GenericMessage      = "Something went wrong. Try another video."
	TimeoutMessage      = "Request timed out. The video may be too long; try again later."
	EmptySummaryMessage = "The server returned no summary. Try another video."
)

// ErrorKind classifies a failed summarize call
type ErrorKind int

const (
	KindNone ErrorKind = iota
	// KindNetwork means no response was obtained
	KindNetwork
	// KindServer means the backend answered with a non-2xx status
	KindServer
	// KindMalformed means a 2xx status with a body that is not a summary
	KindMalformed
	// KindTimeout means the call outlived its deadline
	KindTimeout
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network_failure"
	case KindServer:
		return "server_error"
	case KindMalformed:
		return "malformed_response"
	case KindTimeout:
		return "timeout"
	default:
		return "none"
	}
}

// Error is returned by Client.Summarize for every failure.
// Message is already fit for display.
type Error struct {
	Kind    ErrorKind
	Status  int // HTTP status, 0 when no response was obtained
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, or KindNone if err is not an *Error
func KindOf(err error) ErrorKind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindNone
}

// transportError converts an error from http.Client.Do into an *Error
func transportError(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Message: TimeoutMessage, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, Message: TimeoutMessage, Err: err}
	}
	return &Error{Kind: KindNetwork, Message: describeTransportError(err.Error()), Err: err}
}

// describeTransportError turns a transport error string into an actionable message.
// Unknown errors keep their original text.
func describeTransportError(errStr string) string {
	if errStr == "" {
		return GenericMessage
	}

	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "context canceled") {
		return "Request cancelled"
	}

	if strings.Contains(errLower, "no such host") ||
		strings.Contains(errLower, "dial tcp: lookup") {
		return "Could not resolve the summarization server - check API_BASE and your network"
	}

	if strings.Contains(errLower, "connection refused") {
		return "Connection refused - check that the summarization server is running"
	}

	if strings.Contains(errLower, "connection reset") {
		return "Connection reset by the summarization server - try again"
	}

	if strings.Contains(errLower, "network is unreachable") ||
		strings.Contains(errLower, "no route to host") {
		return "Network unreachable - check your network connection"
	}

	if strings.Contains(errLower, "x509") ||
		strings.Contains(errLower, "certificate") ||
		strings.Contains(errLower, "tls") {
		return "TLS error talking to the summarization server: " + errStr
	}

	if strings.Contains(errLower, "unsupported protocol") {
		return "Invalid API_BASE - use an http:// or https:// URL"
	}

	if strings.Contains(errLower, "eof") {
		return "Connection closed unexpectedly by the summarization server"
	}

	return errStr
}
