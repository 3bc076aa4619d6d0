package tui

import (
	"context"
	"sync"

	"github.com/studiowebux/ytsum/internal/lifecycle"
)

// RequestState tracks the in-flight submission's ticket and cancel function
type RequestState struct {
	mu     sync.Mutex
	ticket lifecycle.Ticket
	cancel context.CancelFunc
	active bool
}

// Start stores the ticket and cancel function of a new submission
func (r *RequestState) Start(ticket lifecycle.Ticket, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticket = ticket
	r.cancel = cancel
	r.active = true
}

// IsActive returns whether a submission is running
func (r *RequestState) IsActive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Cancel cancels the running submission and returns its ticket
func (r *RequestState) Cancel() (lifecycle.Ticket, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.active {
		return lifecycle.Ticket{}, false
	}
	if r.cancel != nil {
		r.cancel()
	}
	ticket := r.ticket
	r.active = false
	r.cancel = nil
	return ticket, true
}

// Finish releases the context of ticket if it is still the running submission
func (r *RequestState) Finish(ticket lifecycle.Ticket) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.active || r.ticket.Seq != ticket.Seq {
		return
	}
	if r.cancel != nil {
		r.cancel()
	}
	r.active = false
	r.cancel = nil
}
