/*
Package lifecycle implements the request lifecycle of a summary submission.

# States

	Idle --Begin--> InFlight --Settle(success)--> Succeeded
	                InFlight --Settle(failure)--> Failed
	Succeeded/Failed --Begin--> InFlight

Begin clears Summary, Warning and ErrorMessage before the call is issued.
Settle replaces the whole state in one critical section, so the in-flight
indicator clears together with the result fields.

# Invariants

  - Summary and ErrorMessage are never both set
  - Warning is only set next to a Summary
  - a fresh Machine is Idle with every result field empty

# Concurrency

Only one submission may be in flight: Begin returns ErrInFlight otherwise.
Each Ticket carries a sequence number and Settle drops tickets that are not
current, so a late response can never overwrite a newer submission.

Execute is separate from Begin/Settle so event-loop callers (the TUI) can run
the call in a command and settle on their own goroutine:

	ticket, err := machine.Begin(url)
	if err != nil {
		return err
	}
	go func() {
		outcome := machine.Execute(ctx, ticket)
		results <- settled{ticket, outcome}
	}()
	// later, on the UI goroutine
	machine.Settle(r.ticket, r.outcome)

Synchronous callers use Submit.
*/
package lifecycle
