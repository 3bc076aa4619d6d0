/*
Package api implements the wire contract with the summarization backend.

# Endpoints

	POST {API_BASE}/summarize   {"url": "<video url>"}
	GET  {API_BASE}/            health probe

A 2xx response carries {"summary": "...", "warning"?: "...", "source"?: "..."}.
Any other status may carry {"detail": "..."}; validation errors carry a list
of objects whose "msg" fields are joined.

# Errors

Summarize never returns a bare error. Every failure is an *Error with a Kind:
  - KindNetwork: no response was obtained
  - KindServer: non-2xx status, Message is the detail or GenericMessage
  - KindMalformed: 2xx status with a body that is not a summary
  - KindTimeout: the caller's deadline expired

Error.Message is always fit for display.

# Deadlines

The client sets no timeout of its own. Callers bound the call with the
context they pass in; lifecycle.Machine does this with the configured
request timeout.

# Example

	client, err := api.New(os.Getenv("API_BASE"))
	if err != nil {
		return err
	}

	summary, err := client.Summarize(ctx, "https://youtube.com/watch?v=abc")
	if err != nil {
		fmt.Println(err) // display message
		return nil
	}
	fmt.Println(summary.Text)
*/
package api
