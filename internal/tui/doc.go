/*
Package tui implements the interactive terminal interface of ytsum.

# Architecture

The TUI follows the Bubble Tea framework's Model-Update-View pattern:
  - Model: holds the last snapshot of the submission machine plus widget state
  - Update: processes keys and settlement messages, returns commands
  - View: renders only from the snapshot, never from the machine directly

# Key Components

  - model.go: Model struct, message types and the Update loop
  - keys.go: key bindings and routing per mode
  - render.go: main view, result panels, status bar and history modal
  - actions.go: side effects (summarize call, clipboard, history store)
  - init.go: construction and program startup

# Submissions

A submit calls lifecycle.Machine.Begin synchronously, so the in-flight
indicator shows on the very next frame. The call itself runs in a tea.Cmd
and comes back as a settlement carrying its ticket; a settlement whose
ticket is no longer current (cancelled with esc, or superseded) is dropped
by the machine.

# State Objects

  - InputState: the URL field
  - RequestState: ticket and cancel function of the running call
  - HistoryState: history list, fuzzy search and preview pane

All state objects are safe for concurrent use.
*/
package tui
