package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/studiowebux/ytsum/internal/api"
	"github.com/studiowebux/ytsum/internal/config"
	"github.com/studiowebux/ytsum/internal/filter"
	"github.com/studiowebux/ytsum/internal/history"
	"github.com/studiowebux/ytsum/internal/lifecycle"
	"github.com/studiowebux/ytsum/internal/render"
	"github.com/studiowebux/ytsum/internal/videourl"
	"gopkg.in/yaml.v3"
)

// ErrSummaryFailed is returned when the submission settled as Failed.
// The error message has already been written to the output.
var ErrSummaryFailed = errors.New("summary failed")

// SummarizeOptions contains options for a one-shot summarize
type SummarizeOptions struct {
	URL          string
	OutputFormat string // text, json, yaml, summary
	Query        string // JMESPath query or $(shell command) over the JSON result
	SavePath     string
	Copy         bool
	Version      string
}

// Summarize runs one submission and writes the result to stdout.
// Progress, warnings about history and save notices go to stderr.
func Summarize(ctx context.Context, settings *config.Settings, opts SummarizeOptions, stdout, stderr io.Writer, logger *slog.Logger) (lifecycle.State, error) {
	if err := settings.Validate(); err != nil {
		return lifecycle.State{}, err
	}
	if opts.Query != "" {
		if err := filter.Validate(opts.Query); err != nil {
			return lifecycle.State{}, err
		}
	}

	client, err := api.New(settings.APIBase,
		api.WithUserAgent(userAgent(opts.Version)),
		api.WithLogger(logger),
	)
	if err != nil {
		return lifecycle.State{}, err
	}

	machine := lifecycle.NewMachine(client,
		lifecycle.WithTimeout(settings.Timeout()),
		lifecycle.WithLogger(logger),
	)

	if render.IsTerminal(stderr) {
		machine.Subscribe(func(s lifecycle.State) {
			if s.Phase == lifecycle.InFlight {
				fmt.Fprintf(stderr, "Summarizing %s...\n", videourl.Label(s.URL, 60))
			}
		})
	}

	state, err := machine.Submit(ctx, opts.URL)
	if err != nil {
		return state, err
	}

	// Don't fail if history save fails, just warn
	if mgr, err := OpenHistory(settings); err != nil {
		fmt.Fprintf(stderr, "Warning: failed to open history: %v\n", err)
	} else if mgr != nil {
		if _, err := mgr.SaveState(state); err != nil {
			fmt.Fprintf(stderr, "Warning: failed to save history: %v\n", err)
		}
		mgr.Close()
	}

	format := opts.OutputFormat
	if format == "" {
		format = settings.Output
	}
	if format == "" {
		// Piped output gets the bare summary
		if render.IsTerminal(stdout) {
			format = "text"
		} else {
			format = "summary"
		}
	}

	var output string
	if opts.Query != "" {
		output, err = queryState(state, opts.Query)
	} else {
		output, err = formatOutput(state, format, opts.SavePath == "" && render.IsTerminal(stdout))
	}
	if err != nil {
		return state, fmt.Errorf("failed to format output: %w", err)
	}

	if opts.SavePath != "" {
		if err := os.WriteFile(opts.SavePath, []byte(output), config.FilePermissions); err != nil {
			return state, fmt.Errorf("failed to save summary: %w", err)
		}
		fmt.Fprintf(stderr, "Summary saved to %s\n", opts.SavePath)
	} else {
		fmt.Fprint(stdout, output)
	}

	if opts.Copy && state.Phase == lifecycle.Succeeded {
		if err := clipboard.WriteAll(state.Summary); err != nil {
			fmt.Fprintf(stderr, "Warning: failed to copy to clipboard: %v\n", err)
		} else {
			fmt.Fprintln(stderr, "Summary copied to clipboard")
		}
	}

	if state.Phase == lifecycle.Failed {
		// Bare summaries, queries and saved files carry no visible error
		if opts.Query != "" || format == "summary" || opts.SavePath != "" {
			fmt.Fprintln(stderr, paint(render.IsTerminal(stderr), colorRed, "Error: "+state.ErrorMessage))
		}
		return state, ErrSummaryFailed
	}
	return state, nil
}

func userAgent(version string) string {
	if version == "" {
		return "ytsum"
	}
	return "ytsum/" + version
}

// resultDocument is the structured form of a settled state, shared with history records
func resultDocument(s lifecycle.State) any {
	entry, _ := history.EntryFromState(s)
	return entry
}

// queryState applies a JMESPath query or shell command to the JSON result
func queryState(s lifecycle.State, query string) (string, error) {
	data, err := json.Marshal(resultDocument(s))
	if err != nil {
		return "", err
	}
	out, err := filter.Apply(string(data), query)
	if err != nil {
		return "", err
	}
	return ensureNewline(out), nil
}

// formatOutput formats the settled state based on the output format
func formatOutput(s lifecycle.State, format string, color bool) (string, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(resultDocument(s), "", "  ")
		if err != nil {
			return "", err
		}
		return string(data) + "\n", nil

	case "yaml":
		data, err := yaml.Marshal(resultDocument(s))
		if err != nil {
			return "", err
		}
		return string(data), nil

	case "summary":
		if s.Phase == lifecycle.Failed {
			return "", nil
		}
		return ensureNewline(s.Summary), nil

	case "text":
		fallthrough
	default:
		var sb strings.Builder

		if s.Phase == lifecycle.Failed {
			sb.WriteString(paint(color, colorRed, "Error: "+s.ErrorMessage))
			sb.WriteString("\n")
			return sb.String(), nil
		}

		if s.Warning != "" {
			sb.WriteString(paint(color, colorYellow, "Warning: "+s.Warning))
			sb.WriteString("\n\n")
		}

		summary := s.Summary
		if color {
			summary = render.Markdown(summary, render.DefaultStyle)
		}
		sb.WriteString(ensureNewline(summary))

		meta := fmt.Sprintf("%.1fs", s.Duration.Seconds())
		if s.Source != "" {
			meta = "from " + s.Source + " · " + meta
		}
		sb.WriteString("\n")
		sb.WriteString(paint(color, colorGray, meta))
		sb.WriteString("\n")

		return sb.String(), nil
	}
}

// ANSI color codes
const (
	colorReset  = "\x1b[0m"
	colorRed    = "\x1b[31m"
	colorGreen  = "\x1b[32m"
	colorYellow = "\x1b[33m"
	colorGray   = "\x1b[90m"
)

func paint(enabled bool, color, s string) string {
	if !enabled {
		return s
	}
	return color + s + colorReset
}

func ensureNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
