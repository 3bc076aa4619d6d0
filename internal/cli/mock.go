package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/studiowebux/ytsum/internal/mock"
)

// MockOptions configures the fake backend runner
type MockOptions struct {
	ConfigPath string // yaml or json routes; empty uses the built-in routes
	Host       string
	Port       int
	WriteTo    string // write the built-in config to this path and exit
}

// RunMock serves a fake summarization backend until ctx is cancelled
func RunMock(ctx context.Context, opts MockOptions, w io.Writer, logger *slog.Logger) error {
	if opts.WriteTo != "" {
		if err := mock.SaveConfig(mock.DefaultConfig(), opts.WriteTo); err != nil {
			return err
		}
		fmt.Fprintf(w, "Mock config written to %s\n", opts.WriteTo)
		return nil
	}

	cfg := mock.DefaultConfig()
	workdir := "."
	if opts.ConfigPath != "" {
		loaded, err := mock.LoadConfig(opts.ConfigPath)
		if err != nil {
			return err
		}
		cfg = loaded
		workdir = filepath.Dir(opts.ConfigPath)
	}
	if opts.Host != "" {
		cfg.Host = opts.Host
	}
	if opts.Port != 0 {
		cfg.Port = opts.Port
	}

	server := mock.NewServer(cfg, workdir, logger)

	fmt.Fprintf(w, "Mock backend on %s (ctrl+c to stop)\n", server.Address())
	for _, route := range cfg.Routes {
		name := route.Name
		if name == "" {
			name = route.Path
		}
		match := ""
		if route.URLContains != "" {
			match = fmt.Sprintf(" url~%q", route.URLContains)
		}
		fmt.Fprintf(w, "  %-6s %-12s%s -> %d  %s\n", route.Method, route.Path, match, route.Status, name)
	}
	fmt.Fprintf(w, "\nexport API_BASE=%s\n", server.Address())

	err := server.Run(ctx)
	if report := requestReport(server.GetLogs()); report != "" {
		fmt.Fprintln(w, report)
	}
	return err
}

// requestReport summarizes served requests by matched route
func requestReport(logs []mock.RequestLog) string {
	if len(logs) == 0 {
		return ""
	}
	counts := make(map[string]int)
	for _, l := range logs {
		counts[l.MatchedRule]++
	}
	return fmt.Sprintf("\nServed %d requests%s", len(logs), breakdown(counts))
}
