package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/studiowebux/ytsum/internal/analytics"
	"github.com/studiowebux/ytsum/internal/api"
	"github.com/studiowebux/ytsum/internal/cli"
	"github.com/studiowebux/ytsum/internal/config"
	"github.com/studiowebux/ytsum/internal/history"
	"github.com/studiowebux/ytsum/internal/tui"
	"github.com/studiowebux/ytsum/internal/types"
)

var (
	version = "0.1.0"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		// The failure message was already printed with the result
		if !errors.Is(err, cli.ErrSummaryFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// Persistent flags
var globalOpts cli.GlobalOptions

// Resolved in PersistentPreRunE
var (
	settings *config.Settings
	logger   *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "ytsum",
	Short: "Summarize videos from the terminal",
	Long: `ytsum sends a video URL to a summarization backend and shows the summary.

Run without arguments to start the interactive TUI, or use "ytsum summarize <url>"
for a one-shot summary that can be piped or saved.

The backend base URL comes from --api-base, the API_BASE environment variable,
a .env file in the working directory, or api_base in ~/.ytsum/config.jsonc.

Examples:
  ytsum                                          # Start interactive TUI
  ytsum summarize https://youtu.be/dQw4w9WgXcQ   # Print a summary
  ytsum summarize <url> -o json -q summary       # Query the JSON result
  ytsum history                                  # Recent submissions
  ytsum mock                                     # Fake backend for local dev`,
	Version:       version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		var err error
		settings, err = cli.ResolveSettings(globalOpts)
		if err != nil {
			return err
		}
		logger = cli.NewLogger(os.Stderr, globalOpts.Verbose)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd.Context())
	},
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize [url]",
	Short: "Summarize one video and print the result",
	Long: `Summarize one video and print the result.

Without a URL, pick a recent video from history (or type a new one) when
stdin is a terminal, or read the URL from the first line of stdin.

Exits with status 1 when the summary fails.`,
	Aliases: []string{"s"},
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		url, err := resolveURL(args)
		if err != nil {
			return err
		}
		opts := cli.SummarizeOptions{
			URL:          url,
			OutputFormat: flagOutput,
			Query:        flagQuery,
			SavePath:     flagSave,
			Copy:         flagCopy,
			Version:      version,
		}
		_, err = cli.Summarize(cmd.Context(), settings, opts, os.Stdout, os.Stderr, logger)
		return err
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent submissions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHistoryList()
	},
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent submissions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHistoryList()
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one submission in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", args[0])
		}
		mgr, err := openHistory()
		if err != nil {
			return err
		}
		defer mgr.Close()
		return cli.HistoryShow(os.Stdout, mgr, id, showOutput)
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every recorded submission",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := openHistory()
		if err != nil {
			return err
		}
		defer mgr.Close()
		return cli.HistoryClear(os.Stdout, os.Stdin, mgr, clearForce)
	},
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show success rates and durations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := analytics.NewManager(config.DatabasePath)
		if err != nil {
			return err
		}
		defer mgr.Close()
		return cli.HistoryStats(os.Stdout, mgr, statsTop, statsOutput)
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the backend is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := settings.Validate(); err != nil {
			return err
		}
		client, err := api.New(settings.APIBase, api.WithUserAgent("ytsum/"+version), api.WithLogger(logger))
		if err != nil {
			return err
		}
		return cli.Health(cmd.Context(), client, os.Stdout)
	},
}

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Run a fake summarization backend",
	Long: `Run a fake summarization backend for local development.

The built-in routes pick a response from the submitted URL:
  ...warn...     summary with a warning
  ...invalid...  400 with a detail message
  ...crash...    500 with a non-JSON body
  ...slow...     summary after 5 seconds
  ...empty...    blank summary
  anything else  markdown summary`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger = cli.NewLogger(os.Stderr, true)
		return cli.RunMock(cmd.Context(), mockOpts, os.Stdout, logger)
	},
}

// Flags for summarize
var (
	flagOutput string
	flagQuery  string
	flagSave   string
	flagCopy   bool
)

// Flags for history; each command gets its own vars since pflag writes defaults on definition
var (
	historyOutput string
	historyLimit  int
	historyVideo  string
	showOutput    string
	clearForce    bool
	statsTop      int
	statsOutput   string
)

var mockOpts cli.MockOptions

func init() {
	// Persistent flags
	rootCmd.PersistentFlags().StringVar(&globalOpts.APIBase, "api-base", "", "Backend base URL (overrides API_BASE)")
	rootCmd.PersistentFlags().DurationVar(&globalOpts.Timeout, "timeout", 0, "Upper bound for one summarize call (default 2m)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.EnvFile, "env-file", "", "Load API_BASE and friends from this file instead of .env")
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.Verbose, "verbose", "v", false, "Debug logging")
	rootCmd.PersistentFlags().BoolVar(&globalOpts.NoHistory, "no-history", false, "Do not record submissions")

	// summarize flags
	summarizeCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output format (text/json/yaml/summary)")
	summarizeCmd.Flags().StringVarP(&flagQuery, "query", "q", "", "JMESPath query or $(shell command) over the JSON result")
	summarizeCmd.Flags().StringVarP(&flagSave, "save", "s", "", "Save output to file")
	summarizeCmd.Flags().BoolVar(&flagCopy, "copy", false, "Copy the summary to the clipboard")

	// history flags
	for _, c := range []*cobra.Command{historyCmd, historyListCmd} {
		c.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of entries (0 for all)")
		c.Flags().StringVar(&historyVideo, "video", "", "Only entries for this video URL or id")
		c.Flags().StringVarP(&historyOutput, "output", "o", "text", "Output format (text/json/yaml)")
	}
	historyShowCmd.Flags().StringVarP(&showOutput, "output", "o", "text", "Output format (text/json/yaml/summary)")
	historyClearCmd.Flags().BoolVarP(&clearForce, "force", "f", false, "Do not ask for confirmation")
	historyStatsCmd.Flags().IntVarP(&statsTop, "top", "n", 10, "Number of videos to list (0 for all)")
	historyStatsCmd.Flags().StringVarP(&statsOutput, "output", "o", "text", "Output format (text/json/yaml)")

	// mock flags
	mockCmd.Flags().StringVarP(&mockOpts.ConfigPath, "config", "c", "", "Routes file (yaml/json)")
	mockCmd.Flags().StringVar(&mockOpts.Host, "host", "", "Listen host (default localhost)")
	mockCmd.Flags().IntVarP(&mockOpts.Port, "port", "p", 0, "Listen port (default 8000)")
	mockCmd.Flags().StringVar(&mockOpts.WriteTo, "init", "", "Write the built-in routes to this file and exit")

	// Add subcommands
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyClearCmd, historyStatsCmd)
	rootCmd.AddCommand(summarizeCmd, historyCmd, healthCmd, mockCmd)
}

// runTUI starts the interactive TUI, logging to the log file
func runTUI(ctx context.Context) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	logFile, err := cli.OpenLogFile(config.LogFile)
	if err != nil {
		return err
	}
	defer logFile.Close()
	tuiLogger := cli.NewLogger(logFile, globalOpts.Verbose)

	client, err := api.New(settings.APIBase,
		api.WithUserAgent("ytsum/"+version),
		api.WithLogger(tuiLogger),
	)
	if err != nil {
		return err
	}

	// History is optional: the TUI still works without it
	mgr, err := cli.OpenHistory(settings)
	if err != nil {
		tuiLogger.Error("history disabled", "error", err)
		mgr = nil
	}

	return tui.Run(ctx, tui.Options{
		Summarizer: client,
		Health:     client,
		History:    mgr,
		Timeout:    settings.Timeout(),
		APIBase:    settings.APIBase,
		Version:    version,
		Logger:     tuiLogger,
	})
}

func runHistoryList() error {
	mgr, err := openHistory()
	if err != nil {
		return err
	}
	defer mgr.Close()
	return cli.HistoryList(os.Stdout, mgr, cli.HistoryListOptions{
		Limit:        historyLimit,
		Video:        historyVideo,
		OutputFormat: historyOutput,
	})
}

// openHistory opens the database even when recording is disabled, so old entries stay readable
func openHistory() (*history.Manager, error) {
	return history.NewManager(config.DatabasePath)
}

// resolveURL takes the URL from args, an interactive picker, or stdin
func resolveURL(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}

	if isatty.IsTerminal(os.Stdin.Fd()) {
		var entries []types.HistoryEntry
		if mgr, err := openHistory(); err == nil {
			entries, _ = mgr.Load(50)
			mgr.Close()
		}
		return cli.PromptForURL(entries)
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" && err != nil {
		return "", fmt.Errorf("no URL provided (pass it as an argument or pipe it)")
	}
	return line, nil
}
