package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/studiowebux/ytsum/internal/history"
	"github.com/studiowebux/ytsum/internal/render"
	"github.com/studiowebux/ytsum/internal/types"
	"github.com/studiowebux/ytsum/internal/videourl"
	"gopkg.in/yaml.v3"
)

// HistoryListOptions selects and formats history entries
type HistoryListOptions struct {
	Limit        int
	Video        string // URL or video id; empty lists everything
	OutputFormat string // text, json, yaml
}

// HistoryList writes recent entries, newest first
func HistoryList(w io.Writer, mgr *history.Manager, opts HistoryListOptions) error {
	var (
		entries []types.HistoryEntry
		err     error
	)
	if opts.Video != "" {
		entries, err = mgr.LoadForVideo(videourl.ExtractVideoID(opts.Video), opts.Limit)
	} else {
		entries, err = mgr.Load(opts.Limit)
	}
	if err != nil {
		return err
	}

	switch opts.OutputFormat {
	case "json", "yaml":
		out, err := marshal(entries, opts.OutputFormat)
		if err != nil {
			return err
		}
		fmt.Fprint(w, out)
		return nil
	}

	if len(entries) == 0 {
		fmt.Fprintln(w, "No history yet")
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		status := "✓"
		preview := firstLine(e.Summary)
		if !e.Succeeded() {
			status = "✗"
			preview = e.ErrorMessage
		}
		rows = append(rows, []string{
			fmt.Sprint(e.ID),
			status,
			humanize.Time(e.Timestamp),
			e.VideoID,
			fmt.Sprintf("%.1fs", float64(e.DurationMs)/1000),
			truncate(preview, 60),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "", "WHEN", "VIDEO", "TOOK", "SUMMARY").
		Rows(rows...)
	fmt.Fprintln(w, t.String())
	return nil
}

// HistoryShow writes one entry in full
func HistoryShow(w io.Writer, mgr *history.Manager, id int64, format string) error {
	entry, err := mgr.Get(id)
	if err != nil {
		return err
	}

	switch format {
	case "json", "yaml":
		out, err := marshal(entry, format)
		if err != nil {
			return err
		}
		fmt.Fprint(w, out)
		return nil
	case "summary":
		fmt.Fprint(w, ensureNewline(entry.Summary))
		return nil
	}

	color := render.IsTerminal(w)
	fmt.Fprintf(w, "%s\n", entry.URL)
	fmt.Fprintln(w, paint(color, colorGray, fmt.Sprintf("#%d · %s · %s · %dms",
		entry.ID, entry.Timestamp.Format("2006-01-02 15:04:05"), entry.Phase, entry.DurationMs)))
	fmt.Fprintln(w)

	if !entry.Succeeded() {
		fmt.Fprintln(w, paint(color, colorRed, "Error: "+entry.ErrorMessage))
		return nil
	}
	if entry.Warning != "" {
		fmt.Fprintln(w, paint(color, colorYellow, "Warning: "+entry.Warning))
		fmt.Fprintln(w)
	}
	fmt.Fprint(w, ensureNewline(render.Summary(w, entry.Summary)))
	return nil
}

// HistoryClear deletes every entry, asking for confirmation unless force is set
func HistoryClear(w io.Writer, in io.Reader, mgr *history.Manager, force bool) error {
	count, err := mgr.GetCount()
	if err != nil {
		return err
	}
	if count == 0 {
		fmt.Fprintln(w, "History is already empty")
		return nil
	}

	if !force {
		fmt.Fprintf(w, "Delete all %s history entries? [y/N]: ", humanize.Comma(int64(count)))
		response, _ := bufio.NewReader(in).ReadString('\n')
		response = strings.ToLower(strings.TrimSpace(response))
		if response != "y" && response != "yes" {
			return fmt.Errorf("history clear cancelled by user")
		}
	}

	if err := mgr.Clear(); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s %s entries deleted\n", paint(render.IsTerminal(w), colorGreen, "✓"), humanize.Comma(int64(count)))
	return nil
}

func marshal(v any, format string) (string, error) {
	if format == "yaml" {
		data, err := yaml.Marshal(v)
		return string(data), err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "#-* "))
		if line != "" {
			return line
		}
	}
	return ""
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
