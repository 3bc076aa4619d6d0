package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/studiowebux/ytsum/internal/analytics"
)

// statsReport is the structured form of `history stats`
type statsReport struct {
	Overview analytics.Overview `json:"overview" yaml:"overview"`
	Videos   []analytics.Stats  `json:"videos" yaml:"videos"`
}

// HistoryStats writes aggregate statistics and the top videos
func HistoryStats(w io.Writer, mgr *analytics.Manager, top int, format string) error {
	overview, err := mgr.GetOverview()
	if err != nil {
		return err
	}
	videos, err := mgr.GetStatsPerVideo()
	if err != nil {
		return err
	}
	if top > 0 && len(videos) > top {
		videos = videos[:top]
	}

	switch format {
	case "json", "yaml":
		out, err := marshal(statsReport{Overview: overview, Videos: videos}, format)
		if err != nil {
			return err
		}
		fmt.Fprint(w, out)
		return nil
	}

	if overview.TotalCalls == 0 {
		fmt.Fprintln(w, "No history yet")
		return nil
	}

	fmt.Fprintf(w, "Submissions: %s across %s videos\n",
		humanize.Comma(int64(overview.TotalCalls)), humanize.Comma(int64(overview.Videos)))
	fmt.Fprintf(w, "Succeeded:   %s (%.0f%%), %s with warnings\n",
		humanize.Comma(int64(overview.SuccessCount)), overview.SuccessRate()*100, humanize.Comma(int64(overview.WarningCount)))
	fmt.Fprintf(w, "Failed:      %s%s\n", humanize.Comma(int64(overview.ErrorCount)), breakdown(overview.ErrorKinds))
	fmt.Fprintf(w, "Duration:    avg %.1fs, max %.1fs\n",
		overview.AvgDurationMs/1000, float64(overview.MaxDurationMs)/1000)
	if len(overview.Sources) > 0 {
		fmt.Fprintf(w, "Sources:    %s\n", breakdown(overview.Sources))
	}
	fmt.Fprintln(w)

	rows := make([][]string, 0, len(videos))
	for _, v := range videos {
		rows = append(rows, []string{
			v.VideoID,
			fmt.Sprint(v.TotalCalls),
			fmt.Sprintf("%d/%d", v.SuccessCount, v.ErrorCount),
			fmt.Sprintf("%.1fs", v.AvgDurationMs/1000),
			humanize.Time(v.LastCalled),
		})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("VIDEO", "CALLS", "OK/FAIL", "AVG", "LAST").
		Rows(rows...)
	fmt.Fprintln(w, t.String())
	return nil
}

// breakdown renders counts as " (a: 1, b: 2)" with keys sorted
func breakdown(counts map[string]int) string {
	if len(counts) == 0 {
		return ""
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := " ("
	for i, k := range keys {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s: %d", k, counts[k])
	}
	return out + ")"
}
