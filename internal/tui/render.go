package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/studiowebux/ytsum/internal/lifecycle"
	"github.com/studiowebux/ytsum/internal/render"
	"github.com/studiowebux/ytsum/internal/types"
	"github.com/studiowebux/ytsum/internal/videourl"
)

// Adaptive color definitions for light/dark terminal support
var (
	colorGreen  = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#00ff00"} // Dark green / Bright green
	colorRed    = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff0000"} // Dark red / Bright red
	colorYellow = lipgloss.AdaptiveColor{Light: "#b8860b", Dark: "#ffff00"} // Dark goldenrod / Yellow
	colorGray   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"} // Dark gray / Light gray
	colorCyan   = lipgloss.AdaptiveColor{Light: "#008b8b", Dark: "#00ffff"} // Dark cyan / Cyan
)

// Style definitions
var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	styleSelected = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#d3d3d3", Dark: "#3a3a3a"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"})

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorGreen)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorYellow)

	styleSubtle = lipgloss.NewStyle().
			Foreground(colorGray)

	styleButton = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.AdaptiveColor{Light: "#ffffff", Dark: "#000000"}).
			Background(colorCyan)

	styleButtonDisabled = lipgloss.NewStyle().
				Padding(0, 1).
				Foreground(colorGray).
				Background(lipgloss.AdaptiveColor{Light: "#e0e0e0", Dark: "#303030"})
)

// Button labels
const (
	LabelSubmit     = "Summarize Video"
	LabelSubmitting = "Summarizing..."
)

// submitLabel is the label of the submit action for s
func submitLabel(s lifecycle.State) string {
	if s.Loading() {
		return LabelSubmitting
	}
	return LabelSubmit
}

// renderMain renders the main view: header, input row, result panels, status bar and help
func (m *Model) renderMain() string {
	width := m.width - MinimalBorderMargin

	sections := []string{
		m.renderHeader(),
		m.renderInputRow(),
		"",
	}
	sections = append(sections, renderPanels(m.state, width)...)
	sections = append(sections, m.renderResultBox(width))

	body := lipgloss.JoinVertical(lipgloss.Left, sections...)

	// Pin the status bar and help to the bottom
	footer := lipgloss.JoinVertical(lipgloss.Left, m.renderStatusBar(), m.help.View(m.keys))
	gap := m.height - lipgloss.Height(body) - lipgloss.Height(footer)
	if gap > 0 {
		body += strings.Repeat("\n", gap)
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, footer)
}

func (m *Model) renderHeader() string {
	title := styleTitle.Render("ytsum") + styleSubtle.Render("  summarize a video")
	if m.version != "" {
		title += styleSubtle.Render("  " + m.version)
	}
	api := styleSubtle.Render("backend " + m.apiBase)

	space := m.width - lipgloss.Width(title) - lipgloss.Width(api) - 1
	if space < 1 {
		return title
	}
	return title + strings.Repeat(" ", space) + api
}

func (m *Model) renderInputRow() string {
	label := submitLabel(m.state)
	var button string
	switch {
	case m.state.Loading():
		button = styleButtonDisabled.Render(m.spinner.View() + " " + label)
	case !m.input.Submittable():
		button = styleButtonDisabled.Render(label)
	default:
		button = styleButton.Render(label)
	}
	return m.input.View() + strings.Repeat(" ", ButtonGap) + button
}

// renderPanels returns the error and warning panels visible for s.
// Visibility is driven only by the state fields.
func renderPanels(s lifecycle.State, width int) []string {
	var panels []string

	if s.ErrorMessage != "" {
		panels = append(panels, lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorRed).
			Foreground(colorRed).
			Width(width-ViewportBorderWidth).
			Render("✗ "+s.ErrorMessage))
	}

	if s.Warning != "" {
		panels = append(panels, lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorYellow).
			Foreground(colorYellow).
			Width(width-ViewportBorderWidth).
			Render("⚠ "+s.Warning))
	}

	return panels
}

func (m *Model) renderResultBox(width int) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Width(width - ViewportBorderWidth)

	switch m.state.Phase {
	case lifecycle.Succeeded:
		title := styleSuccess.Render("Summary")
		if m.state.Source != "" {
			title += styleSubtle.Render(" · from " + m.state.Source)
		}
		return lipgloss.JoinVertical(lipgloss.Left,
			title,
			box.BorderForeground(colorGreen).Render(m.resultView.View()),
		)
	case lifecycle.InFlight:
		return box.BorderForeground(colorCyan).Render(
			m.spinner.View() + " " + LabelSubmitting + styleSubtle.Render("  long videos can take a few minutes, esc to cancel"))
	case lifecycle.Failed:
		return styleSubtle.Render("Edit the URL and press enter to try again.")
	default:
		return styleSubtle.Render("Paste a video URL and press enter.")
	}
}

// renderStatusBar shows the phase, the video, app messages and backend health
func (m *Model) renderStatusBar() string {
	var left string
	switch m.state.Phase {
	case lifecycle.Succeeded:
		left = styleSuccess.Render("● " + m.state.Phase.String())
	case lifecycle.Failed:
		left = styleError.Render("● " + m.state.Phase.String())
	case lifecycle.InFlight:
		left = styleTitle.Render("● " + m.state.Phase.String())
	default:
		left = styleSubtle.Render("● " + m.state.Phase.String())
	}
	if m.state.URL != "" {
		left += styleSubtle.Render("  " + videourl.Label(m.state.URL, 24))
	}
	if m.state.Phase.Done() && m.state.Duration > 0 {
		left += styleSubtle.Render(fmt.Sprintf("  %.1fs", m.state.Duration.Seconds()))
	}

	var middle string
	switch {
	case m.errorMsg != "":
		middle = styleError.Render(m.errorMsg)
	case m.statusMsg != "":
		middle = m.statusMsg
	}

	var right string
	switch {
	case m.healthErr != "":
		right = styleError.Render("backend unreachable")
	case m.healthResult == nil:
		right = styleSubtle.Render("backend …")
	case m.healthResult.OK:
		right = styleSuccess.Render(fmt.Sprintf("backend ok %dms", m.healthResult.Latency.Milliseconds()))
	default:
		right = styleWarning.Render("backend " + m.healthResult.Status)
	}

	line := left
	if middle != "" {
		line += "  " + middle
	}
	space := m.width - lipgloss.Width(line) - lipgloss.Width(right)
	if space < 1 {
		return line
	}
	return line + strings.Repeat(" ", space) + right
}

// updateViewport resizes widgets after a window or layout change
func (m *Model) updateViewport() {
	if m.width == 0 {
		return
	}

	m.input.SetWidth(m.width - lipgloss.Width(LabelSubmit) - ButtonGap - 12)

	panelLines := 0
	for _, p := range renderPanels(m.state, m.width-MinimalBorderMargin) {
		panelLines += lipgloss.Height(p)
	}
	helpLines := lipgloss.Height(m.help.View(m.keys))

	// Title row + box borders
	height := m.height - HeaderLines - panelLines - StatusBarLines - helpLines - 1 - ViewportBorderWidth
	if height < 3 {
		height = 3
	}
	m.resultView.Width = m.width - MinimalBorderMargin - ViewportPaddingHorizontal
	m.resultView.Height = height
	m.help.Width = m.width

	hv := m.historyState.GetPreviewView()
	hv.Width = int(float64(m.width-ModalWidthMargin) * (1 - HistoryListRatio))
	hv.Height = m.height - ModalHeightMargin - 4
	m.historyState.SetPreviewView(hv)
}

// updateResultView refreshes the summary viewport from the current state
func (m *Model) updateResultView() {
	m.updateViewport()
	if m.state.Phase != lifecycle.Succeeded {
		m.resultView.SetContent("")
		return
	}
	summary := lipgloss.NewStyle().Width(m.resultView.Width).Render(m.state.Summary)
	m.resultView.SetContent(render.Markdown(summary, render.DefaultStyle))
	m.resultView.GotoTop()
}

// renderHistory renders the history modal: entry list and summary preview
func (m *Model) renderHistory() string {
	hs := m.historyState
	entries := hs.GetEntries()
	width := m.width - ModalWidthMargin
	listWidth := int(float64(width) * HistoryListRatio)
	if !hs.GetPreviewVisible() {
		listWidth = width
	}
	listHeight := m.height - ModalHeightMargin - 4

	var b strings.Builder
	b.WriteString(styleTitle.Render(fmt.Sprintf("History (%d)", len(entries))))
	b.WriteString("\n")
	if hs.GetSearchActive() || hs.GetSearchQuery() != "" {
		cursor := ""
		if hs.GetSearchActive() {
			cursor = "█"
		}
		b.WriteString("/" + hs.GetSearchQuery() + cursor)
	}
	b.WriteString("\n")

	index := hs.GetIndex()
	start := 0
	if index >= listHeight {
		start = index - listHeight + 1
	}
	for i := start; i < len(entries) && i < start+listHeight; i++ {
		line := historyLine(entries[i], max(listWidth-4, 10))
		if i == index {
			line = styleSelected.Render(line)
		}
		b.WriteString(line + "\n")
	}
	if len(entries) == 0 {
		b.WriteString(styleSubtle.Render("No entries") + "\n")
	}

	list := lipgloss.NewStyle().Width(listWidth).Render(b.String())
	content := list
	if hs.GetPreviewVisible() {
		preview := hs.GetPreviewView()
		content = lipgloss.JoinHorizontal(lipgloss.Top, list, " ", preview.View())
	}

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorCyan).
		Width(width).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, modal, m.renderStatusBar(), m.help.View(historyHelp{m.keys}))
}

// historyLine is one row of the history list, at most width cells after the mark
func historyLine(e types.HistoryEntry, width int) string {
	mark := styleSuccess.Render("✓")
	if !e.Succeeded() {
		mark = styleError.Render("✗")
	}
	id := e.VideoID
	if id == "" {
		id = videourl.ExtractVideoID(e.URL)
	}
	text := fmt.Sprintf("%-14s %s", humanize.Time(e.Timestamp), id)
	return mark + " " + truncate(text, width)
}

// updateHistoryView refreshes the preview pane for the selected entry
func (m *Model) updateHistoryView() {
	hs := m.historyState
	preview := hs.GetPreviewView()

	entry := hs.GetCurrentEntry()
	if entry == nil {
		preview.SetContent("")
		hs.SetPreviewView(preview)
		return
	}

	var b strings.Builder
	b.WriteString(styleSubtle.Render(entry.URL) + "\n")
	b.WriteString(styleSubtle.Render(fmt.Sprintf("%s · %s · %dms",
		entry.Timestamp.Format("2006-01-02 15:04"), entry.Phase, entry.DurationMs)) + "\n\n")
	if entry.ErrorMessage != "" {
		b.WriteString(styleError.Render("✗ "+entry.ErrorMessage) + "\n")
	}
	if entry.Warning != "" {
		b.WriteString(styleWarning.Render("⚠ "+entry.Warning) + "\n\n")
	}
	if entry.Summary != "" {
		wrapped := lipgloss.NewStyle().Width(max(preview.Width, 20)).Render(entry.Summary)
		b.WriteString(render.Markdown(wrapped, render.DefaultStyle))
	}

	preview.SetContent(b.String())
	preview.GotoTop()
	hs.SetPreviewView(preview)
}

func (m *Model) renderHistoryClearConfirmation() string {
	count := len(m.historyState.GetAllEntries())
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorRed).
		Padding(1, 2).
		Render(fmt.Sprintf("Delete all %s history entries?\n\n%s",
			humanize.Comma(int64(count)),
			styleSubtle.Render("y: yes   n/esc: no")))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
