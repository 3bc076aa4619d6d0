package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/studiowebux/ytsum/internal/types"
)

// ErrPromptCancelled is returned when the user leaves a prompt without choosing
var ErrPromptCancelled = errors.New("selection cancelled")

var (
	titleStyle        = lipgloss.NewStyle().MarginLeft(2).Bold(true)
	itemStyle         = lipgloss.NewStyle().PaddingLeft(4)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	helpStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1).MarginLeft(2)
)

// customChoice marks "type a new URL" in the selector
const customChoice = "!CUSTOM!"

type item struct {
	url     string
	videoID string
	when    string
	failed  bool
}

func (i item) FilterValue() string {
	return i.videoID + " " + i.url
}

func (i item) Title() string {
	mark := "✓"
	if i.failed {
		mark = "✗"
	}
	return fmt.Sprintf("%s %-14s %s", mark, i.when, i.url)
}

func (i item) Description() string { return "" }

type selectorModel struct {
	list     list.Model
	choice   string
	quitting bool
}

func (m selectorModel) Init() tea.Cmd {
	return nil
}

func (m selectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		// Keys belong to the filter input while it is being edited
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			m.choice = ""
			return m, tea.Quit

		case "enter":
			if i, ok := m.list.SelectedItem().(item); ok {
				m.choice = i.url
			}
			m.quitting = true
			return m, tea.Quit

		case "n":
			m.choice = customChoice
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m selectorModel) View() string {
	if m.quitting {
		return ""
	}

	help := helpStyle.Render("↑/↓: navigate • enter: summarize • /: filter • n: new url • q: cancel")
	return fmt.Sprintf("%s\n\n%s", m.list.View(), help)
}

// itemDelegate renders one history row
type itemDelegate struct{}

func (d itemDelegate) Height() int                             { return 1 }
func (d itemDelegate) Spacing() int                            { return 0 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(item)
	if !ok {
		return
	}

	str := fmt.Sprintf("%d. %s", index+1, i.Title())

	fn := itemStyle.Render
	if index == m.Index() {
		fn = func(s ...string) string {
			return selectedItemStyle.Render("> " + strings.Join(s, " "))
		}
	}

	fmt.Fprint(w, fn(str))
}

// historyItems converts entries to list items, one per distinct URL
func historyItems(entries []types.HistoryEntry) []list.Item {
	seen := make(map[string]bool, len(entries))
	items := make([]list.Item, 0, len(entries))
	for _, e := range entries {
		if seen[e.URL] {
			continue
		}
		seen[e.URL] = true
		items = append(items, item{
			url:     e.URL,
			videoID: e.VideoID,
			when:    humanize.Time(e.Timestamp),
			failed:  !e.Succeeded(),
		})
	}
	return items
}

// PromptForURL asks for a video URL. With history it shows a selector of
// recent videos first; "n" switches to typing a new URL.
func PromptForURL(entries []types.HistoryEntry) (string, error) {
	items := historyItems(entries)
	if len(items) == 0 {
		return promptForCustomURL(os.Stdin, os.Stderr)
	}

	const defaultWidth = 100
	const listHeight = 14

	l := list.New(items, itemDelegate{}, defaultWidth, listHeight)
	l.Title = "Summarize a recent video"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	l.Styles.Title = titleStyle

	p := tea.NewProgram(selectorModel{list: l}, tea.WithOutput(os.Stderr))
	finalModel, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("error running selector: %w", err)
	}

	result := finalModel.(selectorModel)
	switch result.choice {
	case customChoice:
		return promptForCustomURL(os.Stdin, os.Stderr)
	case "":
		return "", ErrPromptCancelled
	}
	return result.choice, nil
}

// promptForCustomURL reads one line from in
func promptForCustomURL(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Video URL: ")
	value, err := bufio.NewReader(in).ReadString('\n')
	value = strings.TrimSpace(value)
	if value == "" {
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return "", ErrPromptCancelled
	}
	return value, nil
}
