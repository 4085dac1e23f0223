package cliapp

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/LordOfPolls/BlackDwarf/internal/app"
	"github.com/LordOfPolls/BlackDwarf/internal/resolver"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type item struct {
	title, desc string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + i.desc }

type model struct {
	reportList list.Model
	summary    *app.Summary
	lastUpdate time.Time
}

type updateMsg struct {
	summary *app.Summary
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		width := msg.Width - h
		height := msg.Height - v - 6
		if height < 5 {
			height = 5
		}
		m.reportList.SetSize(width, height)
	case updateMsg:
		m.summary = msg.summary
		m.lastUpdate = time.Now()
		m.reportList.SetItems(buildItems(msg.summary))
	}

	var cmd tea.Cmd
	m.reportList, cmd = m.reportList.Update(msg)
	return m, cmd
}

func (m model) View() string {
	var processed, changed, failed, warnings int
	if m.summary != nil {
		processed = m.summary.FilesProcessed
		changed = m.summary.FilesChanged
		failed = m.summary.FilesFailed
		warnings = m.summary.WarningCount
	}

	status := statusStyle.Render(fmt.Sprintf("Last update: %v | %d files | %d changed",
		m.lastUpdate.Format("15:04:05"), processed, changed))

	var summary string
	if failed == 0 && warnings == 0 {
		summary = successStyle.Render("All Imports Explicit")
	} else {
		summary = fmt.Sprintf("%s | %s",
			errorStyle.Render(fmt.Sprintf("%d failed", failed)),
			warnStyle.Render(fmt.Sprintf("%d warnings", warnings)))
	}

	header := fmt.Sprintf("%s\n%s | %s\n", titleStyle("BlackDwarf Import Monitor"), status, summary)
	help := statusStyle.Render("Keys: / filter | q quit")

	return docStyle.Render(header + "\n" + help + "\n\n" + m.reportList.View())
}

func buildItems(s *app.Summary) []list.Item {
	items := []list.Item{}
	for i := range s.Reports {
		r := &s.Reports[i]
		path := displayPath(r.Path)
		if r.Err != nil {
			items = append(items, item{
				title: "Rewrite Failed",
				desc:  fmt.Sprintf("%s: %v", path, r.Err),
			})
			continue
		}
		if r.Changed {
			items = append(items, item{
				title: "Rewrote File",
				desc:  fmt.Sprintf("%s (replaced %d, removed %d, kept %d)", path, r.Replaced, r.Removed, r.Kept),
			})
		}
		for _, d := range r.Diagnostics {
			if !d.Kind.Warning() {
				continue
			}
			items = append(items, item{
				title: diagTitle(d.Kind),
				desc:  d.String(),
			})
		}
	}
	return items
}

func diagTitle(k resolver.DiagnosticKind) string {
	switch k {
	case resolver.DiagUnresolvedName:
		return "Unresolved Name"
	case resolver.DiagAmbiguousAttribution:
		return "Ambiguous Attribution"
	case resolver.DiagIndeterminateExports:
		return "Indeterminate Exports"
	case resolver.DiagWildcardKept:
		return "Wildcard Kept"
	default:
		return string(k)
	}
}

func initialModel() model {
	reportList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	reportList.Title = "Rewrite Activity"
	reportList.SetShowStatusBar(false)
	reportList.SetFilteringEnabled(true)

	return model{
		reportList: reportList,
		lastUpdate: time.Now(),
	}
}
