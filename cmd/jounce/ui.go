// # cmd/jounce/ui.go
package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"jounce/internal/diag"
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
	isError     bool
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + i.desc }

type model struct {
	list       list.Model
	errors     int
	warnings   int
	fileCount  int
	failing    int
	lastUpdate time.Time
}

type updateMsg struct {
	results []fileResult
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-4)
	case updateMsg:
		m.lastUpdate = time.Now()
		m.fileCount = len(msg.results)
		m.failing = 0
		m.errors = 0
		m.warnings = 0

		items := []list.Item{}
		for _, r := range msg.results {
			if !r.Succeeded {
				m.failing++
			}
			for _, d := range r.Diags {
				isErr := d.Severity == diag.Error
				if isErr {
					m.errors++
				} else {
					m.warnings++
				}
				desc := fmt.Sprintf("%s:%d:%d %s", r.Path, d.Span.Line, d.Span.Col, d.Message)
				if d.DidYouMean != "" {
					desc += fmt.Sprintf(" (did you mean `%s`?)", d.DidYouMean)
				}
				items = append(items, item{
					title:   fmt.Sprintf("%s %s", d.Code, d.Severity),
					desc:    desc,
					isError: isErr,
				})
			}
		}
		m.list.SetItems(items)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) View() string {
	status := statusStyle.Render(fmt.Sprintf("Last build: %v | %d files | %d failing",
		m.lastUpdate.Format("15:04:05"), m.fileCount, m.failing))

	var summary string
	if m.errors == 0 && m.warnings == 0 {
		summary = successStyle.Render("✅ Build Clean")
	} else {
		summary = fmt.Sprintf("⚠️  %s | %s",
			errorStyle.Render(fmt.Sprintf("%d Errors", m.errors)),
			warnStyle.Render(fmt.Sprintf("%d Warnings", m.warnings)))
	}

	header := fmt.Sprintf("%s\n%s | %s\n", titleStyle("Jounce Build Monitor"), status, summary)
	return docStyle.Render(header + "\n" + m.list.View())
}

func initialModel() model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Diagnostics"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)

	return model{
		list:       l,
		lastUpdate: time.Now(),
	}
}

// RunUI blocks running the terminal UI until the user quits.
func (a *App) RunUI() error {
	p := tea.NewProgram(initialModel(), tea.WithAltScreen())

	a.mu.Lock()
	a.program = p
	a.mu.Unlock()

	// Seed the UI with the results of the initial build.
	a.notifyUI()

	_, err := p.Run()

	a.mu.Lock()
	a.program = nil
	a.mu.Unlock()
	return err
}

// notifyUI pushes the current per-file results to the TUI, if one is running.
func (a *App) notifyUI() {
	a.mu.Lock()
	p := a.program
	results := make([]fileResult, 0, len(a.results))
	for _, r := range a.results {
		results = append(results, r)
	}
	a.mu.Unlock()

	if p == nil {
		return
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	p.Send(updateMsg{results: results})
}
