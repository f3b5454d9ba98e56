// # cmd/docref/ui.go
package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docref/internal/app"
	"docref/internal/model"
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

type uiModel struct {
	list        list.Model
	diagnostics []model.Diagnostic
	unresolved  uint64
	moduleCount int
	entityCount int
	lastUpdate  time.Time
}

func (m uiModel) Init() tea.Cmd {
	return nil
}

func (m uiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-4)
	case app.Update:
		m.diagnostics = msg.Diagnostics
		m.unresolved = msg.Unresolved
		m.moduleCount = msg.Modules
		m.entityCount = msg.Entities
		m.lastUpdate = time.Now()

		items := []list.Item{}
		for _, d := range m.diagnostics {
			items = append(items, item{
				title: fmt.Sprintf("%s diagnostic", d.Severity),
				desc:  fmt.Sprintf("%s (%s:%d)", d.Message, d.File, d.Line),
			})
		}
		m.list.SetItems(items)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m uiModel) View() string {
	status := statusStyle.Render(fmt.Sprintf("Last build: %v | %d modules | %d entities",
		m.lastUpdate.Format("15:04:05"), m.moduleCount, m.entityCount))

	var summary string
	if len(m.diagnostics) == 0 && m.unresolved == 0 {
		summary = successStyle.Render("✅ Docs Clean")
	} else {
		summary = fmt.Sprintf("⚠️  %s | %s",
			errorStyle.Render(fmt.Sprintf("%d Diagnostics", len(m.diagnostics))),
			warnStyle.Render(fmt.Sprintf("%d Unresolved", m.unresolved)))
	}

	header := fmt.Sprintf("%s\n%s | %s\n", titleStyle("Documentation Monitor"), status, summary)
	return docStyle.Render(header + "\n" + m.list.View())
}

func initialUIModel() uiModel {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Build Diagnostics"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)

	return uiModel{
		list:       l,
		lastUpdate: time.Now(),
	}
}

func runUI(a *app.App) error {
	m := initialUIModel()
	p := tea.NewProgram(m, tea.WithAltScreen())
	a.OnUpdate = func(u app.Update) { p.Send(u) }

	// Replay the initial build state once the program is running.
	go func() {
		if cur := a.Model(); cur != nil {
			p.Send(app.Update{
				BuildID:     cur.BuildID,
				Modules:     cur.ModuleCount(),
				Entities:    cur.EntityCount(),
				Diagnostics: cur.Diagnostics,
			})
		}
	}()

	_, err := p.Run()
	return err
}
