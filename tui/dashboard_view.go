package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/JFernandez0524/leadgen/viz"
)

func (m Model) renderDashboardView() string {
	var s strings.Builder

	if !m.loaded {
		s.WriteString("Loading business data...\n")
	} else {
		stats := viz.GenerateDashboardStats(m.snapshot, m.insights, m.now(), m.engine.Thresholds())
		s.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Render(viz.RenderDashboard(stats)))
	}

	s.WriteString("\n")
	s.WriteString(m.renderDashboardHelp())

	return s.String()
}

func (m Model) renderDashboardHelp() string {
	help := []string{
		"Esc: Back",
		"r: Refresh",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleDashboardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "d":
		m.viewMode = ViewList
	}

	return m, nil
}
