// ABOUTME: Automation confirmation view for TUI
// ABOUTME: Asks before running an insight's remedy and reports the executor's result
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/JFernandez0524/leadgen/insights"
)

var (
	confirmBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("11")).
			Padding(1, 2).
			Width(60).
			Align(lipgloss.Center)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true)

	confirmButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("4")).
				Padding(0, 2).
				MarginRight(2)

	cancelButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("8")).
				Padding(0, 2)
)

func (m Model) renderConfirmExecuteView() string {
	in, ok := m.selectedInsight()
	if !ok {
		return "No insight selected"
	}

	title := warningStyle.Render("RUN AUTOMATION")
	message := fmt.Sprintf("%s\n\nThis updates %d record(s): %s", in.Title, len(in.Data), in.Action)

	buttons := lipgloss.JoinHorizontal(
		lipgloss.Left,
		confirmButtonStyle.Render("Run (y)"),
		cancelButtonStyle.Render("Cancel (n/esc)"),
	)

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		"",
		message,
		"",
		buttons,
	)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		confirmBoxStyle.Render(content),
	)
}

func (m Model) handleConfirmExecuteKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		in, ok := m.selectedInsight()
		if !ok {
			m.viewMode = ViewList
			return m, nil
		}
		m.message = "Running " + string(in.Kind) + "..."
		return m, m.execute(in)
	case "n", "N", "esc":
		m.viewMode = ViewList
	}

	return m, nil
}

func (m Model) execute(in insights.Insight) tea.Cmd {
	executor, timeout := m.executor, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return automationDoneMsg{report: executor.Run(ctx, in)}
	}
}

func automationMessage(r insights.Report) string {
	switch {
	case !r.Executed:
		return fmt.Sprintf("%s was not executed", r.Kind)
	case len(r.Failures) > 0:
		return fmt.Sprintf("Run %s: %d of %d updates failed", r.RunID, len(r.Failures), r.Attempted)
	}
	return fmt.Sprintf("Run %s: updated %d record(s)", r.RunID, r.Attempted)
}
