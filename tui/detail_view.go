package tui

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/JFernandez0524/leadgen/models"
)

var (
	fieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Width(20)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

func (m Model) renderDetailView() string {
	in, ok := m.selectedInsight()
	if !ok {
		return "No insight selected\n\n" + m.renderDetailHelp()
	}

	var s strings.Builder

	s.WriteString(titleStyle.Render(in.Title))
	s.WriteString("\n\n")

	style, ok := priorityStyles[in.Priority]
	if !ok {
		style = fieldValueStyle
	}
	s.WriteString(fieldLabelStyle.Render("Priority:"))
	s.WriteString(style.Render(string(in.Priority)))
	s.WriteString("\n")
	s.WriteString(m.renderField("Type", string(in.Type)))
	s.WriteString(m.renderField("Kind", string(in.Kind)))
	s.WriteString(m.renderField("Description", in.Description))
	s.WriteString(m.renderField("Next step", in.Action))
	s.WriteString(m.renderField("Automated", yesNo(in.Automated)))

	if len(in.Metrics) > 0 {
		s.WriteString("\n")
		s.WriteString(lipgloss.NewStyle().Bold(true).Render("METRICS"))
		s.WriteString("\n")
		keys := make([]string, 0, len(in.Metrics))
		for k := range in.Metrics {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			s.WriteString(fmt.Sprintf("  • %s: %.2f\n", k, in.Metrics[k]))
		}
	}

	if len(in.Data) > 0 {
		s.WriteString("\n")
		s.WriteString(lipgloss.NewStyle().Bold(true).Render("RECORDS"))
		s.WriteString("\n")
		for _, rec := range in.Data {
			s.WriteString("  • " + describeRecord(rec) + "\n")
		}
	}

	s.WriteString("\n")
	s.WriteString(m.renderDetailHelp())

	return s.String()
}

func describeRecord(rec models.Record) string {
	switch r := rec.(type) {
	case models.Lead:
		return fmt.Sprintf("%s (%s, %s)", r.FullName(), r.Status, r.CreatedAt.Format("2006-01-02"))
	case models.Payment:
		return fmt.Sprintf("%s %s since %s", r.Amount, r.Status, r.CreatedAt.Format("2006-01-02"))
	case models.Opportunity:
		return fmt.Sprintf("%s (%s, %s)", r.Title, r.Stage, r.EstimatedValue)
	}
	return fmt.Sprintf("%s/%s", rec.Collection(), rec.RecordID())
}

func (m Model) renderField(label, value string) string {
	if value == "" {
		return ""
	}
	return fieldLabelStyle.Render(label+":") + fieldValueStyle.Render(value) + "\n"
}

func (m Model) renderDetailHelp() string {
	help := []string{
		"Esc: Back",
		"x: Run automation",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.viewMode = ViewList
	case "x":
		if in, ok := m.selectedInsight(); ok {
			return m.confirmExecute(in)
		}
	}

	return m, nil
}
