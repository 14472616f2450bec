package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/JFernandez0524/leadgen/insights"
)

func (m Model) renderListView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("LEADGEN INSIGHTS"))
	s.WriteString("\n\n")

	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	switch {
	case m.err != nil:
		s.WriteString(errorStyle.Render("Error: " + m.err.Error()))
	case !m.loaded:
		s.WriteString("Loading business data...")
	default:
		s.WriteString(m.renderTable())
	}
	s.WriteString("\n")

	if m.message != "" {
		s.WriteString("\n")
		s.WriteString(messageStyle.Render(m.message))
		s.WriteString("\n")
	}

	s.WriteString(m.renderListHelp())

	return s.String()
}

func (m Model) renderTabs() string {
	var rendered []string
	for i, tab := range tabNames {
		label := fmt.Sprintf("%s (%d)", tab, m.countFor(Tab(i)))
		if Tab(i) == m.tab {
			rendered = append(rendered, tabActiveStyle.Render(label))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) countFor(t Tab) int {
	switch t {
	case TabInsights:
		return len(m.insights)
	case TabLeads:
		return len(m.snapshot.Leads)
	case TabPayments:
		return len(m.snapshot.Payments)
	case TabOpportunities:
		return len(m.snapshot.Opportunities)
	}
	return 0
}

func (m Model) rowCount() int {
	return m.countFor(m.tab)
}

func (m Model) renderTable() string {
	var columns []table.Column
	var rows []table.Row

	switch m.tab {
	case TabInsights:
		if len(m.insights) == 0 {
			return messageStyle.Render("No insights right now. Overall business health looks good.")
		}
		columns = []table.Column{
			{Title: "Priority", Width: 8},
			{Title: "Type", Width: 14},
			{Title: "Title", Width: 40},
			{Title: "Auto", Width: 4},
		}
		for _, in := range m.insights {
			auto := ""
			if in.Automated {
				auto = "yes"
			}
			rows = append(rows, table.Row{string(in.Priority), string(in.Type), in.Title, auto})
		}
	case TabLeads:
		columns = []table.Column{
			{Title: "Name", Width: 24},
			{Title: "Service", Width: 18},
			{Title: "Status", Width: 12},
			{Title: "Qualified", Width: 9},
			{Title: "Created", Width: 10},
		}
		for _, l := range m.snapshot.Leads {
			rows = append(rows, table.Row{l.FullName(), l.ServiceType, string(l.Status), yesNo(l.IsQualified), l.CreatedAt.Format("2006-01-02")})
		}
	case TabPayments:
		columns = []table.Column{
			{Title: "Amount", Width: 12},
			{Title: "Status", Width: 10},
			{Title: "Method", Width: 12},
			{Title: "Created", Width: 10},
			{Title: "Notes", Width: 30},
		}
		for _, p := range m.snapshot.Payments {
			rows = append(rows, table.Row{p.Amount.String(), string(p.Status), p.PaymentMethod, p.CreatedAt.Format("2006-01-02"), p.Notes})
		}
	case TabOpportunities:
		columns = []table.Column{
			{Title: "Title", Width: 28},
			{Title: "Stage", Width: 12},
			{Title: "Value", Width: 12},
			{Title: "Service Date", Width: 12},
		}
		for _, o := range m.snapshot.Opportunities {
			date := ""
			if o.ServiceDate != nil {
				date = o.ServiceDate.Format("2006-01-02")
			}
			rows = append(rows, table.Row{o.Title, string(o.Stage), o.EstimatedValue.String(), date})
		}
	}

	height := m.height - 10
	if height < 3 {
		height = 3
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	if m.selectedRow < len(rows) {
		t.SetCursor(m.selectedRow)
	}

	return t.View()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func (m Model) renderListHelp() string {
	help := []string{
		"↑/↓: Navigate",
		"Tab: Switch tabs",
		"Enter: View insight",
		"x: Run automation",
		"d: Dashboard",
		"r: Refresh",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		if m.selectedRow < m.rowCount()-1 {
			m.selectedRow++
		}
	case "tab":
		m.tab = (m.tab + 1) % Tab(len(tabNames))
		m.selectedRow = 0
	case "shift+tab":
		m.tab = (m.tab + Tab(len(tabNames)) - 1) % Tab(len(tabNames))
		m.selectedRow = 0
	case "enter":
		if _, ok := m.selectedInsight(); ok {
			m.viewMode = ViewDetail
		}
	case "x":
		if in, ok := m.selectedInsight(); ok {
			return m.confirmExecute(in)
		}
	case "d":
		m.viewMode = ViewDashboard
	}

	return m, nil
}

func (m Model) confirmExecute(in insights.Insight) (tea.Model, tea.Cmd) {
	if !in.Automated {
		m.message = fmt.Sprintf("%s has no automated action", in.Kind)
		return m, nil
	}
	m.viewMode = ViewConfirmExecute
	return m, nil
}
