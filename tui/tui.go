// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Provides an interactive insight browser with record tabs, the dashboard and automation runs
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/JFernandez0524/leadgen/insights"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
	ViewConfirmExecute
	ViewDashboard
)

// Tab represents the list being browsed
type Tab int

const (
	TabInsights Tab = iota
	TabLeads
	TabPayments
	TabOpportunities
)

var tabNames = []string{"Insights", "Leads", "Payments", "Opportunities"}

// Model is the main bubbletea model
type Model struct {
	engine   *insights.Engine
	executor *insights.Executor
	now      func() time.Time
	timeout  time.Duration

	viewMode ViewMode
	tab      Tab

	// Loaded data
	snapshot insights.Snapshot
	insights []insights.Insight
	loaded   bool

	selectedRow int

	// Status line for the last refresh or automation
	message string
	err     error

	width  int
	height int
}

// NewModel creates a new TUI model
func NewModel(engine *insights.Engine, executor *insights.Executor) Model {
	return Model{
		engine:   engine,
		executor: executor,
		now:      time.Now,
		timeout:  30 * time.Second,
		viewMode: ViewList,
		tab:      TabInsights,
		width:    80,
		height:   24,
	}
}

// WithTimeout bounds each refresh and automation run.
func (m Model) WithTimeout(d time.Duration) Model {
	m.timeout = d
	return m
}

// dataLoadedMsg carries a fresh snapshot and its insights.
type dataLoadedMsg struct {
	snapshot insights.Snapshot
	insights []insights.Insight
	err      error
}

// automationDoneMsg carries the report of an executed insight.
type automationDoneMsg struct {
	report insights.Report
}

func (m Model) Init() tea.Cmd {
	return m.refresh()
}

func (m Model) refresh() tea.Cmd {
	engine, now, timeout := m.engine, m.now(), m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		snap, err := engine.Snapshot(ctx)
		if err != nil {
			return dataLoadedMsg{err: err}
		}
		return dataLoadedMsg{snapshot: snap, insights: insights.Evaluate(snap, now, engine.Thresholds())}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case dataLoadedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.snapshot = msg.snapshot
			m.insights = msg.insights
			m.loaded = true
			if m.selectedRow >= m.rowCount() {
				m.selectedRow = 0
			}
		}
		return m, nil
	case automationDoneMsg:
		m.message = automationMessage(msg.report)
		m.viewMode = ViewList
		return m, m.refresh()
	}
	return m, nil
}

func (m Model) View() string {
	switch m.viewMode {
	case ViewList:
		return m.renderListView()
	case ViewDetail:
		return m.renderDetailView()
	case ViewConfirmExecute:
		return m.renderConfirmExecuteView()
	case ViewDashboard:
		return m.renderDashboardView()
	}
	return ""
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.message = "Refreshing..."
		return m, m.refresh()
	}

	switch m.viewMode {
	case ViewList:
		return m.handleListKeys(msg)
	case ViewDetail:
		return m.handleDetailKeys(msg)
	case ViewConfirmExecute:
		return m.handleConfirmExecuteKeys(msg)
	case ViewDashboard:
		return m.handleDashboardKeys(msg)
	}

	return m, nil
}

// selectedInsight returns the insight under the cursor on the insights tab.
func (m Model) selectedInsight() (insights.Insight, bool) {
	if m.tab != TabInsights || m.selectedRow < 0 || m.selectedRow >= len(m.insights) {
		return insights.Insight{}, false
	}
	return m.insights[m.selectedRow], true
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Italic(true)
)

var priorityStyles = map[insights.Priority]lipgloss.Style{
	insights.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	insights.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	insights.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
}
