// ABOUTME: Tests for the insight browser model
// ABOUTME: Drives Update with key and data messages over a temp SQLite store
package tui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JFernandez0524/leadgen/db"
	"github.com/JFernandez0524/leadgen/insights"
	"github.com/JFernandez0524/leadgen/models"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func setupTestModel(t *testing.T) (Model, *db.Store) {
	t.Helper()
	database, err := db.OpenDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	st := db.NewStore(database)
	t.Cleanup(func() { _ = st.Close() })

	ctx := context.Background()
	lead := &models.Lead{FirstName: "Dana", LastName: "Reyes", IsQualified: true, CreatedAt: testNow.AddDate(0, 0, -10)}
	require.NoError(t, st.Create(ctx, lead))
	require.NoError(t, st.Create(ctx, &models.Payment{LeadID: lead.ID, Amount: 45000, CreatedAt: testNow.AddDate(0, 0, -10)}))

	clock := func() time.Time { return testNow }
	engine := insights.NewEngine(st, insights.DefaultThresholds())
	executor := insights.NewExecutor(st, zap.NewNop(), insights.WithClock(clock))
	m := NewModel(engine, executor)
	m.now = clock
	return m, st
}

// load runs the initial refresh command and feeds its message back.
func load(t *testing.T, m Model) Model {
	t.Helper()
	cmd := m.Init()
	require.NotNil(t, cmd)
	next, _ := m.Update(cmd())
	return next.(Model)
}

func press(m Model, key string) (Model, tea.Cmd) {
	var msg tea.KeyMsg
	switch key {
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestInitialLoad(t *testing.T) {
	m, _ := setupTestModel(t)
	assert.Contains(t, m.View(), "Loading business data...")

	m = load(t, m)
	require.True(t, m.loaded)
	require.NotEmpty(t, m.insights)
	assert.Equal(t, insights.KindOverduePayments, m.insights[0].Kind)

	view := m.View()
	assert.Contains(t, view, "LEADGEN INSIGHTS")
	assert.Contains(t, view, "1 Overdue Payments")
	assert.Contains(t, view, "Leads (1)")
}

func TestLoadError(t *testing.T) {
	m, _ := setupTestModel(t)
	next, _ := m.Update(dataLoadedMsg{err: errors.New("unable to compute business insights: boom")})
	assert.Contains(t, next.(Model).View(), "Error: unable to compute business insights")
}

func TestTabsAndNavigation(t *testing.T) {
	m, _ := setupTestModel(t)
	m = load(t, m)

	m, _ = press(m, "tab")
	assert.Equal(t, TabLeads, m.tab)
	assert.Contains(t, m.View(), "Dana Reyes")

	m, _ = press(m, "j")
	assert.Equal(t, 0, m.selectedRow, "cursor stays on the only lead")

	m, _ = press(m, "enter")
	assert.Equal(t, ViewList, m.viewMode, "only insights have a detail view")

	for range 3 {
		m, _ = press(m, "tab")
	}
	assert.Equal(t, TabInsights, m.tab)
}

func TestDetailView(t *testing.T) {
	m, _ := setupTestModel(t)
	m = load(t, m)

	m, _ = press(m, "enter")
	require.Equal(t, ViewDetail, m.viewMode)
	view := m.View()
	assert.Contains(t, view, "overdue_payments")
	assert.Contains(t, view, "$450.00 pending")
	assert.Contains(t, view, "total_amount: 450.00")

	m, _ = press(m, "esc")
	assert.Equal(t, ViewList, m.viewMode)
}

func TestExecuteAutomation(t *testing.T) {
	m, st := setupTestModel(t)
	m = load(t, m)

	m, _ = press(m, "x")
	require.Equal(t, ViewConfirmExecute, m.viewMode)
	assert.Contains(t, m.View(), "RUN AUTOMATION")

	m, cmd := press(m, "y")
	require.NotNil(t, cmd)
	msg := cmd()
	done, ok := msg.(automationDoneMsg)
	require.True(t, ok)
	assert.True(t, done.report.Success())

	next, refresh := m.Update(msg)
	m = next.(Model)
	assert.Equal(t, ViewList, m.viewMode)
	assert.True(t, strings.HasSuffix(m.message, "updated 1 record(s)"))
	require.NotNil(t, refresh)

	payments, err := db.FindPayments(context.Background(), st.DB(), nil)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Contains(t, payments[0].Notes, "Payment reminder sent")
}

func TestExecuteNonAutomatedInsight(t *testing.T) {
	m, _ := setupTestModel(t)
	m = load(t, m)

	idx := -1
	for i, in := range m.insights {
		if !in.Automated {
			idx = i
			break
		}
	}
	require.NotEqual(t, -1, idx, "fixture yields a recommendation")
	m.selectedRow = idx

	m, _ = press(m, "x")
	assert.Equal(t, ViewList, m.viewMode)
	assert.Contains(t, m.message, "has no automated action")
}

func TestCancelExecute(t *testing.T) {
	m, _ := setupTestModel(t)
	m = load(t, m)

	m, _ = press(m, "x")
	m, cmd := press(m, "n")
	assert.Nil(t, cmd)
	assert.Equal(t, ViewList, m.viewMode)
}

func TestDashboardView(t *testing.T) {
	m, _ := setupTestModel(t)
	m = load(t, m)

	m, _ = press(m, "d")
	require.Equal(t, ViewDashboard, m.viewMode)
	assert.Contains(t, m.View(), "LEADGEN BUSINESS DASHBOARD")

	m, _ = press(m, "esc")
	assert.Equal(t, ViewList, m.viewMode)
}

func TestQuit(t *testing.T) {
	m, _ := setupTestModel(t)
	_, cmd := press(m, "q")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
