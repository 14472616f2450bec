// ABOUTME: Tests for the cobra command tree
// ABOUTME: Runs commands end to end against a temp SQLite database
package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JFernandez0524/leadgen/db"
	"github.com/JFernandez0524/leadgen/models"
)

var idPattern = regexp.MustCompile(`ID: ([0-9a-f-]{36})`)

type testEnv struct {
	dbPath string
}

// setupTestEnv isolates config lookup and returns a fresh database path.
func setupTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()

	origConfig := xdg.ConfigHome
	xdg.ConfigHome = filepath.Join(dir, "config")
	t.Cleanup(func() { xdg.ConfigHome = origConfig })
	t.Chdir(dir)

	return testEnv{dbPath: filepath.Join(dir, "data", "leadgen.db")}
}

// run executes one command line and returns its stdout.
func (e testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd("test")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--db-path", e.dbPath}, args...))
	err := root.Execute()
	return out.String(), err
}

func (e testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	require.NoError(t, err, out)
	return out
}

func createdID(t *testing.T, out string) string {
	t.Helper()
	m := idPattern.FindStringSubmatch(out)
	require.Len(t, m, 2, out)
	return m[1]
}

// seedOverdue writes a lead and a pending payment created ten days ago.
func (e testEnv) seedOverdue(t *testing.T) (*models.Lead, *models.Payment) {
	t.Helper()
	database, err := db.OpenDatabase(e.dbPath)
	require.NoError(t, err)
	st := db.NewStore(database)
	defer func() { _ = st.Close() }()

	ctx := context.Background()
	created := time.Now().AddDate(0, 0, -10)
	lead := &models.Lead{FirstName: "Dana", IsQualified: true, CreatedAt: created}
	require.NoError(t, st.Create(ctx, lead))
	payment := &models.Payment{LeadID: lead.ID, Amount: 45000, CreatedAt: created}
	require.NoError(t, st.Create(ctx, payment))
	return lead, payment
}

func TestCommandsRegistered(t *testing.T) {
	root := NewRootCmd("test")
	want := []string{"leads", "payments", "opportunities", "insights", "kpi", "viz", "web", "mcp", "tui", "chat", "sync", "version"}
	var got []string
	for _, c := range root.Commands() {
		got = append(got, c.Name())
	}
	for _, name := range want {
		assert.Contains(t, got, name)
	}
}

func TestVersion(t *testing.T) {
	e := setupTestEnv(t)
	assert.Equal(t, "leadgen version test\n", e.mustRun(t, "version"))
}

func TestInvalidBackend(t *testing.T) {
	e := setupTestEnv(t)
	_, err := e.run(t, "--backend", "postgres", "leads", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown backend")
}

func TestLeadLifecycle(t *testing.T) {
	e := setupTestEnv(t)

	out := e.mustRun(t, "leads", "add", "--first-name", "Dana", "--last-name", "Reyes", "--phone", "555-0100", "--service", "junk removal", "--qualified")
	assert.Contains(t, out, "✓ Lead created: Dana Reyes")
	leadID := createdID(t, out)

	out = e.mustRun(t, "leads", "list")
	assert.Contains(t, out, "Dana Reyes")
	assert.Contains(t, out, "junk removal")

	out = e.mustRun(t, "leads", "list", "--qualified=false")
	assert.Contains(t, out, "No leads found")

	_, err := e.run(t, "leads", "add")
	assert.ErrorContains(t, err, "--first-name is required")

	_, err = e.run(t, "leads", "list", "--status", "archived")
	assert.ErrorIs(t, err, models.ErrInvalidEnum)

	out = e.mustRun(t, "payments", "add", "--lead", leadID, "--amount", "450.00", "--method", "card")
	assert.Contains(t, out, "$450.00 pending")
	paymentID := createdID(t, out)

	out = e.mustRun(t, "payments", "complete", paymentID, "--paid-at", "2026-03-14")
	assert.Contains(t, out, "completed on 2026-03-14")

	out = e.mustRun(t, "payments", "list", "--status", "completed")
	assert.Contains(t, out, "$450.00")
	assert.Contains(t, out, paymentID)

	_, err = e.run(t, "payments", "complete", paymentID)
	assert.Error(t, err, "only pending payments complete")

	out = e.mustRun(t, "opportunities", "add", "--lead", leadID, "--title", "Garage cleanout", "--value", "600", "--stage", "quoted")
	assert.Contains(t, out, "Garage cleanout [quoted] $600.00")

	out = e.mustRun(t, "opps", "list", "--stage", "quoted")
	assert.Contains(t, out, "Garage cleanout")
}

func TestInsightsAnalyzeAndExecute(t *testing.T) {
	e := setupTestEnv(t)
	_, payment := e.seedOverdue(t)

	out := e.mustRun(t, "insights", "analyze")
	assert.Contains(t, out, "[HIGH] 1 Overdue Payments (alert)")
	assert.Contains(t, out, "leadgen insights execute overdue_payments")

	out = e.mustRun(t, "insights", "analyze", "--priority", "low")
	assert.NotContains(t, out, "Overdue Payments")

	out = e.mustRun(t, "insights", "summary", "--detailed")
	assert.Contains(t, out, "URGENT: Address high-priority items first!")

	out = e.mustRun(t, "insights", "execute", "overdue_payments")
	assert.Contains(t, out, "1 record(s) attempted, 0 failed")
	assert.Contains(t, out, "✓ Automation completed")

	database, err := db.OpenDatabase(e.dbPath)
	require.NoError(t, err)
	p, err := db.GetPayment(context.Background(), database, payment.ID)
	require.NoError(t, err)
	_ = database.Close()
	assert.Contains(t, p.Notes, "Payment reminder sent on")

	out = e.mustRun(t, "insights", "runs")
	assert.Contains(t, out, "overdue_payments")

	_, err = e.run(t, "insights", "execute", "bogus")
	assert.ErrorContains(t, err, "unknown insight kind")

	_, err = e.run(t, "insights", "execute", "low_conversion")
	assert.ErrorContains(t, err, "has no automated action")

	out = e.mustRun(t, "insights", "execute", "overdue_appointments")
	assert.Contains(t, out, "No overdue_appointments insight is active")
}

func TestKPIAndViz(t *testing.T) {
	e := setupTestEnv(t)
	e.seedOverdue(t)

	out := e.mustRun(t, "kpi")
	assert.Regexp(t, `Total leads\s+1\n`, out)
	assert.Regexp(t, `Revenue growth\s+n/a\n`, out)

	out = e.mustRun(t, "viz", "dashboard")
	assert.Contains(t, out, "LEADGEN BUSINESS DASHBOARD")

	out = e.mustRun(t, "viz", "pipeline")
	assert.Contains(t, out, "digraph")

	svgPath := filepath.Join(t.TempDir(), "pipeline.svg")
	e.mustRun(t, "viz", "pipeline", "--format", "svg", "-o", svgPath)
	assert.FileExists(t, svgPath)

	_, err := e.run(t, "viz", "pipeline", "--format", "png")
	assert.ErrorContains(t, err, "unknown format")
}

func TestChatWithoutAPIKey(t *testing.T) {
	e := setupTestEnv(t)
	t.Setenv("LEADGEN_LLM_API_KEY", "")
	e.seedOverdue(t)

	out := e.mustRun(t, "chat", "--analyze", "--raw")
	assert.True(t, strings.HasPrefix(out, "Business Health Summary:"))

	_, err := e.run(t, "chat", "How are we doing?")
	assert.ErrorContains(t, err, "no language model configured")

	_, err = e.run(t, "chat", "--analyze", "--execute", "overdue_payments")
	assert.ErrorContains(t, err, "mutually exclusive")
}

func TestRender(t *testing.T) {
	assert.Equal(t, "**bold**", render("**bold**", true))
	assert.Contains(t, render("**bold**", false), "bold")
}
