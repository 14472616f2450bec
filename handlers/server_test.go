// ABOUTME: Tests for the MCP tools, prompt and resources over in-memory transports
// ABOUTME: Each test runs a real server against a temp SQLite store
package handlers

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JFernandez0524/leadgen/db"
	"github.com/JFernandez0524/leadgen/insights"
	"github.com/JFernandez0524/leadgen/models"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	store   *db.Store
	session *mcp.ClientSession
}

func setupTestServer(t *testing.T) testEnv {
	t.Helper()
	database, err := db.OpenDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	st := db.NewStore(database)
	t.Cleanup(func() { _ = st.Close() })

	clock := func() time.Time { return testNow }
	server := NewServer(Deps{
		Backend:  st,
		Engine:   insights.NewEngine(st, insights.DefaultThresholds()),
		Executor: insights.NewExecutor(st, zap.NewNop(), insights.WithClock(clock), insights.WithRecorder(st)),
		Now:      clock,
	}, "test")

	ctx := context.Background()
	t1, t2 := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, t1, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, t2, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	return testEnv{store: st, session: session}
}

func extractText(result *mcp.CallToolResult) string {
	for _, c := range result.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

// call invokes a tool and decodes its structured output into out.
func (e testEnv) call(t *testing.T, name string, args map[string]any, out any) *mcp.CallToolResult {
	t.Helper()
	result, err := e.session.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	if result.IsError || out == nil {
		return result
	}

	data := []byte(extractText(result))
	if result.StructuredContent != nil {
		var err error
		data, err = json.Marshal(result.StructuredContent)
		require.NoError(t, err)
	}
	require.NoError(t, json.Unmarshal(data, out))
	return result
}

func (e testEnv) seedOverdue(t *testing.T) (*models.Lead, *models.Payment) {
	t.Helper()
	ctx := context.Background()
	lead := &models.Lead{FirstName: "Dana", IsQualified: true, CreatedAt: testNow.AddDate(0, 0, -10)}
	require.NoError(t, e.store.Create(ctx, lead))
	payment := &models.Payment{LeadID: lead.ID, Amount: 45000, CreatedAt: testNow.AddDate(0, 0, -10)}
	require.NoError(t, e.store.Create(ctx, payment))
	return lead, payment
}

func TestListTools(t *testing.T) {
	env := setupTestServer(t)

	result, err := env.session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"analyze_business", "execute_insight", "get_kpis", "business_summary", "list_automation_runs",
		"add_lead", "list_leads", "record_payment", "complete_payment", "list_payments",
		"add_opportunity", "list_opportunities",
	}, names)
}

func TestAddAndListLeads(t *testing.T) {
	env := setupTestServer(t)

	var added LeadOutput
	env.call(t, "add_lead", map[string]any{
		"first_name": "Dana", "last_name": "Reyes", "service_type": "junk removal", "is_qualified": true,
	}, &added)
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, "Dana Reyes", added.Name)
	assert.Equal(t, "new", added.Status)

	env.call(t, "add_lead", map[string]any{"first_name": "Sam"}, nil)

	var listed ListLeadsOutput
	env.call(t, "list_leads", map[string]any{"qualified": "yes"}, &listed)
	require.Len(t, listed.Leads, 1)
	assert.Equal(t, added.ID, listed.Leads[0].ID)

	env.call(t, "list_leads", map[string]any{"limit": 1}, &listed)
	assert.Len(t, listed.Leads, 1)

	result := env.call(t, "list_leads", map[string]any{"status": "archived"}, nil)
	assert.True(t, result.IsError)
}

func TestAddLeadRequiresFirstName(t *testing.T) {
	env := setupTestServer(t)
	result := env.call(t, "add_lead", map[string]any{"first_name": ""}, nil)
	assert.True(t, result.IsError)
	assert.Contains(t, extractText(result), "first_name is required")
}

func TestPaymentLifecycle(t *testing.T) {
	env := setupTestServer(t)

	var lead LeadOutput
	env.call(t, "add_lead", map[string]any{"first_name": "Dana"}, &lead)

	var payment PaymentOutput
	env.call(t, "record_payment", map[string]any{"lead_id": lead.ID, "amount": "$1,200.50", "method": "card"}, &payment)
	assert.Equal(t, "$1200.50", payment.Amount)
	assert.Equal(t, "pending", payment.Status)
	assert.Empty(t, payment.PaymentDate)

	var done PaymentOutput
	env.call(t, "complete_payment", map[string]any{"id": payment.ID, "transaction_id": "txn_9"}, &done)
	assert.Equal(t, "completed", done.Status)
	assert.Equal(t, "txn_9", done.TransactionID)
	assert.Equal(t, testNow.Format(time.RFC3339), done.PaymentDate)

	result := env.call(t, "complete_payment", map[string]any{"id": payment.ID}, nil)
	assert.True(t, result.IsError, "a completed payment cannot complete again")

	var listed ListPaymentsOutput
	env.call(t, "list_payments", map[string]any{"status": "completed", "lead_id": lead.ID}, &listed)
	require.Len(t, listed.Payments, 1)

	result = env.call(t, "record_payment", map[string]any{"lead_id": lead.ID, "amount": "-5"}, nil)
	assert.True(t, result.IsError)
}

func TestAddAndListOpportunities(t *testing.T) {
	env := setupTestServer(t)

	var lead LeadOutput
	env.call(t, "add_lead", map[string]any{"first_name": "Dana"}, &lead)

	var opp OpportunityOutput
	env.call(t, "add_opportunity", map[string]any{
		"lead_id": lead.ID, "title": "Garage cleanout", "estimated_value": "600",
		"stage": "scheduled", "service_date": "2026-03-18",
	}, &opp)
	assert.Equal(t, "scheduled", opp.Stage)
	assert.Equal(t, "$600.00", opp.EstimatedValue)
	assert.Equal(t, "2026-03-18T00:00:00Z", opp.ServiceDate)

	var listed ListOpportunitiesOutput
	env.call(t, "list_opportunities", map[string]any{"stage": "scheduled"}, &listed)
	require.Len(t, listed.Opportunities, 1)

	env.call(t, "list_opportunities", map[string]any{"stage": "quoted"}, &listed)
	assert.Empty(t, listed.Opportunities)

	result := env.call(t, "add_opportunity", map[string]any{"lead_id": lead.ID, "title": "x", "stage": "archived"}, nil)
	assert.True(t, result.IsError)
}

func TestAnalyzeBusinessTool(t *testing.T) {
	env := setupTestServer(t)
	env.seedOverdue(t)

	var out AnalyzeBusinessOutput
	env.call(t, "analyze_business", map[string]any{}, &out)
	require.NotEmpty(t, out.Insights)
	assert.Equal(t, "overdue_payments", out.Insights[0].Kind)
	assert.Equal(t, "high", out.Insights[0].Priority)
	assert.Contains(t, out.Summary, "URGENT")

	env.call(t, "analyze_business", map[string]any{"priority": "medium"}, &out)
	for _, in := range out.Insights {
		assert.Equal(t, "medium", in.Priority)
	}
}

func TestExecuteInsightTool(t *testing.T) {
	env := setupTestServer(t)
	_, payment := env.seedOverdue(t)

	var out ExecuteInsightOutput
	env.call(t, "execute_insight", map[string]any{"kind": "overdue_payments"}, &out)
	assert.True(t, out.Success)
	assert.NotEmpty(t, out.RunID)
	assert.Equal(t, 1, out.Attempted)
	assert.Empty(t, out.Failures)

	got, err := db.GetPayment(context.Background(), env.store.DB(), payment.ID)
	require.NoError(t, err)
	assert.Contains(t, got.Notes, "Payment reminder sent on 2026-03-15T12:00:00Z")

	var runs ListAutomationRunsOutput
	env.call(t, "list_automation_runs", map[string]any{}, &runs)
	require.Len(t, runs.Runs, 1)
	assert.Equal(t, out.RunID, runs.Runs[0].RunID)
	assert.True(t, runs.Runs[0].Success)

	env.call(t, "execute_insight", map[string]any{"kind": "revenue_growth"}, &out)
	assert.False(t, out.Success)
	assert.Contains(t, out.Message, "no revenue_growth insight")

	result := env.call(t, "execute_insight", map[string]any{"kind": "make_coffee"}, nil)
	assert.True(t, result.IsError)
}

func TestKPIsAndSummaryTools(t *testing.T) {
	env := setupTestServer(t)
	env.seedOverdue(t)

	var kpis KPIOutput
	env.call(t, "get_kpis", map[string]any{}, &kpis)
	assert.Equal(t, 1, kpis.KPIs.TotalLeads)
	assert.Equal(t, "n/a", kpis.Growth)
	assert.Equal(t, 0, kpis.StageCount["quoted"])

	var summary BusinessSummaryOutput
	env.call(t, "business_summary", map[string]any{}, &summary)
	assert.Contains(t, summary.Summary, "Business Health Summary:")
	assert.Contains(t, summary.Details, "1 Overdue Payments")
}

func TestBusinessReviewPrompt(t *testing.T) {
	env := setupTestServer(t)
	env.seedOverdue(t)

	result, err := env.session.GetPrompt(context.Background(), &mcp.GetPromptParams{
		Name:      BusinessReviewPrompt,
		Arguments: map[string]string{"focus": "payments"},
	})
	require.NoError(t, err)
	require.Len(t, result.Messages, 1)

	text := result.Messages[0].Content.(*mcp.TextContent).Text
	assert.Contains(t, text, "Business Health Summary:")
	assert.Contains(t, text, "Focus especially on: payments")
	assert.Contains(t, text, "execute_insight")
}

func TestReadResources(t *testing.T) {
	env := setupTestServer(t)
	lead, _ := env.seedOverdue(t)
	ctx := context.Background()

	result, err := env.session.ReadResource(ctx, &mcp.ReadResourceParams{URI: "leadgen://leads"})
	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	var leads []models.Lead
	require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &leads))
	require.Len(t, leads, 1)
	assert.Equal(t, lead.ID, leads[0].ID)

	result, err = env.session.ReadResource(ctx, &mcp.ReadResourceParams{URI: "leadgen://leads/" + lead.ID.String()})
	require.NoError(t, err)
	var one models.Lead
	require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &one))
	assert.Equal(t, "Dana", one.FirstName)

	result, err = env.session.ReadResource(ctx, &mcp.ReadResourceParams{URI: "leadgen://opportunities"})
	require.NoError(t, err)
	assert.Equal(t, "[]", result.Contents[0].Text)

	result, err = env.session.ReadResource(ctx, &mcp.ReadResourceParams{URI: "leadgen://insights"})
	require.NoError(t, err)
	var found []InsightOutput
	require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &found))
	require.NotEmpty(t, found)
	assert.Equal(t, "overdue_payments", found[0].Kind)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-03-18")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("2026-03-18T09:30:00-05:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 18, 14, 30, 0, 0, time.UTC), d)

	_, err = ParseDate("next tuesday")
	require.Error(t, err)
}
