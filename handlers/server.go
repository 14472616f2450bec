// ABOUTME: MCP server assembly
// ABOUTME: Registers every leadgen tool, the business-review prompt and the leadgen:// resources
package handlers

import (
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/JFernandez0524/leadgen/insights"
	"github.com/JFernandez0524/leadgen/models"
	"github.com/JFernandez0524/leadgen/store"
)

// Deps are the services the MCP tools run against.
type Deps struct {
	Backend  store.Backend
	Engine   *insights.Engine
	Executor *insights.Executor
	// Now defaults to time.Now.
	Now func() time.Time
}

// NewServer builds the MCP server. Callers run it on a transport.
func NewServer(d Deps, version string) *mcp.Server {
	if version == "" {
		version = "dev"
	}
	now := d.Now
	if now == nil {
		now = time.Now
	}

	leadHandlers := NewLeadHandlers(d.Backend)
	paymentHandlers := NewPaymentHandlers(d.Backend)
	paymentHandlers.now = now
	opportunityHandlers := NewOpportunityHandlers(d.Backend)
	insightHandlers := NewInsightHandlers(d.Engine, d.Executor, d.Backend)
	insightHandlers.now = now
	promptHandlers := NewPromptHandlers(d.Engine)
	promptHandlers.now = now
	resourceHandlers := NewResourceHandlers(d.Backend, d.Engine)
	resourceHandlers.now = now

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "leadgen",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_business",
		Description: "Analyze leads, payments and opportunities and return prioritized business insights",
	}, insightHandlers.AnalyzeBusiness)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "execute_insight",
		Description: "Run the automated remedy for an insight kind (payment reminders, lead follow-ups, scheduling reminders)",
	}, insightHandlers.ExecuteInsight)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_kpis",
		Description: "Get lead volume, qualification and conversion rates, revenue and pipeline KPIs",
	}, insightHandlers.GetKPIs)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "business_summary",
		Description: "Get the business health summary and a description of every insight",
	}, insightHandlers.BusinessSummary)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_automation_runs",
		Description: "List recent automation runs with their failure counts",
	}, insightHandlers.ListAutomationRuns)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_lead",
		Description: "Add a new lead",
	}, leadHandlers.AddLead)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_leads",
		Description: "List leads, newest first, optionally filtered by status or qualification",
	}, leadHandlers.ListLeads)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "record_payment",
		Description: "Record a pending payment for a lead",
	}, paymentHandlers.RecordPayment)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "complete_payment",
		Description: "Mark a pending payment as completed",
	}, paymentHandlers.CompletePayment)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_payments",
		Description: "List payments, optionally filtered by status or lead",
	}, paymentHandlers.ListPayments)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_opportunity",
		Description: "Add a job opportunity for a lead",
	}, opportunityHandlers.AddOpportunity)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_opportunities",
		Description: "List opportunities, optionally filtered by stage or lead",
	}, opportunityHandlers.ListOpportunities)

	server.AddPrompt(&mcp.Prompt{
		Name:        BusinessReviewPrompt,
		Description: "Review business health with the current insights and recommend next steps",
		Arguments: []*mcp.PromptArgument{
			{Name: "focus", Description: "Optional area to focus on, e.g. payments or scheduling"},
		},
	}, promptHandlers.GetPrompt)

	for _, c := range models.Collections {
		server.AddResource(&mcp.Resource{
			URI:         uriScheme + string(c),
			Name:        string(c),
			Description: "All " + string(c),
			MIMEType:    "application/json",
		}, resourceHandlers.ReadResource)
		server.AddResourceTemplate(&mcp.ResourceTemplate{
			URITemplate: uriScheme + string(c) + "/{id}",
			Name:        string(c) + "-by-id",
			Description: "A single record from " + string(c),
			MIMEType:    "application/json",
		}, resourceHandlers.ReadResource)
	}
	server.AddResource(&mcp.Resource{
		URI:         uriScheme + "insights",
		Name:        "insights",
		Description: "Current business insights, most urgent first",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	return server
}
