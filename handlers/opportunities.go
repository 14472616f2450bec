// ABOUTME: Opportunity MCP tool handlers
// ABOUTME: Implements add_opportunity and list_opportunities tools
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/JFernandez0524/leadgen/models"
	"github.com/JFernandez0524/leadgen/store"
)

type OpportunityHandlers struct {
	backend store.Backend
}

func NewOpportunityHandlers(backend store.Backend) *OpportunityHandlers {
	return &OpportunityHandlers{backend: backend}
}

type AddOpportunityInput struct {
	LeadID         string `json:"lead_id" jsonschema:"Lead the job is for (required)"`
	Title          string `json:"title" jsonschema:"Short job title (required)"`
	Description    string `json:"description,omitempty" jsonschema:"Job description"`
	EstimatedValue string `json:"estimated_value,omitempty" jsonschema:"Quoted value in dollars, e.g. 600"`
	Stage          string `json:"stage,omitempty" jsonschema:"Pipeline stage (new, quoted, scheduled, in-progress, completed, cancelled)"`
	Probability    int    `json:"probability,omitempty" jsonschema:"Win probability from 0 to 100"`
	ServiceDate    string `json:"service_date,omitempty" jsonschema:"Scheduled service date (RFC3339 or YYYY-MM-DD)"`
	ServiceAddress string `json:"service_address,omitempty" jsonschema:"Where the job takes place"`
}

type OpportunityOutput struct {
	ID             string `json:"id"`
	LeadID         string `json:"lead_id"`
	Title          string `json:"title"`
	Description    string `json:"description,omitempty"`
	EstimatedValue string `json:"estimated_value"`
	Stage          string `json:"stage"`
	Probability    int    `json:"probability"`
	ServiceDate    string `json:"service_date,omitempty"`
	ServiceAddress string `json:"service_address,omitempty"`
	CreatedAt      string `json:"created_at"`
}

func (h *OpportunityHandlers) AddOpportunity(ctx context.Context, request *mcp.CallToolRequest, input AddOpportunityInput) (*mcp.CallToolResult, OpportunityOutput, error) {
	leadID, err := uuid.Parse(input.LeadID)
	if err != nil {
		return nil, OpportunityOutput{}, fmt.Errorf("invalid lead_id: %w", err)
	}

	opp := &models.Opportunity{
		LeadID:         leadID,
		Title:          input.Title,
		Description:    input.Description,
		Probability:    input.Probability,
		ServiceAddress: input.ServiceAddress,
	}
	if input.EstimatedValue != "" {
		if opp.EstimatedValue, err = models.ParseCents(input.EstimatedValue); err != nil {
			return nil, OpportunityOutput{}, fmt.Errorf("invalid estimated_value: %w", err)
		}
	}
	if input.Stage != "" {
		if opp.Stage, err = models.ParseStage(input.Stage); err != nil {
			return nil, OpportunityOutput{}, err
		}
	}
	if input.ServiceDate != "" {
		date, err := ParseDate(input.ServiceDate)
		if err != nil {
			return nil, OpportunityOutput{}, fmt.Errorf("invalid service_date: %w", err)
		}
		opp.ServiceDate = &date
	}

	if err := h.backend.Create(ctx, opp); err != nil {
		return nil, OpportunityOutput{}, fmt.Errorf("failed to create opportunity: %w", err)
	}
	return nil, opportunityToOutput(*opp), nil
}

type ListOpportunitiesInput struct {
	Stage  string `json:"stage,omitempty" jsonschema:"Filter by pipeline stage"`
	LeadID string `json:"lead_id,omitempty" jsonschema:"Filter by lead ID"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 50)"`
}

type ListOpportunitiesOutput struct {
	Opportunities []OpportunityOutput `json:"opportunities"`
}

func (h *OpportunityHandlers) ListOpportunities(ctx context.Context, request *mcp.CallToolRequest, input ListOpportunitiesInput) (*mcp.CallToolResult, ListOpportunitiesOutput, error) {
	var filter store.Filter
	if input.Stage != "" {
		stage, err := models.ParseStage(input.Stage)
		if err != nil {
			return nil, ListOpportunitiesOutput{}, err
		}
		filter = append(filter, store.Eq("stage", stage))
	}
	if input.LeadID != "" {
		leadID, err := uuid.Parse(input.LeadID)
		if err != nil {
			return nil, ListOpportunitiesOutput{}, fmt.Errorf("invalid lead_id: %w", err)
		}
		filter = append(filter, store.Eq("lead_id", leadID))
	}

	records, err := h.backend.List(ctx, models.CollectionOpportunities, filter)
	if err != nil {
		return nil, ListOpportunitiesOutput{}, fmt.Errorf("failed to list opportunities: %w", err)
	}

	out := ListOpportunitiesOutput{Opportunities: []OpportunityOutput{}}
	for _, r := range limitRecords(records, input.Limit) {
		out.Opportunities = append(out.Opportunities, opportunityToOutput(r.(models.Opportunity)))
	}
	return nil, out, nil
}

// ParseDate accepts RFC3339 timestamps or plain YYYY-MM-DD dates (UTC midnight).
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("use RFC3339 or YYYY-MM-DD: %w", err)
	}
	return t, nil
}

func opportunityToOutput(o models.Opportunity) OpportunityOutput {
	out := OpportunityOutput{
		ID:             o.ID.String(),
		LeadID:         o.LeadID.String(),
		Title:          o.Title,
		Description:    o.Description,
		EstimatedValue: o.EstimatedValue.String(),
		Stage:          string(o.Stage),
		Probability:    o.Probability,
		ServiceAddress: o.ServiceAddress,
		CreatedAt:      o.CreatedAt.Format(time.RFC3339),
	}
	if o.ServiceDate != nil {
		out.ServiceDate = o.ServiceDate.Format(time.RFC3339)
	}
	return out
}
