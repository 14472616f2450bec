// ABOUTME: Lead MCP tool handlers
// ABOUTME: Implements add_lead and list_leads tools
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/JFernandez0524/leadgen/models"
	"github.com/JFernandez0524/leadgen/store"
)

const defaultListLimit = 50

type LeadHandlers struct {
	backend store.Backend
}

func NewLeadHandlers(backend store.Backend) *LeadHandlers {
	return &LeadHandlers{backend: backend}
}

type AddLeadInput struct {
	FirstName          string `json:"first_name" jsonschema:"Lead first name (required)"`
	LastName           string `json:"last_name,omitempty" jsonschema:"Lead last name"`
	Email              string `json:"email,omitempty" jsonschema:"Email address"`
	Phone              string `json:"phone,omitempty" jsonschema:"Phone number"`
	ServiceType        string `json:"service_type,omitempty" jsonschema:"Requested service, e.g. junk removal"`
	Source             string `json:"source,omitempty" jsonschema:"Where the lead came from, e.g. phone or web"`
	IsQualified        bool   `json:"is_qualified,omitempty" jsonschema:"Whether the lead has been qualified"`
	QualificationScore int    `json:"qualification_score,omitempty" jsonschema:"Qualification score from 0 to 100"`
	Notes              string `json:"notes,omitempty" jsonschema:"Call notes"`
}

type LeadOutput struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Email              string `json:"email,omitempty"`
	Phone              string `json:"phone,omitempty"`
	ServiceType        string `json:"service_type,omitempty"`
	Source             string `json:"source,omitempty"`
	Status             string `json:"status"`
	IsQualified        bool   `json:"is_qualified"`
	QualificationScore int    `json:"qualification_score"`
	Notes              string `json:"notes,omitempty"`
	CreatedAt          string `json:"created_at"`
}

func (h *LeadHandlers) AddLead(ctx context.Context, request *mcp.CallToolRequest, input AddLeadInput) (*mcp.CallToolResult, LeadOutput, error) {
	if input.FirstName == "" {
		return nil, LeadOutput{}, fmt.Errorf("first_name is required")
	}
	if input.QualificationScore < 0 || input.QualificationScore > 100 {
		return nil, LeadOutput{}, fmt.Errorf("qualification_score must be between 0 and 100")
	}

	lead := &models.Lead{
		FirstName:          input.FirstName,
		LastName:           input.LastName,
		Email:              input.Email,
		Phone:              input.Phone,
		ServiceType:        input.ServiceType,
		Source:             input.Source,
		IsQualified:        input.IsQualified,
		QualificationScore: input.QualificationScore,
		Notes:              input.Notes,
	}
	if err := h.backend.Create(ctx, lead); err != nil {
		return nil, LeadOutput{}, fmt.Errorf("failed to create lead: %w", err)
	}
	return nil, leadToOutput(*lead), nil
}

type ListLeadsInput struct {
	Status    string `json:"status,omitempty" jsonschema:"Filter by status (new, contacted, qualified, converted, lost)"`
	Qualified string `json:"qualified,omitempty" jsonschema:"Filter by qualification: yes or no"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 50)"`
}

type ListLeadsOutput struct {
	Leads []LeadOutput `json:"leads"`
}

func (h *LeadHandlers) ListLeads(ctx context.Context, request *mcp.CallToolRequest, input ListLeadsInput) (*mcp.CallToolResult, ListLeadsOutput, error) {
	var filter store.Filter
	if input.Status != "" {
		status, err := models.ParseLeadStatus(input.Status)
		if err != nil {
			return nil, ListLeadsOutput{}, err
		}
		filter = append(filter, store.Eq("status", status))
	}
	switch input.Qualified {
	case "":
	case "yes", "true":
		filter = append(filter, store.Eq("is_qualified", true))
	case "no", "false":
		filter = append(filter, store.Eq("is_qualified", false))
	default:
		return nil, ListLeadsOutput{}, fmt.Errorf("qualified must be yes or no")
	}

	records, err := h.backend.List(ctx, models.CollectionLeads, filter)
	if err != nil {
		return nil, ListLeadsOutput{}, fmt.Errorf("failed to list leads: %w", err)
	}

	out := ListLeadsOutput{Leads: []LeadOutput{}}
	for _, r := range limitRecords(records, input.Limit) {
		out.Leads = append(out.Leads, leadToOutput(r.(models.Lead)))
	}
	return nil, out, nil
}

func leadToOutput(l models.Lead) LeadOutput {
	return LeadOutput{
		ID:                 l.ID.String(),
		Name:               l.FullName(),
		Email:              l.Email,
		Phone:              l.Phone,
		ServiceType:        l.ServiceType,
		Source:             l.Source,
		Status:             string(l.Status),
		IsQualified:        l.IsQualified,
		QualificationScore: l.QualificationScore,
		Notes:              l.Notes,
		CreatedAt:          l.CreatedAt.Format(time.RFC3339),
	}
}

func limitRecords(records []models.Record, limit int) []models.Record {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if len(records) > limit {
		return records[:limit]
	}
	return records
}
