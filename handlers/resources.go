// ABOUTME: MCP resource handlers for exposing back-office data
// ABOUTME: Provides read-only access to leads, payments, opportunities and insights via leadgen:// URIs
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/JFernandez0524/leadgen/insights"
	"github.com/JFernandez0524/leadgen/models"
	"github.com/JFernandez0524/leadgen/store"
)

const uriScheme = "leadgen://"

type ResourceHandlers struct {
	backend store.Backend
	engine  *insights.Engine
	now     func() time.Time
}

func NewResourceHandlers(backend store.Backend, engine *insights.Engine) *ResourceHandlers {
	return &ResourceHandlers{backend: backend, engine: engine, now: time.Now}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, uriScheme) {
		return nil, fmt.Errorf("invalid URI scheme: expected %s", uriScheme)
	}

	parts := strings.Split(strings.TrimPrefix(uri, uriScheme), "/")
	switch parts[0] {
	case "insights":
		return h.readInsights(ctx, uri)
	case string(models.CollectionLeads), string(models.CollectionPayments), string(models.CollectionOpportunities):
		collection := models.Collection(parts[0])
		if len(parts) == 1 {
			return h.readCollection(ctx, uri, collection, nil)
		}
		id, err := uuid.Parse(parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid %s id: %w", collection, err)
		}
		return h.readCollection(ctx, uri, collection, store.Filter{store.Eq("id", id)})
	default:
		return nil, fmt.Errorf("unknown resource: %s", parts[0])
	}
}

func (h *ResourceHandlers) readCollection(ctx context.Context, uri string, collection models.Collection, filter store.Filter) (*mcp.ReadResourceResult, error) {
	records, err := h.backend.List(ctx, collection, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", collection, err)
	}
	if filter != nil && len(records) == 0 {
		return nil, fmt.Errorf("%s: %w", uri, store.ErrNotFound)
	}

	if records == nil {
		records = []models.Record{}
	}
	var payload any = records
	if filter != nil {
		payload = records[0]
	}
	return jsonResource(uri, payload)
}

func (h *ResourceHandlers) readInsights(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	found, err := h.engine.Analyze(ctx, h.now())
	if err != nil {
		return nil, err
	}
	out := make([]InsightOutput, 0, len(found))
	for _, in := range found {
		out = append(out, insightToOutput(in))
	}
	return jsonResource(uri, out)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}
	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}
