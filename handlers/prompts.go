// ABOUTME: MCP prompt handlers for reusable business review templates
// ABOUTME: Fills the business-review prompt with the live health summary and insight details
package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/JFernandez0524/leadgen/insights"
)

const BusinessReviewPrompt = "business-review"

type PromptHandlers struct {
	engine *insights.Engine
	now    func() time.Time
}

func NewPromptHandlers(engine *insights.Engine) *PromptHandlers {
	return &PromptHandlers{engine: engine, now: time.Now}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	switch request.Params.Name {
	case BusinessReviewPrompt:
		return h.getBusinessReviewPrompt(ctx, request.Params.Arguments)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", request.Params.Name)
	}
}

func (h *PromptHandlers) getBusinessReviewPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	found, err := h.engine.Analyze(ctx, h.now())
	if err != nil {
		return nil, err
	}

	var promptText strings.Builder
	promptText.WriteString("Please review the health of this lead-generation business and recommend next steps.\n\n")
	promptText.WriteString(insights.Summarize(found))
	promptText.WriteString("\n\nDetailed insights:\n")
	promptText.WriteString(insights.Describe(found))
	promptText.WriteString("\n")

	if focus := args["focus"]; focus != "" {
		promptText.WriteString(fmt.Sprintf("Focus especially on: %s\n\n", focus))
	}

	promptText.WriteString("Please provide:\n")
	promptText.WriteString("1. The most urgent problems and why they matter\n")
	promptText.WriteString("2. Which automated actions (execute_insight) are worth running now\n")
	promptText.WriteString("3. Manual follow-ups the owner should schedule this week\n")

	return &mcp.GetPromptResult{
		Description: "Business health review",
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: promptText.String()},
			},
		},
	}, nil
}
