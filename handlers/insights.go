// ABOUTME: Insight MCP tool handlers
// ABOUTME: Implements analyze_business, execute_insight, get_kpis, business_summary and list_automation_runs
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/JFernandez0524/leadgen/insights"
	"github.com/JFernandez0524/leadgen/models"
	"github.com/JFernandez0524/leadgen/store"
)

type InsightHandlers struct {
	engine   *insights.Engine
	executor *insights.Executor
	backend  store.Backend
	now      func() time.Time
}

func NewInsightHandlers(engine *insights.Engine, executor *insights.Executor, backend store.Backend) *InsightHandlers {
	return &InsightHandlers{engine: engine, executor: executor, backend: backend, now: time.Now}
}

type RecordRef struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
}

type InsightOutput struct {
	Kind        string             `json:"kind"`
	Type        string             `json:"type"`
	Priority    string             `json:"priority"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Action      string             `json:"action,omitempty"`
	Automated   bool               `json:"automated"`
	Records     []RecordRef        `json:"records"`
	Metrics     map[string]float64 `json:"metrics"`
}

type AnalyzeBusinessInput struct {
	Priority string `json:"priority,omitempty" jsonschema:"Only return insights with this priority (high, medium, low)"`
}

type AnalyzeBusinessOutput struct {
	Insights []InsightOutput `json:"insights"`
	Summary  string          `json:"summary"`
}

func (h *InsightHandlers) AnalyzeBusiness(ctx context.Context, request *mcp.CallToolRequest, input AnalyzeBusinessInput) (*mcp.CallToolResult, AnalyzeBusinessOutput, error) {
	found, err := h.engine.Analyze(ctx, h.now())
	if err != nil {
		return nil, AnalyzeBusinessOutput{}, err
	}

	out := AnalyzeBusinessOutput{Insights: []InsightOutput{}, Summary: insights.Summarize(found)}
	for _, in := range found {
		if input.Priority != "" && string(in.Priority) != input.Priority {
			continue
		}
		out.Insights = append(out.Insights, insightToOutput(in))
	}
	return nil, out, nil
}

type ExecuteInsightInput struct {
	Kind string `json:"kind" jsonschema:"Insight kind to automate, e.g. overdue_payments (required)"`
}

type FailureOutput struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
	Error      string `json:"error"`
}

type ExecuteInsightOutput struct {
	Success   bool            `json:"success"`
	Executed  bool            `json:"executed"`
	RunID     string          `json:"run_id,omitempty"`
	Kind      string          `json:"kind"`
	Attempted int             `json:"attempted"`
	Failures  []FailureOutput `json:"failures"`
	Message   string          `json:"message"`
}

// ExecuteInsight re-analyzes the business and runs the automation for the requested kind.
func (h *InsightHandlers) ExecuteInsight(ctx context.Context, request *mcp.CallToolRequest, input ExecuteInsightInput) (*mcp.CallToolResult, ExecuteInsightOutput, error) {
	kind, err := insights.ParseKind(input.Kind)
	if err != nil {
		return nil, ExecuteInsightOutput{}, err
	}

	found, err := h.engine.Analyze(ctx, h.now())
	if err != nil {
		return nil, ExecuteInsightOutput{}, err
	}
	in, ok := insights.Find(found, kind)
	if !ok {
		return nil, ExecuteInsightOutput{Kind: string(kind), Failures: []FailureOutput{},
			Message: fmt.Sprintf("no %s insight is active", kind)}, nil
	}

	report := h.executor.Run(ctx, in)
	out := reportToOutput(report)
	switch {
	case !report.Executed:
		out.Message = "insight requires manual action"
	case report.Success():
		out.Message = fmt.Sprintf("updated %d records", report.Attempted)
	default:
		out.Message = report.Err().Error()
	}
	return nil, out, nil
}

type GetKPIsInput struct{}

type KPIOutput struct {
	KPIs       insights.KPIs  `json:"kpis"`
	Growth     string         `json:"growth"`
	StageCount map[string]int `json:"stage_counts"`
}

func (h *InsightHandlers) GetKPIs(ctx context.Context, request *mcp.CallToolRequest, input GetKPIsInput) (*mcp.CallToolResult, KPIOutput, error) {
	snap, err := h.engine.Snapshot(ctx)
	if err != nil {
		return nil, KPIOutput{}, err
	}
	kpis := insights.ComputeKPIs(snap, h.now(), h.engine.Thresholds())

	counts := map[string]int{}
	for stage, n := range insights.StageCounts(snap.Opportunities) {
		counts[string(stage)] = n
	}
	return nil, KPIOutput{KPIs: kpis, Growth: kpis.Growth.String(), StageCount: counts}, nil
}

type BusinessSummaryInput struct{}

type BusinessSummaryOutput struct {
	Summary string `json:"summary"`
	Details string `json:"details"`
}

func (h *InsightHandlers) BusinessSummary(ctx context.Context, request *mcp.CallToolRequest, input BusinessSummaryInput) (*mcp.CallToolResult, BusinessSummaryOutput, error) {
	found, err := h.engine.Analyze(ctx, h.now())
	if err != nil {
		return nil, BusinessSummaryOutput{}, err
	}
	return nil, BusinessSummaryOutput{Summary: insights.Summarize(found), Details: insights.Describe(found)}, nil
}

type ListAutomationRunsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of runs (default 20)"`
}

type AutomationRunOutput struct {
	RunID      string `json:"run_id"`
	Kind       string `json:"kind"`
	Attempted  int    `json:"attempted"`
	Failed     int    `json:"failed"`
	Success    bool   `json:"success"`
	ExecutedAt string `json:"executed_at"`
}

type ListAutomationRunsOutput struct {
	Runs []AutomationRunOutput `json:"runs"`
}

func (h *InsightHandlers) ListAutomationRuns(ctx context.Context, request *mcp.CallToolRequest, input ListAutomationRunsInput) (*mcp.CallToolResult, ListAutomationRunsOutput, error) {
	runs, err := h.backend.ListRuns(ctx, input.Limit)
	if err != nil {
		return nil, ListAutomationRunsOutput{}, fmt.Errorf("failed to list automation runs: %w", err)
	}
	out := ListAutomationRunsOutput{Runs: []AutomationRunOutput{}}
	for _, r := range runs {
		out.Runs = append(out.Runs, runToOutput(r))
	}
	return nil, out, nil
}

func insightToOutput(in insights.Insight) InsightOutput {
	out := InsightOutput{
		Kind:        string(in.Kind),
		Type:        string(in.Type),
		Priority:    string(in.Priority),
		Title:       in.Title,
		Description: in.Description,
		Action:      in.Action,
		Automated:   in.Automated,
		Records:     []RecordRef{},
		Metrics:     map[string]float64{},
	}
	for _, ref := range in.Refs() {
		out.Records = append(out.Records, RecordRef{Collection: string(ref.Collection), ID: ref.ID.String()})
	}
	for k, v := range in.Metrics {
		out.Metrics[k] = v
	}
	return out
}

func reportToOutput(r insights.Report) ExecuteInsightOutput {
	out := ExecuteInsightOutput{
		Success:   r.Success(),
		Executed:  r.Executed,
		RunID:     r.RunID,
		Kind:      string(r.Kind),
		Attempted: r.Attempted,
		Failures:  []FailureOutput{},
	}
	for _, f := range r.Failures {
		out.Failures = append(out.Failures, FailureOutput{
			Collection: string(f.Ref.Collection),
			ID:         f.Ref.ID.String(),
			Error:      f.Err.Error(),
		})
	}
	return out
}

func runToOutput(r models.AutomationRun) AutomationRunOutput {
	return AutomationRunOutput{
		RunID:      r.RunID,
		Kind:       r.Kind,
		Attempted:  r.Attempted,
		Failed:     r.Failed,
		Success:    r.Success,
		ExecutedAt: r.ExecutedAt.Format(time.RFC3339),
	}
}
