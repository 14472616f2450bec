// ABOUTME: Terminal dashboard statistics and rendering
// ABOUTME: Provides an ASCII KPI dashboard with the opportunity pipeline and items needing attention
package viz

import (
	"fmt"
	"strings"
	"time"

	"github.com/JFernandez0524/leadgen/insights"
	"github.com/JFernandez0524/leadgen/models"
)

type StageStats struct {
	Stage models.Stage
	Count int
	Value models.Cents
}

type DashboardStats struct {
	KPIs     insights.KPIs
	Pipeline []StageStats
	Counts   insights.Counts

	// NeedsAttention holds the high and medium priority insights.
	NeedsAttention []insights.Insight
}

// GenerateDashboardStats builds dashboard data from a snapshot and its insights.
func GenerateDashboardStats(s insights.Snapshot, found []insights.Insight, now time.Time, th insights.Thresholds) *DashboardStats {
	stats := &DashboardStats{
		KPIs:     insights.ComputeKPIs(s, now, th),
		Pipeline: PipelineStages(s.Opportunities),
		Counts:   insights.Count(found),
	}
	for _, in := range found {
		if in.Priority == insights.PriorityHigh || in.Priority == insights.PriorityMedium {
			stats.NeedsAttention = append(stats.NeedsAttention, in)
		}
	}
	return stats
}

// PipelineStages groups opportunities by stage in pipeline order.
func PipelineStages(opps []models.Opportunity) []StageStats {
	byStage := make(map[models.Stage]*StageStats, len(models.Stages))
	out := make([]StageStats, len(models.Stages))
	for i, st := range models.Stages {
		out[i].Stage = st
		byStage[st] = &out[i]
	}
	for _, o := range opps {
		if ss, ok := byStage[o.Stage]; ok {
			ss.Count++
			ss.Value += o.EstimatedValue
		}
	}
	return out
}

func RenderDashboard(stats *DashboardStats) string {
	var out strings.Builder
	k := stats.KPIs

	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  LEADGEN BUSINESS DASHBOARD\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString("LEADS\n")
	out.WriteString(fmt.Sprintf("  📇 %d total  📅 %d this month  🗓  %d this week\n", k.TotalLeads, k.MonthlyLeads, k.WeeklyLeads))
	out.WriteString(fmt.Sprintf("  ✅ %d qualified  qualification %.1f%%  conversion %.1f%%\n\n",
		k.QualifiedLeads, k.QualificationRate, k.ConversionRate))

	out.WriteString("REVENUE\n")
	out.WriteString(fmt.Sprintf("  💵 %s last 30 days  (growth %s)\n", k.MonthlyRevenue, k.Growth))
	out.WriteString(fmt.Sprintf("  🧾 %s average order\n\n", k.AverageOrderValue))

	out.WriteString("PIPELINE OVERVIEW\n")
	renderPipeline(&out, stats.Pipeline)
	out.WriteString(fmt.Sprintf("  %d active opportunities worth %s\n\n", k.ActiveOpportunities, k.PipelineValue))

	if len(stats.NeedsAttention) > 0 {
		out.WriteString("NEEDS ATTENTION\n")
		for _, in := range stats.NeedsAttention {
			marker := "⚠️ "
			if in.Priority == insights.PriorityHigh {
				marker = "🚨"
			}
			auto := ""
			if in.Automated {
				auto = "  [auto: " + string(in.Kind) + "]"
			}
			out.WriteString(fmt.Sprintf("  %s %s%s\n", marker, in.Title, auto))
		}
	} else {
		out.WriteString("Nothing needs attention. Overall business health looks good.\n")
	}

	return out.String()
}

func renderPipeline(out *strings.Builder, pipeline []StageStats) {
	maxCount := 0
	for _, ps := range pipeline {
		if ps.Count > maxCount {
			maxCount = ps.Count
		}
	}
	if maxCount == 0 {
		maxCount = 1
	}

	for _, ps := range pipeline {
		// 0-10 blocks
		barLength := (ps.Count * 10) / maxCount
		bar := strings.Repeat("█", barLength) + strings.Repeat("░", 10-barLength)
		out.WriteString(fmt.Sprintf("  %-12s %s  %2d (%s)\n", ps.Stage, bar, ps.Count, ps.Value))
	}
}
