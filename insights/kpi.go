// ABOUTME: KPI aggregation for the admin dashboard
// ABOUTME: Lead volume, qualification and conversion, recent revenue and the open pipeline
package insights

import (
	"time"

	"github.com/JFernandez0524/leadgen/models"
)

type KPIs struct {
	TotalLeads          int          `json:"total_leads"`
	MonthlyLeads        int          `json:"monthly_leads"`
	WeeklyLeads         int          `json:"weekly_leads"`
	QualifiedLeads      int          `json:"qualified_leads"`
	QualificationRate   float64      `json:"qualification_rate"`
	ConversionRate      float64      `json:"conversion_rate"`
	MonthlyRevenue      models.Cents `json:"monthly_revenue"`
	AverageOrderValue   models.Cents `json:"average_order_value"`
	ActiveOpportunities int          `json:"active_opportunities"`
	PipelineValue       models.Cents `json:"pipeline_value"`
	Growth              Growth       `json:"growth"`
}

// ComputeKPIs aggregates the snapshot. Rates use the configured rate window.
func ComputeKPIs(s Snapshot, now time.Time, th Thresholds) KPIs {
	k := KPIs{
		TotalLeads:        len(s.Leads),
		MonthlyLeads:      len(RecentWindow(s.Leads, leadCreated, now, monthDays)),
		WeeklyLeads:       len(RecentWindow(s.Leads, leadCreated, now, 7)),
		QualificationRate: QualificationRate(s.Leads, now, th.RateWindowDays),
		ConversionRate:    ConversionRate(s.Leads, now, th.RateWindowDays),
		Growth:            MonthOverMonthGrowth(s.Payments, now),
	}
	for _, l := range s.Leads {
		if l.IsQualified {
			k.QualifiedLeads++
		}
	}

	recent := completedIn(s.Payments, windowStart(now, monthDays), now)
	for _, p := range recent {
		k.MonthlyRevenue += p.Amount
	}
	if len(recent) > 0 {
		k.AverageOrderValue = k.MonthlyRevenue / models.Cents(len(recent))
	}

	for _, o := range s.Opportunities {
		if o.Active() {
			k.ActiveOpportunities++
			k.PipelineValue += o.EstimatedValue
		}
	}
	return k
}

// StageCounts returns the number of opportunities per stage, in pipeline order.
func StageCounts(opps []models.Opportunity) map[models.Stage]int {
	counts := make(map[models.Stage]int, len(models.Stages))
	for _, st := range models.Stages {
		counts[st] = 0
	}
	for _, o := range opps {
		counts[o.Stage]++
	}
	return counts
}
