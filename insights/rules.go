// ABOUTME: Insight rules, each a pure predicate and formatter over one snapshot
// ABOUTME: A rule emits at most one insight and nothing at all when it matches no records
package insights

import (
	"fmt"
	"math"
	"time"

	"github.com/JFernandez0524/leadgen/models"
)

// Snapshot is the three collections as fetched for one analysis.
type Snapshot struct {
	Leads         []models.Lead
	Payments      []models.Payment
	Opportunities []models.Opportunity
}

// Rule inspects a snapshot and returns zero or one insight.
type Rule func(s Snapshot, now time.Time, th Thresholds) []Insight

// Rules in evaluation order. Ties in priority keep this order.
var Rules = []Rule{
	overduePayments,
	qualifiedStaleLeads,
	unqualifiedStaleLeads,
	overdueAppointments,
	lowConversion,
	lowQualification,
	revenueDecline,
	revenueGrowth,
	heavySchedule,
	unscheduledQuotes,
}

func overduePayments(s Snapshot, now time.Time, th Thresholds) []Insight {
	cutoff := windowStart(now, th.PaymentOverdueDays)
	var matched []models.Record
	var total models.Cents
	for _, p := range s.Payments {
		if p.Status == models.PaymentPending && p.CreatedAt.Before(cutoff) {
			matched = append(matched, p)
			total += p.Amount
		}
	}
	if len(matched) == 0 {
		return nil
	}
	return []Insight{{
		Kind:        KindOverduePayments,
		Type:        TypeAlert,
		Priority:    PriorityHigh,
		Title:       fmt.Sprintf("%d Overdue Payments", len(matched)),
		Description: fmt.Sprintf("You have %d payments that are overdue by more than %d days. Total amount: %s", len(matched), th.PaymentOverdueDays, total),
		Action:      "Send payment reminders and follow up with customers",
		Data:        matched,
		Metrics:     map[string]float64{"count": float64(len(matched)), "total_amount": total.Dollars()},
		Automated:   true,
	}}
}

// staleLeads splits new leads older than the stale threshold by qualification.
func staleLeads(leads []models.Lead, now time.Time, th Thresholds) (qualified, unqualified []models.Record) {
	cutoff := windowStart(now, th.LeadStaleDays)
	for _, l := range leads {
		if l.Status != models.LeadNew || !l.CreatedAt.Before(cutoff) {
			continue
		}
		if l.IsQualified {
			qualified = append(qualified, l)
		} else {
			unqualified = append(unqualified, l)
		}
	}
	return qualified, unqualified
}

func qualifiedStaleLeads(s Snapshot, now time.Time, th Thresholds) []Insight {
	qualified, _ := staleLeads(s.Leads, now, th)
	if len(qualified) == 0 {
		return nil
	}
	return []Insight{{
		Kind:        KindQualifiedStaleLeads,
		Type:        TypeTask,
		Priority:    PriorityHigh,
		Title:       fmt.Sprintf("%d Qualified Leads Need Follow-up", len(qualified)),
		Description: fmt.Sprintf("You have %d qualified leads that haven't been contacted in over %d days. These are hot prospects that need immediate attention.", len(qualified), th.LeadStaleDays),
		Action:      "Call these leads immediately or schedule follow-up",
		Data:        qualified,
		Metrics:     map[string]float64{"count": float64(len(qualified))},
		Automated:   true,
	}}
}

func unqualifiedStaleLeads(s Snapshot, now time.Time, th Thresholds) []Insight {
	_, unqualified := staleLeads(s.Leads, now, th)
	if len(unqualified) == 0 {
		return nil
	}
	return []Insight{{
		Kind:        KindUnqualifiedStaleLeads,
		Type:        TypeTask,
		Priority:    PriorityMedium,
		Title:       fmt.Sprintf("%d Unqualified Leads Need Nurturing", len(unqualified)),
		Description: fmt.Sprintf("You have %d unqualified leads that could be nurtured into opportunities with proper follow-up.", len(unqualified)),
		Action:      "Send nurture emails or make qualification calls",
		Data:        unqualified,
		Metrics:     map[string]float64{"count": float64(len(unqualified))},
	}}
}

func overdueAppointments(s Snapshot, now time.Time, _ Thresholds) []Insight {
	var matched []models.Record
	for _, o := range s.Opportunities {
		if o.Stage == models.StageScheduled && o.ServiceDate != nil && o.ServiceDate.Before(now) {
			matched = append(matched, o)
		}
	}
	if len(matched) == 0 {
		return nil
	}
	return []Insight{{
		Kind:        KindOverdueAppointments,
		Type:        TypeAlert,
		Priority:    PriorityHigh,
		Title:       fmt.Sprintf("%d Overdue Service Appointments", len(matched)),
		Description: fmt.Sprintf("You have %d service appointments that are past due. These need immediate attention to maintain customer satisfaction.", len(matched)),
		Action:      "Contact customers to reschedule or mark as completed",
		Data:        matched,
		Metrics:     map[string]float64{"count": float64(len(matched))},
		Automated:   true,
	}}
}

// lowConversion is suppressed when no leads arrived in the window.
func lowConversion(s Snapshot, now time.Time, th Thresholds) []Insight {
	recent := RecentWindow(s.Leads, leadCreated, now, th.RateWindowDays)
	if len(recent) == 0 {
		return nil
	}
	rate := ConversionRate(s.Leads, now, th.RateWindowDays)
	if rate >= th.MinConversionRate {
		return nil
	}
	return []Insight{{
		Kind:        KindLowConversion,
		Type:        TypeRecommendation,
		Priority:    PriorityMedium,
		Title:       "Low Conversion Rate Detected",
		Description: fmt.Sprintf("Your conversion rate is %.1f%%, which is below the target of %.0f%%. This suggests opportunities for improvement.", rate, th.MinConversionRate),
		Action:      "Review qualification process and follow-up procedures",
		Metrics:     map[string]float64{"conversion_rate": rate, "recent_leads": float64(len(recent))},
	}}
}

func lowQualification(s Snapshot, now time.Time, th Thresholds) []Insight {
	recent := RecentWindow(s.Leads, leadCreated, now, th.RateWindowDays)
	if len(recent) == 0 {
		return nil
	}
	rate := QualificationRate(s.Leads, now, th.RateWindowDays)
	if rate >= th.MinQualificationRate {
		return nil
	}
	return []Insight{{
		Kind:        KindLowQualification,
		Type:        TypeRecommendation,
		Priority:    PriorityMedium,
		Title:       "Low Lead Qualification Rate",
		Description: fmt.Sprintf("Only %.1f%% of your leads are being qualified. Consider improving your lead sources or qualification criteria.", rate),
		Action:      "Review lead sources and qualification questions",
		Metrics:     map[string]float64{"qualification_rate": rate, "recent_leads": float64(len(recent))},
	}}
}

func revenueMetrics(g Growth) map[string]float64 {
	return map[string]float64{
		"current_revenue":  g.Current.Dollars(),
		"previous_revenue": g.Previous.Dollars(),
		"growth_rate":      g.Rate,
	}
}

func revenueDecline(s Snapshot, now time.Time, th Thresholds) []Insight {
	g := MonthOverMonthGrowth(s.Payments, now)
	if !g.Defined || g.Rate >= th.RevenueDeclineRate {
		return nil
	}
	return []Insight{{
		Kind:        KindRevenueDecline,
		Type:        TypeAlert,
		Priority:    PriorityHigh,
		Title:       "Revenue Decline Detected",
		Description: fmt.Sprintf("Revenue has declined by %.1f%% compared to last month. Current: %s, Previous: %s", math.Abs(g.Rate), g.Current, g.Previous),
		Action:      "Analyze causes and implement recovery strategies",
		Metrics:     revenueMetrics(g),
	}}
}

func revenueGrowth(s Snapshot, now time.Time, th Thresholds) []Insight {
	g := MonthOverMonthGrowth(s.Payments, now)
	if !g.Defined || g.Rate <= th.RevenueGrowthRate {
		return nil
	}
	return []Insight{{
		Kind:        KindRevenueGrowth,
		Type:        TypeOpportunity,
		Priority:    PriorityMedium,
		Title:       "Strong Revenue Growth",
		Description: fmt.Sprintf("Revenue has grown by %.1f%% this month! Current: %s, Previous: %s. Consider scaling operations to maintain this growth.", g.Rate, g.Current, g.Previous),
		Action:      "Plan for increased capacity and marketing investment",
		Metrics:     revenueMetrics(g),
	}}
}

// upcomingServices returns scheduled jobs with a service date in [now, now+horizon).
func upcomingServices(opps []models.Opportunity, now time.Time, horizonDays int) []models.Record {
	end := windowEnd(now, horizonDays)
	var out []models.Record
	for _, o := range opps {
		if o.Stage != models.StageScheduled || o.ServiceDate == nil {
			continue
		}
		if !o.ServiceDate.Before(now) && o.ServiceDate.Before(end) {
			out = append(out, o)
		}
	}
	return out
}

func heavySchedule(s Snapshot, now time.Time, th Thresholds) []Insight {
	upcoming := upcomingServices(s.Opportunities, now, th.ScheduleHorizonDays)
	if len(upcoming) <= th.HeavyScheduleCount {
		return nil
	}
	return []Insight{{
		Kind:        KindHeavySchedule,
		Type:        TypeAlert,
		Priority:    PriorityMedium,
		Title:       "Heavy Service Schedule Next Week",
		Description: fmt.Sprintf("You have %d services scheduled in the next %d days. Consider your capacity and prepare accordingly.", len(upcoming), th.ScheduleHorizonDays),
		Action:      "Review schedule and consider hiring additional help",
		Data:        upcoming,
		Metrics:     map[string]float64{"count": float64(len(upcoming))},
	}}
}

func unscheduledQuotes(s Snapshot, _ time.Time, _ Thresholds) []Insight {
	var matched []models.Record
	var value models.Cents
	for _, o := range s.Opportunities {
		if o.Stage == models.StageQuoted && o.ServiceDate == nil {
			matched = append(matched, o)
			value += o.EstimatedValue
		}
	}
	if len(matched) == 0 {
		return nil
	}
	return []Insight{{
		Kind:        KindUnscheduledQuotes,
		Type:        TypeTask,
		Priority:    PriorityMedium,
		Title:       fmt.Sprintf("%d Quoted Jobs Need Scheduling", len(matched)),
		Description: fmt.Sprintf("You have %d opportunities worth %s that have been quoted but not yet scheduled. Follow up to close these deals.", len(matched), value),
		Action:      "Contact customers to schedule services",
		Data:        matched,
		Metrics:     map[string]float64{"count": float64(len(matched)), "estimated_value": value.Dollars()},
		Automated:   true,
	}}
}
