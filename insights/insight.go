// ABOUTME: Insight value type produced by the rule engine
// ABOUTME: Kind is the closed tag that routes automation; Type and Priority classify the finding
package insights

import (
	"fmt"

	"github.com/JFernandez0524/leadgen/models"
)

type Kind string

const (
	KindOverduePayments       Kind = "overdue_payments"
	KindQualifiedStaleLeads   Kind = "qualified_stale_leads"
	KindUnqualifiedStaleLeads Kind = "unqualified_stale_leads"
	KindOverdueAppointments   Kind = "overdue_appointments"
	KindLowConversion         Kind = "low_conversion"
	KindLowQualification      Kind = "low_qualification"
	KindRevenueDecline        Kind = "revenue_decline"
	KindRevenueGrowth         Kind = "revenue_growth"
	KindHeavySchedule         Kind = "heavy_schedule"
	KindUnscheduledQuotes     Kind = "unscheduled_quotes"
)

// Kinds lists every kind in rule evaluation order.
var Kinds = []Kind{
	KindOverduePayments,
	KindQualifiedStaleLeads,
	KindUnqualifiedStaleLeads,
	KindOverdueAppointments,
	KindLowConversion,
	KindLowQualification,
	KindRevenueDecline,
	KindRevenueGrowth,
	KindHeavySchedule,
	KindUnscheduledQuotes,
}

func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown insight kind %q", s)
}

type Type string

const (
	TypeAlert          Type = "alert"
	TypeOpportunity    Type = "opportunity"
	TypeTask           Type = "task"
	TypeRecommendation Type = "recommendation"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank orders priorities; higher is more urgent.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Insight is a transient finding about business health. It is never persisted.
type Insight struct {
	Kind        Kind               `json:"kind"`
	Type        Type               `json:"type"`
	Priority    Priority           `json:"priority"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Action      string             `json:"action,omitempty"`
	Data        []models.Record    `json:"data,omitempty"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`
	Automated   bool               `json:"automated"`
}

// Refs returns the ids of the records attached to the insight, in order.
func (i Insight) Refs() []models.Ref {
	refs := make([]models.Ref, 0, len(i.Data))
	for _, r := range i.Data {
		refs = append(refs, models.RefOf(r))
	}
	return refs
}

// Find returns the first insight of the given kind.
func Find(insights []Insight, kind Kind) (Insight, bool) {
	for _, in := range insights {
		if in.Kind == kind {
			return in, true
		}
	}
	return Insight{}, false
}
