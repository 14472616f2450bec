// ABOUTME: Summary formatter that reduces insights to a short status digest
// ABOUTME: Also renders the detailed insight list handed to the chat advisor as context
package insights

import (
	"fmt"
	"strings"
)

// Counts tallies insights by priority and type.
type Counts struct {
	High          int `json:"high"`
	Medium        int `json:"medium"`
	Alerts        int `json:"alerts"`
	Tasks         int `json:"tasks"`
	Opportunities int `json:"opportunities"`
}

func Count(insights []Insight) Counts {
	var c Counts
	for _, in := range insights {
		switch in.Priority {
		case PriorityHigh:
			c.High++
		case PriorityMedium:
			c.Medium++
		}
		switch in.Type {
		case TypeAlert:
			c.Alerts++
		case TypeTask:
			c.Tasks++
		case TypeOpportunity:
			c.Opportunities++
		}
	}
	return c
}

const (
	urgentClosing  = "URGENT: Address high-priority items first!"
	healthyClosing = "Overall business health looks good."
)

// Summarize renders the five counts and an urgent or healthy closing line.
func Summarize(insights []Insight) string {
	c := Count(insights)
	closing := healthyClosing
	if c.High > 0 {
		closing = urgentClosing
	}

	var b strings.Builder
	b.WriteString("Business Health Summary:\n\n")
	fmt.Fprintf(&b, "🚨 %d high-priority items need immediate attention\n", c.High)
	fmt.Fprintf(&b, "⚠️ %d medium-priority items for review\n", c.Medium)
	fmt.Fprintf(&b, "📋 %d tasks require action\n", c.Tasks)
	fmt.Fprintf(&b, "🎯 %d growth opportunities identified\n", c.Opportunities)
	fmt.Fprintf(&b, "⚡ %d system alerts detected\n\n", c.Alerts)
	b.WriteString(closing)
	return b.String()
}

// Describe lists every insight with its priority, action and automation flag.
func Describe(insights []Insight) string {
	if len(insights) == 0 {
		return "No issues found."
	}
	var b strings.Builder
	for i, in := range insights {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- %s: %s\n", strings.ToUpper(string(in.Type)), in.Title)
		fmt.Fprintf(&b, "  Priority: %s\n", in.Priority)
		fmt.Fprintf(&b, "  Description: %s\n", in.Description)
		if in.Action != "" {
			fmt.Fprintf(&b, "  Recommended Action: %s\n", in.Action)
		}
		if in.Automated {
			fmt.Fprintf(&b, "  (Can be automated: %s)\n", in.Kind)
		}
	}
	return b.String()
}
