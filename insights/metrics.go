// ABOUTME: Metric calculators over a snapshot of leads and payments
// ABOUTME: Pure functions; the current time is always passed in by the caller
package insights

import (
	"fmt"
	"time"

	"github.com/JFernandez0524/leadgen/models"
)

const (
	day = 24 * time.Hour

	// monthDays is the length of one revenue comparison window.
	monthDays = 30
)

func windowStart(now time.Time, days int) time.Time {
	if days < 0 {
		panic(fmt.Sprintf("insights: negative day window %d", days))
	}
	return now.Add(-time.Duration(days) * day)
}

func windowEnd(now time.Time, days int) time.Time {
	if days < 0 {
		panic(fmt.Sprintf("insights: negative day window %d", days))
	}
	return now.Add(time.Duration(days) * day)
}

// RecentWindow keeps records whose timestamp is at or after now minus days.
func RecentWindow[T any](records []T, at func(T) time.Time, now time.Time, days int) []T {
	start := windowStart(now, days)
	var out []T
	for _, r := range records {
		if !at(r).Before(start) {
			out = append(out, r)
		}
	}
	return out
}

func leadCreated(l models.Lead) time.Time { return l.CreatedAt }

// ConversionRate is the percentage of leads in the window that converted. Empty window yields 0.
func ConversionRate(leads []models.Lead, now time.Time, days int) float64 {
	recent := RecentWindow(leads, leadCreated, now, days)
	return percentage(recent, func(l models.Lead) bool { return l.Status == models.LeadConverted })
}

// QualificationRate is the percentage of leads in the window that are qualified. Empty window yields 0.
func QualificationRate(leads []models.Lead, now time.Time, days int) float64 {
	recent := RecentWindow(leads, leadCreated, now, days)
	return percentage(recent, func(l models.Lead) bool { return l.IsQualified })
}

func percentage(leads []models.Lead, match func(models.Lead) bool) float64 {
	if len(leads) == 0 {
		return 0
	}
	n := 0
	for _, l := range leads {
		if match(l) {
			n++
		}
	}
	return float64(n) / float64(len(leads)) * 100
}

// RevenueInWindow sums completed payments whose payment date falls in [start, end).
func RevenueInWindow(payments []models.Payment, start, end time.Time) models.Cents {
	var total models.Cents
	for _, p := range completedIn(payments, start, end) {
		total += p.Amount
	}
	return total
}

func completedIn(payments []models.Payment, start, end time.Time) []models.Payment {
	var out []models.Payment
	for _, p := range payments {
		if p.Status != models.PaymentCompleted || p.PaymentDate == nil {
			continue
		}
		if !p.PaymentDate.Before(start) && p.PaymentDate.Before(end) {
			out = append(out, p)
		}
	}
	return out
}

// Growth compares revenue of the last 30 days against the 30 days before.
type Growth struct {
	Current  models.Cents `json:"current"`
	Previous models.Cents `json:"previous"`
	// Rate is a percentage and is only meaningful when Defined is true.
	Rate    float64 `json:"rate"`
	Defined bool    `json:"defined"`
}

// MonthOverMonthGrowth leaves Defined false when the prior window earned nothing.
func MonthOverMonthGrowth(payments []models.Payment, now time.Time) Growth {
	monthAgo := windowStart(now, monthDays)
	twoMonthsAgo := windowStart(now, 2*monthDays)

	g := Growth{
		Current:  RevenueInWindow(payments, monthAgo, now),
		Previous: RevenueInWindow(payments, twoMonthsAgo, monthAgo),
	}
	if g.Previous == 0 {
		return g
	}
	g.Rate = float64(g.Current-g.Previous) / float64(g.Previous) * 100
	g.Defined = true
	return g
}

func (g Growth) String() string {
	if !g.Defined {
		return "n/a"
	}
	return fmt.Sprintf("%+.1f%%", g.Rate)
}
