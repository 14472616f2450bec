// ABOUTME: Tunable thresholds for the insight rules
// ABOUTME: Defaults mirror the back office's business policy and can be overridden from config
package insights

import "fmt"

// Thresholds holds every constant the rules compare against.
type Thresholds struct {
	PaymentOverdueDays   int     `mapstructure:"payment_overdue_days" yaml:"payment_overdue_days"`
	LeadStaleDays        int     `mapstructure:"lead_stale_days" yaml:"lead_stale_days"`
	RateWindowDays       int     `mapstructure:"rate_window_days" yaml:"rate_window_days"`
	MinConversionRate    float64 `mapstructure:"min_conversion_rate" yaml:"min_conversion_rate"`
	MinQualificationRate float64 `mapstructure:"min_qualification_rate" yaml:"min_qualification_rate"`
	RevenueDeclineRate   float64 `mapstructure:"revenue_decline_rate" yaml:"revenue_decline_rate"`
	RevenueGrowthRate    float64 `mapstructure:"revenue_growth_rate" yaml:"revenue_growth_rate"`
	ScheduleHorizonDays  int     `mapstructure:"schedule_horizon_days" yaml:"schedule_horizon_days"`
	HeavyScheduleCount   int     `mapstructure:"heavy_schedule_count" yaml:"heavy_schedule_count"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		PaymentOverdueDays:   7,
		LeadStaleDays:        3,
		RateWindowDays:       30,
		MinConversionRate:    20,
		MinQualificationRate: 40,
		RevenueDeclineRate:   -10,
		RevenueGrowthRate:    20,
		ScheduleHorizonDays:  7,
		HeavyScheduleCount:   10,
	}
}

// Validate reports a threshold that no rule can meaningfully use.
func (t Thresholds) Validate() error {
	windows := map[string]int{
		"payment_overdue_days":  t.PaymentOverdueDays,
		"lead_stale_days":       t.LeadStaleDays,
		"rate_window_days":      t.RateWindowDays,
		"schedule_horizon_days": t.ScheduleHorizonDays,
		"heavy_schedule_count":  t.HeavyScheduleCount,
	}
	for name, v := range windows {
		if v < 0 {
			return fmt.Errorf("threshold %s must not be negative, got %d", name, v)
		}
	}
	if t.RevenueDeclineRate > 0 {
		return fmt.Errorf("threshold revenue_decline_rate must be <= 0, got %.1f", t.RevenueDeclineRate)
	}
	return nil
}

// MustValidate panics on invalid thresholds. Misconfigured windows are programming errors.
func (t Thresholds) MustValidate() {
	if err := t.Validate(); err != nil {
		panic(err)
	}
}
