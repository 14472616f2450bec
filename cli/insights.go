// ABOUTME: Insight CLI commands
// ABOUTME: Analyze business health, execute automated remedies, print the summary, KPIs and automation runs
package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/JFernandez0524/leadgen/insights"
)

func newInsightsCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Analyze business health and run automations",
	}
	cmd.AddCommand(
		newInsightsAnalyzeCmd(o),
		newInsightsExecuteCmd(o),
		newInsightsSummaryCmd(o),
		newInsightsRunsCmd(o),
	)
	return cmd
}

func newInsightsAnalyzeCmd(o *rootOptions) *cobra.Command {
	var priority string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "List current insights, most urgent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.open()
			if err != nil {
				return err
			}
			ctx, cancel := o.timeoutContext(cmd)
			defer cancel()

			found, err := a.engine.Analyze(ctx, o.now())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			shown := 0
			for _, in := range found {
				if priority != "" && string(in.Priority) != priority {
					continue
				}
				printInsight(out, in)
				shown++
			}
			if shown == 0 {
				fmt.Fprintln(out, "No insights. Overall business health looks good.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&priority, "priority", "", "Only show insights with this priority (high, medium, low)")
	return cmd
}

func printInsight(w io.Writer, in insights.Insight) {
	auto := ""
	if in.Automated {
		auto = "  [automated: leadgen insights execute " + string(in.Kind) + "]"
	}
	fmt.Fprintf(w, "[%s] %s (%s)%s\n", strings.ToUpper(string(in.Priority)), in.Title, in.Type, auto)
	fmt.Fprintf(w, "  %s\n", in.Description)
	if in.Action != "" {
		fmt.Fprintf(w, "  → %s\n", in.Action)
	}
	fmt.Fprintln(w)
}

func newInsightsExecuteCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "execute <kind>",
		Short: "Run the automated remedy for an active insight",
		Long: `Re-analyzes the business and runs the remedy attached to the insight of the
given kind. Automated kinds: overdue_payments, qualified_stale_leads,
unscheduled_quotes, overdue_appointments.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := insights.ParseKind(args[0])
			if err != nil {
				return err
			}

			a, err := o.open()
			if err != nil {
				return err
			}
			ctx, cancel := o.timeoutContext(cmd)
			defer cancel()

			found, err := a.engine.Analyze(ctx, o.now())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			in, ok := insights.Find(found, kind)
			if !ok {
				fmt.Fprintf(out, "No %s insight is active. Nothing to do.\n", kind)
				return nil
			}
			if !in.Automated {
				return fmt.Errorf("%s has no automated action; suggested next step: %s", kind, in.Action)
			}

			report := a.executor.Run(ctx, in)
			fmt.Fprintf(out, "Run %s: %d record(s) attempted, %d failed\n", report.RunID, report.Attempted, len(report.Failures))
			for _, f := range report.Failures {
				fmt.Fprintf(out, "  ✗ %s/%s: %v\n", f.Ref.Collection, f.Ref.ID, f.Err)
			}

			var partial *insights.PartialAutomationFailure
			if err := report.Err(); errors.As(err, &partial) {
				return fmt.Errorf("automation incomplete, retry with the same kind: %w", err)
			}
			fmt.Fprintln(out, "✓ Automation completed")
			return nil
		},
	}
}

func newInsightsSummaryCmd(o *rootOptions) *cobra.Command {
	var detailed bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the business health summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.open()
			if err != nil {
				return err
			}
			ctx, cancel := o.timeoutContext(cmd)
			defer cancel()

			found, err := a.engine.Analyze(ctx, o.now())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, insights.Summarize(found))
			if detailed && len(found) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, insights.Describe(found))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&detailed, "detailed", false, "Also describe every insight")
	return cmd
}

func newInsightsRunsCmd(o *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent automation runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.open()
			if err != nil {
				return err
			}
			ctx, cancel := o.timeoutContext(cmd)
			defer cancel()

			runs, err := a.backend.ListRuns(ctx, limit)
			if err != nil {
				return fmt.Errorf("failed to list automation runs: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No automation runs yet")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "EXECUTED\tKIND\tATTEMPTED\tFAILED\tRUN ID")
			_, _ = fmt.Fprintln(w, "--------\t----\t---------\t------\t------")
			for _, r := range runs {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
					r.ExecutedAt.Format(time.DateTime), r.Kind, r.Attempted, r.Failed, r.RunID)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum results")
	return cmd
}

func newKPICmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "kpi",
		Short: "Print lead, revenue and pipeline KPIs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.open()
			if err != nil {
				return err
			}
			ctx, cancel := o.timeoutContext(cmd)
			defer cancel()

			snap, err := a.engine.Snapshot(ctx)
			if err != nil {
				return err
			}
			k := insights.ComputeKPIs(snap, o.now(), a.engine.Thresholds())

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintf(w, "Total leads\t%d\n", k.TotalLeads)
			_, _ = fmt.Fprintf(w, "Leads this month\t%d\n", k.MonthlyLeads)
			_, _ = fmt.Fprintf(w, "Leads this week\t%d\n", k.WeeklyLeads)
			_, _ = fmt.Fprintf(w, "Qualified leads\t%d\n", k.QualifiedLeads)
			_, _ = fmt.Fprintf(w, "Qualification rate\t%.1f%%\n", k.QualificationRate)
			_, _ = fmt.Fprintf(w, "Conversion rate\t%.1f%%\n", k.ConversionRate)
			_, _ = fmt.Fprintf(w, "Revenue (30 days)\t%s\n", k.MonthlyRevenue)
			_, _ = fmt.Fprintf(w, "Revenue growth\t%s\n", k.Growth)
			_, _ = fmt.Fprintf(w, "Average order\t%s\n", k.AverageOrderValue)
			_, _ = fmt.Fprintf(w, "Active opportunities\t%d\n", k.ActiveOpportunities)
			_, _ = fmt.Fprintf(w, "Pipeline value\t%s\n", k.PipelineValue)
			return w.Flush()
		},
	}
}
