// ABOUTME: Opportunity CLI commands
// ABOUTME: Adds job opportunities for leads and lists the pipeline by stage
package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/JFernandez0524/leadgen/handlers"
	"github.com/JFernandez0524/leadgen/models"
	"github.com/JFernandez0524/leadgen/store"
)

func newOpportunitiesCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "opportunities",
		Aliases: []string{"opps"},
		Short:   "Manage job opportunities",
	}
	cmd.AddCommand(newOpportunitiesAddCmd(o), newOpportunitiesListCmd(o))
	return cmd
}

func newOpportunitiesAddCmd(o *rootOptions) *cobra.Command {
	var leadID, value, stage, serviceDate string
	var opp models.Opportunity

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a job opportunity for a lead",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lid, err := uuid.Parse(leadID)
			if err != nil {
				return fmt.Errorf("invalid --lead: %w", err)
			}
			opp.LeadID = lid
			if value != "" {
				if opp.EstimatedValue, err = models.ParseCents(value); err != nil {
					return fmt.Errorf("invalid --value: %w", err)
				}
			}
			if stage != "" {
				if opp.Stage, err = models.ParseStage(stage); err != nil {
					return err
				}
			}
			if serviceDate != "" {
				d, err := handlers.ParseDate(serviceDate)
				if err != nil {
					return fmt.Errorf("invalid --service-date: %w", err)
				}
				opp.ServiceDate = &d
			}

			a, err := o.open()
			if err != nil {
				return err
			}
			ctx, cancel := o.timeoutContext(cmd)
			defer cancel()

			if err := a.backend.Create(ctx, &opp); err != nil {
				return fmt.Errorf("failed to create opportunity: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Opportunity created: %s [%s] %s (ID: %s)\n", opp.Title, opp.Stage, opp.EstimatedValue, opp.ID)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&leadID, "lead", "", "Lead ID (required)")
	f.StringVar(&opp.Title, "title", "", "Job title (required)")
	f.StringVar(&opp.Description, "description", "", "Job description")
	f.StringVar(&value, "value", "", "Estimated value in dollars")
	f.StringVar(&stage, "stage", "", "Stage (new, quoted, scheduled, in-progress, completed, cancelled)")
	f.IntVar(&opp.Probability, "probability", 0, "Win probability 0-100")
	f.StringVar(&serviceDate, "service-date", "", "Service date (RFC3339 or YYYY-MM-DD)")
	f.StringVar(&opp.ServiceAddress, "address", "", "Service address")
	_ = cmd.MarkFlagRequired("lead")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newOpportunitiesListCmd(o *rootOptions) *cobra.Command {
	var stage, leadID string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List opportunities, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter store.Filter
			if stage != "" {
				s, err := models.ParseStage(stage)
				if err != nil {
					return err
				}
				filter = append(filter, store.Eq("stage", string(s)))
			}
			if leadID != "" {
				lid, err := uuid.Parse(leadID)
				if err != nil {
					return fmt.Errorf("invalid --lead: %w", err)
				}
				filter = append(filter, store.Eq("lead_id", lid.String()))
			}

			a, err := o.open()
			if err != nil {
				return err
			}
			ctx, cancel := o.timeoutContext(cmd)
			defer cancel()

			records, err := a.backend.List(ctx, models.CollectionOpportunities, filter)
			if err != nil {
				return fmt.Errorf("failed to list opportunities: %w", err)
			}
			records = limitRecords(records, limit)

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No opportunities found")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "TITLE\tSTAGE\tVALUE\tSERVICE DATE\tID")
			_, _ = fmt.Fprintln(w, "-----\t-----\t-----\t------------\t--")
			for _, rec := range records {
				opp, ok := rec.(models.Opportunity)
				if !ok {
					continue
				}
				date := "-"
				if opp.ServiceDate != nil {
					date = opp.ServiceDate.Format(time.DateOnly)
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", opp.Title, opp.Stage, opp.EstimatedValue, date, opp.ID)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&stage, "stage", "", "Filter by stage")
	cmd.Flags().StringVar(&leadID, "lead", "", "Filter by lead ID")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum results")
	return cmd
}
