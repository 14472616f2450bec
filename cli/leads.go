// ABOUTME: Lead CLI commands
// ABOUTME: Human-friendly commands for adding and listing leads
package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JFernandez0524/leadgen/models"
	"github.com/JFernandez0524/leadgen/store"
)

func newLeadsCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leads",
		Short: "Manage leads",
	}
	cmd.AddCommand(newLeadsAddCmd(o), newLeadsListCmd(o))
	return cmd
}

func newLeadsAddCmd(o *rootOptions) *cobra.Command {
	var lead models.Lead
	var status string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new lead",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if lead.FirstName == "" {
				return fmt.Errorf("--first-name is required")
			}
			if status != "" {
				s, err := models.ParseLeadStatus(status)
				if err != nil {
					return err
				}
				lead.Status = s
			}

			a, err := o.open()
			if err != nil {
				return err
			}
			ctx, cancel := o.timeoutContext(cmd)
			defer cancel()

			if err := a.backend.Create(ctx, &lead); err != nil {
				return fmt.Errorf("failed to create lead: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Lead created: %s (ID: %s)\n", lead.FullName(), lead.ID)
			if lead.Phone != "" {
				fmt.Fprintf(out, "  Phone: %s\n", lead.Phone)
			}
			if lead.Email != "" {
				fmt.Fprintf(out, "  Email: %s\n", lead.Email)
			}
			if lead.ServiceType != "" {
				fmt.Fprintf(out, "  Service: %s\n", lead.ServiceType)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&lead.FirstName, "first-name", "", "First name (required)")
	f.StringVar(&lead.LastName, "last-name", "", "Last name")
	f.StringVar(&lead.Email, "email", "", "Email address")
	f.StringVar(&lead.Phone, "phone", "", "Phone number")
	f.StringVar(&lead.ServiceType, "service", "", "Requested service type")
	f.StringVar(&lead.Source, "source", "", "Where the lead came from (call, web, referral)")
	f.BoolVar(&lead.IsQualified, "qualified", false, "Mark the lead as qualified")
	f.IntVar(&lead.QualificationScore, "score", 0, "Qualification score")
	f.StringVar(&status, "status", "", "Initial status (default: new)")
	f.StringVar(&lead.Notes, "notes", "", "Notes about the lead")
	return cmd
}

func newLeadsListCmd(o *rootOptions) *cobra.Command {
	var status string
	var qualified bool
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List leads, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter store.Filter
			if status != "" {
				s, err := models.ParseLeadStatus(status)
				if err != nil {
					return err
				}
				filter = append(filter, store.Eq("status", string(s)))
			}
			if cmd.Flags().Changed("qualified") {
				filter = append(filter, store.Eq("is_qualified", qualified))
			}

			a, err := o.open()
			if err != nil {
				return err
			}
			ctx, cancel := o.timeoutContext(cmd)
			defer cancel()

			records, err := a.backend.List(ctx, models.CollectionLeads, filter)
			if err != nil {
				return fmt.Errorf("failed to list leads: %w", err)
			}
			records = limitRecords(records, limit)

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No leads found")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "NAME\tPHONE\tSERVICE\tSTATUS\tQUALIFIED\tCREATED\tID")
			_, _ = fmt.Fprintln(w, "----\t-----\t-------\t------\t---------\t-------\t--")
			for _, rec := range records {
				l, ok := rec.(models.Lead)
				if !ok {
					continue
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					l.FullName(), dash(l.Phone), dash(l.ServiceType), l.Status,
					yesNo(l.IsQualified), l.CreatedAt.Format("2006-01-02"), l.ID)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (new, contacted, qualified, converted, lost)")
	cmd.Flags().BoolVar(&qualified, "qualified", false, "Filter by qualification")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum results")
	return cmd
}

func limitRecords(records []models.Record, limit int) []models.Record {
	if limit > 0 && len(records) > limit {
		return records[:limit]
	}
	return records
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
