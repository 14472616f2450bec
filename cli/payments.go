// ABOUTME: Payment CLI commands
// ABOUTME: Records pending payments, completes them and lists them by status or lead
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

func newPaymentsCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payments",
		Short: "Manage payments",
	}
	cmd.AddCommand(newPaymentsAddCmd(o), newPaymentsCompleteCmd(o), newPaymentsListCmd(o))
	return cmd
}

func newPaymentsAddCmd(o *rootOptions) *cobra.Command {
	var leadID, opportunityID, amount, method, notes string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a pending payment for a lead",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lid, err := uuid.Parse(leadID)
			if err != nil {
				return fmt.Errorf("invalid --lead: %w", err)
			}
			cents, err := models.ParseCents(amount)
			if err != nil {
				return fmt.Errorf("invalid --amount: %w", err)
			}
			payment := &models.Payment{LeadID: lid, Amount: cents, PaymentMethod: method, Notes: notes}
			if opportunityID != "" {
				oid, err := uuid.Parse(opportunityID)
				if err != nil {
					return fmt.Errorf("invalid --opportunity: %w", err)
				}
				payment.OpportunityID = &oid
			}

			a, err := o.open()
			if err != nil {
				return err
			}
			ctx, cancel := o.timeoutContext(cmd)
			defer cancel()

			if err := a.backend.Create(ctx, payment); err != nil {
				return fmt.Errorf("failed to record payment: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Payment recorded: %s %s (ID: %s)\n", payment.Amount, payment.Status, payment.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&leadID, "lead", "", "Lead ID (required)")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount in dollars, e.g. 450.00 (required)")
	cmd.Flags().StringVar(&opportunityID, "opportunity", "", "Opportunity ID")
	cmd.Flags().StringVar(&method, "method", "", "Payment method")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes")
	_ = cmd.MarkFlagRequired("lead")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newPaymentsCompleteCmd(o *rootOptions) *cobra.Command {
	var paidAt, transactionID string

	cmd := &cobra.Command{
		Use:   "complete <payment-id>",
		Short: "Mark a pending payment as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid payment ID: %w", err)
			}
			when := o.now()
			if paidAt != "" {
				if when, err = handlers.ParseDate(paidAt); err != nil {
					return fmt.Errorf("invalid --paid-at: %w", err)
				}
			}

			a, err := o.open()
			if err != nil {
				return err
			}
			ctx, cancel := o.timeoutContext(cmd)
			defer cancel()

			p, err := a.backend.CompletePayment(ctx, id, when, transactionID)
			if err != nil {
				return fmt.Errorf("failed to complete payment: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Payment %s completed on %s\n", p.ID, p.PaymentDate.Format(time.DateOnly))
			return nil
		},
	}

	cmd.Flags().StringVar(&paidAt, "paid-at", "", "Payment date (RFC3339 or YYYY-MM-DD, default: now)")
	cmd.Flags().StringVar(&transactionID, "transaction", "", "Processor transaction ID")
	return cmd
}

func newPaymentsListCmd(o *rootOptions) *cobra.Command {
	var status, leadID string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List payments, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter store.Filter
			if status != "" {
				s, err := models.ParsePaymentStatus(status)
				if err != nil {
					return err
				}
				filter = append(filter, store.Eq("status", string(s)))
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

			records, err := a.backend.List(ctx, models.CollectionPayments, filter)
			if err != nil {
				return fmt.Errorf("failed to list payments: %w", err)
			}
			records = limitRecords(records, limit)

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No payments found")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "AMOUNT\tSTATUS\tMETHOD\tCREATED\tPAID\tID")
			_, _ = fmt.Fprintln(w, "------\t------\t------\t-------\t----\t--")
			for _, rec := range records {
				p, ok := rec.(models.Payment)
				if !ok {
					continue
				}
				paid := "-"
				if p.PaymentDate != nil {
					paid = p.PaymentDate.Format(time.DateOnly)
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					p.Amount, p.Status, dash(p.PaymentMethod), p.CreatedAt.Format(time.DateOnly), paid, p.ID)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (pending, completed, failed, refunded)")
	cmd.Flags().StringVar(&leadID, "lead", "", "Filter by lead ID")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum results")
	return cmd
}
