// ABOUTME: Payment MCP tool handlers
// ABOUTME: Implements record_payment, complete_payment and list_payments tools
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/JFernandez0524/leadgen/models"
	"github.com/JFernandez0524/leadgen/store"
)

type PaymentHandlers struct {
	backend store.Backend
	now     func() time.Time
}

func NewPaymentHandlers(backend store.Backend) *PaymentHandlers {
	return &PaymentHandlers{backend: backend, now: time.Now}
}

type RecordPaymentInput struct {
	LeadID        string `json:"lead_id" jsonschema:"Lead the payment belongs to (required)"`
	Amount        string `json:"amount" jsonschema:"Amount in dollars, e.g. 450.00 (required)"`
	OpportunityID string `json:"opportunity_id,omitempty" jsonschema:"Opportunity the payment is for"`
	Method        string `json:"method,omitempty" jsonschema:"Payment method, e.g. card or cash"`
	Notes         string `json:"notes,omitempty" jsonschema:"Notes about the payment"`
}

type PaymentOutput struct {
	ID            string `json:"id"`
	LeadID        string `json:"lead_id"`
	OpportunityID string `json:"opportunity_id,omitempty"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	Status        string `json:"status"`
	Method        string `json:"method,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
	PaymentDate   string `json:"payment_date,omitempty"`
	Notes         string `json:"notes,omitempty"`
	CreatedAt     string `json:"created_at"`
}

func (h *PaymentHandlers) RecordPayment(ctx context.Context, request *mcp.CallToolRequest, input RecordPaymentInput) (*mcp.CallToolResult, PaymentOutput, error) {
	leadID, err := uuid.Parse(input.LeadID)
	if err != nil {
		return nil, PaymentOutput{}, fmt.Errorf("invalid lead_id: %w", err)
	}
	amount, err := models.ParseCents(input.Amount)
	if err != nil {
		return nil, PaymentOutput{}, fmt.Errorf("invalid amount: %w", err)
	}

	payment := &models.Payment{
		LeadID:        leadID,
		Amount:        amount,
		PaymentMethod: input.Method,
		Notes:         input.Notes,
	}
	if input.OpportunityID != "" {
		oppID, err := uuid.Parse(input.OpportunityID)
		if err != nil {
			return nil, PaymentOutput{}, fmt.Errorf("invalid opportunity_id: %w", err)
		}
		payment.OpportunityID = &oppID
	}

	if err := h.backend.Create(ctx, payment); err != nil {
		return nil, PaymentOutput{}, fmt.Errorf("failed to record payment: %w", err)
	}
	return nil, paymentToOutput(*payment), nil
}

type CompletePaymentInput struct {
	ID            string `json:"id" jsonschema:"Payment ID (required)"`
	TransactionID string `json:"transaction_id,omitempty" jsonschema:"Processor transaction ID"`
	PaidAt        string `json:"paid_at,omitempty" jsonschema:"When the payment cleared (RFC3339, defaults to now)"`
}

func (h *PaymentHandlers) CompletePayment(ctx context.Context, request *mcp.CallToolRequest, input CompletePaymentInput) (*mcp.CallToolResult, PaymentOutput, error) {
	id, err := uuid.Parse(input.ID)
	if err != nil {
		return nil, PaymentOutput{}, fmt.Errorf("invalid id: %w", err)
	}

	paidAt := h.now()
	if input.PaidAt != "" {
		paidAt, err = time.Parse(time.RFC3339, input.PaidAt)
		if err != nil {
			return nil, PaymentOutput{}, fmt.Errorf("invalid paid_at format (use RFC3339): %w", err)
		}
	}

	payment, err := h.backend.CompletePayment(ctx, id, paidAt, input.TransactionID)
	if err != nil {
		return nil, PaymentOutput{}, fmt.Errorf("failed to complete payment: %w", err)
	}
	return nil, paymentToOutput(*payment), nil
}

type ListPaymentsInput struct {
	Status string `json:"status,omitempty" jsonschema:"Filter by status (pending, completed, failed, refunded)"`
	LeadID string `json:"lead_id,omitempty" jsonschema:"Filter by lead ID"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 50)"`
}

type ListPaymentsOutput struct {
	Payments []PaymentOutput `json:"payments"`
}

func (h *PaymentHandlers) ListPayments(ctx context.Context, request *mcp.CallToolRequest, input ListPaymentsInput) (*mcp.CallToolResult, ListPaymentsOutput, error) {
	var filter store.Filter
	if input.Status != "" {
		status, err := models.ParsePaymentStatus(input.Status)
		if err != nil {
			return nil, ListPaymentsOutput{}, err
		}
		filter = append(filter, store.Eq("status", status))
	}
	if input.LeadID != "" {
		leadID, err := uuid.Parse(input.LeadID)
		if err != nil {
			return nil, ListPaymentsOutput{}, fmt.Errorf("invalid lead_id: %w", err)
		}
		filter = append(filter, store.Eq("lead_id", leadID))
	}

	records, err := h.backend.List(ctx, models.CollectionPayments, filter)
	if err != nil {
		return nil, ListPaymentsOutput{}, fmt.Errorf("failed to list payments: %w", err)
	}

	out := ListPaymentsOutput{Payments: []PaymentOutput{}}
	for _, r := range limitRecords(records, input.Limit) {
		out.Payments = append(out.Payments, paymentToOutput(r.(models.Payment)))
	}
	return nil, out, nil
}

func paymentToOutput(p models.Payment) PaymentOutput {
	out := PaymentOutput{
		ID:            p.ID.String(),
		LeadID:        p.LeadID.String(),
		Amount:        p.Amount.String(),
		Currency:      p.Currency,
		Status:        string(p.Status),
		Method:        p.PaymentMethod,
		TransactionID: p.TransactionID,
		Notes:         p.Notes,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
	}
	if p.OpportunityID != nil {
		out.OpportunityID = p.OpportunityID.String()
	}
	if p.PaymentDate != nil {
		out.PaymentDate = p.PaymentDate.Format(time.RFC3339)
	}
	return out
}
