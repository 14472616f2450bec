// ABOUTME: Data models for the lead-generation back office
// ABOUTME: Defines Lead, Payment, Opportunity and the Record view shared by stores
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrPaymentDateInvariant = errors.New("payment date must be set exactly when status is completed")

type Lead struct {
	ID                 uuid.UUID  `json:"id"`
	FirstName          string     `json:"first_name"`
	LastName           string     `json:"last_name,omitempty"`
	Email              string     `json:"email,omitempty"`
	Phone              string     `json:"phone,omitempty"`
	ServiceType        string     `json:"service_type"`
	Source             string     `json:"source,omitempty"`
	IsQualified        bool       `json:"is_qualified"`
	QualificationScore int        `json:"qualification_score"`
	Status             LeadStatus `json:"status"`
	Notes              string     `json:"notes,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// FullName joins first and last name.
func (l Lead) FullName() string {
	return strings.TrimSpace(l.FirstName + " " + l.LastName)
}

type Payment struct {
	ID            uuid.UUID     `json:"id"`
	LeadID        uuid.UUID     `json:"lead_id"`
	OpportunityID *uuid.UUID    `json:"opportunity_id,omitempty"`
	Amount        Cents         `json:"amount"`
	Currency      string        `json:"currency"`
	Status        PaymentStatus `json:"status"`
	PaymentMethod string        `json:"payment_method,omitempty"`
	TransactionID string        `json:"transaction_id,omitempty"`
	PaymentDate   *time.Time    `json:"payment_date,omitempty"`
	Notes         string        `json:"notes,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Validate checks the amount and the completed/paymentDate invariant.
func (p Payment) Validate() error {
	if p.Amount < 0 {
		return fmt.Errorf("payment amount must not be negative: %s", p.Amount)
	}
	if _, err := ParsePaymentStatus(string(p.Status)); err != nil {
		return err
	}
	if (p.Status == PaymentCompleted) != (p.PaymentDate != nil) {
		return ErrPaymentDateInvariant
	}
	return nil
}

type Opportunity struct {
	ID             uuid.UUID  `json:"id"`
	LeadID         uuid.UUID  `json:"lead_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	EstimatedValue Cents      `json:"estimated_value"`
	Stage          Stage      `json:"stage"`
	Probability    int        `json:"probability"`
	ServiceDate    *time.Time `json:"service_date,omitempty"`
	ServiceAddress string     `json:"service_address,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Validate checks value, probability and stage.
func (o Opportunity) Validate() error {
	if o.Title == "" {
		return errors.New("opportunity title is required")
	}
	if o.EstimatedValue < 0 {
		return fmt.Errorf("estimated value must not be negative: %s", o.EstimatedValue)
	}
	if o.Probability < 0 || o.Probability > 100 {
		return fmt.Errorf("probability must be between 0 and 100, got %d", o.Probability)
	}
	_, err := ParseStage(string(o.Stage))
	return err
}

// Active reports whether the opportunity is still in the pipeline.
func (o Opportunity) Active() bool {
	return o.Stage != StageCompleted && o.Stage != StageCancelled
}

// AutomationRun is one recorded execution of an automated insight.
type AutomationRun struct {
	RunID      string    `json:"run_id"`
	Kind       string    `json:"kind"`
	Attempted  int       `json:"attempted"`
	Failed     int       `json:"failed"`
	Success    bool      `json:"success"`
	ExecutedAt time.Time `json:"executed_at"`
}
