// ABOUTME: Payment database operations
// ABOUTME: Handles payment recording, completion and filtered listing
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/JFernandez0524/leadgen/models"
	"github.com/JFernandez0524/leadgen/store"
)

var ErrPaymentNotPending = errors.New("payment is not pending")

const paymentColumns = `id, lead_id, opportunity_id, amount, currency, status, payment_method, transaction_id, payment_date, notes, created_at, updated_at`

// CreatePayment inserts a payment after checking the completed/payment date invariant.
func CreatePayment(ctx context.Context, q Querier, payment *models.Payment) error {
	if payment.Status == "" {
		payment.Status = models.PaymentPending
	}
	if payment.Currency == "" {
		payment.Currency = "USD"
	}
	if err := payment.Validate(); err != nil {
		return err
	}
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	now := time.Now().UTC()
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = now
	}
	payment.UpdatedAt = now

	_, err := q.ExecContext(ctx, `
		INSERT INTO payments (`+paymentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, payment.ID.String(), payment.LeadID.String(), nullableUUID(payment.OpportunityID), int64(payment.Amount),
		payment.Currency, string(payment.Status), payment.PaymentMethod, payment.TransactionID,
		nullableTime(payment.PaymentDate), payment.Notes, payment.CreatedAt, payment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func GetPayment(ctx context.Context, q Querier, id uuid.UUID) (*models.Payment, error) {
	row := q.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = ?`, id.String())
	payment, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("payment %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// FindPayments lists payments matching filter, newest first.
func FindPayments(ctx context.Context, q Querier, filter store.Filter) ([]models.Payment, error) {
	where, args, err := whereClause(models.CollectionPayments, filter)
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, `SELECT `+paymentColumns+` FROM payments`+where+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *payment)
	}
	return payments, rows.Err()
}

// CompletePayment moves a pending payment to completed and stamps its payment date.
func CompletePayment(ctx context.Context, db *sql.DB, id uuid.UUID, paidAt time.Time, transactionID string) (*models.Payment, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	payment, err := GetPayment(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if payment.Status != models.PaymentPending {
		return nil, fmt.Errorf("%w: %s is %s", ErrPaymentNotPending, id, payment.Status)
	}

	paidAt = paidAt.UTC()
	payment.Status = models.PaymentCompleted
	payment.PaymentDate = &paidAt
	if transactionID != "" {
		payment.TransactionID = transactionID
	}
	payment.UpdatedAt = time.Now().UTC()
	if err := payment.Validate(); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE payments SET status = ?, payment_date = ?, transaction_id = ?, updated_at = ? WHERE id = ?
	`, string(payment.Status), paidAt, payment.TransactionID, payment.UpdatedAt, id.String())
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return payment, nil
}

func updatePayment(ctx context.Context, q Querier, id uuid.UUID, patch store.Patch, now time.Time) (*models.Payment, error) {
	payment, err := GetPayment(ctx, q, id)
	if err != nil {
		return nil, err
	}
	payment.Notes = store.JoinNote(models.CollectionPayments, payment.Notes, patch.AppendNote)
	payment.UpdatedAt = now

	_, err = q.ExecContext(ctx, `UPDATE payments SET notes = ?, updated_at = ? WHERE id = ?`,
		payment.Notes, payment.UpdatedAt, id.String())
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func scanPayment(s scanner) (*models.Payment, error) {
	var (
		p                    models.Payment
		amount               int64
		oppID, method, txnID sql.NullString
		status               string
		paymentDate          sql.NullTime
	)
	err := s.Scan(&p.ID, &p.LeadID, &oppID, &amount, &p.Currency, &status, &method, &txnID,
		&paymentDate, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Amount = models.Cents(amount)
	p.PaymentMethod = method.String
	p.TransactionID = txnID.String
	if oppID.Valid && oppID.String != "" {
		oid, err := uuid.Parse(oppID.String)
		if err == nil {
			p.OpportunityID = &oid
		}
	}
	if paymentDate.Valid {
		d := paymentDate.Time
		p.PaymentDate = &d
	}

	p.Status, err = models.ParsePaymentStatus(status)
	if err != nil {
		return nil, fmt.Errorf("payment %s: %w", p.ID, err)
	}
	return &p, nil
}

func nullableUUID(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func nullableTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
