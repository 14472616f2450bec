// ABOUTME: Lead database operations
// ABOUTME: Handles lead creation, lookup and filtered listing
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

const leadColumns = `id, first_name, last_name, email, phone, service_type, source, is_qualified, qualification_score, status, notes, created_at, updated_at`

// CreateLead inserts a lead. ID and CreatedAt are assigned when unset.
func CreateLead(ctx context.Context, q Querier, lead *models.Lead) error {
	if lead.FirstName == "" {
		return errors.New("lead first name is required")
	}
	if lead.Status == "" {
		lead.Status = models.LeadNew
	}
	if _, err := models.ParseLeadStatus(string(lead.Status)); err != nil {
		return err
	}
	if lead.ID == uuid.Nil {
		lead.ID = uuid.New()
	}
	now := time.Now().UTC()
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = now
	}
	lead.UpdatedAt = now

	_, err := q.ExecContext(ctx, `
		INSERT INTO leads (`+leadColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, lead.ID.String(), lead.FirstName, lead.LastName, lead.Email, lead.Phone, lead.ServiceType, lead.Source,
		lead.IsQualified, lead.QualificationScore, string(lead.Status), lead.Notes, lead.CreatedAt, lead.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}
	return nil
}

func GetLead(ctx context.Context, q Querier, id uuid.UUID) (*models.Lead, error) {
	row := q.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = ?`, id.String())
	lead, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("lead %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return lead, nil
}

// FindLeads lists leads matching filter, newest first.
func FindLeads(ctx context.Context, q Querier, filter store.Filter) ([]models.Lead, error) {
	where, args, err := whereClause(models.CollectionLeads, filter)
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, `SELECT `+leadColumns+` FROM leads`+where+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []models.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *lead)
	}
	return leads, rows.Err()
}

func updateLead(ctx context.Context, q Querier, id uuid.UUID, patch store.Patch, now time.Time) (*models.Lead, error) {
	lead, err := GetLead(ctx, q, id)
	if err != nil {
		return nil, err
	}
	if err := store.CheckTransition(lead.Status, patch); err != nil {
		return nil, err
	}
	if patch.LeadStatus != nil {
		lead.Status = *patch.LeadStatus
	}
	lead.Notes = store.JoinNote(models.CollectionLeads, lead.Notes, patch.AppendNote)
	lead.UpdatedAt = now

	_, err = q.ExecContext(ctx, `
		UPDATE leads SET status = ?, notes = ?, updated_at = ? WHERE id = ?
	`, string(lead.Status), lead.Notes, lead.UpdatedAt, id.String())
	if err != nil {
		return nil, err
	}
	return lead, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLead(s scanner) (*models.Lead, error) {
	var (
		lead                        models.Lead
		lastName, email, phone, src sql.NullString
		status                      string
	)
	err := s.Scan(&lead.ID, &lead.FirstName, &lastName, &email, &phone, &lead.ServiceType, &src,
		&lead.IsQualified, &lead.QualificationScore, &status, &lead.Notes, &lead.CreatedAt, &lead.UpdatedAt)
	if err != nil {
		return nil, err
	}
	lead.LastName = lastName.String
	lead.Email = email.String
	lead.Phone = phone.String
	lead.Source = src.String

	lead.Status, err = models.ParseLeadStatus(status)
	if err != nil {
		return nil, fmt.Errorf("lead %s: %w", lead.ID, err)
	}
	return &lead, nil
}
