// ABOUTME: Opportunity database operations
// ABOUTME: Handles opportunity creation, lookup and filtered listing by stage
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

const opportunityColumns = `id, lead_id, title, description, estimated_value, stage, probability, service_date, service_address, created_at, updated_at`

func CreateOpportunity(ctx context.Context, q Querier, opp *models.Opportunity) error {
	if opp.Stage == "" {
		opp.Stage = models.StageNew
	}
	if err := opp.Validate(); err != nil {
		return err
	}
	if opp.ID == uuid.Nil {
		opp.ID = uuid.New()
	}
	now := time.Now().UTC()
	if opp.CreatedAt.IsZero() {
		opp.CreatedAt = now
	}
	opp.UpdatedAt = now

	_, err := q.ExecContext(ctx, `
		INSERT INTO opportunities (`+opportunityColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, opp.ID.String(), opp.LeadID.String(), opp.Title, opp.Description, int64(opp.EstimatedValue),
		string(opp.Stage), opp.Probability, nullableTime(opp.ServiceDate), opp.ServiceAddress, opp.CreatedAt, opp.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create opportunity: %w", err)
	}
	return nil
}

func GetOpportunity(ctx context.Context, q Querier, id uuid.UUID) (*models.Opportunity, error) {
	row := q.QueryRowContext(ctx, `SELECT `+opportunityColumns+` FROM opportunities WHERE id = ?`, id.String())
	opp, err := scanOpportunity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("opportunity %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return opp, nil
}

// FindOpportunities lists opportunities matching filter, newest first.
func FindOpportunities(ctx context.Context, q Querier, filter store.Filter) ([]models.Opportunity, error) {
	where, args, err := whereClause(models.CollectionOpportunities, filter)
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, `SELECT `+opportunityColumns+` FROM opportunities`+where+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var opps []models.Opportunity
	for rows.Next() {
		opp, err := scanOpportunity(rows)
		if err != nil {
			return nil, err
		}
		opps = append(opps, *opp)
	}
	return opps, rows.Err()
}

func updateOpportunity(ctx context.Context, q Querier, id uuid.UUID, patch store.Patch, now time.Time) (*models.Opportunity, error) {
	opp, err := GetOpportunity(ctx, q, id)
	if err != nil {
		return nil, err
	}
	opp.Description = store.JoinNote(models.CollectionOpportunities, opp.Description, patch.AppendNote)
	opp.UpdatedAt = now

	_, err = q.ExecContext(ctx, `UPDATE opportunities SET description = ?, updated_at = ? WHERE id = ?`,
		opp.Description, opp.UpdatedAt, id.String())
	if err != nil {
		return nil, err
	}
	return opp, nil
}

func scanOpportunity(s scanner) (*models.Opportunity, error) {
	var (
		o           models.Opportunity
		value       int64
		stage       string
		serviceDate sql.NullTime
		address     sql.NullString
	)
	err := s.Scan(&o.ID, &o.LeadID, &o.Title, &o.Description, &value, &stage, &o.Probability,
		&serviceDate, &address, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.EstimatedValue = models.Cents(value)
	o.ServiceAddress = address.String
	if serviceDate.Valid {
		d := serviceDate.Time
		o.ServiceDate = &d
	}

	o.Stage, err = models.ParseStage(stage)
	if err != nil {
		return nil, fmt.Errorf("opportunity %s: %w", o.ID, err)
	}
	return &o, nil
}
