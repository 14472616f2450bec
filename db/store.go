// ABOUTME: SQLite implementation of the data access port
// ABOUTME: Translates filters to SQL and applies note/status patches inside a transaction
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/JFernandez0524/leadgen/models"
	"github.com/JFernandez0524/leadgen/store"
)

// Store serves store.Port from a SQLite database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ store.Backend = (*Store)(nil)

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// DB exposes the underlying handle for the CRUD helpers.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Create(ctx context.Context, rec models.Record) error {
	var err error
	switch r := rec.(type) {
	case *models.Lead:
		err = CreateLead(ctx, s.db, r)
	case *models.Payment:
		err = CreatePayment(ctx, s.db, r)
	case *models.Opportunity:
		err = CreateOpportunity(ctx, s.db, r)
	default:
		err = fmt.Errorf("cannot create %T", rec)
	}
	return store.Wrap("create", rec.Collection(), uuid.Nil, err)
}

func (s *Store) CompletePayment(ctx context.Context, id uuid.UUID, paidAt time.Time, transactionID string) (*models.Payment, error) {
	p, err := CompletePayment(ctx, s.db, id, paidAt, transactionID)
	if err != nil {
		return nil, store.Wrap("complete", models.CollectionPayments, id, err)
	}
	return p, nil
}

func (s *Store) RecordRun(ctx context.Context, run models.AutomationRun) error {
	return RecordAutomationRun(ctx, s.db, run)
}

func (s *Store) ListRuns(ctx context.Context, limit int) ([]models.AutomationRun, error) {
	return ListAutomationRuns(ctx, s.db, limit)
}

func (s *Store) List(ctx context.Context, collection models.Collection, filter store.Filter) ([]models.Record, error) {
	var records []models.Record
	switch collection {
	case models.CollectionLeads:
		leads, err := FindLeads(ctx, s.db, filter)
		if err != nil {
			return nil, store.Wrap("list", collection, uuid.Nil, err)
		}
		for _, l := range leads {
			records = append(records, l)
		}
	case models.CollectionPayments:
		payments, err := FindPayments(ctx, s.db, filter)
		if err != nil {
			return nil, store.Wrap("list", collection, uuid.Nil, err)
		}
		for _, p := range payments {
			records = append(records, p)
		}
	case models.CollectionOpportunities:
		opps, err := FindOpportunities(ctx, s.db, filter)
		if err != nil {
			return nil, store.Wrap("list", collection, uuid.Nil, err)
		}
		for _, o := range opps {
			records = append(records, o)
		}
	default:
		return nil, store.Wrap("list", collection, uuid.Nil, fmt.Errorf("unknown collection: %s", collection))
	}
	return records, nil
}

func (s *Store) Update(ctx context.Context, collection models.Collection, id uuid.UUID, patch store.Patch) (models.Record, error) {
	if err := patch.Validate(collection); err != nil {
		return nil, store.Wrap("update", collection, id, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, store.Wrap("update", collection, id, err)
	}
	defer func() { _ = tx.Rollback() }()

	now := s.now()
	var rec models.Record
	switch collection {
	case models.CollectionLeads:
		var lead *models.Lead
		lead, err = updateLead(ctx, tx, id, patch, now)
		if lead != nil {
			rec = *lead
		}
	case models.CollectionPayments:
		var payment *models.Payment
		payment, err = updatePayment(ctx, tx, id, patch, now)
		if payment != nil {
			rec = *payment
		}
	case models.CollectionOpportunities:
		var opp *models.Opportunity
		opp, err = updateOpportunity(ctx, tx, id, patch, now)
		if opp != nil {
			rec = *opp
		}
	default:
		err = fmt.Errorf("unknown collection: %s", collection)
	}
	if err != nil {
		return nil, store.Wrap("update", collection, id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, store.Wrap("update", collection, id, err)
	}
	return rec, nil
}

// whereClause renders a validated filter. Field names are whitelisted column names.
func whereClause(collection models.Collection, filter store.Filter) (string, []any, error) {
	if err := filter.Validate(collection); err != nil {
		return "", nil, err
	}
	if len(filter) == 0 {
		return "", nil, nil
	}

	var parts []string
	var args []any
	for _, c := range filter {
		switch c.Op {
		case store.OpEq:
			parts = append(parts, c.Field+" = ?")
			args = append(args, sqlValue(c.Value))
		case store.OpIn:
			values := c.Value.([]any)
			if len(values) == 0 {
				parts = append(parts, "1 = 0")
				continue
			}
			placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")
			parts = append(parts, c.Field+" IN ("+placeholders+")")
			for _, v := range values {
				args = append(args, sqlValue(v))
			}
		}
	}
	return " WHERE " + strings.Join(parts, " AND "), args, nil
}

func sqlValue(v any) any {
	switch x := v.(type) {
	case uuid.UUID:
		return x.String()
	case models.LeadStatus:
		return string(x)
	case models.PaymentStatus:
		return string(x)
	case models.Stage:
		return string(x)
	}
	return v
}
