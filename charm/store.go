// ABOUTME: Charm KV implementation of the data access port
// ABOUTME: Stores records as JSON under <collection>/<id> keys so they sync across devices

package charm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"
	"github.com/JFernandez0524/leadgen/models"
	"github.com/JFernandez0524/leadgen/store"
)

const runsPrefix = "automation_runs/"

// Store serves store.Backend from a charm KV client.
type Store struct {
	client *Client
	now    func() time.Time
	// writes serializes read-modify-write updates.
	writes sync.Mutex
}

var _ store.Backend = (*Store)(nil)

func NewStore(c *Client) *Store {
	return &Store{client: c, now: func() time.Time { return time.Now().UTC() }}
}

func (s *Store) Client() *Client {
	return s.client
}

func (s *Store) Close() error {
	return s.client.Close()
}

func recordKey(collection models.Collection, id uuid.UUID) []byte {
	return []byte(string(collection) + "/" + id.String())
}

func (s *Store) List(ctx context.Context, collection models.Collection, filter store.Filter) ([]models.Record, error) {
	if err := filter.Validate(collection); err != nil {
		return nil, store.Wrap("list", collection, uuid.Nil, err)
	}

	keys, err := s.client.KeysWithPrefix([]byte(string(collection) + "/"))
	if err != nil {
		return nil, store.Wrap("list", collection, uuid.Nil, err)
	}

	var records []models.Record
	for _, k := range keys {
		if err := ctx.Err(); err != nil {
			return nil, store.Wrap("list", collection, uuid.Nil, err)
		}
		data, err := s.client.Get(k)
		if err != nil {
			return nil, store.Wrap("list", collection, uuid.Nil, fmt.Errorf("read %s: %w", k, err))
		}
		rec, err := decode(collection, data)
		if err != nil {
			return nil, store.Wrap("list", collection, uuid.Nil, fmt.Errorf("decode %s: %w", k, err))
		}
		if filter.Matches(rec) {
			records = append(records, rec)
		}
	}

	// Newest first, matching the SQLite backend.
	sort.SliceStable(records, func(i, j int) bool {
		return createdAt(records[i]).After(createdAt(records[j]))
	})
	return records, nil
}

func (s *Store) Update(ctx context.Context, collection models.Collection, id uuid.UUID, patch store.Patch) (models.Record, error) {
	if err := patch.Validate(collection); err != nil {
		return nil, store.Wrap("update", collection, id, err)
	}

	s.writes.Lock()
	defer s.writes.Unlock()

	rec, err := s.get(collection, id)
	if err != nil {
		return nil, store.Wrap("update", collection, id, err)
	}

	now := s.now()
	switch r := rec.(type) {
	case models.Lead:
		if err := store.CheckTransition(r.Status, patch); err != nil {
			return nil, store.Wrap("update", collection, id, err)
		}
		if patch.LeadStatus != nil {
			r.Status = *patch.LeadStatus
		}
		r.Notes = store.JoinNote(collection, r.Notes, patch.AppendNote)
		r.UpdatedAt = now
		rec = r
	case models.Payment:
		r.Notes = store.JoinNote(collection, r.Notes, patch.AppendNote)
		r.UpdatedAt = now
		rec = r
	case models.Opportunity:
		r.Description = store.JoinNote(collection, r.Description, patch.AppendNote)
		r.UpdatedAt = now
		rec = r
	}

	if err := s.put(rec); err != nil {
		return nil, store.Wrap("update", collection, id, err)
	}
	return rec, nil
}

func (s *Store) Create(ctx context.Context, rec models.Record) error {
	now := s.now()
	var err error
	switch r := rec.(type) {
	case *models.Lead:
		if r.FirstName == "" {
			err = errors.New("lead first name is required")
			break
		}
		if r.Status == "" {
			r.Status = models.LeadNew
		}
		if _, err = models.ParseLeadStatus(string(r.Status)); err != nil {
			break
		}
		stamp(&r.ID, &r.CreatedAt, &r.UpdatedAt, now)
		err = s.put(*r)
	case *models.Payment:
		if r.Status == "" {
			r.Status = models.PaymentPending
		}
		if r.Currency == "" {
			r.Currency = "USD"
		}
		if err = r.Validate(); err != nil {
			break
		}
		stamp(&r.ID, &r.CreatedAt, &r.UpdatedAt, now)
		err = s.put(*r)
	case *models.Opportunity:
		if r.Stage == "" {
			r.Stage = models.StageNew
		}
		if err = r.Validate(); err != nil {
			break
		}
		stamp(&r.ID, &r.CreatedAt, &r.UpdatedAt, now)
		err = s.put(*r)
	default:
		err = fmt.Errorf("cannot create %T", rec)
	}
	return store.Wrap("create", rec.Collection(), uuid.Nil, err)
}

func stamp(id *uuid.UUID, created, updated *time.Time, now time.Time) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
	if created.IsZero() {
		*created = now
	}
	*updated = now
}

// CompletePayment moves a pending payment to completed and stamps its payment date.
func (s *Store) CompletePayment(ctx context.Context, id uuid.UUID, paidAt time.Time, transactionID string) (*models.Payment, error) {
	s.writes.Lock()
	defer s.writes.Unlock()

	rec, err := s.get(models.CollectionPayments, id)
	if err != nil {
		return nil, store.Wrap("complete", models.CollectionPayments, id, err)
	}
	p := rec.(models.Payment)
	if p.Status != models.PaymentPending {
		return nil, store.Wrap("complete", models.CollectionPayments, id, fmt.Errorf("payment is %s, not pending", p.Status))
	}

	paidAt = paidAt.UTC()
	p.Status = models.PaymentCompleted
	p.PaymentDate = &paidAt
	if transactionID != "" {
		p.TransactionID = transactionID
	}
	p.UpdatedAt = s.now()
	if err := p.Validate(); err != nil {
		return nil, store.Wrap("complete", models.CollectionPayments, id, err)
	}
	if err := s.put(p); err != nil {
		return nil, store.Wrap("complete", models.CollectionPayments, id, err)
	}
	return &p, nil
}

func (s *Store) RecordRun(ctx context.Context, run models.AutomationRun) error {
	if run.RunID == "" {
		return errors.New("automation run id is required")
	}
	data, err := json.Marshal(run)
	if err != nil {
		return err
	}
	return s.client.Set([]byte(runsPrefix+run.RunID), data)
}

// ListRuns returns the most recent runs first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]models.AutomationRun, error) {
	if limit <= 0 {
		limit = 20
	}
	keys, err := s.client.KeysWithPrefix([]byte(runsPrefix))
	if err != nil {
		return nil, err
	}

	runs := make([]models.AutomationRun, 0, len(keys))
	for _, k := range keys {
		data, err := s.client.Get(k)
		if err != nil {
			return nil, err
		}
		var run models.AutomationRun
		if err := json.Unmarshal(data, &run); err != nil {
			return nil, fmt.Errorf("decode %s: %w", k, err)
		}
		runs = append(runs, run)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].ExecutedAt.After(runs[j].ExecutedAt)
	})
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (s *Store) get(collection models.Collection, id uuid.UUID) (models.Record, error) {
	data, err := s.client.Get(recordKey(collection, id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%s %s: %w", collection, id, store.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return decode(collection, data)
}

func (s *Store) put(rec models.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.client.Set(recordKey(rec.Collection(), rec.RecordID()), data)
}

// decode unmarshals a record and rejects enum values outside the closed sets.
func decode(collection models.Collection, data []byte) (models.Record, error) {
	switch collection {
	case models.CollectionLeads:
		var l models.Lead
		if err := json.Unmarshal(data, &l); err != nil {
			return nil, err
		}
		if _, err := models.ParseLeadStatus(string(l.Status)); err != nil {
			return nil, err
		}
		return l, nil
	case models.CollectionPayments:
		var p models.Payment
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		if _, err := models.ParsePaymentStatus(string(p.Status)); err != nil {
			return nil, err
		}
		return p, nil
	case models.CollectionOpportunities:
		var o models.Opportunity
		if err := json.Unmarshal(data, &o); err != nil {
			return nil, err
		}
		if _, err := models.ParseStage(string(o.Stage)); err != nil {
			return nil, err
		}
		return o, nil
	}
	return nil, fmt.Errorf("unknown collection: %s", collection)
}

func createdAt(r models.Record) time.Time {
	switch v := r.(type) {
	case models.Lead:
		return v.CreatedAt
	case models.Payment:
		return v.CreatedAt
	case models.Opportunity:
		return v.CreatedAt
	}
	return time.Time{}
}
