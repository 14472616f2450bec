// ABOUTME: In-memory data access port used by the insights tests
// ABOUTME: Records every update attempt and can fail selected lists or records
package insights

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/JFernandez0524/leadgen/models"
	"github.com/JFernandez0524/leadgen/store"
)

var errUnavailable = errors.New("backend unavailable")

type updateCall struct {
	Collection models.Collection
	ID         uuid.UUID
	Patch      store.Patch
}

type fakePort struct {
	mu      sync.Mutex
	records map[models.Collection][]models.Record
	listErr map[models.Collection]error
	failIDs map[uuid.UUID]bool
	lists   int
	updates []updateCall
}

func newFakePort(s Snapshot) *fakePort {
	f := &fakePort{
		records: map[models.Collection][]models.Record{},
		listErr: map[models.Collection]error{},
		failIDs: map[uuid.UUID]bool{},
	}
	for _, l := range s.Leads {
		f.records[models.CollectionLeads] = append(f.records[models.CollectionLeads], l)
	}
	for _, p := range s.Payments {
		f.records[models.CollectionPayments] = append(f.records[models.CollectionPayments], p)
	}
	for _, o := range s.Opportunities {
		f.records[models.CollectionOpportunities] = append(f.records[models.CollectionOpportunities], o)
	}
	return f
}

func (f *fakePort) List(ctx context.Context, c models.Collection, filter store.Filter) ([]models.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if err := f.listErr[c]; err != nil {
		return nil, &store.DataAccessError{Op: "list", Collection: c, Err: err}
	}
	var out []models.Record
	for _, r := range f.records[c] {
		if filter.Matches(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakePort) Update(ctx context.Context, c models.Collection, id uuid.UUID, patch store.Patch) (models.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, updateCall{Collection: c, ID: id, Patch: patch})
	if f.failIDs[id] {
		return nil, &store.DataAccessError{Op: "update", Collection: c, ID: id, Err: errUnavailable}
	}
	for _, r := range f.records[c] {
		if r.RecordID() == id {
			return r, nil
		}
	}
	return nil, &store.DataAccessError{Op: "update", Collection: c, ID: id, Err: store.ErrNotFound}
}

func (f *fakePort) calls() []updateCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]updateCall(nil), f.updates...)
}

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func daysAgo(n int) time.Time {
	return testNow.Add(-time.Duration(n) * 24 * time.Hour)
}

func ptr[T any](v T) *T { return &v }

func pendingPayment(amount models.Cents, age int) models.Payment {
	return models.Payment{ID: uuid.New(), LeadID: uuid.New(), Amount: amount, Currency: "USD", Status: models.PaymentPending, CreatedAt: daysAgo(age)}
}

func completedPayment(amount models.Cents, paidDaysAgo int) models.Payment {
	return models.Payment{ID: uuid.New(), LeadID: uuid.New(), Amount: amount, Currency: "USD", Status: models.PaymentCompleted,
		CreatedAt: daysAgo(paidDaysAgo + 1), PaymentDate: ptr(daysAgo(paidDaysAgo))}
}

func lead(status models.LeadStatus, qualified bool, age int) models.Lead {
	return models.Lead{ID: uuid.New(), FirstName: "Lead", Status: status, IsQualified: qualified, CreatedAt: daysAgo(age)}
}

func opportunity(stage models.Stage, serviceDate *time.Time) models.Opportunity {
	return models.Opportunity{ID: uuid.New(), LeadID: uuid.New(), Title: "Job", Stage: stage, EstimatedValue: 25000, ServiceDate: serviceDate}
}
