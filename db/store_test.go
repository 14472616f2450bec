// ABOUTME: Tests for the SQLite data access port and record CRUD
// ABOUTME: Covers filters, note appends, the lead status transition and payment completion
package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/JFernandez0524/leadgen/models"
	"github.com/JFernandez0524/leadgen/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedLead(t *testing.T, ctx context.Context, q Querier, status models.LeadStatus, qualified bool) *models.Lead {
	t.Helper()
	lead := &models.Lead{FirstName: "Dana", LastName: "Reyes", ServiceType: "junk removal", Status: status, IsQualified: qualified}
	require.NoError(t, CreateLead(ctx, q, lead))
	return lead
}

func TestCreateAndGetLead(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)

	created := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	lead := &models.Lead{FirstName: "Ana", Email: "ana@example.com", ServiceType: "cleanout", CreatedAt: created}
	require.NoError(t, CreateLead(ctx, database, lead))
	assert.NotEqual(t, uuid.Nil, lead.ID)
	assert.Equal(t, models.LeadNew, lead.Status)

	got, err := GetLead(ctx, database, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.FirstName)
	assert.Equal(t, "ana@example.com", got.Email)
	assert.True(t, created.Equal(got.CreatedAt))

	_, err = GetLead(ctx, database, uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateLeadRejectsUnknownStatus(t *testing.T) {
	database := setupTestDB(t)
	err := CreateLead(context.Background(), database, &models.Lead{FirstName: "X", Status: "archived"})
	assert.ErrorIs(t, err, models.ErrInvalidEnum)
}

func TestStoreListFilters(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	s := NewStore(database)

	seedLead(t, ctx, database, models.LeadNew, true)
	seedLead(t, ctx, database, models.LeadNew, false)
	seedLead(t, ctx, database, models.LeadConverted, true)

	all, err := s.List(ctx, models.CollectionLeads, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	qualifiedNew, err := s.List(ctx, models.CollectionLeads, store.Filter{
		store.Eq("status", models.LeadNew),
		store.Eq("is_qualified", true),
	})
	require.NoError(t, err)
	assert.Len(t, qualifiedNew, 1)

	some, err := s.List(ctx, models.CollectionLeads, store.Filter{store.In("status", "converted", "lost")})
	require.NoError(t, err)
	assert.Len(t, some, 1)

	none, err := s.List(ctx, models.CollectionLeads, store.Filter{store.In("status")})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStoreListRejectsUnknownField(t *testing.T) {
	s := NewStore(setupTestDB(t))

	_, err := s.List(context.Background(), models.CollectionPayments, store.Filter{store.Eq("amount", 5)})
	require.Error(t, err)

	var dae *store.DataAccessError
	require.True(t, errors.As(err, &dae))
	assert.Equal(t, "list", dae.Op)
	assert.ErrorIs(t, err, store.ErrUnsupportedField)
}

func TestStoreListRejectsCorruptEnum(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	lead := seedLead(t, ctx, database, models.LeadNew, false)

	_, err := database.Exec(`UPDATE leads SET status = 'archived' WHERE id = ?`, lead.ID.String())
	require.NoError(t, err)

	_, err = NewStore(database).List(ctx, models.CollectionLeads, nil)
	assert.ErrorIs(t, err, models.ErrInvalidEnum)
}

func TestStoreUpdateLeadTransition(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	s := NewStore(database)
	lead := seedLead(t, ctx, database, models.LeadNew, true)

	contacted := models.LeadContacted
	rec, err := s.Update(ctx, models.CollectionLeads, lead.ID, store.Patch{
		LeadStatus: &contacted,
		AppendNote: "Automated follow-up scheduled on 2026-03-01T00:00:00Z",
	})
	require.NoError(t, err)
	updated := rec.(models.Lead)
	assert.Equal(t, models.LeadContacted, updated.Status)
	assert.Contains(t, updated.Notes, "Automated follow-up")

	// contacted -> contacted is not the sanctioned transition
	_, err = s.Update(ctx, models.CollectionLeads, lead.ID, store.Patch{LeadStatus: &contacted})
	assert.ErrorIs(t, err, store.ErrIllegalTransition)

	lost := models.LeadLost
	_, err = s.Update(ctx, models.CollectionLeads, lead.ID, store.Patch{LeadStatus: &lost})
	assert.ErrorIs(t, err, store.ErrIllegalTransition)
}

func TestStoreUpdateAppendsNotes(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	s := NewStore(database)
	lead := seedLead(t, ctx, database, models.LeadNew, false)

	payment := &models.Payment{LeadID: lead.ID, Amount: 45000, Notes: "Deposit"}
	require.NoError(t, CreatePayment(ctx, database, payment))

	_, err := s.Update(ctx, models.CollectionPayments, payment.ID, store.Patch{AppendNote: "first"})
	require.NoError(t, err)
	rec, err := s.Update(ctx, models.CollectionPayments, payment.ID, store.Patch{AppendNote: "second"})
	require.NoError(t, err)
	assert.Equal(t, "Deposit\nfirst\nsecond", rec.(models.Payment).Notes)

	opp := &models.Opportunity{LeadID: lead.ID, Title: "Attic", Stage: models.StageQuoted}
	require.NoError(t, CreateOpportunity(ctx, database, opp))
	rec, err = s.Update(ctx, models.CollectionOpportunities, opp.ID, store.Patch{AppendNote: "Scheduling reminder"})
	require.NoError(t, err)
	assert.Equal(t, "Scheduling reminder", rec.(models.Opportunity).Description)
	rec, err = s.Update(ctx, models.CollectionOpportunities, opp.ID, store.Patch{AppendNote: "again"})
	require.NoError(t, err)
	assert.Equal(t, "Scheduling reminder - again", rec.(models.Opportunity).Description)

	got, err := GetOpportunity(ctx, database, opp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StageQuoted, got.Stage)
}

func TestStoreUpdateMissingRecord(t *testing.T) {
	s := NewStore(setupTestDB(t))
	id := uuid.New()

	_, err := s.Update(context.Background(), models.CollectionPayments, id, store.Patch{AppendNote: "x"})
	require.Error(t, err)

	var dae *store.DataAccessError
	require.True(t, errors.As(err, &dae))
	assert.Equal(t, id, dae.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStoreUpdateRejectsStatusOnPayments(t *testing.T) {
	s := NewStore(setupTestDB(t))
	contacted := models.LeadContacted

	_, err := s.Update(context.Background(), models.CollectionPayments, uuid.New(), store.Patch{LeadStatus: &contacted})
	assert.ErrorIs(t, err, store.ErrUnsupportedPatch)
}

func TestCompletePayment(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	lead := seedLead(t, ctx, database, models.LeadConverted, true)

	payment := &models.Payment{LeadID: lead.ID, Amount: 30000}
	require.NoError(t, CreatePayment(ctx, database, payment))
	assert.Equal(t, models.PaymentPending, payment.Status)
	assert.Equal(t, "USD", payment.Currency)

	paidAt := time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)
	done, err := CompletePayment(ctx, database, payment.ID, paidAt, "txn_123")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, done.Status)
	require.NotNil(t, done.PaymentDate)

	got, err := GetPayment(ctx, database, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, got.Status)
	require.NotNil(t, got.PaymentDate)
	assert.True(t, paidAt.Equal(*got.PaymentDate))
	assert.Equal(t, "txn_123", got.TransactionID)

	_, err = CompletePayment(ctx, database, payment.ID, paidAt, "")
	assert.ErrorIs(t, err, ErrPaymentNotPending)
}

func TestCreatePaymentEnforcesDateInvariant(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	lead := seedLead(t, ctx, database, models.LeadNew, false)

	err := CreatePayment(ctx, database, &models.Payment{LeadID: lead.ID, Amount: 100, Status: models.PaymentCompleted})
	assert.ErrorIs(t, err, models.ErrPaymentDateInvariant)
}

func TestFindOpportunitiesByStage(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	lead := seedLead(t, ctx, database, models.LeadQualified, true)

	when := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	for _, stage := range []models.Stage{models.StageQuoted, models.StageScheduled, models.StageCompleted} {
		opp := &models.Opportunity{LeadID: lead.ID, Title: string(stage), Stage: stage, EstimatedValue: 10000}
		if stage == models.StageScheduled {
			opp.ServiceDate = &when
		}
		require.NoError(t, CreateOpportunity(ctx, database, opp))
	}

	scheduled, err := FindOpportunities(ctx, database, store.Filter{store.Eq("stage", models.StageScheduled)})
	require.NoError(t, err)
	require.Len(t, scheduled, 1)
	require.NotNil(t, scheduled[0].ServiceDate)
	assert.True(t, when.Equal(*scheduled[0].ServiceDate))

	open, err := FindOpportunities(ctx, database, store.Filter{store.In("stage", "quoted", "scheduled")})
	require.NoError(t, err)
	assert.Len(t, open, 2)
}

func TestAutomationRunLog(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)

	older := models.AutomationRun{RunID: "01HZX0000000000000000000A1", Kind: "overdue_payments", Attempted: 2, Success: true, ExecutedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	newer := models.AutomationRun{RunID: "01HZX0000000000000000000B2", Kind: "unscheduled_quotes", Attempted: 3, Failed: 1, ExecutedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, RecordAutomationRun(ctx, database, older))
	require.NoError(t, RecordAutomationRun(ctx, database, newer))

	runs, err := ListAutomationRuns(ctx, database, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, newer.RunID, runs[0].RunID)
	assert.Equal(t, 1, runs[0].Failed)
	assert.False(t, runs[0].Success)

	assert.Error(t, RecordAutomationRun(ctx, database, models.AutomationRun{Kind: "x"}))
}
