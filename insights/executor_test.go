// ABOUTME: Tests for the automation executor
// ABOUTME: Verifies kind routing, declined insights, partial failures and repeated execution
package insights

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/JFernandez0524/leadgen/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func fixedClock() time.Time { return testNow }

func newTestExecutor(port *fakePort, opts ...ExecutorOption) *Executor {
	return NewExecutor(port, zap.NewNop(), append([]ExecutorOption{WithClock(fixedClock)}, opts...)...)
}

func overdueSnapshot() Snapshot {
	return Snapshot{Payments: []models.Payment{
		pendingPayment(15000, 10),
		pendingPayment(15000, 10),
		pendingPayment(15000, 10),
	}}
}

func TestExecutePaymentReminders(t *testing.T) {
	s := overdueSnapshot()
	port := newFakePort(s)
	out, err := NewEngine(port, DefaultThresholds()).Analyze(context.Background(), testNow)
	require.NoError(t, err)
	in, ok := Find(out, KindOverduePayments)
	require.True(t, ok)

	ok = newTestExecutor(port).Execute(context.Background(), in)
	assert.True(t, ok)

	calls := port.calls()
	require.Len(t, calls, 3)
	seen := map[string]bool{}
	for _, c := range calls {
		assert.Equal(t, models.CollectionPayments, c.Collection)
		assert.Contains(t, c.Patch.AppendNote, "Payment reminder sent on 2026-03-15")
		assert.Nil(t, c.Patch.LeadStatus)
		seen[c.ID.String()] = true
	}
	for _, p := range s.Payments {
		assert.True(t, seen[p.ID.String()], "payment %s not updated", p.ID)
	}
}

func TestExecuteLeadFollowUpAdvancesStatus(t *testing.T) {
	s := Snapshot{Leads: []models.Lead{lead(models.LeadNew, true, 5), lead(models.LeadNew, true, 6)}}
	port := newFakePort(s)
	in, ok := Find(Evaluate(s, testNow, DefaultThresholds()), KindQualifiedStaleLeads)
	require.True(t, ok)

	report := newTestExecutor(port).Run(context.Background(), in)
	require.True(t, report.Success())
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 2, report.Attempted)

	for _, c := range port.calls() {
		assert.Equal(t, models.CollectionLeads, c.Collection)
		require.NotNil(t, c.Patch.LeadStatus)
		assert.Equal(t, models.LeadContacted, *c.Patch.LeadStatus)
		assert.Contains(t, c.Patch.AppendNote, "Automated follow-up scheduled on")
	}
}

func TestExecuteSchedulingAndRescheduleReminders(t *testing.T) {
	past := daysAgo(1)
	s := Snapshot{Opportunities: []models.Opportunity{
		opportunity(models.StageQuoted, nil),
		opportunity(models.StageScheduled, &past),
	}}
	port := newFakePort(s)
	out := Evaluate(s, testNow, DefaultThresholds())
	x := newTestExecutor(port)

	quotes, _ := Find(out, KindUnscheduledQuotes)
	require.True(t, x.Execute(context.Background(), quotes))
	overdue, _ := Find(out, KindOverdueAppointments)
	require.True(t, x.Execute(context.Background(), overdue))

	calls := port.calls()
	require.Len(t, calls, 2)
	assert.Contains(t, calls[0].Patch.AppendNote, "Scheduling reminder sent on")
	assert.Contains(t, calls[1].Patch.AppendNote, "Reschedule reminder sent on")
}

func TestExecuteDeclinesNonAutomated(t *testing.T) {
	s := Snapshot{Leads: []models.Lead{lead(models.LeadNew, false, 5)}}
	port := newFakePort(s)
	in, ok := Find(Evaluate(s, testNow, DefaultThresholds()), KindUnqualifiedStaleLeads)
	require.True(t, ok)

	report := newTestExecutor(port).Run(context.Background(), in)
	assert.False(t, report.Success())
	assert.False(t, report.Executed)
	assert.Empty(t, report.RunID)
	assert.Empty(t, port.calls())
	assert.NoError(t, report.Err())
}

func TestExecuteIgnoresTitleText(t *testing.T) {
	port := newFakePort(overdueSnapshot())
	in := Insight{
		Kind:      KindRevenueDecline,
		Type:      TypeAlert,
		Title:     "3 Overdue Payments",
		Automated: true,
		Data:      []models.Record{overdueSnapshot().Payments[0]},
	}
	assert.False(t, newTestExecutor(port).Execute(context.Background(), in))
	assert.Empty(t, port.calls())
}

func TestExecutePartialFailureAttemptsEveryRecord(t *testing.T) {
	s := overdueSnapshot()
	port := newFakePort(s)
	port.failIDs[s.Payments[1].ID] = true
	in, _ := Find(Evaluate(s, testNow, DefaultThresholds()), KindOverduePayments)

	core, logs := observer.New(zap.ErrorLevel)
	x := NewExecutor(port, zap.New(core), WithClock(fixedClock), WithConcurrency(2))

	report := x.Run(context.Background(), in)
	assert.False(t, report.Success())
	assert.Len(t, port.calls(), 3)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, s.Payments[1].ID, report.Failures[0].Ref.ID)

	var partial *PartialAutomationFailure
	require.True(t, errors.As(report.Err(), &partial))
	assert.Equal(t, report.RunID, partial.RunID)
	assert.Equal(t, 3, partial.Attempted)
	assert.ErrorIs(t, partial.Failures[0].Err, errUnavailable)

	assert.Equal(t, 1, logs.FilterMessage("automation update failed").Len())

	body, err := json.Marshal(report)
	require.NoError(t, err)
	assert.Contains(t, string(body), s.Payments[1].ID.String())
}

func TestExecuteTwiceAppendsTwice(t *testing.T) {
	s := overdueSnapshot()
	port := newFakePort(s)
	in, _ := Find(Evaluate(s, testNow, DefaultThresholds()), KindOverduePayments)
	x := newTestExecutor(port)

	first := x.Run(context.Background(), in)
	second := x.Run(context.Background(), in)
	require.True(t, first.Success())
	require.True(t, second.Success())
	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Len(t, port.calls(), 6)
}

func TestExecuteRejectsRecordFromWrongCollection(t *testing.T) {
	port := newFakePort(Snapshot{})
	in := Insight{
		Kind:      KindOverduePayments,
		Automated: true,
		Data:      []models.Record{lead(models.LeadNew, true, 10)},
	}
	report := newTestExecutor(port).Run(context.Background(), in)
	assert.False(t, report.Success())
	assert.Len(t, report.Failures, 1)
	assert.Empty(t, port.calls())
}

type memoryRecorder struct {
	mu   sync.Mutex
	runs []models.AutomationRun
}

func (m *memoryRecorder) RecordRun(_ context.Context, run models.AutomationRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
	return nil
}

func TestExecutorRecordsRuns(t *testing.T) {
	s := overdueSnapshot()
	port := newFakePort(s)
	port.failIDs[s.Payments[0].ID] = true
	in, _ := Find(Evaluate(s, testNow, DefaultThresholds()), KindOverduePayments)
	rec := &memoryRecorder{}

	report := newTestExecutor(port, WithRecorder(rec)).Run(context.Background(), in)

	require.Len(t, rec.runs, 1)
	run := rec.runs[0]
	assert.Equal(t, report.RunID, run.RunID)
	assert.Equal(t, string(KindOverduePayments), run.Kind)
	assert.Equal(t, 3, run.Attempted)
	assert.Equal(t, 1, run.Failed)
	assert.False(t, run.Success)
	assert.True(t, testNow.Equal(run.ExecutedAt))
}

func TestAutomatable(t *testing.T) {
	for _, k := range Kinds {
		want := k == KindOverduePayments || k == KindQualifiedStaleLeads || k == KindUnscheduledQuotes || k == KindOverdueAppointments
		assert.Equal(t, want, Automatable(k), k)
	}
}
