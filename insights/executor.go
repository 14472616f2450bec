// ABOUTME: Automation executor that applies an automated insight's remedy through the store port
// ABOUTME: Updates every attached record concurrently and reports per-record failures
package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/JFernandez0524/leadgen/models"
	"github.com/JFernandez0524/leadgen/store"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 4

// RecordFailure is one record update that did not go through.
type RecordFailure struct {
	Ref models.Ref
	Err error
}

func (f RecordFailure) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Collection models.Collection `json:"collection"`
		ID         string            `json:"id"`
		Error      string            `json:"error"`
	}{f.Ref.Collection, f.Ref.ID.String(), f.Err.Error()})
}

// PartialAutomationFailure reports a batch where some record updates failed.
type PartialAutomationFailure struct {
	RunID     string
	Kind      Kind
	Attempted int
	Failures  []RecordFailure
}

func (e *PartialAutomationFailure) Error() string {
	ids := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		ids = append(ids, f.Ref.ID.String())
	}
	return fmt.Sprintf("automation %s (%s): %d of %d updates failed: %s",
		e.RunID, e.Kind, len(e.Failures), e.Attempted, strings.Join(ids, ", "))
}

// Report is the outcome of one executor run.
type Report struct {
	RunID string `json:"run_id"`
	Kind  Kind   `json:"kind"`
	// Executed is false when the insight was declined without touching the store.
	Executed   bool            `json:"executed"`
	Attempted  int             `json:"attempted"`
	Failures   []RecordFailure `json:"failures,omitempty"`
	ExecutedAt time.Time       `json:"executed_at"`
}

func (r Report) Success() bool {
	return r.Executed && len(r.Failures) == 0
}

// Err returns a *PartialAutomationFailure when any record failed.
func (r Report) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	return &PartialAutomationFailure{RunID: r.RunID, Kind: r.Kind, Attempted: r.Attempted, Failures: r.Failures}
}

// AutomationRun converts the report into its audit log form.
func (r Report) AutomationRun() models.AutomationRun {
	return models.AutomationRun{
		RunID:      r.RunID,
		Kind:       string(r.Kind),
		Attempted:  r.Attempted,
		Failed:     len(r.Failures),
		Success:    r.Success(),
		ExecutedAt: r.ExecutedAt,
	}
}

// RunRecorder persists executed runs.
type RunRecorder interface {
	RecordRun(ctx context.Context, run models.AutomationRun) error
}

// remedy is the store write an automated kind performs on each record.
type remedy struct {
	collection models.Collection
	patch      func(stamp string) store.Patch
}

var remedies = map[Kind]remedy{
	KindOverduePayments: {
		collection: models.CollectionPayments,
		patch: func(stamp string) store.Patch {
			return store.Patch{AppendNote: "Payment reminder sent on " + stamp}
		},
	},
	KindQualifiedStaleLeads: {
		collection: models.CollectionLeads,
		patch: func(stamp string) store.Patch {
			contacted := models.LeadContacted
			return store.Patch{LeadStatus: &contacted, AppendNote: "Automated follow-up scheduled on " + stamp}
		},
	},
	KindUnscheduledQuotes: {
		collection: models.CollectionOpportunities,
		patch: func(stamp string) store.Patch {
			return store.Patch{AppendNote: "Scheduling reminder sent on " + stamp}
		},
	},
	KindOverdueAppointments: {
		collection: models.CollectionOpportunities,
		patch: func(stamp string) store.Patch {
			return store.Patch{AppendNote: "Reschedule reminder sent on " + stamp}
		},
	},
}

// Automatable reports whether the executor has a remedy for kind.
func Automatable(kind Kind) bool {
	_, ok := remedies[kind]
	return ok
}

type Executor struct {
	port        store.Port
	log         *zap.Logger
	now         func() time.Time
	concurrency int
	recorder    RunRecorder
}

type ExecutorOption func(*Executor)

func WithClock(now func() time.Time) ExecutorOption {
	return func(x *Executor) { x.now = now }
}

func WithConcurrency(n int) ExecutorOption {
	return func(x *Executor) {
		if n > 0 {
			x.concurrency = n
		}
	}
}

// WithRecorder stores every executed run in an audit log.
func WithRecorder(r RunRecorder) ExecutorOption {
	return func(x *Executor) { x.recorder = r }
}

func NewExecutor(port store.Port, log *zap.Logger, opts ...ExecutorOption) *Executor {
	if log == nil {
		log = zap.NewNop()
	}
	x := &Executor{
		port:        port,
		log:         log,
		now:         time.Now,
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Execute returns true only when the insight is automated and every record update succeeded.
func (x *Executor) Execute(ctx context.Context, in Insight) bool {
	return x.Run(ctx, in).Success()
}

// Run applies the insight's remedy to each attached record. Every record is attempted
// even when others fail; the report lists the failures.
func (x *Executor) Run(ctx context.Context, in Insight) Report {
	report := Report{Kind: in.Kind}
	if !in.Automated {
		return report
	}
	rem, ok := remedies[in.Kind]
	if !ok {
		x.log.Warn("no automation for insight kind", zap.String("kind", string(in.Kind)))
		return report
	}

	now := x.now().UTC()
	report.RunID = ulid.Make().String()
	report.Executed = true
	report.ExecutedAt = now
	report.Attempted = len(in.Data)
	patch := rem.patch(now.Format(time.RFC3339))

	log := x.log.With(zap.String("run_id", report.RunID), zap.String("kind", string(in.Kind)))
	log.Info("executing automation", zap.Int("records", len(in.Data)))

	errs := make([]error, len(in.Data))
	g := new(errgroup.Group)
	g.SetLimit(x.concurrency)
	for i, rec := range in.Data {
		g.Go(func() error {
			errs[i] = x.apply(ctx, rem.collection, rec, patch)
			return nil
		})
	}
	_ = g.Wait()

	for i, err := range errs {
		if err == nil {
			continue
		}
		ref := models.RefOf(in.Data[i])
		log.Error("automation update failed", zap.String("id", ref.ID.String()), zap.Error(err))
		report.Failures = append(report.Failures, RecordFailure{Ref: ref, Err: err})
	}

	if x.recorder != nil {
		if err := x.recorder.RecordRun(ctx, report.AutomationRun()); err != nil {
			log.Warn("failed to record automation run", zap.Error(err))
		}
	}
	return report
}

func (x *Executor) apply(ctx context.Context, collection models.Collection, rec models.Record, patch store.Patch) error {
	if rec.Collection() != collection {
		return fmt.Errorf("record %s belongs to %s, expected %s", rec.RecordID(), rec.Collection(), collection)
	}
	if rec.RecordID() == uuid.Nil {
		return fmt.Errorf("record in %s has no id", collection)
	}
	_, err := x.port.Update(ctx, collection, rec.RecordID(), patch)
	return err
}
