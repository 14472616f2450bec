// ABOUTME: Insight engine that snapshots the store and runs every rule against it
// ABOUTME: Fetches the three collections concurrently and fails the whole analysis on any fetch error
package insights

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/JFernandez0524/leadgen/models"
	"github.com/JFernandez0524/leadgen/store"
	"golang.org/x/sync/errgroup"
)

// ErrInsightsUnavailable wraps every analysis failure. An empty result never means a failed fetch.
var ErrInsightsUnavailable = errors.New("unable to compute business insights")

type Engine struct {
	port       store.Port
	thresholds Thresholds
}

// NewEngine panics if the thresholds are invalid.
func NewEngine(port store.Port, thresholds Thresholds) *Engine {
	thresholds.MustValidate()
	return &Engine{port: port, thresholds: thresholds}
}

func (e *Engine) Thresholds() Thresholds {
	return e.thresholds
}

// Snapshot fetches all three collections once. No rule runs until every fetch has returned.
func (e *Engine) Snapshot(ctx context.Context) (Snapshot, error) {
	var (
		leads    []models.Record
		payments []models.Record
		opps     []models.Record
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		leads, err = e.port.List(gctx, models.CollectionLeads, nil)
		return err
	})
	g.Go(func() error {
		var err error
		payments, err = e.port.List(gctx, models.CollectionPayments, nil)
		return err
	})
	g.Go(func() error {
		var err error
		opps, err = e.port.List(gctx, models.CollectionOpportunities, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrInsightsUnavailable, err)
	}

	s, err := snapshotFrom(leads, payments, opps)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrInsightsUnavailable, err)
	}
	return s, nil
}

func snapshotFrom(leads, payments, opps []models.Record) (Snapshot, error) {
	var s Snapshot
	for _, r := range leads {
		l, ok := r.(models.Lead)
		if !ok {
			return Snapshot{}, fmt.Errorf("unexpected %T in leads", r)
		}
		s.Leads = append(s.Leads, l)
	}
	for _, r := range payments {
		p, ok := r.(models.Payment)
		if !ok {
			return Snapshot{}, fmt.Errorf("unexpected %T in payments", r)
		}
		s.Payments = append(s.Payments, p)
	}
	for _, r := range opps {
		o, ok := r.(models.Opportunity)
		if !ok {
			return Snapshot{}, fmt.Errorf("unexpected %T in opportunities", r)
		}
		s.Opportunities = append(s.Opportunities, o)
	}
	return s, nil
}

// Analyze snapshots the store and returns every insight, most urgent first.
func (e *Engine) Analyze(ctx context.Context, now time.Time) ([]Insight, error) {
	s, err := e.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return Evaluate(s, now, e.thresholds), nil
}

// Evaluate runs the rules in order and stable-sorts the result by priority.
func Evaluate(s Snapshot, now time.Time, th Thresholds) []Insight {
	out := []Insight{}
	for _, rule := range Rules {
		out = append(out, rule(s, now, th)...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority.Rank() > out[j].Priority.Rank()
	})
	return out
}
