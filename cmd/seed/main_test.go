// ABOUTME: Tests for the fixture seeder
// ABOUTME: Loads the demo fixtures into a temp database and checks the resulting insights
package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JFernandez0524/leadgen/db"
	"github.com/JFernandez0524/leadgen/insights"
	"github.com/JFernandez0524/leadgen/models"
)

var seedNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func TestLoadFixtures(t *testing.T) {
	fx, err := LoadFixtures(filepath.Join("testdata", "demo.yaml"))
	require.NoError(t, err)
	assert.Len(t, fx.Leads, 3)
	assert.Len(t, fx.Payments, 2)
	assert.Len(t, fx.Opportunities, 2)
	require.NotNil(t, fx.Payments[1].PaidDaysAgo)
	assert.Equal(t, 12, *fx.Payments[1].PaidDaysAgo)

	_, err = LoadFixtures(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read fixtures")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("leads: [oops"), 0644))
	_, err = LoadFixtures(bad)
	assert.ErrorContains(t, err, "failed to parse fixtures")
}

func TestSeedDemo(t *testing.T) {
	fx, err := LoadFixtures(filepath.Join("testdata", "demo.yaml"))
	require.NoError(t, err)

	database, err := db.OpenDatabase(filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	st := db.NewStore(database)
	defer func() { _ = st.Close() }()

	ctx := context.Background()
	require.NoError(t, Seed(ctx, st, fx, seedNow))

	leads, err := st.List(ctx, models.CollectionLeads, nil)
	require.NoError(t, err)
	assert.Len(t, leads, 3)

	found, err := insights.NewEngine(st, insights.DefaultThresholds()).Analyze(ctx, seedNow)
	require.NoError(t, err)
	for _, kind := range []insights.Kind{
		insights.KindOverduePayments,
		insights.KindQualifiedStaleLeads,
		insights.KindUnscheduledQuotes,
		insights.KindOverdueAppointments,
	} {
		_, ok := insights.Find(found, kind)
		assert.True(t, ok, "expected %s", kind)
	}
}

func TestSeedDryRunValidates(t *testing.T) {
	tests := []struct {
		name string
		fx   Fixtures
		want string
	}{
		{
			name: "missing key",
			fx:   Fixtures{Leads: []LeadFixture{{FirstName: "Dana"}}},
			want: "key and first_name are required",
		},
		{
			name: "duplicate key",
			fx:   Fixtures{Leads: []LeadFixture{{Key: "a", FirstName: "A"}, {Key: "a", FirstName: "B"}}},
			want: "duplicate key",
		},
		{
			name: "unknown lead",
			fx:   Fixtures{Payments: []PaymentFixture{{Lead: "ghost", Amount: "10"}}},
			want: `unknown lead "ghost"`,
		},
		{
			name: "completed without paid date",
			fx: Fixtures{
				Leads:    []LeadFixture{{Key: "a", FirstName: "A"}},
				Payments: []PaymentFixture{{Lead: "a", Amount: "10", Status: "completed"}},
			},
			want: models.ErrPaymentDateInvariant.Error(),
		},
		{
			name: "bad stage",
			fx: Fixtures{
				Leads:         []LeadFixture{{Key: "a", FirstName: "A"}},
				Opportunities: []OpportunityFixture{{Lead: "a", Title: "Job", Stage: "won"}},
			},
			want: models.ErrInvalidEnum.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &dryRun{counts: map[models.Collection]int{}}
			err := Seed(context.Background(), d, &tt.fx, seedNow)
			assert.ErrorContains(t, err, tt.want)
		})
	}

	fx, err := LoadFixtures(filepath.Join("testdata", "demo.yaml"))
	require.NoError(t, err)
	d := &dryRun{counts: map[models.Collection]int{}}
	require.NoError(t, Seed(context.Background(), d, fx, seedNow))
	assert.Equal(t, map[models.Collection]int{
		models.CollectionLeads:         3,
		models.CollectionPayments:      2,
		models.CollectionOpportunities: 2,
	}, d.counts)
}
