// ABOUTME: Seed utility that loads YAML fixtures of leads, payments and opportunities into SQLite
// ABOUTME: Ages records relative to now so demo databases always produce live insights
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/JFernandez0524/leadgen/db"
	"github.com/JFernandez0524/leadgen/models"
)

// Fixtures is the on-disk seed file. Payments and opportunities refer to leads by key.
type Fixtures struct {
	Leads         []LeadFixture        `yaml:"leads"`
	Payments      []PaymentFixture     `yaml:"payments"`
	Opportunities []OpportunityFixture `yaml:"opportunities"`
}

type LeadFixture struct {
	Key            string `yaml:"key"`
	FirstName      string `yaml:"first_name"`
	LastName       string `yaml:"last_name"`
	Email          string `yaml:"email"`
	Phone          string `yaml:"phone"`
	Service        string `yaml:"service"`
	Source         string `yaml:"source"`
	Qualified      bool   `yaml:"qualified"`
	Score          int    `yaml:"score"`
	Status         string `yaml:"status"`
	CreatedDaysAgo int    `yaml:"created_days_ago"`
}

type PaymentFixture struct {
	Lead           string `yaml:"lead"`
	Amount         string `yaml:"amount"`
	Status         string `yaml:"status"`
	Method         string `yaml:"method"`
	CreatedDaysAgo int    `yaml:"created_days_ago"`
	// PaidDaysAgo is required for completed payments.
	PaidDaysAgo *int `yaml:"paid_days_ago"`
}

type OpportunityFixture struct {
	Lead           string `yaml:"lead"`
	Title          string `yaml:"title"`
	Value          string `yaml:"value"`
	Stage          string `yaml:"stage"`
	Probability    int    `yaml:"probability"`
	ServiceInDays  *int   `yaml:"service_in_days"`
	Address        string `yaml:"address"`
	CreatedDaysAgo int    `yaml:"created_days_ago"`
}

type creator interface {
	Create(ctx context.Context, rec models.Record) error
}

// dryRun validates and counts records without writing them.
type dryRun struct{ counts map[models.Collection]int }

func (d *dryRun) Create(_ context.Context, rec models.Record) error {
	if v, ok := rec.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	d.counts[rec.Collection()]++
	return nil
}

func main() {
	dbPath := flag.String("db", "", "Path to database file (required)")
	file := flag.String("file", "", "Path to YAML fixtures (required)")
	dry := flag.Bool("dry-run", false, "Validate fixtures without writing")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.Sugar()
	defer func() { _ = log.Sync() }()

	if *file == "" || (*dbPath == "" && !*dry) {
		log.Fatal("Error: -file and -db flags are required")
	}

	fx, err := LoadFixtures(*file)
	if err != nil {
		log.Fatalf("Seed failed: %v", err)
	}

	ctx := context.Background()
	if *dry {
		d := &dryRun{counts: map[models.Collection]int{}}
		if err := Seed(ctx, d, fx, time.Now()); err != nil {
			log.Fatalf("Seed failed: %v", err)
		}
		for _, c := range models.Collections {
			log.Infof("[DRY RUN] would create %d %s", d.counts[c], c)
		}
		return
	}

	if err := os.MkdirAll(filepath.Dir(*dbPath), 0755); err != nil {
		log.Fatalf("failed to create database directory: %v", err)
	}
	database, err := db.OpenDatabase(*dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	st := db.NewStore(database)
	defer func() { _ = st.Close() }()

	if err := Seed(ctx, st, fx, time.Now()); err != nil {
		log.Fatalf("Seed failed: %v", err)
	}
	log.Infow("seed completed",
		"leads", len(fx.Leads),
		"payments", len(fx.Payments),
		"opportunities", len(fx.Opportunities))
}

// LoadFixtures reads and decodes a fixtures file.
func LoadFixtures(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures: %w", err)
	}
	var fx Fixtures
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}
	return &fx, nil
}

// Seed creates every fixture through c. Leads go first so references resolve.
func Seed(ctx context.Context, c creator, fx *Fixtures, now time.Time) error {
	daysAgo := func(n int) time.Time { return now.AddDate(0, 0, -n) }
	leads := make(map[string]*models.Lead, len(fx.Leads))

	for i, lf := range fx.Leads {
		if lf.Key == "" || lf.FirstName == "" {
			return fmt.Errorf("lead %d: key and first_name are required", i)
		}
		if _, dup := leads[lf.Key]; dup {
			return fmt.Errorf("lead %d: duplicate key %q", i, lf.Key)
		}
		lead := &models.Lead{
			FirstName:          lf.FirstName,
			LastName:           lf.LastName,
			Email:              lf.Email,
			Phone:              lf.Phone,
			ServiceType:        lf.Service,
			Source:             lf.Source,
			IsQualified:        lf.Qualified,
			QualificationScore: lf.Score,
			CreatedAt:          daysAgo(lf.CreatedDaysAgo),
		}
		if lf.Status != "" {
			s, err := models.ParseLeadStatus(lf.Status)
			if err != nil {
				return fmt.Errorf("lead %q: %w", lf.Key, err)
			}
			lead.Status = s
		}
		if err := c.Create(ctx, lead); err != nil {
			return fmt.Errorf("lead %q: %w", lf.Key, err)
		}
		leads[lf.Key] = lead
	}

	for i, pf := range fx.Payments {
		lead, ok := leads[pf.Lead]
		if !ok {
			return fmt.Errorf("payment %d: unknown lead %q", i, pf.Lead)
		}
		amount, err := models.ParseCents(pf.Amount)
		if err != nil {
			return fmt.Errorf("payment %d: %w", i, err)
		}
		p := &models.Payment{
			LeadID:        lead.ID,
			Amount:        amount,
			PaymentMethod: pf.Method,
			Status:        models.PaymentPending,
			CreatedAt:     daysAgo(pf.CreatedDaysAgo),
		}
		if pf.Status != "" {
			s, err := models.ParsePaymentStatus(pf.Status)
			if err != nil {
				return fmt.Errorf("payment %d: %w", i, err)
			}
			p.Status = s
		}
		if pf.PaidDaysAgo != nil {
			paid := daysAgo(*pf.PaidDaysAgo)
			p.PaymentDate = &paid
		}
		if err := c.Create(ctx, p); err != nil {
			return fmt.Errorf("payment %d: %w", i, err)
		}
	}

	for i, of := range fx.Opportunities {
		lead, ok := leads[of.Lead]
		if !ok {
			return fmt.Errorf("opportunity %d: unknown lead %q", i, of.Lead)
		}
		opp := &models.Opportunity{
			LeadID:         lead.ID,
			Title:          of.Title,
			Probability:    of.Probability,
			Stage:          models.StageNew,
			ServiceAddress: of.Address,
			CreatedAt:      daysAgo(of.CreatedDaysAgo),
		}
		if of.Value != "" {
			v, err := models.ParseCents(of.Value)
			if err != nil {
				return fmt.Errorf("opportunity %d: %w", i, err)
			}
			opp.EstimatedValue = v
		}
		if of.Stage != "" {
			s, err := models.ParseStage(of.Stage)
			if err != nil {
				return fmt.Errorf("opportunity %d: %w", i, err)
			}
			opp.Stage = s
		}
		if of.ServiceInDays != nil {
			d := now.AddDate(0, 0, *of.ServiceInDays)
			opp.ServiceDate = &d
		}
		if err := c.Create(ctx, opp); err != nil {
			return fmt.Errorf("opportunity %d: %w", i, err)
		}
	}
	return nil
}
