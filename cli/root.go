// ABOUTME: Root cobra command, global flags and the shared application wiring
// ABOUTME: Loads config, builds the zap logger and opens the SQLite or Charm KV backend on demand
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/JFernandez0524/leadgen/charm"
	"github.com/JFernandez0524/leadgen/config"
	"github.com/JFernandez0524/leadgen/db"
	"github.com/JFernandez0524/leadgen/insights"
	"github.com/JFernandez0524/leadgen/store"
)

// app holds everything a command needs after the backend is open.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	backend  store.Backend
	engine   *insights.Engine
	executor *insights.Executor
}

type rootOptions struct {
	dbPath     string
	configFile string
	backend    string
	debug      bool
	version    string

	// now is swapped in tests.
	now func() time.Time

	cfg *config.Config
	log *zap.Logger
	app *app
}

// NewRootCmd builds the leadgen command tree.
func NewRootCmd(version string) *cobra.Command {
	o := &rootOptions{version: version, now: time.Now}

	root := &cobra.Command{
		Use:   "leadgen",
		Short: "Business insights for a home-services lead-generation back office",
		Long: `leadgen analyzes leads, payments and job opportunities, reports prioritized
business insights and runs the safe automated remedies (payment reminders,
lead follow-ups, scheduling reminders).

It can run as a CLI, an MCP server, a web dashboard or a terminal UI.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.init()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return o.close()
		},
	}

	root.PersistentFlags().StringVar(&o.dbPath, "db-path", "", "Database path (default: $XDG_DATA_HOME/leadgen/leadgen.db)")
	root.PersistentFlags().StringVar(&o.configFile, "config", "", "Config file (default: $XDG_CONFIG_HOME/leadgen/config.yaml)")
	root.PersistentFlags().StringVar(&o.backend, "backend", "", "Storage backend: sqlite or charm")
	root.PersistentFlags().BoolVar(&o.debug, "debug", false, "Enable debug logging")

	root.AddCommand(
		newLeadsCmd(o),
		newPaymentsCmd(o),
		newOpportunitiesCmd(o),
		newInsightsCmd(o),
		newKPICmd(o),
		newVizCmd(o),
		newWebCmd(o),
		newMCPCmd(o),
		newTUICmd(o),
		newChatCmd(o),
		newSyncCmd(o),
		newVersionCmd(o),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute(version string) int {
	if err := NewRootCmd(version).Execute(); err != nil {
		return 1
	}
	return 0
}

// init loads configuration and builds the logger. The backend is opened lazily.
func (o *rootOptions) init() error {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return err
	}
	if o.dbPath != "" {
		cfg.DBPath = o.dbPath
	}
	if o.backend != "" {
		cfg.Backend = o.backend
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	o.cfg = cfg

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if o.debug {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	o.log, err = zc.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// open returns the shared app, opening the configured backend on first use.
func (o *rootOptions) open() (*app, error) {
	if o.app != nil {
		return o.app, nil
	}

	backend, err := o.openBackend()
	if err != nil {
		return nil, err
	}
	o.log.Debug("backend opened", zap.String("backend", o.cfg.Backend), zap.String("db_path", o.cfg.DBPath))

	engine := insights.NewEngine(backend, o.cfg.Thresholds)
	executor := insights.NewExecutor(backend, o.log,
		insights.WithClock(o.now),
		insights.WithRecorder(backend))

	o.app = &app{
		cfg:      o.cfg,
		log:      o.log,
		backend:  backend,
		engine:   engine,
		executor: executor,
	}
	return o.app, nil
}

func (o *rootOptions) openBackend() (store.Backend, error) {
	switch o.cfg.Backend {
	case config.BackendCharm:
		client, err := charm.NewClient(o.cfg.Charm.WithDefaults())
		if err != nil {
			return nil, fmt.Errorf("failed to open charm backend: %w", err)
		}
		return charm.NewStore(client), nil
	default:
		if err := os.MkdirAll(filepath.Dir(o.cfg.DBPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		database, err := db.OpenDatabase(o.cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		return db.NewStore(database), nil
	}
}

func (o *rootOptions) close() error {
	if o.log != nil {
		_ = o.log.Sync()
	}
	if o.app == nil {
		return nil
	}
	err := o.app.backend.Close()
	o.app = nil
	return err
}

// timeoutContext bounds a command's store work by request_timeout.
func (o *rootOptions) timeoutContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, o.cfg.RequestTimeout)
}

func newVersionCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "leadgen version %s\n", o.version)
		},
	}
}
