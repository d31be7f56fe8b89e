package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/I2Cprogramacion/SEI-sub000/internal/config"
	"github.com/I2Cprogramacion/SEI-sub000/internal/logging"
	"github.com/I2Cprogramacion/SEI-sub000/internal/store"
	_ "github.com/I2Cprogramacion/SEI-sub000/internal/store/backends"
)

var rootFlags struct {
	envFile     string
	dbKind      string
	databaseURL string
	dbFile      string
	logLevel    string
}

// appConfig is the loaded configuration; current holds the backend
// configuration for one invocation.
var (
	appConfig *config.Config
	current   *store.Holder
)

var rootCmd = &cobra.Command{
	Use:   "seictl",
	Short: "Administer the researcher registry database",
	Long: `seictl initializes and migrates the registry schema, exports catalog
reports, and inspects researcher records from the command line.

The backend is selected with DB_KIND (postgresql, vercelPostgres, sqlite)
and its connection settings, or DATABASE_URL.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.envFile, "env-file", ".env", "dotenv file to load if present")
	pf.StringVar(&rootFlags.dbKind, "db-kind", "", "backend kind (overrides DB_KIND)")
	pf.StringVar(&rootFlags.databaseURL, "database-url", "", "connection string (overrides DATABASE_URL)")
	pf.StringVar(&rootFlags.dbFile, "db-file", "", "sqlite database file (implies --db-kind sqlite)")
	pf.StringVar(&rootFlags.logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
}

// setup loads configuration and resolves the backend settings. Logs go to
// stderr so command output can be piped.
func setup(cmd *cobra.Command, _ []string) error {
	if rootFlags.envFile != "" {
		if err := godotenv.Load(rootFlags.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", rootFlags.envFile, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if rootFlags.logLevel != "" {
		cfg.Logging.Level = rootFlags.logLevel
	}
	logging.SetupWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)

	if rootFlags.dbKind != "" {
		cfg.Database.Kind = rootFlags.dbKind
	}
	if rootFlags.databaseURL != "" {
		cfg.Database.URL = rootFlags.databaseURL
	}

	backend, err := cfg.Database.Backend()
	if err != nil {
		return err
	}
	appConfig = cfg
	current = store.NewHolder(backend)

	if rootFlags.dbFile != "" {
		current.Update(func(c store.Config) store.Config {
			c.Kind = store.KindSQLite
			c.Filename = rootFlags.dbFile
			return c
		})
	}
	return nil
}

// withStore opens the current backend, runs fn and disconnects.
func withStore(ctx context.Context, fn func(store.Store) error) error {
	st, err := store.Open(current.Current())
	if err != nil {
		return err
	}
	defer func() { _ = st.Disconnect(context.WithoutCancel(ctx)) }()
	return fn(st)
}
