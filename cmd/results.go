package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/starspin/core"
	"github.com/huangsam/starspin/internal/contract"
	"github.com/huangsam/starspin/internal/iocache"
	"github.com/huangsam/starspin/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// resultBackendFromConfig reads and validates the result store settings.
func resultBackendFromConfig() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	backendStr := viper.GetString("result-backend")
	connStr := viper.GetString("result-db-connect")

	// Handle empty backend as NoneBackend
	backend := schema.NoneBackend
	if backendStr != "" {
		backend = schema.DatabaseBackend(backendStr)
	}

	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// resultsSetup loads minimal configuration needed for result store operations.
func resultsSetup() error {
	backend, connStr, err := resultBackendFromConfig()
	if err != nil {
		return err
	}

	// No light curve caching for result commands
	if err := iocache.InitStores(schema.NoneBackend, "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize result store: %w", err)
	}

	cfg.ResultBackend = backend
	cfg.ResultDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")

	return nil
}

// resultsSetupWrapper wraps resultsSetup to provide PreRunE for result commands.
func resultsSetupWrapper(_ *cobra.Command, _ []string) error {
	return resultsSetup()
}

// resultsMigrateSetup loads configuration for migrations without opening the
// store, so tables are left for the migrations to create.
func resultsMigrateSetup() error {
	backend, connStr, err := resultBackendFromConfig()
	if err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetResultDBFilePath()
	}

	cfg.ResultBackend = backend
	cfg.ResultDBConnect = connStr

	return nil
}

// resultsMigrateSetupWrapper wraps resultsMigrateSetup to provide PreRunE for migrate command.
func resultsMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return resultsMigrateSetup()
}

// resultsCmd focused on run history management.
var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Manage tracked batch runs and exports",
	Long: `Manage the history of batch runs.

When --result-backend is set, every run of "starspin run" records:
- Run metadata (id, start and end time, configuration, counts)
- One row per processed star with both estimates and the reconciled period
- One row per skipped star with its reason

Rows are written as each star finishes, so an interrupted run keeps what it did.

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, default)

Subcommands:
  status  - Show tracking statistics
  export  - Export data to Parquet for analytics
  inspect - Render an inspection batch from the latest run
  clear   - Remove all tracking data
  migrate - Run database schema migrations

Examples:
  # Check tracking status
  starspin results status --result-backend sqlite

  # Export for analysis in pandas/DuckDB
  starspin results export --result-backend sqlite --output-file periods`,
}

// resultsClearCmd clears the run history.
var resultsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all tracked runs, results and skips",
	Long: `Delete all stored runs together with their results and skip records.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  # Export before clearing
  starspin results export --result-backend sqlite --output-file backup
  starspin results clear --result-backend sqlite`,
	PreRunE: resultsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearResults(cfg.ResultBackend, contract.GetResultDBFilePath(), cfg.ResultDBConnect); err != nil {
			contract.LogFatal("Failed to clear results", err)
		}
		fmt.Println("Results cleared successfully.")
	},
}

// resultsStatusCmd shows run history status.
var resultsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display tracking statistics and connection details",
	Long: `Show detailed information about the tracked run history.

Displays:
- Backend type and connection status
- Total runs, star results and skipped stars stored
- Last and oldest run start times
- Database table sizes

Examples:
  starspin results status --result-backend sqlite`,
	PreRunE: resultsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetResultStore()
		if store == nil {
			contract.LogFatal("Failed to get result status", fmt.Errorf("result tracking is disabled. Set --result-backend to enable it"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get result status", err)
		}
		iocache.PrintResultStatus(os.Stdout, status)
	},
}

// resultsExportCmd exports run history to Parquet files.
var resultsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export tracked runs to Parquet for analytics",
	Long: `Export all stored runs, results and skips to Parquet files.

Requires: --output-file parameter

Examples:
  starspin results export --result-backend sqlite --output-file periods
  duckdb -c "SELECT flag, count(*) FROM read_parquet('periods.results.parquet') GROUP BY flag"`,
	PreRunE: resultsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteResultsExport(cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export results", err)
		}
	},
}

// resultsInspectCmd renders an inspection batch from the latest run.
var resultsInspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Render fold plots of corrected stars plus a random Match control group",
	Long: `Draw an inspection batch from the latest tracked run and render each star.

The batch holds every Harmonic_Corrected and Subharmonic_Corrected star plus up to
--match-sample Match stars drawn with --seed as a control group. Each identifier
appears once. Light curves are fetched again through the configured provider and
folded at the stored final period and at half of it, whatever the variability.

Plots go to the artifact backend as <id>_<flag>_fold.png. The printed table lists
where each plot went, or why it could not be drawn.

Examples:
  starspin results inspect --result-backend sqlite --data-dir lightcurves
  starspin results inspect --result-backend sqlite --match-sample 30 --seed 7 -o csv`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		matchSample := viper.GetInt("match-sample")
		seed := viper.GetInt64("seed")
		if err := core.ExecuteInspect(rootCtx, cfg, cacheManager, matchSample, seed); err != nil {
			contract.LogFatal("Cannot inspect results", err)
		}
	},
}

// resultsMigrateCmd runs database migrations for the result store.
var resultsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the result store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  starspin results migrate --result-backend postgresql

  # Roll back all migrations
  starspin results migrate --result-backend postgresql --target-version 0`,
	PreRunE: resultsMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateResults(cfg.ResultBackend, cfg.ResultDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
