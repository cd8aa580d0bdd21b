package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/starspin/internal/contract"
	"github.com/huangsam/starspin/internal/iocache"
	"github.com/huangsam/starspin/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cacheSetup loads minimal configuration needed for cache operations.
// This is used by commands that need cache access without full shared setup.
func cacheSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(viper.GetString("cache-backend"))
	connStr := viper.GetString("cache-db-connect")

	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// No result tracking for cache commands
	if err := iocache.InitStores(backend, connStr, schema.NoneBackend, ""); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr

	return nil
}

// cacheSetupWrapper wraps cacheSetup to provide PreRunE for cache commands.
func cacheSetupWrapper(_ *cobra.Command, _ []string) error {
	return cacheSetup()
}

// cacheCmd focused on light curve cache management.
//
// Note: Cache subcommands use minimal initialization (cacheSetup) instead of
// the full sharedSetup used by estimation commands. This avoids sample and
// engine validation for simple cache operations.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the light curve cache (avoids repeated archive downloads)",
	Long: `Manage the cache of retrieved light curves.

Starspin stores every light curve it retrieves, keyed by mission, sector, author and
target, so repeated runs over the same sample do not hit the archive again. Stars
without data are cached too. Failed retrievals are not.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status - Show cache statistics and connection info
  clear  - Remove all cached light curves

Examples:
  # Check cache status
  starspin cache status

  # Clear the cache after the archive reprocessed a sector
  starspin cache clear`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached light curves",
	Long: `Delete all cached light curves from the configured backend.

Use this when:
- The archive published a new data release
- Cache may be stale or corrupted
- Switching to a different fetch command

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the cache table

Examples:
  # Clear SQLite cache (default)
  starspin cache clear

  # Clear MySQL cache (set connection string via env variable)
  STARSPIN_CACHE_BACKEND=mysql STARSPIN_CACHE_DB_CONNECT="..." starspin cache clear`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearCache(cfg.CacheBackend, contract.GetCacheDBFilePath(), cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show detailed information about the light curve cache.

Displays:
- Backend type and connection status
- Total number of cached light curves
- Last and oldest cache entry timestamps
- Cache database size

Examples:
  # Check cache status
  starspin cache status`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetLightCurveStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(os.Stdout, status)
	},
}
