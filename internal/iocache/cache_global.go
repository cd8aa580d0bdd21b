package iocache

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/huangsam/starspin/internal/contract"
	"github.com/huangsam/starspin/schema"
)

// lightCurveTable is the name of the table for light curve caching.
const lightCurveTable = "starspin_lightcurve_cache"

// Global Manager instance for main logic.
var (
	Manager   = &CacheStoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// GetCacheDBFilePath returns the path to the SQLite DB file for light curve caching.
func GetCacheDBFilePath() string {
	return contract.GetCacheDBFilePath()
}

// GetResultDBFilePath returns the path to the SQLite DB file for result tracking.
func GetResultDBFilePath() string {
	return contract.GetResultDBFilePath()
}

// InitStores initializes the global manager with separate cache and result stores.
// cacheBackend can be empty to disable light curve caching.
// resultBackend can be empty to disable result tracking.
func InitStores(cacheBackend schema.DatabaseBackend, cacheConnStr string, resultBackend schema.DatabaseBackend, resultConnStr string) error {
	var initErr error

	initOnce.Do(func() {
		var err error

		var cacheStore contract.CacheStore
		if cacheBackend != "" {
			cacheStore, err = NewCacheStore(lightCurveTable, cacheBackend, cacheConnStr)
			if err != nil {
				initErr = fmt.Errorf("failed to initialize light curve caching: %w", err)
				return
			}
		}

		var resultStore contract.ResultStore
		if resultBackend != "" {
			resultStore, err = NewResultStore(resultBackend, resultConnStr)
			if err != nil {
				if cacheStore != nil {
					_ = cacheStore.Close()
				}
				initErr = fmt.Errorf("failed to initialize result store: %w", err)
				return
			}
		}

		Manager.Lock()
		defer Manager.Unlock()
		Manager.lightCurves = cacheStore
		Manager.results = resultStore
	})

	return initErr
}

// CloseStores should be called on application shutdown.
func CloseStores() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.lightCurves != nil {
			_ = Manager.lightCurves.Close()
		}
		if Manager.results != nil {
			_ = Manager.results.Close()
		}
	})
}

// ClearCache clears the light curve cache for the specified backend.
// For SQLite, it deletes the database file.
// For MySQL and PostgreSQL, it drops the table.
func ClearCache(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		return removeSQLiteFile(dbFilePath)
	case schema.MySQLBackend, schema.PostgreSQLBackend:
		return clearSQLTables(backend, connStr, lightCurveTable)
	case schema.NoneBackend, "":
		return nil
	default:
		return fmt.Errorf("unsupported cache backend for clearing: %s", backend)
	}
}

// ClearResults clears the result tables for the specified backend.
// For SQLite, it deletes the database file.
// For MySQL and PostgreSQL, it drops the result tables and the migration bookkeeping.
func ClearResults(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		return removeSQLiteFile(dbFilePath)
	case schema.MySQLBackend, schema.PostgreSQLBackend:
		// Children before parents
		return clearSQLTables(backend, connStr, skipsTable, resultsTable, runsTable, migrationsTable)
	case schema.NoneBackend, "":
		return nil
	default:
		return fmt.Errorf("unsupported result backend for clearing: %s", backend)
	}
}

// removeSQLiteFile removes the database file, ignoring a missing file.
func removeSQLiteFile(dbFilePath string) error {
	if dbFilePath == "" {
		return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
	}
	if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
	}
	return nil
}

// clearSQLTables connects to the SQL database and drops each table if it exists.
func clearSQLTables(backend schema.DatabaseBackend, connStr string, tables ...string) error {
	driverName, err := driverFor(backend)
	if err != nil {
		return err
	}
	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", backend, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", backend, err)
	}

	for _, table := range tables {
		query := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteTableName(table, backend))
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}
