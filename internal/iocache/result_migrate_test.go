package iocache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/starspin/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateResults_NoneBackend(t *testing.T) {
	err := MigrateResults(schema.NoneBackend, "", -1)
	assert.ErrorContains(t, err, "migrations are not supported for NoneBackend")
}

func TestMigrateResults_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate.db")

	require.NoError(t, MigrateResults(schema.SQLiteBackend, dbPath, -1))
	assert.FileExists(t, dbPath)

	// Already at the latest version
	assert.NoError(t, MigrateResults(schema.SQLiteBackend, dbPath, -1))

	// Step down to the version before the identifier index and back
	assert.NoError(t, MigrateResults(schema.SQLiteBackend, dbPath, 3))
	assert.NoError(t, MigrateResults(schema.SQLiteBackend, dbPath, 4))

	// Roll back everything and migrate up again
	assert.NoError(t, MigrateResults(schema.SQLiteBackend, dbPath, 0))
	assert.NoError(t, MigrateResults(schema.SQLiteBackend, dbPath, -1))
}

func TestMigratedSchemaServesResultStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate.db")
	require.NoError(t, MigrateResults(schema.SQLiteBackend, dbPath, -1))

	store, err := NewResultStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.BeginRun("run", time.Now(), nil))
	require.NoError(t, store.RecordResult("run", 0, sampleRow("42", schema.Match)))

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 1, status.TotalResults)
}

func TestMigrationsEmbedded(t *testing.T) {
	for _, backend := range []schema.DatabaseBackend{schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend} {
		entries, err := migrationsFS.ReadDir("migrations/" + string(backend))
		require.NoError(t, err, backend)
		assert.Len(t, entries, 8, "four up and four down files for %s", backend)
	}
}
