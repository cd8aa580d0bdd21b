//go:build database

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestStarspinWithMySQL tests the starspin CLI with a MySQL backend.
func TestStarspinWithMySQL(t *testing.T) {
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "starspin",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/starspin?parseTime=true", host, port.Port())
	exerciseDatabaseBackend(t, "mysql", connStr)
}

// TestStarspinWithPostgres tests the starspin CLI with a PostgreSQL backend.
func TestStarspinWithPostgres(t *testing.T) {
	ctx := context.Background()

	// Start Postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres", host, port.Port())
	exerciseDatabaseBackend(t, "postgresql", connStr)
}

// exerciseDatabaseBackend runs the cache and results commands against one backend.
// Connection strings are passed through the environment as a user would.
func exerciseDatabaseBackend(t *testing.T, backend, connStr string) {
	t.Helper()
	t.Setenv("STARSPIN_CACHE_BACKEND", backend)
	t.Setenv("STARSPIN_CACHE_DB_CONNECT", connStr)
	t.Setenv("STARSPIN_RESULT_BACKEND", backend)
	t.Setenv("STARSPIN_RESULT_DB_CONNECT", connStr)

	ws := newWorkspace(t)
	ws.writeSample(t, "801", "802")
	ws.writeSinusoid(t, "801", 3.0, 0.01)

	_, _, err := runStarspin(t, ws.dir, "cache", "clear")
	require.NoError(t, err)

	// Build the result schema with migrations, then roll it back and forward again
	_, _, err = runStarspin(t, ws.dir, "results", "migrate")
	require.NoError(t, err)
	_, _, err = runStarspin(t, ws.dir, "results", "migrate", "--target-version", "0")
	require.NoError(t, err)
	_, _, err = runStarspin(t, ws.dir, "results", "migrate")
	require.NoError(t, err)

	_, _, err = runStarspin(t, ws.dir, "run", "--sample", ws.sample, "--data-dir", ws.dataDir, "--output", "json")
	require.NoError(t, err)

	stdout, _, err := runStarspin(t, ws.dir, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Cached Light Curves: 2")

	stdout, _, err = runStarspin(t, ws.dir, "results", "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Total Runs: 1")
	assert.Contains(t, stdout, "Stars With Results: 1")

	_, _, err = runStarspin(t, ws.dir, "results", "clear")
	require.NoError(t, err)
	_, _, err = runStarspin(t, ws.dir, "cache", "clear")
	require.NoError(t, err)
}
