package client

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

func TestInitDatabase_CreatesMetadataTable(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "storefront.db")

	db, err := InitDatabase(ctx, dsn)
	require.NoError(t, err)
	defer db.Close()

	require.True(t, tableExists(t, db, "goose_db_version"))
	require.True(t, tableExists(t, db, "metadata"))
}

func TestRunMigrations_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "storefront.db")

	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, RunMigrations(ctx, db))
	require.NoError(t, RunMigrations(ctx, db))
	require.True(t, tableExists(t, db, "metadata"))
}

func TestInitDatabase_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "storefront.db")

	db, err := InitDatabase(ctx, dsn)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO metadata(key, value) VALUES ('token', 'abc')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = InitDatabase(ctx, dsn)
	require.NoError(t, err)
	defer db.Close()

	var v string
	require.NoError(t, db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key='token'`).Scan(&v))
	require.Equal(t, "abc", v)
}
