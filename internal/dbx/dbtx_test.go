package dbx

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS kv (k TEXT PRIMARY KEY, v TEXT)`)
	require.NoError(t, err)
	return db
}

func rows(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM kv`).Scan(&n))
	return n
}

func TestWithTx_Commit(t *testing.T) {
	db := openDB(t, "dbx_commit")

	err := WithTx(context.Background(), db, func(ctx context.Context, tx DBTX) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO kv(k, v) VALUES ('cart', '{}')`)
		return err
	})
	require.NoError(t, err)
	require.Equal(t, 1, rows(t, db))
}

func TestWithTx_ErrorRollsBack(t *testing.T) {
	db := openDB(t, "dbx_rollback")
	boom := errors.New("boom")

	err := WithTx(context.Background(), db, func(ctx context.Context, tx DBTX) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO kv(k, v) VALUES ('cart', '{}')`)
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, 0, rows(t, db))
}

func TestWithTx_PanicRollsBack(t *testing.T) {
	db := openDB(t, "dbx_panic")

	require.Panics(t, func() {
		_ = WithTx(context.Background(), db, func(ctx context.Context, tx DBTX) error {
			_, err := tx.ExecContext(ctx, `INSERT INTO kv(k, v) VALUES ('cart', '{}')`)
			require.NoError(t, err)
			panic("kaput")
		})
	})
	require.Equal(t, 0, rows(t, db))
}

func TestWithTx_BeginFails(t *testing.T) {
	db := openDB(t, "dbx_closed")
	require.NoError(t, db.Close())

	called := false
	err := WithTx(context.Background(), db, func(ctx context.Context, tx DBTX) error {
		called = true
		return nil
	})
	require.Error(t, err)
	require.False(t, called)
}
