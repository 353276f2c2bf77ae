package dbx

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

var testMigrations = fstest.MapFS{
	"00001_t.sql": &fstest.MapFile{Data: []byte(`-- +goose Up
CREATE TABLE t (id INTEGER PRIMARY KEY, v TEXT);

-- +goose Down
DROP TABLE t;
`)},
}

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "dbx.db"), testMigrations)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func countRows(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM t`).Scan(&n))
	return n
}

func TestOpen_AppliesMigrationsIdempotently(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "dbx.db")

	db, err := Open(ctx, path, testMigrations)
	require.NoError(t, err)
	require.Equal(t, 0, countRows(t, db))
	require.NoError(t, db.Close())

	db, err = Open(ctx, path, testMigrations)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, Migrate(ctx, db, testMigrations))
	require.Equal(t, 0, countRows(t, db))
}

func TestOpen_CreatesDataDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "dbx.db")

	db, err := Open(context.Background(), path, testMigrations)
	require.NoError(t, err)
	defer db.Close()
	require.Equal(t, 0, countRows(t, db))
}

func TestOpen_BadMigrationFails(t *testing.T) {
	bad := fstest.MapFS{
		"00001_bad.sql": &fstest.MapFile{Data: []byte("-- +goose Up\nTHIS IS NOT SQL;\n")},
	}
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "bad.db"), bad)
	require.Error(t, err)
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	db := setupDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO t(v) VALUES ('ok')`)
		return err
	})
	require.NoError(t, err)
	require.Equal(t, 1, countRows(t, db), "must commit on success")
}

func TestWithTx_RollbackOnFnError(t *testing.T) {
	db := setupDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, e := tx.ExecContext(ctx, `INSERT INTO t(v) VALUES ('fail')`)
		require.NoError(t, e)
		return errors.New("boom")
	})
	require.Error(t, err)
	require.Equal(t, 0, countRows(t, db), "must rollback when fn returns error")
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	db := setupDB(t)

	func() {
		defer func() {
			require.NotNil(t, recover(), "panic must be rethrown")
		}()
		_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
			_, e := tx.ExecContext(ctx, `INSERT INTO t(v) VALUES ('panic')`)
			require.NoError(t, e)
			panic("kaboom")
		})
	}()

	require.Equal(t, 0, countRows(t, db), "must rollback on panic")
}
