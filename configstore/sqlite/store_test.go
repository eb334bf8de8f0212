package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/dbmanager"
	"github.com/sagarc03/dbmanager/configstore/sqlite"
)

func openTestStore(t *testing.T, dsn string) *sqlite.Store {
	t.Helper()

	s, err := sqlite.Open(context.Background(), dsn, "dbmanager_settings")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestOpen_Memory(t *testing.T) {
	t.Parallel()

	s := openTestStore(t, ":memory:")

	assert.Empty(t, s.All())
	require.NoError(t, s.Set("database.driver.sqlite", "sqlite"))
	require.NoError(t, s.Save(context.Background()))
	require.NoError(t, s.Load(context.Background()))

	assert.Equal(t, "sqlite", s.Get("database.driver.sqlite"))
}

func TestStore_SaveAndReopen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "settings.db")

	s, err := sqlite.Open(ctx, path, "dbmanager_settings")
	require.NoError(t, err)

	require.NoError(t, s.Set("database.driver.postgres", "pgx"))
	require.NoError(t, s.Set("database.connection.main", "postgres://db/main"))
	require.NoError(t, s.Set("database.connection.default", "main"))
	require.NoError(t, s.Save(ctx))

	require.NoError(t, s.Unset("database.connection.default"))
	require.NoError(t, s.Save(ctx))
	require.NoError(t, s.Close())

	reopened := openTestStore(t, path)
	assert.Equal(t, map[string]string{
		"database.driver.postgres": "pgx",
		"database.connection.main": "postgres://db/main",
	}, reopened.All())
}

func TestStore_UnsavedChangesAreNotPersisted(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "settings.db")

	s, err := sqlite.Open(ctx, path, "dbmanager_settings")
	require.NoError(t, err)
	require.NoError(t, s.Set("a.b", "1"))
	require.NoError(t, s.Close())

	reopened := openTestStore(t, path)
	assert.Empty(t, reopened.All())
}

func TestStore_BacksManager(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "settings.db")

	s, err := sqlite.Open(ctx, path, "dbmanager_settings")
	require.NoError(t, err)

	m, err := dbmanager.New(dbmanager.NewMemoryRegistry(), s)
	require.NoError(t, err)
	require.NoError(t, m.RegisterDriver("sqlite", "sqlite"))
	require.NoError(t, m.RegisterConnection("local", dbmanager.MustParseDSN("sqlite:///local.db")))
	require.NoError(t, s.Save(ctx))
	require.NoError(t, s.Close())

	reopened := openTestStore(t, path)
	registry := dbmanager.NewMemoryRegistry()
	_, err = dbmanager.New(registry, reopened)
	require.NoError(t, err)

	assert.Equal(t, "local", registry.DefaultConnection())
	dsn, err := registry.Connection("local")
	require.NoError(t, err)
	assert.Equal(t, "local.db", dsn.Database)
}

func TestOpen_InvalidTableName(t *testing.T) {
	t.Parallel()

	_, err := sqlite.Open(context.Background(), ":memory:", "bad-table")
	assert.ErrorIs(t, err, dbmanager.ErrInvalidInput)
}

func TestOpen_SchemaMismatch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "settings.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `CREATE TABLE dbmanager_settings (key TEXT PRIMARY KEY, value INTEGER)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = sqlite.Open(ctx, path, "dbmanager_settings")
	require.Error(t, err)
	assert.ErrorIs(t, err, dbmanager.ErrSchemaMismatch)
}
