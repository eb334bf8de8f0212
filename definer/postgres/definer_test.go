package postgres_test

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"math"
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/sagarc03/dbmanager"
	"github.com/sagarc03/dbmanager/definer/postgres"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
)

var (
	testDB     *sql.DB
	testDBErr  error
	testDBOnce sync.Once
)

// getSharedTestDatabase returns a handle to a postgres container shared by
// all tests in the package.
func getSharedTestDatabase(t *testing.T) *sql.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	testDBOnce.Do(func() {
		ctx := context.Background()

		pgContainer, err := pgcontainer.Run(ctx,
			"postgres:18-alpine",
			pgcontainer.WithDatabase("testdb"),
			pgcontainer.WithUsername("testuser"),
			pgcontainer.WithPassword("testpass"),
			pgcontainer.BasicWaitStrategies(),
		)
		if err != nil {
			testDBErr = fmt.Errorf("start postgres container: %w", err)
			return
		}

		connectionStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			_ = testcontainers.TerminateContainer(pgContainer)
			testDBErr = fmt.Errorf("get connection string: %w", err)
			return
		}

		testDB, testDBErr = sql.Open("pgx", connectionStr)
	})

	require.NoError(t, testDBErr)
	return testDB
}

func getRandomString(t *testing.T) string {
	t.Helper()
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	require.NoError(t, err, "random string")
	return fmt.Sprintf("test%x", n.Int64())
}

func eventsTable(name string) dbmanager.Table {
	return dbmanager.Table{
		Name: name,
		Columns: []dbmanager.Column{
			{Name: "id", Type: "uuid", PrimaryKey: true, Default: "gen_random_uuid()"},
			{Name: "kind", Type: "text"},
			{Name: "payload", Type: "jsonb", Nullable: true},
			{Name: "created_at", Type: "timestamp with time zone", Default: "NOW()"},
		},
		Indexes: []dbmanager.Index{
			{Name: "idx_" + name + "_kind", Columns: []string{"kind", "created_at"}},
		},
	}
}

func TestDefiner_DefineTable(t *testing.T) {
	db := getSharedTestDatabase(t)
	ctx := context.Background()
	d, err := postgres.New()
	require.NoError(t, err)

	table := eventsTable("events_" + getRandomString(t))
	t.Cleanup(func() { _ = d.DropTable(ctx, db, table.Name) })

	exists, err := d.TableExists(ctx, db, table.Name)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, d.DefineTable(ctx, db, table))
	require.NoError(t, d.DefineTable(ctx, db, table), "define should be idempotent")

	exists, err = d.TableExists(ctx, db, table.Name)
	require.NoError(t, err)
	assert.True(t, exists)

	columns, err := d.Columns(ctx, db, table.Name)
	require.NoError(t, err)
	require.Len(t, columns, 4)

	assert.Equal(t, "id", columns[0].Name)
	assert.True(t, columns[0].PrimaryKey)
	assert.False(t, columns[0].Nullable)
	assert.Equal(t, "timestamp with time zone", columns[3].Type)
	assert.True(t, columns[2].Nullable)

	assert.NoError(t, dbmanager.ValidateTable(ctx, d, db, table))
}

func TestDefiner_ValidateDetectsDrift(t *testing.T) {
	db := getSharedTestDatabase(t)
	ctx := context.Background()
	d, _ := postgres.New()

	name := "events_" + getRandomString(t)
	t.Cleanup(func() { _ = d.DropTable(ctx, db, name) })

	_, err := db.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE %q (id UUID PRIMARY KEY, kind BIGINT)`, name))
	require.NoError(t, err)

	err = dbmanager.ValidateTable(ctx, d, db, eventsTable(name))
	require.Error(t, err)
	assert.ErrorIs(t, err, dbmanager.ErrSchemaMismatch)
	assert.Contains(t, err.Error(), "missing columns: payload, created_at")
	assert.Contains(t, err.Error(), "kind: expected text, got bigint")
}

func TestDefiner_DropTable(t *testing.T) {
	db := getSharedTestDatabase(t)
	ctx := context.Background()
	d, _ := postgres.New()

	table := eventsTable("events_" + getRandomString(t))
	require.NoError(t, d.DefineTable(ctx, db, table))
	require.NoError(t, d.DropTable(ctx, db, table.Name))
	require.NoError(t, d.DropTable(ctx, db, table.Name), "drop should be idempotent")

	exists, err := d.TableExists(ctx, db, table.Name)
	require.NoError(t, err)
	assert.False(t, exists)

	err = d.DropTable(ctx, db, "Bad Name")
	assert.ErrorIs(t, err, dbmanager.ErrInvalidInput)
}
