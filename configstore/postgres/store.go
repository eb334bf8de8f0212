// Package postgres persists dbmanager settings in a PostgreSQL table.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/sagarc03/dbmanager"
	pgdefiner "github.com/sagarc03/dbmanager/definer/postgres"
)

func settingsTable(name string) dbmanager.Table {
	return dbmanager.Table{
		Name: name,
		Columns: []dbmanager.Column{
			{Name: "key", Type: "text", PrimaryKey: true},
			{Name: "value", Type: "text"},
			{Name: "updated_at", Type: "timestamp with time zone", Default: "NOW()"},
		},
	}
}

// Store is a dbmanager.ConfigStore whose values are loaded from and saved to
// a PostgreSQL table. Reads and writes go to memory until Save is called.
type Store struct {
	*dbmanager.Settings

	pool    *pgxpool.Pool
	db      *sql.DB
	table   string
	definer dbmanager.Definer
}

// Open connects to dsn, creates the settings table if needed, validates its
// schema and loads the stored values.
func Open(ctx context.Context, dsn, table string) (*Store, error) {
	if !dbmanager.IsValidTableName(table) {
		return nil, fmt.Errorf("open postgres store: invalid table name %q: %w", table, dbmanager.ErrInvalidInput)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	definer, _ := pgdefiner.New()
	s := &Store{
		Settings: dbmanager.NewSettings(nil),
		pool:     pool,
		db:       stdlib.OpenDBFromPool(pool),
		table:    table,
		definer:  definer,
	}

	if err = s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	if err = s.Validate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	if err = s.Load(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	return s, nil
}

// Migrate creates the settings table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.definer.DefineTable(ctx, s.db, settingsTable(s.table)); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Validate checks that the settings table matches the expected structure.
func (s *Store) Validate(ctx context.Context) error {
	if err := dbmanager.ValidateTable(ctx, s.definer, s.db, settingsTable(s.table)); err != nil {
		return fmt.Errorf("validate schema %s: %w", s.table, err)
	}
	return nil
}

// Load replaces the in-memory values with the rows of the settings table.
func (s *Store) Load(ctx context.Context) error {
	query := fmt.Sprintf(`SELECT key, value FROM %s`, pgx.Identifier{s.table}.Sanitize())

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return fmt.Errorf("load settings: scan: %w", err)
		}
		values[key] = value
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("load settings: rows error: %w", err)
	}

	s.Replace(values)
	return nil
}

// Save replaces the rows of the settings table with the in-memory values in
// a single transaction.
func (s *Store) Save(ctx context.Context) error {
	values := s.All()
	now := time.Now().UTC()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("save settings: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err = tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s`, pgx.Identifier{s.table}.Sanitize())); err != nil {
		return fmt.Errorf("save settings: clear: %w", err)
	}

	rows := make([][]any, 0, len(values))
	for _, key := range slices.Sorted(maps.Keys(values)) {
		rows = append(rows, []any{key, values[key], now})
	}

	if _, err = tx.CopyFrom(ctx,
		pgx.Identifier{s.table},
		[]string{"key", "value", "updated_at"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return fmt.Errorf("save settings: copy: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("save settings: commit: %w", err)
	}

	return nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	err := s.db.Close()
	s.pool.Close()
	return err
}
