// Package sqlite persists dbmanager settings in a SQLite table.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/sagarc03/dbmanager"
	sqlitedefiner "github.com/sagarc03/dbmanager/definer/sqlite"

	_ "modernc.org/sqlite" // SQLite driver
)

// settingsTable returns the definition of the key/value settings table.
func settingsTable(name string) dbmanager.Table {
	return dbmanager.Table{
		Name: name,
		Columns: []dbmanager.Column{
			{Name: "key", Type: "text", PrimaryKey: true},
			{Name: "value", Type: "text"},
			{Name: "updated_at", Type: "text"},
		},
	}
}

// Store is a dbmanager.ConfigStore whose values are loaded from and saved to
// a SQLite table. Reads and writes go to memory until Save is called.
type Store struct {
	*dbmanager.Settings

	db      *sql.DB
	table   string
	definer dbmanager.Definer
}

// Open connects to dsn, creates the settings table if needed, validates its
// schema and loads the stored values.
func Open(ctx context.Context, dsn, table string) (*Store, error) {
	if !dbmanager.IsValidTableName(table) {
		return nil, fmt.Errorf("open sqlite store: invalid table name %q: %w", table, dbmanager.ErrInvalidInput)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if strings.Contains(dsn, ":memory:") {
		// each pooled connection would see its own empty database
		db.SetMaxOpenConns(1)
	}

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	definer, _ := sqlitedefiner.New()
	s := &Store{
		Settings: dbmanager.NewSettings(nil),
		db:       db,
		table:    table,
		definer:  definer,
	}

	if err = s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err = s.Validate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err = s.Load(ctx); err != nil {
		_ = db.Close()
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
	query := fmt.Sprintf(`SELECT key, value FROM %q`, s.table)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	defer func() { _ = rows.Close() }()

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
	now := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save settings: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %q`, s.table)); err != nil {
		return fmt.Errorf("save settings: clear: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		fmt.Sprintf(`INSERT INTO %q (key, value, updated_at) VALUES (?, ?, ?)`, s.table))
	if err != nil {
		return fmt.Errorf("save settings: prepare: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, key := range slices.Sorted(maps.Keys(values)) {
		if _, err = stmt.ExecContext(ctx, key, values[key], now); err != nil {
			return fmt.Errorf("save settings: insert %s: %w", key, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("save settings: commit: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
