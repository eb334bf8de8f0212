// Package postgres implements dbmanager.Definer for PostgreSQL. It works over
// any database/sql handle whose driver accepts $n placeholders, so both the
// pgx and lib/pq drivers are supported.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/sagarc03/dbmanager"
)

// Definer defines and inspects tables in the current schema of a PostgreSQL
// database.
type Definer struct{}

// New returns a PostgreSQL Definer. It matches dbmanager.DefinerFactory.
func New() (dbmanager.Definer, error) {
	return Definer{}, nil
}

func quoteIdentifier(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// TableExists reports whether table exists in the current schema.
func (Definer) TableExists(ctx context.Context, db *sql.DB, table string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM information_schema.tables
			WHERE table_schema = current_schema()
			AND table_name = $1
		)
	`
	if err := db.QueryRowContext(ctx, query, table).Scan(&exists); err != nil {
		return false, fmt.Errorf("check table exists: %w", err)
	}
	return exists, nil
}

// Columns lists the columns of table in ordinal order. Types are the lower
// cased information_schema data types, e.g. "timestamp with time zone".
func (Definer) Columns(ctx context.Context, db *sql.DB, table string) ([]dbmanager.Column, error) {
	primary, err := primaryKeyColumns(ctx, db, table)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT column_name, data_type, is_nullable, COALESCE(column_default, '')
		FROM information_schema.columns
		WHERE table_schema = current_schema()
		AND table_name = $1
		ORDER BY ordinal_position
	`

	rows, err := db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, fmt.Errorf("columns: query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []dbmanager.Column
	for rows.Next() {
		var name, dataType, nullable, dflt string
		if err := rows.Scan(&name, &dataType, &nullable, &dflt); err != nil {
			return nil, fmt.Errorf("columns: scan: %w", err)
		}

		_, pk := primary[name]
		columns = append(columns, dbmanager.Column{
			Name:       name,
			Type:       strings.ToLower(dataType),
			Nullable:   nullable == "YES",
			PrimaryKey: pk,
			Default:    dflt,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("columns: rows error: %w", err)
	}

	return columns, nil
}

func primaryKeyColumns(ctx context.Context, db *sql.DB, table string) (map[string]struct{}, error) {
	query := `
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		WHERE tc.constraint_type = 'PRIMARY KEY'
		AND tc.table_schema = current_schema()
		AND tc.table_name = $1
	`

	rows, err := db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, fmt.Errorf("primary key: query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	primary := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("primary key: scan: %w", err)
		}
		primary[name] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("primary key: rows error: %w", err)
	}

	return primary, nil
}

// DefineTable creates table and its indexes if they do not exist yet. The
// statements run in one transaction.
func (Definer) DefineTable(ctx context.Context, db *sql.DB, table dbmanager.Table) error {
	if err := table.Validate(); err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("define table %s: begin: %w", table.Name, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, createTableSQL(table)); err != nil {
		return fmt.Errorf("define table %s: create table: %w", table.Name, err)
	}

	for _, idx := range table.Indexes {
		if _, err = tx.ExecContext(ctx, createIndexSQL(table.Name, idx)); err != nil {
			return fmt.Errorf("define table %s: create index %s: %w", table.Name, idx.Name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("define table %s: commit: %w", table.Name, err)
	}

	return nil
}

// DropTable drops table and everything depending on it.
func (Definer) DropTable(ctx context.Context, db *sql.DB, table string) error {
	if !dbmanager.IsValidTableName(table) {
		return fmt.Errorf("drop table: invalid table name %q: %w", table, dbmanager.ErrInvalidInput)
	}

	dropSQL := fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", quoteIdentifier(table))
	if _, err := db.ExecContext(ctx, dropSQL); err != nil {
		return fmt.Errorf("drop table %s: %w", table, err)
	}
	return nil
}

func createTableSQL(table dbmanager.Table) string {
	defs := make([]string, 0, len(table.Columns)+1)

	for _, c := range table.Columns {
		def := quoteIdentifier(c.Name) + " " + strings.ToUpper(c.Type)
		if !c.Nullable && !c.PrimaryKey {
			def += " NOT NULL"
		}
		if c.Unique {
			def += " UNIQUE"
		}
		if c.Default != "" {
			def += " DEFAULT " + c.Default
		}
		defs = append(defs, def)
	}

	if pk := table.PrimaryKey(); len(pk) > 0 {
		defs = append(defs, "PRIMARY KEY ("+quoteList(pk)+")")
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)",
		quoteIdentifier(table.Name), strings.Join(defs, ",\n\t"))
}

func createIndexSQL(table string, idx dbmanager.Index) string {
	unique := ""
	if idx.Unique {
		unique = "UNIQUE "
	}

	return fmt.Sprintf("CREATE %sINDEX IF NOT EXISTS %s ON %s (%s)",
		unique, quoteIdentifier(idx.Name), quoteIdentifier(table), quoteList(idx.Columns))
}

func quoteList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quoteIdentifier(n)
	}
	return strings.Join(quoted, ", ")
}
