// Package mysql implements dbmanager.Definer for MySQL and MariaDB.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/sagarc03/dbmanager"
)

// Definer defines and inspects tables in the current database of a MySQL
// server.
type Definer struct{}

// New returns a MySQL Definer. It matches dbmanager.DefinerFactory.
func New() (dbmanager.Definer, error) {
	return Definer{}, nil
}

func quoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// TableExists reports whether table exists in the current database.
func (Definer) TableExists(ctx context.Context, db *sql.DB, table string) (bool, error) {
	var count int
	query := `
		SELECT COUNT(*)
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		AND table_name = ?
	`
	if err := db.QueryRowContext(ctx, query, table).Scan(&count); err != nil {
		return false, fmt.Errorf("check table exists: %w", err)
	}
	return count > 0, nil
}

// Columns lists the columns of table in ordinal order. Types are the full
// lower cased column types, e.g. "varchar(255)" or "bigint unsigned".
func (Definer) Columns(ctx context.Context, db *sql.DB, table string) ([]dbmanager.Column, error) {
	query := `
		SELECT column_name, column_type, is_nullable, column_key, COALESCE(column_default, '')
		FROM information_schema.columns
		WHERE table_schema = DATABASE()
		AND table_name = ?
		ORDER BY ordinal_position
	`

	rows, err := db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, fmt.Errorf("columns: query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []dbmanager.Column
	for rows.Next() {
		var name, columnType, nullable, key, dflt string
		if err := rows.Scan(&name, &columnType, &nullable, &key, &dflt); err != nil {
			return nil, fmt.Errorf("columns: scan: %w", err)
		}

		columns = append(columns, dbmanager.Column{
			Name:       name,
			Type:       strings.ToLower(columnType),
			Nullable:   nullable == "YES",
			PrimaryKey: key == "PRI",
			Unique:     key == "UNI",
			Default:    dflt,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("columns: rows error: %w", err)
	}

	return columns, nil
}

// DefineTable creates table with its indexes declared inline. MySQL commits
// DDL implicitly, so a single statement keeps the definition atomic.
func (Definer) DefineTable(ctx context.Context, db *sql.DB, table dbmanager.Table) error {
	if err := table.Validate(); err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, createTableSQL(table)); err != nil {
		return fmt.Errorf("define table %s: %w", table.Name, err)
	}
	return nil
}

// DropTable drops table if it exists.
func (Definer) DropTable(ctx context.Context, db *sql.DB, table string) error {
	if !dbmanager.IsValidTableName(table) {
		return fmt.Errorf("drop table: invalid table name %q: %w", table, dbmanager.ErrInvalidInput)
	}

	dropSQL := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteIdentifier(table))
	if _, err := db.ExecContext(ctx, dropSQL); err != nil {
		return fmt.Errorf("drop table %s: %w", table, err)
	}
	return nil
}

func createTableSQL(table dbmanager.Table) string {
	defs := make([]string, 0, len(table.Columns)+len(table.Indexes)+1)

	for _, c := range table.Columns {
		def := quoteIdentifier(c.Name) + " " + strings.ToUpper(c.Type)
		if !c.Nullable || c.PrimaryKey {
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

	for _, idx := range table.Indexes {
		kind := "INDEX"
		if idx.Unique {
			kind = "UNIQUE INDEX"
		}
		defs = append(defs, fmt.Sprintf("%s %s (%s)", kind, quoteIdentifier(idx.Name), quoteList(idx.Columns)))
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)",
		quoteIdentifier(table.Name), strings.Join(defs, ",\n\t"))
}

func quoteList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quoteIdentifier(n)
	}
	return strings.Join(quoted, ", ")
}
