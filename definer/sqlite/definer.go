// Package sqlite implements dbmanager.Definer for SQLite databases.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sagarc03/dbmanager"
)

// Definer defines and inspects tables in a SQLite database.
type Definer struct{}

// New returns a SQLite Definer. It matches dbmanager.DefinerFactory.
func New() (dbmanager.Definer, error) {
	return Definer{}, nil
}

// quoteIdentifier safely quotes a SQLite identifier
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// TableExists reports whether table exists.
func (Definer) TableExists(ctx context.Context, db *sql.DB, table string) (bool, error) {
	var name string
	query := `SELECT name FROM sqlite_master WHERE type='table' AND name=?`
	err := db.QueryRowContext(ctx, query, table).Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check table exists: %w", err)
	}
	return true, nil
}

// Columns lists the columns of table in declaration order. Types are lower
// cased.
func (Definer) Columns(ctx context.Context, db *sql.DB, table string) ([]dbmanager.Column, error) {
	if !dbmanager.IsValidTableName(table) {
		return nil, fmt.Errorf("columns: invalid table name %q: %w", table, dbmanager.ErrInvalidInput)
	}

	// SQLite uses PRAGMA table_info to get column information
	query := fmt.Sprintf(`PRAGMA table_info(%s)`, quoteIdentifier(table))

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("columns: query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []dbmanager.Column
	for rows.Next() {
		var cid int
		var name, dataType string
		var notNull int
		var dfltValue sql.NullString
		var pk int

		if err := rows.Scan(&cid, &name, &dataType, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("columns: scan: %w", err)
		}

		columns = append(columns, dbmanager.Column{
			Name:       name,
			Type:       strings.ToLower(dataType),
			Nullable:   notNull == 0,
			PrimaryKey: pk > 0,
			Default:    dfltValue.String,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("columns: rows error: %w", err)
	}

	return columns, nil
}

// DefineTable creates table and its indexes if they do not exist yet.
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
	defs := make([]string, 0, len(table.Columns)+1)

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
