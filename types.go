package dbmanager

import (
	"context"
	"database/sql"
	"fmt"
)

// Configuration keys mirrored by the Manager.
const (
	// KeyDriver is the config subtree holding protocol to driver mappings.
	KeyDriver = "database.driver"
	// KeyConnection is the config subtree holding connection name to DSN mappings.
	KeyConnection = "database.connection"
	// DefaultConnectionName is the reserved connection name. Its key under
	// KeyConnection doubles as the pointer to the default connection.
	DefaultConnectionName = "default"
)

// KeyDefaultConnection is the config key holding the default connection name.
var KeyDefaultConnection = KeyConnection + "." + DefaultConnectionName

// Registry is the base connection and driver registry the Manager decorates.
type Registry interface {
	RegisterDriver(protocol, driver string) error
	UnregisterDriver(protocol string) error
	Drivers() map[string]string

	RegisterConnection(name string, dsn DSN) error
	UnregisterConnection(name string) error
	Connections() map[string]DSN

	SetDefaultConnection(name string) error
	DefaultConnection() string
}

// ConfigStore is a hierarchical key/value store addressed with dotted paths.
type ConfigStore interface {
	// Get returns the value stored at key, or "" when unset.
	Get(key string) string
	// Section returns the direct, non-empty children of prefix keyed by
	// their last path segment.
	Section(prefix string) map[string]string
	Set(key, value string) error
	Unset(key string) error
}

// Column describes a single table column.
type Column struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Nullable   bool   `json:"nullable"`
	PrimaryKey bool   `json:"primary_key,omitempty"`
	Unique     bool   `json:"unique,omitempty"`
	Default    string `json:"default,omitempty"`
}

// Index describes a secondary index on a table.
type Index struct {
	Name    string
	Columns []string
	Unique  bool
}

// Table is a table definition used by Definer implementations.
type Table struct {
	Name    string
	Columns []Column
	Indexes []Index
}

// Validate checks the table definition before any SQL is generated from it.
func (t Table) Validate() error {
	if !IsValidTableName(t.Name) {
		return fmt.Errorf("validate table: invalid table name %q: %w", t.Name, ErrInvalidInput)
	}

	if len(t.Columns) == 0 {
		return fmt.Errorf("validate table %s: no columns: %w", t.Name, ErrInvalidInput)
	}

	seen := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		if !IsValidTableName(c.Name) {
			return fmt.Errorf("validate table %s: invalid column name %q: %w", t.Name, c.Name, ErrInvalidInput)
		}
		if c.Type == "" {
			return fmt.Errorf("validate table %s: column %s has no type: %w", t.Name, c.Name, ErrInvalidInput)
		}
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("validate table %s: duplicate column %s: %w", t.Name, c.Name, ErrInvalidInput)
		}
		seen[c.Name] = struct{}{}
	}

	for _, idx := range t.Indexes {
		if !IsValidTableName(idx.Name) {
			return fmt.Errorf("validate table %s: invalid index name %q: %w", t.Name, idx.Name, ErrInvalidInput)
		}
		if len(idx.Columns) == 0 {
			return fmt.Errorf("validate table %s: index %s has no columns: %w", t.Name, idx.Name, ErrInvalidInput)
		}
		for _, col := range idx.Columns {
			if _, ok := seen[col]; !ok {
				return fmt.Errorf("validate table %s: index %s references unknown column %s: %w", t.Name, idx.Name, col, ErrInvalidInput)
			}
		}
	}

	return nil
}

// PrimaryKey returns the names of the primary key columns in declaration order.
func (t Table) PrimaryKey() []string {
	var pk []string
	for _, c := range t.Columns {
		if c.PrimaryKey {
			pk = append(pk, c.Name)
		}
	}
	return pk
}

// Definer performs schema definition operations for one database protocol.
type Definer interface {
	TableExists(ctx context.Context, db *sql.DB, table string) (bool, error)
	Columns(ctx context.Context, db *sql.DB, table string) ([]Column, error)
	DefineTable(ctx context.Context, db *sql.DB, table Table) error
	DropTable(ctx context.Context, db *sql.DB, table string) error
}

// DefinerFactory creates the Definer for a protocol.
type DefinerFactory func() (Definer, error)
