package configstore

import (
	"context"
	"fmt"

	"github.com/sagarc03/dbmanager"
	"github.com/sagarc03/dbmanager/configstore/postgres"
	"github.com/sagarc03/dbmanager/configstore/sqlite"
)

// Store is a dbmanager.ConfigStore that can persist its values.
type Store interface {
	dbmanager.ConfigStore

	// Save persists every value currently held by the store.
	Save(ctx context.Context) error
	// Close releases the backing resources. Unsaved changes are discarded.
	Close() error
}

// Config holds the configuration for opening a Store.
type Config struct {
	// Type specifies the backend: "file", "sqlite", "postgres" or "memory"
	Type string `mapstructure:"type" validate:"required,oneof=file sqlite postgres memory"`
	// Path is the YAML file used by the file backend
	Path string `mapstructure:"path" validate:"required_if=Type file"`
	// DSN is the data source name used by the sqlite and postgres backends
	DSN string `mapstructure:"dsn" validate:"required_if=Type sqlite,required_if=Type postgres"`
	// Table is the name of the settings table used by the sqlite and postgres backends
	Table string `mapstructure:"table"`
}

// DefaultTable is the settings table used when Config.Table is empty.
const DefaultTable = "dbmanager_settings"

// Open opens the configured backend and loads its values.
func Open(ctx context.Context, cfg Config) (Store, error) {
	table := cfg.Table
	if table == "" {
		table = DefaultTable
	}

	var (
		store Store
		err   error
	)

	switch cfg.Type {
	case "file":
		store, err = openFile(cfg.Path)
	case "sqlite":
		store, err = openSQLite(ctx, cfg.DSN, table)
	case "postgres":
		store, err = openPostgres(ctx, cfg.DSN, table)
	case "memory":
		store = NewMemory(nil)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", cfg.Type)
	}

	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Type, err)
	}

	return store, nil
}

func openFile(path string) (Store, error) {
	s, err := OpenFile(path)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func openSQLite(ctx context.Context, dsn, table string) (Store, error) {
	s, err := sqlite.Open(ctx, dsn, table)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func openPostgres(ctx context.Context, dsn, table string) (Store, error) {
	s, err := postgres.Open(ctx, dsn, table)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// MemoryStore is a Store that keeps its values in memory only.
type MemoryStore struct {
	*dbmanager.Settings
}

// NewMemory creates a MemoryStore seeded with values.
func NewMemory(values map[string]string) *MemoryStore {
	return &MemoryStore{Settings: dbmanager.NewSettings(values)}
}

// Save is a no-op.
func (MemoryStore) Save(context.Context) error { return nil }

// Close is a no-op.
func (MemoryStore) Close() error { return nil }
