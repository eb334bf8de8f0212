package dbmanager

import (
	"context"
	"database/sql"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// MemoryRegistry is the in-memory base registry of drivers and connections.
// It is safe for concurrent use.
type MemoryRegistry struct {
	mu           sync.RWMutex
	drivers      map[string]string
	connections  map[string]DSN
	order        []string
	defaultName  string
	driverExists func(string) bool
}

// RegistryOption configures a MemoryRegistry.
type RegistryOption func(*MemoryRegistry)

// WithDriverLookup replaces the check used to accept driver names. By default
// a driver must be registered with database/sql.
func WithDriverLookup(exists func(driver string) bool) RegistryOption {
	return func(r *MemoryRegistry) {
		r.driverExists = exists
	}
}

// NewMemoryRegistry creates an empty registry.
func NewMemoryRegistry(opts ...RegistryOption) *MemoryRegistry {
	r := &MemoryRegistry{
		drivers:      make(map[string]string),
		connections:  make(map[string]DSN),
		driverExists: sqlDriverExists,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func sqlDriverExists(driver string) bool {
	return slices.Contains(sql.Drivers(), driver)
}

// RegisterDriver maps protocol to a database/sql driver name, replacing any
// previous mapping for the protocol.
func (r *MemoryRegistry) RegisterDriver(protocol, driver string) error {
	if !IsValidName(protocol) {
		return fmt.Errorf("register driver: invalid protocol %q: %w", protocol, ErrInvalidInput)
	}

	if driver == "" {
		return fmt.Errorf("register driver %s: empty driver name: %w", protocol, ErrInvalidInput)
	}

	if !r.driverExists(driver) {
		return fmt.Errorf("register driver %s: %s: %w", protocol, driver, ErrUnknownDriver)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.drivers[protocol] = driver
	return nil
}

// UnregisterDriver removes the driver registered for protocol.
func (r *MemoryRegistry) UnregisterDriver(protocol string) error {
	if !IsValidName(protocol) {
		return fmt.Errorf("unregister driver: invalid protocol %q: %w", protocol, ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.drivers[protocol]; !ok {
		return fmt.Errorf("unregister driver %s: %w", protocol, ErrNotFound)
	}

	delete(r.drivers, protocol)
	return nil
}

// Driver returns the driver name registered for protocol.
func (r *MemoryRegistry) Driver(protocol string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	driver, ok := r.drivers[protocol]
	if !ok {
		return "", fmt.Errorf("driver %s: %w", protocol, ErrNotFound)
	}
	return driver, nil
}

// Drivers returns a copy of the protocol to driver mapping.
func (r *MemoryRegistry) Drivers() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return maps.Clone(r.drivers)
}

// RegisterConnection registers dsn under name. The protocol of dsn must have
// a registered driver. The first connection, or one named "default", becomes
// the default connection.
func (r *MemoryRegistry) RegisterConnection(name string, dsn DSN) error {
	if !IsValidName(name) {
		return fmt.Errorf("register connection: invalid name %q: %w", name, ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.drivers[dsn.Protocol]; !ok {
		return fmt.Errorf("register connection %s: protocol %q: %w", name, dsn.Protocol, ErrUnsupportedProtocol)
	}

	if _, ok := r.connections[name]; ok {
		return fmt.Errorf("register connection %s: %w", name, ErrAlreadyExists)
	}

	r.connections[name] = dsn
	r.order = append(r.order, name)

	if r.defaultName == "" || name == DefaultConnectionName {
		r.defaultName = name
	}

	return nil
}

// UnregisterConnection removes the connection registered under name. When it
// was the default, the earliest remaining connection takes over.
func (r *MemoryRegistry) UnregisterConnection(name string) error {
	if !IsValidName(name) {
		return fmt.Errorf("unregister connection: invalid name %q: %w", name, ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.connections[name]; !ok {
		return fmt.Errorf("unregister connection %s: %w", name, ErrNotFound)
	}

	delete(r.connections, name)
	r.order = slices.DeleteFunc(r.order, func(n string) bool { return n == name })

	if r.defaultName == name {
		r.defaultName = ""
		if len(r.order) > 0 {
			r.defaultName = r.order[0]
		}
	}

	return nil
}

// Connection returns the DSN registered under name.
func (r *MemoryRegistry) Connection(name string) (DSN, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dsn, ok := r.connections[name]
	if !ok {
		return DSN{}, fmt.Errorf("connection %s: %w", name, ErrNotFound)
	}
	return dsn, nil
}

// Connections returns a copy of the name to DSN mapping.
func (r *MemoryRegistry) Connections() map[string]DSN {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return maps.Clone(r.connections)
}

// ConnectionNames returns connection names in registration order.
func (r *MemoryRegistry) ConnectionNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.order)
}

// SetDefaultConnection marks an existing connection as the default.
func (r *MemoryRegistry) SetDefaultConnection(name string) error {
	if !IsValidName(name) {
		return fmt.Errorf("set default connection: invalid name %q: %w", name, ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.connections[name]; !ok {
		return fmt.Errorf("set default connection %s: %w", name, ErrNotFound)
	}

	r.defaultName = name
	return nil
}

// DefaultConnection returns the default connection name, or "" when no
// connection is registered.
func (r *MemoryRegistry) DefaultConnection() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.defaultName
}

// Open opens and pings a database handle for the named connection. An empty
// name selects the default connection. The caller owns the returned handle.
func (r *MemoryRegistry) Open(ctx context.Context, name string) (*sql.DB, error) {
	r.mu.RLock()
	if name == "" {
		name = r.defaultName
	}
	dsn, ok := r.connections[name]
	driver := r.drivers[dsn.Protocol]
	r.mu.RUnlock()

	if name == "" {
		return nil, fmt.Errorf("open: no default connection: %w", ErrNotFound)
	}

	if !ok {
		return nil, fmt.Errorf("open %s: %w", name, ErrNotFound)
	}

	if driver == "" {
		return nil, fmt.Errorf("open %s: protocol %q: %w", name, dsn.Protocol, ErrUnsupportedProtocol)
	}

	source, err := dsn.DriverDSN(driver)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}

	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", name, err)
	}

	return db, nil
}
