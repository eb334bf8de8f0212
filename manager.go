package dbmanager

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
)

// Manager decorates a Registry so that every successful mutation is mirrored
// into a ConfigStore, and restores the registry from that store on creation.
//
// Manager does no locking of its own. Callers sharing one Manager between
// goroutines must serialize mutations.
type Manager struct {
	registry  Registry
	store     ConfigStore
	logger    *slog.Logger
	factories map[string]DefinerFactory
	definers  map[string]Definer
}

// Option configures a Manager.
type Option func(*Manager)

// WithDefiners sets the definer factories, keyed by protocol.
func WithDefiners(factories map[string]DefinerFactory) Option {
	return func(m *Manager) {
		m.factories = maps.Clone(factories)
	}
}

// WithLogger sets the logger used for skipped connections and definer
// lookups. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New creates a Manager and loads the drivers and connections stored under
// KeyDriver and KeyConnection into registry.
//
// A stored driver that cannot be registered fails New. A stored connection
// that cannot be parsed or registered is skipped with a warning, except that
// a "default" entry that does not parse as a DSN is used as the default
// connection name.
func New(registry Registry, store ConfigStore, opts ...Option) (*Manager, error) {
	if registry == nil {
		return nil, errors.New("new manager: registry cannot be nil")
	}

	if store == nil {
		return nil, errors.New("new manager: config store cannot be nil")
	}

	m := &Manager{
		registry:  registry,
		store:     store,
		logger:    slog.Default(),
		factories: make(map[string]DefinerFactory),
		definers:  make(map[string]Definer),
	}

	for _, opt := range opts {
		opt(m)
	}

	if err := m.loadDrivers(); err != nil {
		return nil, err
	}

	if err := m.loadConnections(); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Manager) loadDrivers() error {
	drivers := m.store.Section(KeyDriver)

	for _, protocol := range slices.Sorted(maps.Keys(drivers)) {
		if err := m.registry.RegisterDriver(protocol, drivers[protocol]); err != nil {
			return fmt.Errorf("load driver %s: %w", protocol, err)
		}
	}

	return nil
}

func (m *Manager) loadConnections() error {
	connections := m.store.Section(KeyConnection)

	var defaultName string

	for _, name := range slices.Sorted(maps.Keys(connections)) {
		raw := connections[name]

		dsn, err := ParseDSN(raw)
		if err != nil {
			if name == DefaultConnectionName {
				// usually a reference to another connection, not a DSN
				defaultName = raw
				m.logger.Debug("default entry is not a connection", "value", raw)
				continue
			}
			m.logger.Warn("skipping stored connection", "name", name, "err", err)
			continue
		}

		if err := m.registry.RegisterConnection(name, dsn); err != nil {
			// a DSN is never a valid name, so there is no fallback for it
			m.logger.Warn("skipping stored connection", "name", name, "dsn", dsn.Redacted(), "err", err)
			continue
		}

		if name == DefaultConnectionName {
			defaultName = name
		}
	}

	if defaultName == "" {
		return nil
	}

	if err := m.registry.SetDefaultConnection(defaultName); err != nil {
		return fmt.Errorf("load default connection %q: %w", defaultName, err)
	}

	return nil
}

// SetDefaultConnection makes name the default connection and stores it under
// KeyDefaultConnection.
func (m *Manager) SetDefaultConnection(name string) error {
	if err := m.registry.SetDefaultConnection(name); err != nil {
		return err
	}

	return m.mirrorDefault()
}

// RegisterConnection registers dsn under name and stores its string form
// under KeyConnection.
func (m *Manager) RegisterConnection(name string, dsn DSN) error {
	previous := m.registry.DefaultConnection()

	if err := m.registry.RegisterConnection(name, dsn); err != nil {
		return err
	}

	if err := m.store.Set(joinKey(KeyConnection, name), dsn.String()); err != nil {
		return fmt.Errorf("mirror connection %s: %w", name, err)
	}

	if m.registry.DefaultConnection() != previous {
		return m.mirrorDefault()
	}

	return nil
}

// UnregisterConnection removes the named connection and its stored DSN. When
// the removal moves the default, the new default is stored as well.
func (m *Manager) UnregisterConnection(name string) error {
	previous := m.registry.DefaultConnection()

	if err := m.registry.UnregisterConnection(name); err != nil {
		return err
	}

	if err := m.store.Unset(joinKey(KeyConnection, name)); err != nil {
		return fmt.Errorf("mirror connection %s: %w", name, err)
	}

	if m.registry.DefaultConnection() != previous {
		return m.mirrorDefault()
	}

	return nil
}

// RegisterDriver maps protocol to driver and stores the mapping under
// KeyDriver.
func (m *Manager) RegisterDriver(protocol, driver string) error {
	if err := m.registry.RegisterDriver(protocol, driver); err != nil {
		return err
	}

	if err := m.store.Set(joinKey(KeyDriver, protocol), driver); err != nil {
		return fmt.Errorf("mirror driver %s: %w", protocol, err)
	}

	return nil
}

// UnregisterDriver removes the driver for protocol and its stored mapping.
func (m *Manager) UnregisterDriver(protocol string) error {
	if err := m.registry.UnregisterDriver(protocol); err != nil {
		return err
	}

	if err := m.store.Unset(joinKey(KeyDriver, protocol)); err != nil {
		return fmt.Errorf("mirror driver %s: %w", protocol, err)
	}

	return nil
}

// mirrorDefault writes the registry's current default to the store. The
// connection literally named "default" keeps its DSN under the key, which
// selects it as default on load. Any other name overwrites that DSN.
func (m *Manager) mirrorDefault() error {
	name := m.registry.DefaultConnection()

	var err error
	switch name {
	case "":
		err = m.store.Unset(KeyDefaultConnection)
	case DefaultConnectionName:
		dsn, ok := m.registry.Connections()[DefaultConnectionName]
		if !ok {
			return fmt.Errorf("mirror default connection: %q: %w", name, ErrNotFound)
		}
		err = m.store.Set(KeyDefaultConnection, dsn.String())
	default:
		if dsn, ok := m.registry.Connections()[DefaultConnectionName]; ok {
			m.logger.Warn("connection named default is no longer stored",
				"default", name,
				"dsn", dsn.Redacted(),
			)
		}
		err = m.store.Set(KeyDefaultConnection, name)
	}

	if err != nil {
		return fmt.Errorf("mirror default connection: %w", err)
	}

	return nil
}

// HasDefiner reports whether a Definer is available for protocol. A definer
// that resolves once is cached. A missing factory or a failing factory is
// reported as false, not as an error.
func (m *Manager) HasDefiner(protocol string) (bool, error) {
	if !IsValidName(protocol) {
		return false, fmt.Errorf("has definer: invalid protocol %q: %w", protocol, ErrInvalidInput)
	}

	if _, ok := m.definers[protocol]; ok {
		return true, nil
	}

	factory, ok := m.factories[protocol]
	if !ok {
		m.logger.Debug("no definer registered", "protocol", protocol)
		return false, nil
	}

	definer, err := factory()
	if err != nil || definer == nil {
		m.logger.Debug("definer unavailable", "protocol", protocol, "err", err)
		return false, nil
	}

	m.definers[protocol] = definer
	return true, nil
}

// Definer returns the Definer for protocol, resolving it on first use.
func (m *Manager) Definer(protocol string) (Definer, error) {
	ok, err := m.HasDefiner(protocol)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, fmt.Errorf("definer %s: %w", protocol, ErrNotFound)
	}

	return m.definers[protocol], nil
}

// Drivers returns the registered protocol to driver mapping.
func (m *Manager) Drivers() map[string]string {
	return m.registry.Drivers()
}

// Connections returns the registered connections.
func (m *Manager) Connections() map[string]DSN {
	return m.registry.Connections()
}

// DefaultConnection returns the default connection name.
func (m *Manager) DefaultConnection() string {
	return m.registry.DefaultConnection()
}
