package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sagarc03/dbmanager"
	"github.com/sagarc03/dbmanager/clientcli"
	"github.com/sagarc03/dbmanager/config"
	"github.com/sagarc03/dbmanager/configstore"
	"github.com/sagarc03/dbmanager/definer"
)

// errRemote is returned by commands that need direct database access.
var errRemote = errors.New("command needs the local store; drop --server")

// backend is what the driver, connection and definer commands operate on.
// localBackend edits the store directly, clientcli.Client goes through a
// running server.
type backend interface {
	Drivers(ctx context.Context) (map[string]string, error)
	RegisterDriver(ctx context.Context, protocol, driver string) error
	UnregisterDriver(ctx context.Context, protocol string) error

	Connections(ctx context.Context) (*clientcli.ConnectionList, error)
	RegisterConnection(ctx context.Context, name, dsn string) error
	UnregisterConnection(ctx context.Context, name string) error

	DefaultConnection(ctx context.Context) (string, error)
	SetDefaultConnection(ctx context.Context, name string) error

	Definer(ctx context.Context, protocol string) (*clientcli.DefinerInfo, error)
}

// app is a Manager over an opened store and the registry it decorates.
type app struct {
	store    configstore.Store
	registry *dbmanager.MemoryRegistry
	manager  *dbmanager.Manager
}

func openApp(ctx context.Context, cfg *config.Config) (*app, error) {
	store, err := configstore.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	registry := dbmanager.NewMemoryRegistry()
	manager, err := dbmanager.New(registry, store,
		dbmanager.WithDefiners(definer.Defaults()),
		dbmanager.WithLogger(slog.Default()),
	)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("load registry: %w", err)
	}

	slog.Debug("registry loaded",
		"store", cfg.Store.Type,
		"drivers", len(manager.Drivers()),
		"connections", len(manager.Connections()),
	)

	return &app{store: store, registry: registry, manager: manager}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// open opens the named connection, or the default one for an empty name.
func (a *app) open(ctx context.Context, name string) (*sql.DB, error) {
	return a.registry.Open(ctx, name)
}

// localBackend adapts an app to backend. Every mutation is saved at once.
type localBackend struct {
	*app
}

func (b localBackend) save(ctx context.Context, err error) error {
	if err != nil {
		return err
	}
	if err := b.store.Save(ctx); err != nil {
		return fmt.Errorf("save store: %w", err)
	}
	return nil
}

func (b localBackend) Drivers(_ context.Context) (map[string]string, error) {
	return b.manager.Drivers(), nil
}

func (b localBackend) RegisterDriver(ctx context.Context, protocol, driver string) error {
	return b.save(ctx, b.manager.RegisterDriver(protocol, driver))
}

func (b localBackend) UnregisterDriver(ctx context.Context, protocol string) error {
	return b.save(ctx, b.manager.UnregisterDriver(protocol))
}

func (b localBackend) Connections(_ context.Context) (*clientcli.ConnectionList, error) {
	list := &clientcli.ConnectionList{
		Default:     b.manager.DefaultConnection(),
		Connections: make(map[string]string),
	}
	for name, dsn := range b.manager.Connections() {
		list.Connections[name] = dsn.Redacted()
	}
	return list, nil
}

func (b localBackend) RegisterConnection(ctx context.Context, name, raw string) error {
	dsn, err := dbmanager.ParseDSN(raw)
	if err != nil {
		return err
	}
	return b.save(ctx, b.manager.RegisterConnection(name, dsn))
}

func (b localBackend) UnregisterConnection(ctx context.Context, name string) error {
	return b.save(ctx, b.manager.UnregisterConnection(name))
}

func (b localBackend) DefaultConnection(_ context.Context) (string, error) {
	return b.manager.DefaultConnection(), nil
}

func (b localBackend) SetDefaultConnection(ctx context.Context, name string) error {
	return b.save(ctx, b.manager.SetDefaultConnection(name))
}

func (b localBackend) Definer(_ context.Context, protocol string) (*clientcli.DefinerInfo, error) {
	ok, err := b.manager.HasDefiner(protocol)
	if err != nil {
		return nil, err
	}
	return &clientcli.DefinerInfo{Protocol: protocol, Available: ok}, nil
}

// remoteConfig merges environment and flags into a client config. It returns
// nil when no server was selected.
func remoteConfig() *clientcli.Config {
	cfg := clientcli.MergeConfig(clientcli.ConfigFromEnv(), &clientcli.Config{
		Endpoint: server,
		Token:    token,
	})
	if cfg.Endpoint == "" {
		return nil
	}
	return cfg
}

// withBackend runs fn against the remote server when one is configured and
// against the local store otherwise.
func withBackend(cmd *cobra.Command, fn func(ctx context.Context, b backend) error) error {
	ctx := cmd.Context()

	if rc := remoteConfig(); rc != nil {
		client, err := clientcli.New(rc)
		if err != nil {
			return err
		}
		return fn(ctx, client)
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		return fn(ctx, localBackend{a})
	})
}

// withApp runs fn against the local store. It refuses to run in remote mode.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	if remoteConfig() != nil {
		return errRemote
	}

	ctx := cmd.Context()
	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	return fn(ctx, a)
}

// getFormatter returns the appropriate formatter based on flags.
func getFormatter() clientcli.Formatter {
	return clientcli.NewFormatter(jsonOutput, quiet)
}
