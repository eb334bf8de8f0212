package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/dbmanager/config"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	// Load with no config files should use defaults
	cfg, err := config.Load(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.False(t, cfg.IsProd())
	assert.Equal(t, "file", cfg.Store.Type)
	assert.Equal(t, "database.yaml", cfg.Store.Path)
	assert.Equal(t, "dbmanager_settings", cfg.Store.Table)
	assert.Equal(t, 5709, cfg.Server.Port)
	assert.Equal(t, 30, cfg.Server.ShutdownTimeout)
	assert.False(t, cfg.CORS.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_ConfigFile(t *testing.T) {
	configPath := writeConfig(t, "dbmanager.yaml", `
env: production
store:
  type: postgres
  dsn: postgres://localhost/settings
  table: custom_settings
server:
  port: 8080
log:
  level: debug
`)

	cfg, err := config.Load([]string{configPath}, nil)
	require.NoError(t, err)

	assert.True(t, cfg.IsProd())
	assert.Equal(t, "postgres", cfg.Store.Type)
	assert.Equal(t, "postgres://localhost/settings", cfg.Store.DSN)
	assert.Equal(t, "custom_settings", cfg.Store.Table)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_ConfigFileMerge(t *testing.T) {
	basePath := writeConfig(t, "base.yaml", `
store:
  type: sqlite
  dsn: settings.db
server:
  port: 5709
log:
  level: info
`)

	overridePath := writeConfig(t, "override.yaml", `
server:
  port: 9000
`)

	// Load with merge (later files override earlier)
	cfg, err := config.Load([]string{basePath, overridePath}, nil)
	require.NoError(t, err)

	// Overridden values
	assert.Equal(t, 9000, cfg.Server.Port)

	// Preserved values from base
	assert.Equal(t, "sqlite", cfg.Store.Type)
	assert.Equal(t, "settings.db", cfg.Store.DSN)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "invalid port",
			content: `
server:
  port: 99999
`,
		},
		{
			name: "invalid store type",
			content: `
store:
  type: redis
`,
		},
		{
			name: "sqlite store without dsn",
			content: `
store:
  type: sqlite
`,
		},
		{
			name: "postgres store without dsn",
			content: `
store:
  type: postgres
`,
		},
		{
			name: "invalid log level",
			content: `
log:
  level: verbose
`,
		},
		{
			name: "invalid env",
			content: `
env: staging
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := writeConfig(t, "dbmanager.yaml", tt.content)

			_, err := config.Load([]string{configPath}, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "validate config")
		})
	}
}

func TestLoad_WithCORS(t *testing.T) {
	configPath := writeConfig(t, "dbmanager.yaml", `
cors:
  enabled: true
  allowed_origins:
    - https://example.com
    - https://admin.example.com
  allowed_methods:
    - GET
    - PUT
  allowed_headers:
    - Content-Type
  max_age: 600
`)

	cfg, err := config.Load([]string{configPath}, nil)
	require.NoError(t, err)

	assert.True(t, cfg.CORS.Enabled)
	assert.Equal(t, []string{"https://example.com", "https://admin.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, []string{"GET", "PUT"}, cfg.CORS.AllowedMethods)
	assert.Equal(t, []string{"Content-Type"}, cfg.CORS.AllowedHeaders)
	assert.Equal(t, 600, cfg.CORS.MaxAge)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	// Set environment variables
	t.Setenv("DBMANAGER_SERVER_PORT", "9090")
	t.Setenv("DBMANAGER_STORE_TYPE", "sqlite")
	t.Setenv("DBMANAGER_STORE_DSN", "env.db")
	t.Setenv("DBMANAGER_LOG_LEVEL", "warn")

	cfg, err := config.Load(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Store.Type)
	assert.Equal(t, "env.db", cfg.Store.DSN)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_Flags(t *testing.T) {
	t.Setenv("DBMANAGER_SERVER_PORT", "9090")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", 5709, "")
	flags.String("store-type", "", "")
	flags.String("store-dsn", "", "")
	flags.String("log-level", "", "")

	require.NoError(t, flags.Parse([]string{"--port", "7000", "--store-type", "memory"}))

	cfg, err := config.Load(nil, flags)
	require.NoError(t, err)

	// flags beat env, unset flags do not override defaults
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Store.Type)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestContext(t *testing.T) {
	_, err := config.FromContext(context.Background())
	assert.Error(t, err)

	cfg, err := config.Load(nil, nil)
	require.NoError(t, err)

	got, err := config.FromContext(config.WithContext(context.Background(), cfg))
	require.NoError(t, err)
	assert.Same(t, cfg, got)
}

func TestLoad_UnmappedFlagsIgnored(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("server", "", "")
	flags.Bool("json", false, "")

	require.NoError(t, flags.Parse([]string{"--server", "http://admin:5709", "--json"}))

	cfg, err := config.Load(nil, flags)
	require.NoError(t, err)
	assert.Equal(t, 5709, cfg.Server.Port)
}
