// Package config provides configuration loading and validation for dbmanager.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// This is the configuration of the dbmanager tool itself. The drivers and
// connections it manages live in the store selected by the store section.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (DBMANAGER_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"dbmanager.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with DBMANAGER_ prefix:
//   - store.type → DBMANAGER_STORE_TYPE
//   - store.dsn → DBMANAGER_STORE_DSN
//   - server.port → DBMANAGER_SERVER_PORT
//
// # Configuration Structure
//
// The Config struct contains:
//   - Env: dev or prod, selects the log format
//   - Store: backend holding drivers and connections (file, sqlite, postgres, memory)
//   - Server: admin API port and shutdown timeout
//   - CORS: cross-origin resource sharing settings for the admin API
//   - Log: logging level
//
// # Validation
//
// Configuration is validated using struct tags:
//   - Port must be 1-65535
//   - Store type must be file, sqlite, postgres, or memory
//   - The sqlite and postgres stores require a DSN
//   - Log level must be debug, info, warn, or error
package config
