// Package configstore provides persistent dbmanager.ConfigStore backends.
//
// Every backend keeps its values in memory and writes them out on Save, so a
// dbmanager.Manager can mirror many mutations and persist them at once.
//
// # Supported Backends
//
//   - file: YAML file, read with viper and written atomically
//   - sqlite: key/value table in a SQLite database
//   - postgres: key/value table in a PostgreSQL database, written with COPY
//   - memory: nothing is persisted
//
// # Usage
//
//	store, err := configstore.Open(ctx, configstore.Config{
//	    Type: "sqlite",
//	    DSN:  "dbmanager.db",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	m, err := dbmanager.New(dbmanager.NewMemoryRegistry(), store)
//	...
//	err = store.Save(ctx)
//
// The SQL backends create their table on open and validate its schema before
// loading any values.
package configstore
