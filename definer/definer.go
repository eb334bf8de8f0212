// Package definer wires the built-in dbmanager.Definer implementations to the
// protocols they serve.
package definer

import (
	"github.com/sagarc03/dbmanager"
	"github.com/sagarc03/dbmanager/definer/mysql"
	"github.com/sagarc03/dbmanager/definer/postgres"
	"github.com/sagarc03/dbmanager/definer/sqlite"
)

// Defaults returns the built-in definer factories keyed by protocol. The map
// is freshly allocated, so callers may add or remove entries.
func Defaults() map[string]dbmanager.DefinerFactory {
	return map[string]dbmanager.DefinerFactory{
		"sqlite":     sqlite.New,
		"sqlite3":    sqlite.New,
		"postgres":   postgres.New,
		"postgresql": postgres.New,
		"mysql":      mysql.New,
		"mariadb":    mysql.New,
	}
}
