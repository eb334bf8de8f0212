//go:build cgo

package dbmanager

// Drivers that need cgo.
import (
	_ "github.com/godror/godror"    // godror
	_ "github.com/mattn/go-sqlite3" // sqlite3
)
