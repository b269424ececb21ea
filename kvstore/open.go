package kvstore

import (
	"strings"

	ledger "github.com/belisario-afk/cakepop-ledger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
)

// Store is a KV that can list its keys and must be closed after use.
type Store interface {
	ledger.KV
	Keys() ([]string, error)
	Close() error
}

// Open returns the store described by location:
//
//	sqlite:<path>          a SQLite database file
//	postgres://...         a PostgreSQL database (postgresql:// works too)
//	<path>                 a folder of JSON files
func Open(location string) (Store, error) {
	switch {
	case strings.HasPrefix(location, "sqlite:"):
		return OpenSQL(sqlite.Open(strings.TrimPrefix(location, "sqlite:")))
	case strings.HasPrefix(location, "postgres://"), strings.HasPrefix(location, "postgresql://"):
		return OpenSQL(postgres.Open(location))
	default:
		return NewDir(location), nil
	}
}

// Close is a no-op, files are closed after each operation.
func (d *Dir) Close() error { return nil }
