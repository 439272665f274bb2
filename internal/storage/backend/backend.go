// Package backend picks the storage.Storage implementation named by the
// configuration. It is the one place that knows about every driver.
package backend

import (
	"fmt"

	"github.com/aanand-mishra/schools-api/internal/config"
	"github.com/aanand-mishra/schools-api/internal/storage"
	"github.com/aanand-mishra/schools-api/internal/storage/mysql"
	"github.com/aanand-mishra/schools-api/internal/storage/postgres"
	"github.com/aanand-mishra/schools-api/internal/storage/sqlite"
)

// New opens the store for cfg.Database.Driver. The returned store has
// its schema in place.
func New(cfg *config.Config) (storage.Storage, error) {
	var (
		store storage.Storage
		err   error
	)

	// Each case assigns through err so a failed open never yields a
	// non-nil interface holding a nil pointer.
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		var s *sqlite.SQLite
		if s, err = sqlite.New(cfg); err == nil {
			store = s
		}
	case config.DriverMySQL:
		var s *mysql.MySQL
		if s, err = mysql.New(cfg); err == nil {
			store = s
		}
	case config.DriverPostgres:
		var s *postgres.Postgres
		if s, err = postgres.New(cfg); err == nil {
			store = s
		}
	default:
		err = fmt.Errorf("backend.New: unknown database driver %q", cfg.Database.Driver)
	}

	if err != nil {
		return nil, err
	}
	return store, nil
}
