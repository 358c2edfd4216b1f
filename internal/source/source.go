// Package source provides implementations of the canonical record source:
// a JSON file for bundled data, an embedded SQLite catalog, and a PostgreSQL
// catalog. The core consumes whichever is selected through domain.RecordSource
// and never learns where records came from.
package source

import (
	"fmt"
	"os"

	"catalogcore/internal/source/file"
	"catalogcore/internal/source/postgres"
	"catalogcore/internal/source/sqlite"
	"catalogcore/pkg/domain"
)

// Driver identifies a concrete record source implementation.
type Driver string

const (
	DriverFile     Driver = "file"     // bundled JSON document (default)
	DriverSQLite   Driver = "sqlite"   // embedded sqlite catalog
	DriverPostgres Driver = "postgres" // PostgreSQL catalog
)

// New constructs a record source for the driver. path is the JSON document
// for file, the database file for sqlite, and the DSN for postgres; empty
// values fall back to each implementation's default.
func New(driver Driver, path string) (domain.RecordSource, error) {
	switch driver {
	case DriverFile, "":
		return file.New(path), nil
	case DriverSQLite:
		return sqlite.New(path), nil
	case DriverPostgres:
		return postgres.New(path), nil
	default:
		return nil, fmt.Errorf("unknown source driver %s", driver)
	}
}

// Open selects a record source using environment variables. Defaults to the
// bundled JSON file when unset.
//
//	CATALOGCORE_SOURCE_DRIVER: file|sqlite|postgres (default file)
//	CATALOGCORE_SOURCE_PATH: path to the JSON document (default ./catalog.json)
//	CATALOGCORE_SQLITE_PATH: path to the sqlite file (default ./catalog.db)
//	CATALOGCORE_POSTGRES_DSN: postgres DSN when driver=postgres
func Open() (domain.RecordSource, error) {
	driver := Driver(os.Getenv("CATALOGCORE_SOURCE_DRIVER"))
	switch driver {
	case DriverSQLite:
		return New(driver, os.Getenv("CATALOGCORE_SQLITE_PATH"))
	case DriverPostgres:
		return New(driver, os.Getenv("CATALOGCORE_POSTGRES_DSN"))
	default:
		return New(driver, os.Getenv("CATALOGCORE_SOURCE_PATH"))
	}
}
