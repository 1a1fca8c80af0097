package bolt

import (
	"github.com/asdine/storm/v3"
)

// DB represents an embedded storm database. It backs development setups and
// store-level tests; production deployments use the mongo driver.
type DB struct {
	path    string
	stormDB *storm.DB
}

// NewDB returns a new, unopened database at path.
func NewDB(path string) *DB {
	return &DB{
		path: path,
	}
}

// Open opens the underlying bolt file.
func (db *DB) Open() error {
	stormDB, err := storm.Open(db.path)
	if err != nil {
		return err
	}
	db.stormDB = stormDB

	return nil
}

// Close closes the bolt file.
func (db *DB) Close() error {
	if db.stormDB != nil {
		return db.stormDB.Close()
	}

	return nil
}
