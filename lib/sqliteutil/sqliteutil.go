package sqliteutil

import (
	"database/sql"
	"strings"

	devenv "fplassist-backend/dev/env"

	_ "modernc.org/sqlite"
)

// OpenDB opens a sqlite database at `path` (supporting the <dev_state>
// prefix) and applies the given schema, tolerating tables that already
// exist.
func OpenDB(schema, path string) (*sql.DB, error) {
	dbpath, err := devenv.ResolvePath(path)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dbpath)
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(schema)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		db.Close()
		return nil, err
	}
	return db, nil
}
