package sqliteutil

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Opens the database at path, creating the file and parent directories
// if needed, and applies the given schema. A path of the form
// libsql://... opens a remote turso database instead of a local file.
func OpenDB(schema string, path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("a database path was not specified")
	}

	driver := "sqlite"
	local := true
	if strings.HasPrefix(path, "libsql://") {
		driver = "libsql"
		local = false
	}

	if local && path != ":memory:" {
		dir := filepath.Dir(path)
		if dir != "." {
			err := os.MkdirAll(dir, 0755)
			if err != nil {
				return nil, err
			}
		}
		_, statErr := os.Stat(path)
		if os.IsNotExist(statErr) {
			f, err := os.Create(path)
			if err != nil {
				return nil, err
			}
			f.Close()
		}
	}

	db, err := sql.Open(driver, path)
	if err != nil {
		return nil, err
	}

	if local {
		// see this stackoverflow post for information on why the following
		// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
		db.SetMaxOpenConns(1)
		_, err = db.Exec("PRAGMA journal_mode=WAL")
		if err != nil {
			db.Close()
			return nil, err
		}
	}

	_, err = db.Exec(schema)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		db.Close()
		return nil, err
	}

	return db, nil
}
