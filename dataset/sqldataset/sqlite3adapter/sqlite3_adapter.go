package sqlite3adapter

import (
	"database/sql"
	"fmt"
	"strings"

	// Import of sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
	"github.com/formcheck/formcheck/dataset/sqldataset"
)

type adapter struct {
	path     string
	maxConns int
}

/*
New takes a path to an SQLite3 database file and a limit for open
connections (0 for no limit) and returns an
sqldataset.Adapter that works on the file's database.
*/
func New(path string, maxConns int) (sqldataset.Adapter, error) {
	if path == "" {
		return nil, fmt.Errorf("no path to an SQLite3 database file was given")
	}
	return &adapter{path, maxConns}, nil
}

func (a *adapter) OpenDB() (*sql.DB, error) {
	db, err := sql.Open("sqlite3", a.path)
	if err != nil {
		return nil, fmt.Errorf("opening SQLite3 database at %s: %v", a.path, err)
	}
	db.SetMaxOpenConns(a.maxConns)
	return db, nil
}

func (a *adapter) TableName(name string) (string, error) {
	if strings.ContainsAny(name, `"`) {
		return "", fmt.Errorf(`table name '%s' contains invalid character '"'`, name)
	}
	return fmt.Sprintf("%q", name), nil
}
