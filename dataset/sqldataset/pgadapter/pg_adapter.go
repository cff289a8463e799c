package pgadapter

import (
	"database/sql"
	"fmt"
	"strings"

	// Import of PostgreSQL driver
	_ "github.com/lib/pq"
	"github.com/formcheck/formcheck/dataset/sqldataset"
)

type adapter struct {
	url      string
	maxConns int
}

/*
New takes a PostgreSQL connection URL and a limit for open
connections (0 for no limit) and returns an sqldataset.Adapter
that works on the database the URL points to.
*/
func New(url string, maxConns int) (sqldataset.Adapter, error) {
	if !strings.HasPrefix(url, "postgresql://") && !strings.HasPrefix(url, "postgres://") {
		return nil, fmt.Errorf("%s is not a PostgreSQL connection URL", url)
	}
	return &adapter{url, maxConns}, nil
}

func (a *adapter) OpenDB() (*sql.DB, error) {
	db, err := sql.Open("postgres", a.url)
	if err != nil {
		return nil, fmt.Errorf("opening PostgreSQL database: %v", err)
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
