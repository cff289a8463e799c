/*
Package sqldataset loads observation tables stored on SQL
databases. The specific database technology is abstracted behind
the Adapter interface, with implementations for SQLite3 files and
PostgreSQL databases in subpackages.

Tables are read whole into memory: the analysis is a one-shot
batch run over datasets that fit comfortably in a process, so no
criteria are pushed down to the database.
*/
package sqldataset

import (
	"database/sql"
	"fmt"

	"github.com/formcheck/formcheck/dataset"
	"github.com/formcheck/formcheck/schema"
)

/*
Adapter is an interface to the specific database technology
holding an observation table.

Its OpenDB method returns a handle to the database.

Its TableName method takes the name of the observation table and
returns it quoted for the backend, or an error if the name cannot
be used safely.
*/
type Adapter interface {
	OpenDB() (*sql.DB, error)
	TableName(name string) (string, error)
}

/*
ReadTable takes an adapter, the name of the database table holding
the observations and a schema, and returns the table read from the
database or an error. Column values are read as text and typed by
inspection, the same way CSV sources are.
*/
func ReadTable(a Adapter, name string, sc *schema.Schema) (*dataset.Table, error) {
	quoted, err := a.TableName(name)
	if err != nil {
		return nil, err
	}
	db, err := a.OpenDB()
	if err != nil {
		return nil, fmt.Errorf("opening database: %v", err)
	}
	defer db.Close()

	rows, err := db.Query(fmt.Sprintf("SELECT * FROM %s", quoted))
	if err != nil {
		return nil, fmt.Errorf("querying table %s: %v", name, err)
	}
	defer rows.Close()

	header, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns of table %s: %v", name, err)
	}
	var records [][]string
	scanned := make([]sql.NullString, len(header))
	pointers := make([]interface{}, len(header))
	for i := range scanned {
		pointers[i] = &scanned[i]
	}
	for rows.Next() {
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("scanning row of table %s: %v", name, err)
		}
		record := make([]string, len(header))
		for i, v := range scanned {
			if v.Valid {
				record[i] = v.String
			}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading table %s: %v", name, err)
	}
	return dataset.FromRecords(name, header, records, sc)
}
