/*
Package csv loads observation tables from and dumps them to CSV
streams. The first row is the header naming the columns; column
types are inferred from the values below it.
*/
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/formcheck/formcheck/dataset"
	"github.com/formcheck/formcheck/schema"
)

/*
ReadTable takes an io.Reader for a CSV stream, a source name for
error reporting and a schema and returns the table parsed from the
stream or an error. Malformed CSV content is reported as a
*dataset.FormatError.
*/
func ReadTable(reader io.Reader, source string, sc *schema.Schema) (*dataset.Table, error) {
	r := csv.NewReader(reader)
	// Ragged rows are reported with their line, not by the csv
	// package's own record-length check.
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return nil, &dataset.FormatError{Source: source, Line: 1, Err: fmt.Errorf("reading header: %v", err)}
	}
	var records [][]string
	for l := 2; ; l++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &dataset.FormatError{Source: source, Line: l, Err: fmt.Errorf("reading body: %v", err)}
		}
		records = append(records, row)
	}
	return dataset.FromRecords(source, header, records, sc)
}

/*
ReadTableFromFilePath takes a filepath string and a schema, opens
the file the filepath points to and uses ReadTable to return the
table read from it or an error. An empty filepath reads STDIN.
*/
func ReadTableFromFilePath(filepath string, sc *schema.Schema) (*dataset.Table, error) {
	var f *os.File
	var err error
	if filepath == "" {
		f = os.Stdin
	} else {
		f, err = os.Open(filepath)
		if err != nil {
			return nil, fmt.Errorf("opening table at %s: %v", filepath, err)
		}
		defer f.Close()
	}
	t, err := ReadTable(f, filepath, sc)
	if err != nil {
		return nil, fmt.Errorf("parsing CSV file %s: %w", filepath, err)
	}
	return t, nil
}

/*
WriteTable takes an io.Writer and a table and dumps the table to
the writer as CSV: a header row with the table's column names
followed by one row per sample. Undefined values are written as
empty fields.
*/
func WriteTable(w io.Writer, t *dataset.Table) error {
	cw := csv.NewWriter(w)
	features := t.Features()
	header := make([]string, len(features))
	for i, f := range features {
		header[i] = f.Name()
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %v", err)
	}
	row := make([]string, len(features))
	for _, sample := range t.Samples() {
		for i, f := range features {
			v, err := sample.ValueFor(f)
			if err != nil {
				return err
			}
			row[i] = formatValue(v)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row: %v", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatValue(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
