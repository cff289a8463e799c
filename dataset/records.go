package dataset

import (
	"fmt"
	"strconv"

	"github.com/formcheck/formcheck/feature"
	"github.com/formcheck/formcheck/schema"
)

/*
FormatError is the error returned when a tabular source cannot be
turned into a table: ragged rows, duplicated columns, or label
values outside the schema's classes.
*/
type FormatError struct {
	// Source names the input the rows came from.
	Source string
	// Line is the 1-based line of the offending row in the source,
	// counting the header as line 1, or 0 when the whole source is
	// malformed.
	Line int
	Err  error
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed data in %s, line %d: %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("malformed data in %s: %v", e.Source, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

/*
FromRecords takes a source name, a header row, the data rows below
it and a schema, and returns a table built from them or a
*FormatError.

Columns are typed by inspection: a column whose defined values all
parse as numbers becomes a continuous feature, any other becomes a
discrete feature with the values observed for it. The schema
supplies the missing-value tokens, and the label column, when
present, takes its feature from the schema so that its values are
checked against the declared classes.
*/
func FromRecords(source string, header []string, records [][]string, sc *schema.Schema) (*Table, error) {
	seen := make(map[string]bool)
	for _, name := range header {
		if seen[name] {
			return nil, &FormatError{source, 1, fmt.Errorf("duplicated column %s", name)}
		}
		seen[name] = true
	}
	for i, record := range records {
		if len(record) != len(header) {
			return nil, &FormatError{source, i + 2, fmt.Errorf("row has %d columns, header has %d", len(record), len(header))}
		}
	}

	features := make([]feature.Feature, len(header))
	columns := make([][]interface{}, len(header))
	for j, name := range header {
		f, values, err := inferColumn(source, name, j, records, sc)
		if err != nil {
			return nil, err
		}
		features[j] = f
		columns[j] = values
	}

	samples := make([]Sample, len(records))
	for i := range records {
		featureValues := make(map[string]interface{}, len(header))
		for j, name := range header {
			if columns[j][i] != nil {
				featureValues[name] = columns[j][i]
			}
		}
		samples[i] = NewSample(featureValues)
	}
	return New(features, samples), nil
}

func inferColumn(source, name string, j int, records [][]string, sc *schema.Schema) (feature.Feature, []interface{}, error) {
	values := make([]interface{}, len(records))
	if name == sc.Label.Column {
		label := sc.LabelFeature()
		for i, record := range records {
			if sc.MissingToken(record[j]) {
				continue
			}
			ok, err := label.Valid(record[j])
			if !ok {
				return nil, nil, &FormatError{source, i + 2, err}
			}
			values[i] = record[j]
		}
		return label, values, nil
	}

	numeric := true
	for i, record := range records {
		if sc.MissingToken(record[j]) {
			continue
		}
		v, err := strconv.ParseFloat(record[j], 64)
		if err != nil {
			numeric = false
			break
		}
		values[i] = v
	}
	if numeric {
		return feature.NewContinuousFeature(name), values, nil
	}

	var availableValues []string
	seen := make(map[string]bool)
	for i, record := range records {
		if sc.MissingToken(record[j]) {
			values[i] = nil
			continue
		}
		values[i] = record[j]
		if !seen[record[j]] {
			seen[record[j]] = true
			availableValues = append(availableValues, record[j])
		}
	}
	return feature.NewDiscreteFeature(name, availableValues), values, nil
}
