/*
Package filter narrows an observation table down to the columns
worth modeling on.

Filtering decisions are made once, on the training table, and
recorded as a Selection that is applied to the testing table by
column name. The testing table never contributes to the decisions:
deriving them twice would let the two tables drift apart.
*/
package filter

import (
	"fmt"
	"sort"

	"github.com/formcheck/formcheck/dataset"
	"github.com/formcheck/formcheck/feature"
	"github.com/formcheck/formcheck/schema"
)

/*
SchemaMismatchError is the error returned when the testing table
lacks a column the training selection requires. It is detected
before any prediction is attempted.
*/
type SchemaMismatchError struct {
	Column string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("table has no column %s required by the feature selection", e.Column)
}

/*
Config holds the thresholds of the near-zero-variance column drop.
A column is dropped when the ratio of its most common value's
frequency to its second most common value's frequency exceeds
FrequencyCutoff and the percentage of distinct values over the
number of rows is below UniqueCutoff. Columns with fewer than two
distinct defined values are dropped unconditionally.
*/
type Config struct {
	FrequencyCutoff float64
	UniqueCutoff    float64
}

// Default thresholds, the ones the original analysis relied on:
// 95/5 frequency ratio and 10% distinct values.
const (
	DefaultFrequencyCutoff = 19.0
	DefaultUniqueCutoff    = 10.0
)

func (c Config) withDefaults() Config {
	if c.FrequencyCutoff == 0 {
		c.FrequencyCutoff = DefaultFrequencyCutoff
	}
	if c.UniqueCutoff == 0 {
		c.UniqueCutoff = DefaultUniqueCutoff
	}
	return c
}

/*
Selection is the ordered set of feature columns retained by
filtering a training table. The label column is never part of a
selection.
*/
type Selection struct {
	features []feature.Feature
}

/*
Features returns the selected features in training-table column
order.
*/
func (s *Selection) Features() []feature.Feature {
	return s.features
}

/*
Names returns the names of the selected features in training-table
column order.
*/
func (s *Selection) Names() []string {
	names := make([]string, len(s.features))
	for i, f := range s.features {
		names[i] = f.Name()
	}
	return names
}

/*
Len returns the number of selected features.
*/
func (s *Selection) Len() int {
	return len(s.features)
}

/*
Apply takes a table and returns a new one with exactly the
selected columns, in selection order. It returns a
*SchemaMismatchError naming the first selected column the table
lacks.
*/
func (s *Selection) Apply(t *dataset.Table) (*dataset.Table, error) {
	for _, f := range s.features {
		if t.Feature(f.Name()) == nil {
			return nil, &SchemaMismatchError{Column: f.Name()}
		}
	}
	return t.Project(s.features)
}

/*
Result holds the outcome of filtering a training table: the
cleaned table (selected columns plus the label), the selection to
apply to the testing table, and an account of what was dropped for
the report.
*/
type Result struct {
	Table                   *dataset.Table
	Selection               *Selection
	RowsDropped             int
	MetadataDropped         []string
	NearZeroVarianceDropped []string
}

/*
Filter takes a training table, a schema and a configuration and
returns the filtering result or an error.

It drops window-summary rows, then the schema's bookkeeping
columns (the subject column stays), then near-zero-variance
columns, and records the surviving feature columns as the
selection. The label column is kept on the cleaned table but
excluded from the selection.
*/
func Filter(t *dataset.Table, sc *schema.Schema, cfg Config) (*Result, error) {
	cfg = cfg.withDefaults()
	rows, err := RawRows(t, sc)
	if err != nil {
		return nil, err
	}
	result := &Result{RowsDropped: t.Count() - rows.Count()}

	var label feature.Feature
	var candidates []feature.Feature
	for _, f := range rows.Features() {
		switch {
		case f.Name() == sc.Label.Column:
			label = f
		case f.Name() == sc.Window.Column, sc.Dropped(f.Name()):
			result.MetadataDropped = append(result.MetadataDropped, f.Name())
		default:
			candidates = append(candidates, f)
		}
	}

	var selected []feature.Feature
	for _, f := range candidates {
		if f.Name() != sc.Subject {
			nzv, err := nearZeroVariance(rows, f, cfg)
			if err != nil {
				return nil, err
			}
			if nzv {
				result.NearZeroVarianceDropped = append(result.NearZeroVarianceDropped, f.Name())
				continue
			}
		}
		selected = append(selected, f)
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("filtering left no feature columns")
	}
	result.Selection = &Selection{selected}

	kept := selected
	if label != nil {
		kept = append(append([]feature.Feature{}, selected...), label)
	}
	result.Table, err = rows.Project(kept)
	if err != nil {
		return nil, err
	}
	return result, nil
}

/*
RawRows takes a table and a schema and returns a new table with
only the rows whose window-indicator column equals the schema's
raw-row sentinel. Each table is filtered by its own indicator
column; tables without the column are returned unchanged.
*/
func RawRows(t *dataset.Table, sc *schema.Schema) (*dataset.Table, error) {
	if sc.Window.Column == "" {
		return t, nil
	}
	f := t.Feature(sc.Window.Column)
	if f == nil {
		return t, nil
	}
	df, ok := f.(*feature.DiscreteFeature)
	if !ok {
		return nil, fmt.Errorf("window column %s is not discrete", sc.Window.Column)
	}
	return t.SubsetWith(feature.NewDiscreteCriterion(df, sc.Window.RawValue))
}

func nearZeroVariance(t *dataset.Table, f feature.Feature, cfg Config) (bool, error) {
	counts := make(map[interface{}]int)
	for _, sample := range t.Samples() {
		v, err := sample.ValueFor(f)
		if err != nil {
			return false, err
		}
		if v != nil {
			counts[v]++
		}
	}
	if len(counts) < 2 {
		return true, nil
	}
	frequencies := make([]int, 0, len(counts))
	for _, c := range counts {
		frequencies = append(frequencies, c)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(frequencies)))
	frequencyRatio := float64(frequencies[0]) / float64(frequencies[1])
	percentUnique := 100.0 * float64(len(counts)) / float64(t.Count())
	return frequencyRatio > cfg.FrequencyCutoff && percentUnique < cfg.UniqueCutoff, nil
}
