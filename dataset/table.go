package dataset

import (
	"fmt"
	"math"

	"github.com/formcheck/formcheck/feature"
)

/*
Table represents an in-memory observation table: an ordered slice
of features (its columns) and the samples observed for them (its
rows).

Tables are immutable: every operation that narrows a table, by
rows or by columns, returns a new one and shares the samples of
the original.

Its Entropy method returns the entropy of the table for a given
feature: a measure of the disinformation we have on the values
samples take for it.

Its SubsetWith method takes a feature.Criterion and returns a
table that only contains samples satisfying it.

Its Project method takes a slice of features and returns a table
with exactly those columns.
*/
type Table struct {
	features []feature.Feature
	samples  []Sample
	entropy  map[string]float64
}

/*
New takes a slice of features and a slice of samples and returns a
table built with them.
*/
func New(features []feature.Feature, samples []Sample) *Table {
	return &Table{features, samples, map[string]float64{}}
}

/*
Features returns the ordered slice of features the table has
columns for.
*/
func (t *Table) Features() []feature.Feature {
	return t.features
}

/*
Feature takes a name string and returns the table feature with
that name, or nil if the table has no column for it.
*/
func (t *Table) Feature(name string) feature.Feature {
	for _, f := range t.features {
		if f.Name() == name {
			return f
		}
	}
	return nil
}

/*
Samples returns the samples of the table
*/
func (t *Table) Samples() []Sample {
	return t.samples
}

/*
Count returns the number of samples of the table
*/
func (t *Table) Count() int {
	return len(t.samples)
}

/*
Entropy takes a feature and returns the entropy of the table for
it. Samples with no defined value for the feature are left out of
the calculation.
*/
func (t *Table) Entropy(f feature.Feature) (float64, error) {
	if e, ok := t.entropy[f.Name()]; ok {
		return e, nil
	}
	var result float64
	featureValueCounts := make(map[string]float64)
	count := 0.0
	for _, sample := range t.samples {
		v, err := sample.ValueFor(f)
		if err != nil {
			return result, err
		}
		if v != nil {
			vString, ok := v.(string)
			if !ok {
				vString = fmt.Sprintf("%v", v)
			}
			count += 1.0
			featureValueCounts[vString] += 1.0
		}
	}
	for _, v := range featureValueCounts {
		probValue := v / count
		result -= probValue * math.Log(probValue)
	}
	t.entropy[f.Name()] = result
	return result, nil
}

/*
SubsetWith takes a feature.Criterion and returns a new table with
the same columns containing only the samples that satisfy it.
*/
func (t *Table) SubsetWith(c feature.Criterion) (*Table, error) {
	var samples []Sample
	for _, sample := range t.samples {
		ok, err := c.SatisfiedBy(sample)
		if err != nil {
			return nil, err
		}
		if ok {
			samples = append(samples, sample)
		}
	}
	return New(t.features, samples), nil
}

/*
FeatureValues takes a feature and returns the distinct defined
values the table's samples have for it, in first-seen order.
*/
func (t *Table) FeatureValues(f feature.Feature) ([]interface{}, error) {
	seen := make(map[interface{}]bool)
	var result []interface{}
	for _, sample := range t.samples {
		v, err := sample.ValueFor(f)
		if err != nil {
			return nil, err
		}
		if v != nil && !seen[v] {
			seen[v] = true
			result = append(result, v)
		}
	}
	return result, nil
}

/*
CountFeatureValues takes a feature and returns a map of the
distinct defined values the table's samples have for it to the
number of samples with each value.
*/
func (t *Table) CountFeatureValues(f feature.Feature) (map[string]int, error) {
	result := make(map[string]int)
	for _, sample := range t.samples {
		v, err := sample.ValueFor(f)
		if err != nil {
			return nil, err
		}
		if v != nil {
			vString, ok := v.(string)
			if !ok {
				vString = fmt.Sprintf("%v", v)
			}
			result[vString]++
		}
	}
	return result, nil
}

/*
Project takes a slice of features and returns a new table with
exactly those columns, in the given order, sharing the samples of
the original. It returns an error naming the first feature the
table has no column for.
*/
func (t *Table) Project(features []feature.Feature) (*Table, error) {
	for _, f := range features {
		if t.Feature(f.Name()) == nil {
			return nil, fmt.Errorf("projecting table: no column %s", f.Name())
		}
	}
	projected := make([]feature.Feature, len(features))
	copy(projected, features)
	return New(projected, t.samples), nil
}
