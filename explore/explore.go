/*
Package explore computes the read-only summaries of the
exploratory section of the report: frequency cross-tabulations and
per-column histograms. Nothing here feeds the trainers.
*/
package explore

import (
	"bytes"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/formcheck/formcheck/dataset"
	"github.com/formcheck/formcheck/feature"
)

/*
CrossTab is a frequency cross-tabulation of two discrete features,
typically subject against label.
*/
type CrossTab struct {
	RowFeature string
	ColFeature string
	RowValues  []string
	ColValues  []string
	counts     map[string]map[string]int
}

/*
NewCrossTab takes a table and two discrete features and returns
the cross-tabulation counting, for every pair of values, the
samples having both. Samples with either value undefined are left
out.
*/
func NewCrossTab(t *dataset.Table, rows, cols *feature.DiscreteFeature) (*CrossTab, error) {
	ct := &CrossTab{
		RowFeature: rows.Name(),
		ColFeature: cols.Name(),
		counts:     make(map[string]map[string]int),
	}
	rowSeen := make(map[string]bool)
	colSeen := make(map[string]bool)
	for _, sample := range t.Samples() {
		rv, err := sample.ValueFor(rows)
		if err != nil {
			return nil, err
		}
		cv, err := sample.ValueFor(cols)
		if err != nil {
			return nil, err
		}
		rs, rok := rv.(string)
		cs, cok := cv.(string)
		if !rok || !cok {
			continue
		}
		if ct.counts[rs] == nil {
			ct.counts[rs] = make(map[string]int)
		}
		ct.counts[rs][cs]++
		rowSeen[rs] = true
		colSeen[cs] = true
	}
	for v := range rowSeen {
		ct.RowValues = append(ct.RowValues, v)
	}
	for v := range colSeen {
		ct.ColValues = append(ct.ColValues, v)
	}
	sort.Strings(ct.RowValues)
	sort.Strings(ct.ColValues)
	return ct, nil
}

/*
Count takes a row value and a column value and returns the number
of samples having both.
*/
func (ct *CrossTab) Count(rowValue, colValue string) int {
	return ct.counts[rowValue][colValue]
}

func (ct *CrossTab) String() string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s \\ %s", ct.RowFeature, ct.ColFeature)
	for _, cv := range ct.ColValues {
		fmt.Fprintf(w, "\t%s", cv)
	}
	fmt.Fprintln(w)
	for _, rv := range ct.RowValues {
		fmt.Fprint(w, rv)
		for _, cv := range ct.ColValues {
			fmt.Fprintf(w, "\t%d", ct.Count(rv, cv))
		}
		fmt.Fprintln(w)
	}
	w.Flush()
	return buf.String()
}

/*
Histogram is the distribution of a continuous feature over
equal-width bins.
*/
type Histogram struct {
	Feature string
	Min     float64
	Max     float64
	Counts  []int
	values  []float64
}

/*
NewHistogram takes a table, a continuous feature and a bin count
and returns the histogram of the feature's defined values over
equally wide bins between its minimum and maximum. It returns an
error if the table has no defined values for the feature.
*/
func NewHistogram(t *dataset.Table, f *feature.ContinuousFeature, bins int) (*Histogram, error) {
	if bins < 1 {
		return nil, fmt.Errorf("histogram of %s: bin count must be positive, got %d", f.Name(), bins)
	}
	var values []float64
	for _, sample := range t.Samples() {
		v, err := sample.ValueFor(f)
		if err != nil {
			return nil, err
		}
		if fv, ok := v.(float64); ok {
			values = append(values, fv)
		}
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("histogram of %s: no defined values", f.Name())
	}
	h := &Histogram{Feature: f.Name(), Min: values[0], Max: values[0], Counts: make([]int, bins), values: values}
	for _, v := range values {
		if v < h.Min {
			h.Min = v
		}
		if v > h.Max {
			h.Max = v
		}
	}
	width := (h.Max - h.Min) / float64(bins)
	for _, v := range values {
		i := bins - 1
		if width > 0 {
			i = int((v - h.Min) / width)
			if i >= bins {
				i = bins - 1
			}
		}
		h.Counts[i]++
	}
	return h, nil
}

/*
Edge takes a bin index and returns the lower edge of that bin.
*/
func (h *Histogram) Edge(i int) float64 {
	width := (h.Max - h.Min) / float64(len(h.Counts))
	return h.Min + float64(i)*width
}

func (h *Histogram) String() string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tcount\n", h.Feature)
	for i, c := range h.Counts {
		fmt.Fprintf(w, ">= %g\t%d\n", h.Edge(i), c)
	}
	w.Flush()
	return buf.String()
}
