/*
Package eval scores fitted classifiers against labeled tables:
confusion matrices and misclassification rates.
*/
package eval

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"github.com/formcheck/formcheck/dataset"
	"github.com/formcheck/formcheck/feature"
	"github.com/formcheck/formcheck/tree"
)

/*
Classifier is the capability the evaluator needs from a fitted
model: predicting the label value of a single sample. Both trees
and forests implement it, so the concrete fitting machinery stays
swappable.
*/
type Classifier interface {
	Classify(dataset.Sample) (string, error)
}

/*
ConfusionMatrix is a square mapping from (true label, predicted
label) pairs to counts. Its diagonal holds the correct
classifications.
*/
type ConfusionMatrix struct {
	classes []string
	index   map[string]int
	counts  [][]int
}

/*
NewConfusionMatrix takes the closed slice of label classes and
returns an empty confusion matrix over them.
*/
func NewConfusionMatrix(classes []string) *ConfusionMatrix {
	m := &ConfusionMatrix{
		classes: append([]string{}, classes...),
		index:   make(map[string]int, len(classes)),
		counts:  make([][]int, len(classes)),
	}
	for i, c := range m.classes {
		m.index[c] = i
		m.counts[i] = make([]int, len(m.classes))
	}
	return m
}

/*
Add takes a true label value and a predicted one and counts the
pair, or returns an error if either is not one of the matrix's
classes.
*/
func (m *ConfusionMatrix) Add(actual, predicted string) error {
	i, ok := m.index[actual]
	if !ok {
		return fmt.Errorf("confusion matrix has no class %s", actual)
	}
	j, ok := m.index[predicted]
	if !ok {
		return fmt.Errorf("confusion matrix has no class %s", predicted)
	}
	m.counts[i][j]++
	return nil
}

/*
Classes returns the label classes of the matrix, in order.
*/
func (m *ConfusionMatrix) Classes() []string {
	return m.classes
}

/*
Count takes a true label value and a predicted one and returns how
many evaluated samples had that pair.
*/
func (m *ConfusionMatrix) Count(actual, predicted string) int {
	i, ok := m.index[actual]
	if !ok {
		return 0
	}
	j, ok := m.index[predicted]
	if !ok {
		return 0
	}
	return m.counts[i][j]
}

/*
Total returns the number of counted pairs.
*/
func (m *ConfusionMatrix) Total() int {
	total := 0
	for _, row := range m.counts {
		for _, c := range row {
			total += c
		}
	}
	return total
}

/*
Correct returns the diagonal sum: the number of counted pairs
whose prediction matched the true label.
*/
func (m *ConfusionMatrix) Correct() int {
	correct := 0
	for i := range m.counts {
		correct += m.counts[i][i]
	}
	return correct
}

/*
ErrorRate returns the misclassification rate of the counted pairs:
(total - correct) / total, so that the diagonal sum over the total
is exactly 1 - ErrorRate(). It returns 0 for an empty matrix.
*/
func (m *ConfusionMatrix) ErrorRate() float64 {
	total := m.Total()
	if total == 0 {
		return 0
	}
	return float64(total-m.Correct()) / float64(total)
}

func (m *ConfusionMatrix) String() string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, "actual \\ predicted")
	for _, c := range m.classes {
		fmt.Fprintf(w, "\t%s", c)
	}
	fmt.Fprintln(w)
	for i, actual := range m.classes {
		fmt.Fprint(w, actual)
		for j := range m.classes {
			fmt.Fprintf(w, "\t%d", m.counts[i][j])
		}
		fmt.Fprintln(w)
	}
	w.Flush()
	return buf.String()
}

/*
Evaluate takes a classifier, a labeled table and the label
feature, predicts every labeled sample of the table and returns
the resulting confusion matrix and the number of samples the
classifier declined to predict. Unlabeled samples are skipped; any
other prediction failure aborts the evaluation.
*/
func Evaluate(c Classifier, t *dataset.Table, label *feature.DiscreteFeature) (*ConfusionMatrix, int, error) {
	m := NewConfusionMatrix(label.AvailableValues())
	failed := 0
	for _, sample := range t.Samples() {
		truth, err := sample.ValueFor(label)
		if err != nil {
			return nil, 0, err
		}
		trueValue, ok := truth.(string)
		if !ok {
			continue
		}
		predicted, err := c.Classify(sample)
		if err != nil {
			if err == tree.ErrCannotPredictFromSample {
				failed++
				continue
			}
			return nil, 0, err
		}
		if err := m.Add(trueValue, predicted); err != nil {
			return nil, 0, err
		}
	}
	return m, failed, nil
}
