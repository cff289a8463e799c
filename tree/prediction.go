package tree

import (
	"fmt"
	"sort"
	"strings"

	"github.com/formcheck/formcheck/dataset"
	"github.com/formcheck/formcheck/feature"
)

/*
Prediction represents a prediction made by a classification Tree
*/
type Prediction struct {
	probabilities map[string]float64
	weight        int
}

// PredictionError represents an error related with predictions
type PredictionError string

/*
ErrCannotPredictFromSample is the error returned by the Predict
method of a tree when the prediction cannot be made because the
tree itself has no prediction for that kind of sample, as opposed
to cases where values for a feature cannot be obtained.
*/
const ErrCannotPredictFromSample = PredictionError("no prediction available for this kind of sample")

/*
ErrCannotPredictFromEmptyTable is the error returned when trying
to build a prediction based on an empty table.
*/
const ErrCannotPredictFromEmptyTable = PredictionError("cannot make prediction for empty table")

func (pe PredictionError) Error() string {
	return string(pe)
}

/*
ProbabilityOf takes a string value and returns the float64
probability of that value according to the prediction.
*/
func (p *Prediction) ProbabilityOf(value string) float64 {
	return p.probabilities[value]
}

func (p *Prediction) String() string {
	return strings.Replace(fmt.Sprintf("%v", p.probabilities), "map", "", 1)
}

/*
Probabilities returns a map of string to float64 containing the
probabilities of each available value
*/
func (p *Prediction) Probabilities() map[string]float64 {
	return p.probabilities
}

/*
Weight returns the weight of the prediction: an int equal to the
number of samples in the table from which the prediction was made
*/
func (p *Prediction) Weight() int {
	return p.weight
}

/*
NewPrediction takes a map[string]float64 with the probabilities of
each value in the prediction and an integer with the number of
samples from which those probabilities were computed and returns a
prediction representing those values.
*/
func NewPrediction(probs map[string]float64, weight int) *Prediction {
	return &Prediction{probabilities: probs, weight: weight}
}

/*
PredictedValue returns a string with the most probable value and a
float64 with its prevalence. Ties break to the smallest value so
that predictions are a deterministic function of the training
data.
*/
func (p *Prediction) PredictedValue() (value string, prob float64) {
	values := make([]string, 0, len(p.probabilities))
	for k := range p.probabilities {
		values = append(values, k)
	}
	sort.Strings(values)
	for _, k := range values {
		if v := p.probabilities[k]; v > prob {
			value = k
			prob = v
		}
	}
	return
}

/*
NewPredictionFromTable takes a table and a feature and returns a
prediction for the feature based on the (training) data in the
table, or an error if there are no samples in the table.
*/
func NewPredictionFromTable(t *dataset.Table, f feature.Feature) (*Prediction, error) {
	weight := t.Count()
	if weight == 0 {
		return nil, ErrCannotPredictFromEmptyTable
	}
	fvc, err := t.CountFeatureValues(f)
	if err != nil {
		return nil, err
	}
	probs := make(map[string]float64)
	for v, c := range fvc {
		probs[v] = float64(c) / float64(weight)
	}
	return &Prediction{probs, weight}, nil
}
