package dataset

import (
	"fmt"

	"github.com/formcheck/formcheck/feature"
)

/*
Sample represents a single measured exercise execution: an item to
learn from or to classify.

Its ValueFor method returns the value of the sample corresponding
to the feature passed as parameter, or nil if the sample does not
define one.
*/
type Sample interface {
	ValueFor(feature.Feature) (interface{}, error)
}

type sample struct {
	featureValues map[string]interface{}
}

/*
NewSample takes a map of feature name strings to values and
returns a sample backed by it.
*/
func NewSample(featureValues map[string]interface{}) Sample {
	return &sample{featureValues}
}

func (s *sample) ValueFor(f feature.Feature) (interface{}, error) {
	return s.featureValues[f.Name()], nil
}

func (s *sample) String() string {
	return fmt.Sprintf("[%v]", s.featureValues)
}
