package feature

import (
	"fmt"
	"math"
)

/*
Criterion represents a constraint on a feature.

Its SatisfiedBy method takes a sample and returns a boolean
indicating if the sample's value for the feature satisfies the
criterion.

Its Feature method returns the feature on which the criterion is
applied.
*/
type Criterion interface {
	Feature() Feature
	SatisfiedBy(sample Sample) (bool, error)
}

/*
Sample is an interface for something that can satisfy a Criterion.

Its ValueFor method returns the value corresponding to the feature
passed as parameter, or nil if the sample does not define one.
*/
type Sample interface {
	ValueFor(Feature) (interface{}, error)
}

/*
ContinuousCriterion represents a constraint on a continuous
feature: a half-open range [a, b) that delimits which values
satisfy it. The range can be open on either end, with -Inf and/or
+Inf.

Its Interval method returns the start and end of the range as a
pair of float64 values.
*/
type ContinuousCriterion interface {
	Criterion
	Interval() (float64, float64)
}

/*
DiscreteCriterion represents a constraint on a discrete feature:
a value it must take.

Its Value method returns that value as a string.
*/
type DiscreteCriterion interface {
	Criterion
	Value() string
}

/*
UndefinedCriterion represents the lack of constraint on a specific
feature. It is satisfied by every sample and in grown trees it
catches samples with no defined value for the feature.
*/
type UndefinedCriterion interface {
	Criterion
	IsUndefinedCriterion() bool
}

type continuousCriterion struct {
	feature *ContinuousFeature
	a, b    float64
}

type discreteCriterion struct {
	feature *DiscreteFeature
	value   string
}

type undefinedCriterion struct {
	feature Feature
}

/*
NewContinuousCriterion takes a ContinuousFeature and a pair of
float64 values indicating the start and the end of a half-open
interval and returns a ContinuousCriterion with them. The interval
can be open on any end by providing -Inf and/or +Inf.
*/
func NewContinuousCriterion(feature *ContinuousFeature, a float64, b float64) ContinuousCriterion {
	return &continuousCriterion{feature, a, b}
}

/*
NewDiscreteCriterion takes a DiscreteFeature and a value string
and returns a DiscreteCriterion constraining the feature to that
value.
*/
func NewDiscreteCriterion(feature *DiscreteFeature, value string) DiscreteCriterion {
	return &discreteCriterion{feature, value}
}

/*
NewUndefinedCriterion takes a Feature and returns a Criterion on
it that is always satisfied.
*/
func NewUndefinedCriterion(f Feature) UndefinedCriterion {
	return &undefinedCriterion{f}
}

/*
Feature returns the feature to which the constraint applies.
*/
func (cfc *continuousCriterion) Feature() Feature {
	return cfc.feature
}

/*
SatisfiedBy takes a sample and returns false if the sample does
not define a float64 value for the feature, and otherwise whether
the value falls in the criterion's range.
*/
func (cfc *continuousCriterion) SatisfiedBy(sample Sample) (bool, error) {
	val, err := sample.ValueFor(cfc.feature)
	if err != nil {
		return false, err
	}
	if val == nil {
		return false, nil
	}
	floatVal, ok := val.(float64)
	if !ok {
		return false, nil
	}
	return (math.IsInf(cfc.a, 0) || cfc.a <= floatVal) && (math.IsInf(cfc.b, 0) || floatVal < cfc.b), nil
}

func (cfc *continuousCriterion) Interval() (float64, float64) {
	return cfc.a, cfc.b
}

func (cfc *continuousCriterion) String() string {
	if math.IsInf(cfc.a, 0) {
		return fmt.Sprintf("%s < %g", cfc.feature.Name(), cfc.b)
	}
	if math.IsInf(cfc.b, 0) {
		return fmt.Sprintf("%g <= %s", cfc.a, cfc.feature.Name())
	}
	return fmt.Sprintf("%g <= %s < %g", cfc.a, cfc.feature.Name(), cfc.b)
}

/*
Feature returns the feature to which the constraint applies.
*/
func (dfc *discreteCriterion) Feature() Feature {
	return dfc.feature
}

/*
SatisfiedBy takes a sample and returns false if the sample does
not define a string value for the feature, and otherwise whether
the value equals the criterion's value.
*/
func (dfc *discreteCriterion) SatisfiedBy(sample Sample) (bool, error) {
	val, err := sample.ValueFor(dfc.feature)
	if err != nil {
		return false, err
	}
	if val == nil {
		return false, nil
	}
	stringVal, ok := val.(string)
	if !ok {
		return false, nil
	}
	return dfc.value == stringVal, nil
}

func (dfc *discreteCriterion) Value() string {
	return dfc.value
}

func (dfc *discreteCriterion) String() string {
	return fmt.Sprintf("%s is %s", dfc.feature.Name(), dfc.value)
}

func (u *undefinedCriterion) Feature() Feature {
	return u.feature
}

func (u *undefinedCriterion) SatisfiedBy(Sample) (bool, error) {
	return true, nil
}

func (u *undefinedCriterion) IsUndefinedCriterion() bool {
	return true
}

func (u *undefinedCriterion) String() string {
	return fmt.Sprintf("%s not defined", u.feature.Name())
}
