package tree

import (
	"math"

	"github.com/formcheck/formcheck/dataset"
	"github.com/formcheck/formcheck/feature"
)

// PruningStrategy holds the configuration for when a node must not
// be partitioned further or at all.
type PruningStrategy struct {
	// Pruner is applied to every candidate partition to decide if
	// the result is worth incorporating into the tree.
	Pruner
	// MinimumEntropy is the maximum label entropy of a node that
	// prevents it from being branched out at all: nodes whose
	// training table has an entropy equal or below this are left
	// as leaves.
	MinimumEntropy float64
}

/*
Pruner is an interface wrapping the Prune method, used to decide
whether a partition is good enough to become part of a tree or if
it must be pruned instead.

The Prune method takes a table, a candidate partition of it and a
label feature and returns a boolean: true to indicate the
partition must be pruned, false to allow its adding to the tree
and further development.
*/
type Pruner interface {
	Prune(t *dataset.Table, p *Partition, label feature.Feature) (bool, error)
}

/*
PrunerFunc wraps a function with the Prune method signature to
implement the Pruner interface
*/
type PrunerFunc func(t *dataset.Table, p *Partition, label feature.Feature) (bool, error)

/*
Prune takes a table, a partition and a label feature and invokes
the PrunerFunc with those parameters to return its boolean result.
*/
func (pf PrunerFunc) Prune(t *dataset.Table, p *Partition, label feature.Feature) (bool, error) {
	return pf(t, p, label)
}

/*
DefaultPruner returns a Pruner whose Prune method evaluates a
minimum information gain for the partition and returns true if
the partition's information gain is below it. The minimum is
calculated as

	(1/N) x [ log2(N-1) + log2(3^k-2) - k x Entropy(S) + k1 x Entropy(S1) + ... + ki x Entropy(Si) ]

with N being the number of samples in the table, k the number of
distinct label values on the table and ki/Si the distinct label
value count and subtable of partition branch i.
*/
func DefaultPruner() Pruner {
	return PrunerFunc(func(t *dataset.Table, p *Partition, label feature.Feature) (bool, error) {
		n := float64(t.Count())
		fvs, err := t.FeatureValues(label)
		if err != nil {
			return false, err
		}
		k := float64(len(fvs))
		entropy, err := t.Entropy(label)
		if err != nil {
			return false, err
		}
		minimum := math.Log(n-1.0) + math.Log(math.Pow(3.0, k)-2) - k*entropy
		for _, br := range p.branches {
			brEntropy, err := br.table.Entropy(label)
			if err != nil {
				return false, err
			}
			brfvs, err := br.table.FeatureValues(label)
			if err != nil {
				return false, err
			}
			minimum += float64(len(brfvs)) * brEntropy
		}
		minimum = minimum / n
		return minimum > p.informationGain, nil
	})
}

/*
FixedInformationGainPruner takes an informationGainThreshold
float64 value and returns a Pruner whose Prune method returns
whether the threshold is greater or equal to the received
partition's information gain. This is the complexity lever the
cross-validation pass tunes.
*/
func FixedInformationGainPruner(informationGainThreshold float64) Pruner {
	return PrunerFunc(func(t *dataset.Table, p *Partition, label feature.Feature) (bool, error) {
		return informationGainThreshold >= p.informationGain, nil
	})
}

/*
NoPruner returns a Pruner whose Prune method always returns false,
that is, never prunes.
*/
func NoPruner() Pruner {
	return PrunerFunc(func(t *dataset.Table, p *Partition, label feature.Feature) (bool, error) {
		return false, nil
	})
}
