package tree

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/formcheck/formcheck/dataset"
	"github.com/formcheck/formcheck/feature"
)

// Errors reported when fitting is attempted on invalid input.
var (
	ErrNoSamples  = errors.New("cannot fit a tree on an empty table")
	ErrNoFeatures = errors.New("cannot fit a tree without feature columns")
)

/*
Options configures the growing of a tree.
*/
type Options struct {
	// Pruning decides when a node is not worth developing further.
	// Defaults to the default pruning strategy.
	Pruning *PruningStrategy
	// CandidateFeatures, when not nil, narrows the features
	// considered for each split. Forests install a random
	// subsampler here to decorrelate their trees.
	CandidateFeatures func([]feature.Feature) []feature.Feature
}

func (o *Options) withDefaults() *Options {
	opts := &Options{}
	if o != nil {
		*opts = *o
	}
	if opts.Pruning == nil {
		opts.Pruning = &PruningStrategy{Pruner: DefaultPruner(), MinimumEntropy: 0}
	}
	return opts
}

/*
branch is one subtree of a partition: the criterion delimiting it
and the subset of training samples satisfying the criterion.
*/
type branch struct {
	criterion feature.Criterion
	table     *dataset.Table
}

/*
Partition represents the split of a table by a feature into
subtrees, with the information gain the split obtains on the label
feature.
*/
type Partition struct {
	Feature         feature.Feature
	branches        []*branch
	informationGain float64
}

/*
Grow takes a context, a training table, the label feature to
predict, the features available for splitting and growing options,
and returns the tree grown from the table or an error. Growing is
deterministic: features are considered in the given order and the
first split of strictly highest information gain wins.
*/
func Grow(ctx context.Context, t *dataset.Table, label feature.Feature, features []feature.Feature, opts *Options) (*Tree, error) {
	if t.Count() == 0 {
		return nil, ErrNoSamples
	}
	if len(features) == 0 {
		return nil, ErrNoFeatures
	}
	opts = opts.withDefaults()
	root := &Node{}
	if err := develop(ctx, root, t, label, features, opts); err != nil {
		return nil, err
	}
	return New(root, label), nil
}

func develop(ctx context.Context, n *Node, t *dataset.Table, label feature.Feature, available []feature.Feature, opts *Options) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	prediction, err := NewPredictionFromTable(t, label)
	if err != nil {
		if err != ErrCannotPredictFromEmptyTable {
			return err
		}
	}
	n.Prediction = prediction
	if t.Count() == 0 || len(available) == 0 {
		return nil
	}
	entropy, err := t.Entropy(label)
	if err != nil {
		return err
	}
	if entropy <= opts.Pruning.MinimumEntropy {
		return nil
	}

	candidates := available
	if opts.CandidateFeatures != nil {
		candidates = opts.CandidateFeatures(available)
	}
	var selected *Partition
	for _, f := range candidates {
		part, err := partition(t, f, label, opts.Pruning.Pruner)
		if err != nil {
			return err
		}
		if part != nil && (selected == nil || part.informationGain > selected.informationGain) {
			selected = part
		}
	}
	if selected == nil {
		return nil
	}

	n.SubtreeFeature = selected.Feature
	remaining := make([]feature.Feature, 0, len(available)-1)
	for _, f := range available {
		if f.Name() != selected.Feature.Name() {
			remaining = append(remaining, f)
		}
	}
	for _, br := range selected.branches {
		subtree := &Node{FeatureCriterion: br.criterion}
		n.Subtrees = append(n.Subtrees, subtree)
		if err := develop(ctx, subtree, br.table, label, remaining, opts); err != nil {
			return err
		}
	}
	return nil
}

func partition(t *dataset.Table, f feature.Feature, label feature.Feature, p Pruner) (*Partition, error) {
	switch f := f.(type) {
	default:
		return nil, fmt.Errorf("unknown feature type %T for feature %v", f, f.Name())
	case *feature.DiscreteFeature:
		return newDiscretePartition(t, f, label, p)
	case *feature.ContinuousFeature:
		return newContinuousPartition(t, f, label, p)
	}
}

/*
newDiscretePartition takes a table, a discrete feature, a label
feature and a pruner and returns a partition of the table with one
branch per feature value observed in it, or nil if the partition
is pruned or splits nothing.
*/
func newDiscretePartition(t *dataset.Table, f *feature.DiscreteFeature, label feature.Feature, p Pruner) (*Partition, error) {
	entropy, err := t.Entropy(label)
	if err != nil {
		return nil, err
	}
	result := &Partition{Feature: f, informationGain: entropy}
	totalCount := float64(t.Count())
	for _, value := range f.AvailableValues() {
		criterion := feature.NewDiscreteCriterion(f, value)
		subtable, err := t.SubsetWith(criterion)
		if err != nil {
			return nil, err
		}
		if subtable.Count() == 0 {
			continue
		}
		subtableEntropy, err := subtable.Entropy(label)
		if err != nil {
			return nil, err
		}
		result.informationGain -= subtableEntropy * float64(subtable.Count()) / totalCount
		result.branches = append(result.branches, &branch{criterion, subtable})
	}
	if len(result.branches) < 2 {
		return nil, nil
	}
	prune, err := p.Prune(t, result, label)
	if err != nil {
		return nil, err
	}
	if prune {
		return nil, nil
	}
	return withUndefinedBranch(t, f, result)
}

/*
newContinuousPartition takes a table, a continuous feature, a
label feature and a pruner and returns a partition of the table
into contiguous value ranges, or nil if the partition is pruned or
no threshold splits the values.
*/
func newContinuousPartition(t *dataset.Table, f *feature.ContinuousFeature, label feature.Feature, p Pruner) (*Partition, error) {
	entropy, err := t.Entropy(label)
	if err != nil {
		return nil, err
	}
	result, err := newRecursiveRangePartition(t, f, label, entropy, math.Inf(-1), math.Inf(1), p)
	if err != nil || result == nil {
		return nil, err
	}
	prune, err := p.Prune(t, result, label)
	if err != nil {
		return nil, err
	}
	if prune {
		return nil, nil
	}
	return withUndefinedBranch(t, f, result)
}

/*
newRangePartition takes a table, a continuous feature, a label
feature, the table's label entropy and the [a, b) range delimiting
the table's values, and returns the binary partition of the range
at the threshold of highest information gain, or nil if fewer than
two distinct values fall in the range.
*/
func newRangePartition(t *dataset.Table, f *feature.ContinuousFeature, label feature.Feature, entropy, a, b float64) (*Partition, error) {
	values, err := t.FeatureValues(f)
	if err != nil {
		return nil, err
	}
	var floatValues []float64
	for _, v := range values {
		if fv, ok := v.(float64); ok {
			floatValues = append(floatValues, fv)
		}
	}
	if len(floatValues) < 2 {
		return nil, nil
	}
	sort.Float64s(floatValues)

	totalCount := float64(t.Count())
	var result *Partition
	for i, v := range floatValues[1:] {
		threshold := (floatValues[i] + v) / 2.0
		branches := make([]*branch, 0, 2)
		informationGain := entropy
		for _, criterion := range []feature.Criterion{
			feature.NewContinuousCriterion(f, a, threshold),
			feature.NewContinuousCriterion(f, threshold, b),
		} {
			subtable, err := t.SubsetWith(criterion)
			if err != nil {
				return nil, err
			}
			subtableEntropy, err := subtable.Entropy(label)
			if err != nil {
				return nil, err
			}
			informationGain -= subtableEntropy * float64(subtable.Count()) / totalCount
			branches = append(branches, &branch{criterion, subtable})
		}
		if result == nil || informationGain > result.informationGain {
			result = &Partition{Feature: f, branches: branches, informationGain: informationGain}
		}
	}
	return result, nil
}

/*
newRecursiveRangePartition splits the [a, b) range of the table's
values in two with newRangePartition and then recursively
partitions each sub-range, until a range can no longer be split or
the pruner rejects its split. The returned partition's branches
tile the original range, so multiple thresholds on the same
feature become sibling branches of a single split.
*/
func newRecursiveRangePartition(t *dataset.Table, f *feature.ContinuousFeature, label feature.Feature, entropy, a, b float64, p Pruner) (*Partition, error) {
	initial, err := newRangePartition(t, f, label, entropy, a, b)
	if err != nil || initial == nil {
		return nil, err
	}
	prune, err := p.Prune(t, initial, label)
	if err != nil {
		return nil, err
	}
	if prune {
		return nil, nil
	}
	totalCount := float64(t.Count())
	result := &Partition{Feature: f, informationGain: entropy}
	for _, br := range initial.branches {
		criterion := br.criterion.(feature.ContinuousCriterion)
		brA, brB := criterion.Interval()
		brEntropy, err := br.table.Entropy(label)
		if err != nil {
			return nil, err
		}
		subpartition, err := newRecursiveRangePartition(br.table, f, label, brEntropy, brA, brB, p)
		if err != nil {
			return nil, err
		}
		if subpartition == nil {
			result.branches = append(result.branches, br)
			result.informationGain -= brEntropy * float64(br.table.Count()) / totalCount
			continue
		}
		for _, sbr := range subpartition.branches {
			sbrEntropy, err := sbr.table.Entropy(label)
			if err != nil {
				return nil, err
			}
			result.branches = append(result.branches, sbr)
			result.informationGain -= sbrEntropy * float64(sbr.table.Count()) / totalCount
		}
	}
	return result, nil
}

/*
withUndefinedBranch appends a catch-all branch for the samples of
the table with no defined value for the partition feature, if
there are any, so that such samples remain classifiable below the
split.
*/
func withUndefinedBranch(t *dataset.Table, f feature.Feature, part *Partition) (*Partition, error) {
	var undefined []dataset.Sample
	for _, sample := range t.Samples() {
		v, err := sample.ValueFor(f)
		if err != nil {
			return nil, err
		}
		if v == nil {
			undefined = append(undefined, sample)
		}
	}
	if len(undefined) > 0 {
		part.branches = append(part.branches, &branch{
			criterion: feature.NewUndefinedCriterion(f),
			table:     dataset.New(t.Features(), undefined),
		})
	}
	return part, nil
}
