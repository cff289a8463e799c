/*
Package forest fits bagged ensembles of classification trees:
every tree grows unpruned on a bootstrap resample of the training
table considering a random subset of features at each split, and
the ensemble predicts by majority vote.
*/
package forest

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/formcheck/formcheck/dataset"
	"github.com/formcheck/formcheck/eval"
	"github.com/formcheck/formcheck/feature"
	"github.com/formcheck/formcheck/tree"
)

// DefaultTrees is the number of trees fit when the configuration
// does not say otherwise.
const DefaultTrees = 500

/*
Config configures the fitting of a forest.
*/
type Config struct {
	// Trees is the number of trees in the ensemble. Defaults to
	// DefaultTrees.
	Trees int
	// Seed derives every per-tree random source: tree i resamples
	// and subsamples with source Seed+i, so a fitted forest is
	// reproducible for a fixed seed regardless of scheduling.
	Seed int64
	// FeaturesPerSplit is the number of features considered at each
	// split. Defaults to the rounded-up square root of the number
	// of available features.
	FeaturesPerSplit int
}

func (c *Config) withDefaults(featureCount int) *Config {
	cfg := &Config{}
	if c != nil {
		*cfg = *c
	}
	if cfg.Trees <= 0 {
		cfg.Trees = DefaultTrees
	}
	if cfg.FeaturesPerSplit <= 0 {
		cfg.FeaturesPerSplit = int(math.Ceil(math.Sqrt(float64(featureCount))))
	}
	if cfg.FeaturesPerSplit > featureCount {
		cfg.FeaturesPerSplit = featureCount
	}
	return cfg
}

/*
Forest is a fitted ensemble of classification trees predicting a
discrete label feature by majority vote.
*/
type Forest struct {
	Label feature.Feature
	Trees []*tree.Tree

	classes []string
	inBag   [][]bool
	samples []dataset.Sample
}

/*
Fit takes a context, a training table, the label feature, the
features available for splitting and a configuration, and returns
the forest fit on the table or an error.

Trees are grown concurrently but deterministically: each tree's
bootstrap resample and per-split feature subsets come from a
random source derived from the configured seed and the tree's
index, so two fits with equal inputs produce equal forests.
*/
func Fit(ctx context.Context, t *dataset.Table, label *feature.DiscreteFeature, features []feature.Feature, cfg *Config) (*Forest, error) {
	if t.Count() == 0 {
		return nil, tree.ErrNoSamples
	}
	if len(features) == 0 {
		return nil, tree.ErrNoFeatures
	}
	cfg = cfg.withDefaults(len(features))

	samples := t.Samples()
	f := &Forest{
		Label:   label,
		Trees:   make([]*tree.Tree, cfg.Trees),
		classes: label.AvailableValues(),
		inBag:   make([][]bool, cfg.Trees),
		samples: samples,
	}

	var wg sync.WaitGroup
	errs := make(chan error, cfg.Trees)
	for i := 0; i < cfg.Trees; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(cfg.Seed + int64(i)))
			resample := make([]dataset.Sample, len(samples))
			bagged := make([]bool, len(samples))
			for j := range resample {
				k := rng.Intn(len(samples))
				resample[j] = samples[k]
				bagged[k] = true
			}
			grown, err := tree.Grow(ctx, dataset.New(t.Features(), resample), label, features, &tree.Options{
				Pruning:           &tree.PruningStrategy{Pruner: tree.NoPruner()},
				CandidateFeatures: featureSubsampler(rng, cfg.FeaturesPerSplit),
			})
			if err != nil {
				errs <- fmt.Errorf("fitting tree %d: %v", i, err)
				return
			}
			f.Trees[i] = grown
			f.inBag[i] = bagged
		}(i)
	}
	wg.Wait()
	close(errs)
	if err := <-errs; err != nil {
		return nil, err
	}
	return f, nil
}

/*
featureSubsampler takes a random source and a subset size and
returns a function drawing that many features from the ones still
available at a split. The order of the available features is
preserved so equal draws yield equal splits.
*/
func featureSubsampler(rng *rand.Rand, size int) func([]feature.Feature) []feature.Feature {
	return func(available []feature.Feature) []feature.Feature {
		if len(available) <= size {
			return available
		}
		chosen := rng.Perm(len(available))[:size]
		sort.Ints(chosen)
		subset := make([]feature.Feature, 0, size)
		for _, i := range chosen {
			subset = append(subset, available[i])
		}
		return subset
	}
}

/*
Predict takes a sample and returns the ensemble's prediction for
it: the share of tree votes per label value. Trees that cannot
classify the sample do not vote; if no tree votes the prediction
fails with tree.ErrCannotPredictFromSample.
*/
func (f *Forest) Predict(s dataset.Sample) (*tree.Prediction, error) {
	votes := make(map[string]int)
	for _, member := range f.Trees {
		value, err := member.Classify(s)
		if err != nil {
			if err == tree.ErrCannotPredictFromSample {
				continue
			}
			return nil, err
		}
		votes[value]++
	}
	return predictionFromVotes(votes)
}

/*
Classify takes a sample and returns the label value of most tree
votes, or an error if no tree can classify the sample. Vote ties
break to the smallest label value.
*/
func (f *Forest) Classify(s dataset.Sample) (string, error) {
	p, err := f.Predict(s)
	if err != nil {
		return "", err
	}
	value, _ := p.PredictedValue()
	return value, nil
}

/*
OOBEvaluation is the out-of-bag assessment of a fitted forest: the
confusion matrix of the out-of-bag majority votes against the true
labels, and the number of training samples that were never
out-of-bag or got no vote.
*/
type OOBEvaluation struct {
	ConfusionMatrix *eval.ConfusionMatrix
	Unvoted         int
}

/*
ErrorRate returns the misclassification rate of the out-of-bag
votes, the forest's estimate of its generalization error.
*/
func (e *OOBEvaluation) ErrorRate() float64 {
	return e.ConfusionMatrix.ErrorRate()
}

/*
OOBEvaluate scores the forest on its own training samples using
only, for each sample, the votes of the trees whose bootstrap
resample left the sample out. Unlabeled samples and samples with
no out-of-bag vote are skipped and counted.
*/
func (f *Forest) OOBEvaluate() (*OOBEvaluation, error) {
	result := &OOBEvaluation{ConfusionMatrix: eval.NewConfusionMatrix(f.classes)}
	for j, sample := range f.samples {
		truth, err := sample.ValueFor(f.Label)
		if err != nil {
			return nil, err
		}
		trueValue, ok := truth.(string)
		if !ok {
			result.Unvoted++
			continue
		}
		votes := make(map[string]int)
		for i, member := range f.Trees {
			if f.inBag[i][j] {
				continue
			}
			value, err := member.Classify(sample)
			if err != nil {
				if err == tree.ErrCannotPredictFromSample {
					continue
				}
				return nil, err
			}
			votes[value]++
		}
		p, err := predictionFromVotes(votes)
		if err != nil {
			if err == tree.ErrCannotPredictFromSample {
				result.Unvoted++
				continue
			}
			return nil, err
		}
		predicted, _ := p.PredictedValue()
		if err := result.ConfusionMatrix.Add(trueValue, predicted); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func predictionFromVotes(votes map[string]int) (*tree.Prediction, error) {
	total := 0
	for _, v := range votes {
		total += v
	}
	if total == 0 {
		return nil, tree.ErrCannotPredictFromSample
	}
	probabilities := make(map[string]float64, len(votes))
	for value, v := range votes {
		probabilities[value] = float64(v) / float64(total)
	}
	return tree.NewPrediction(probabilities, total), nil
}
