package tree

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/formcheck/formcheck/dataset"
	"github.com/formcheck/formcheck/feature"
)

// DefaultGainGrid is the grid of information-gain thresholds the
// cross-validation pass evaluates as complexity parameters.
var DefaultGainGrid = []float64{0, 0.01, 0.02, 0.05, 0.1, 0.2}

/*
CVTrial is the outcome of evaluating one complexity parameter:
the information-gain threshold tried and the mean misclassification
rate over the held-out folds.
*/
type CVTrial struct {
	Gain      float64
	MeanError float64
}

/*
CVResult is the outcome of the cross-validation pass: every trial
and the information-gain threshold chosen for the final tree.
*/
type CVResult struct {
	Trials []CVTrial
	Gain   float64
}

/*
GrowCV takes a context, a training table, the label feature, the
features available for splitting, a fold count, a seed and a grid
of information-gain thresholds (nil for the default grid).

It assigns samples to folds with a shuffle derived from the seed,
evaluates every threshold by the mean misclassification rate of
trees grown on all-but-one fold and scored on the held-out fold,
picks the threshold of lowest mean error (ties break to the larger
threshold, the simpler tree), and returns the tree grown on the
full table with that threshold and the trial outcomes, or an
error.

The cross-validation only informs the complexity choice: the
returned tree is a single tree fit on the whole training table, so
its in-sample evaluation remains an optimistic estimate of
generalization error.
*/
func GrowCV(ctx context.Context, t *dataset.Table, label feature.Feature, features []feature.Feature, folds int, seed int64, gains []float64) (*Tree, *CVResult, error) {
	if folds < 2 {
		return nil, nil, fmt.Errorf("cross-validation requires at least 2 folds, got %d", folds)
	}
	if t.Count() < folds {
		return nil, nil, fmt.Errorf("cross-validation with %d folds requires at least as many samples, got %d", folds, t.Count())
	}
	if len(features) == 0 {
		return nil, nil, ErrNoFeatures
	}
	if gains == nil {
		gains = DefaultGainGrid
	}

	samples := t.Samples()
	foldOf := make([]int, len(samples))
	for i, p := range rand.New(rand.NewSource(seed)).Perm(len(samples)) {
		foldOf[p] = i % folds
	}

	trials := make([]CVTrial, 0, len(gains))
	best := -1
	for _, gain := range gains {
		trial := CVTrial{Gain: gain}
		misses, total := 0, 0
		for fold := 0; fold < folds; fold++ {
			var training, held []dataset.Sample
			for i, s := range samples {
				if foldOf[i] == fold {
					held = append(held, s)
				} else {
					training = append(training, s)
				}
			}
			foldTree, err := Grow(ctx, dataset.New(t.Features(), training), label, features, &Options{
				Pruning: &PruningStrategy{Pruner: FixedInformationGainPruner(gain)},
			})
			if err != nil {
				return nil, nil, err
			}
			for _, s := range held {
				truth, err := s.ValueFor(label)
				if err != nil {
					return nil, nil, err
				}
				trueValue, ok := truth.(string)
				if !ok {
					continue
				}
				total++
				predicted, err := foldTree.Classify(s)
				if err != nil {
					if err != ErrCannotPredictFromSample {
						return nil, nil, err
					}
					// Unclassifiable held-out samples count against
					// the threshold like misclassified ones.
					misses++
					continue
				}
				if predicted != trueValue {
					misses++
				}
			}
		}
		if total == 0 {
			return nil, nil, fmt.Errorf("cross-validation found no labeled samples")
		}
		trial.MeanError = float64(misses) / float64(total)
		trials = append(trials, trial)
		if best < 0 || trial.MeanError <= trials[best].MeanError {
			best = len(trials) - 1
		}
	}

	final, err := Grow(ctx, t, label, features, &Options{
		Pruning: &PruningStrategy{Pruner: FixedInformationGainPruner(trials[best].Gain)},
	})
	if err != nil {
		return nil, nil, err
	}
	return final, &CVResult{Trials: trials, Gain: trials[best].Gain}, nil
}
